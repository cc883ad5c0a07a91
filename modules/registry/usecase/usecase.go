package usecase

import (
	"context"

	"github.com/mintmark-network/ip-gateway/modules/registry/config"
	"github.com/mintmark-network/ip-gateway/modules/registry/datagateway"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/modules/registry/ledger"
	"github.com/mintmark-network/ip-gateway/modules/registry/pinning"
	"github.com/mintmark-network/ip-gateway/modules/registry/similarity"
)

// Orchestrator is the slice of the ledger orchestrator the usecase needs.
// Tests substitute a fake; production wiring passes *ledger.Orchestrator.
type Orchestrator interface {
	Execute(ctx context.Context, req ledger.TxRequest) (*entity.TransactionResult, error)
	Call(ctx context.Context, contract *ledger.Contract, method string, args ...any) ([]any, error)
	ExplorerTxURL(txHash string) string
}

// Usecase composes the dedup engine, the pinning gateway, the mapping
// store and the transaction orchestrator into the publish and licensing
// flows. It owns no state of its own; its single responsibility is the
// order of side effects.
type Usecase struct {
	cidMapDg       datagateway.CidMapDataGateway
	checker        similarity.Client
	pinner         pinning.Pinner
	orchestrator   Orchestrator
	registry       *ledger.Contract
	licenseManager *ledger.Contract
	oracle         *ledger.Contract
	conf           config.Config
}

func New(
	cidMapDg datagateway.CidMapDataGateway,
	checker similarity.Client,
	pinner pinning.Pinner,
	orchestrator Orchestrator,
	registry *ledger.Contract,
	licenseManager *ledger.Contract,
	oracle *ledger.Contract,
	conf config.Config,
) *Usecase {
	return &Usecase{
		cidMapDg:       cidMapDg,
		checker:        checker,
		pinner:         pinner,
		orchestrator:   orchestrator,
		registry:       registry,
		licenseManager: licenseManager,
		oracle:         oracle,
		conf:           conf,
	}
}
