package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/modules/registry/ledger"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
	"github.com/mintmark-network/ip-gateway/pkg/logger/slogx"
)

// RegisterWorkParams carries the provenance record for a new work.
type RegisterWorkParams struct {
	Author       string
	Filename     string
	Description  string
	ContentAddr  string
	LicenseType  string
	Location     string
	IsCommercial bool
}

func (p RegisterWorkParams) validate() error {
	if !common.IsHexAddress(p.Author) {
		return errors.Wrapf(errs.InvalidArgument, "invalid author address %q", p.Author)
	}
	if p.ContentAddr == "" {
		return errors.Wrap(errs.InvalidArgument, "content address is required")
	}
	if p.Filename == "" {
		return errors.Wrap(errs.InvalidArgument, "filename is required")
	}
	return nil
}

// RegisterWork submits a provenance record to the registry contract and
// waits for it to reach a terminal state. The registration timestamp is
// captured at submission time, formatted as a decimal unix string the way
// the contract stores it.
func (u *Usecase) RegisterWork(ctx context.Context, params RegisterWorkParams) (*entity.TransactionResult, error) {
	if err := params.validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	result, err := u.orchestrator.Execute(ctx, ledger.TxRequest{
		Intent:   entity.IntentRegisterWork,
		Contract: u.registry,
		Method:   "registerIP",
		Args: []any{
			common.HexToAddress(params.Author),
			params.Filename,
			timestamp,
			params.Description,
			params.ContentAddr,
			params.LicenseType,
			params.Location,
			params.IsCommercial,
		},
		EventName: ledger.EventWorkRegistered,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.InfoContext(ctx, "submitted work registration",
		slogx.String("author", params.Author),
		slogx.String("cid", params.ContentAddr),
		slogx.String("txHash", result.TxHash),
		slogx.String("state", string(result.State)),
	)
	return result, nil
}
