package registry

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/internal/config"
	registryapi "github.com/mintmark-network/ip-gateway/modules/registry/api"
	"github.com/mintmark-network/ip-gateway/modules/registry/ledger"
	"github.com/mintmark-network/ip-gateway/modules/registry/pinning"
	"github.com/mintmark-network/ip-gateway/modules/registry/repository/cidmapfile"
	"github.com/mintmark-network/ip-gateway/modules/registry/similarity"
	registryusecase "github.com/mintmark-network/ip-gateway/modules/registry/usecase"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

// New wires the registry module: mapping store, similarity checker,
// pinning gateway, ledger orchestrator and the API surfaces listed in
// the configuration.
func New(injector do.Injector) error {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector).Registry

	cidMapRepo := cidmapfile.New(conf.CidMapPath)
	checker := similarity.NewExecClient(conf.Checker)

	pinner, err := pinning.NewPinataClient(conf.Pinata)
	if err != nil {
		return errors.Wrap(err, "can't create pinning client")
	}

	client, err := ledger.Dial(ctx, conf.Ledger.RPCURL)
	if err != nil {
		return errors.Wrap(err, "can't connect to ledger RPC")
	}
	orchestrator, err := ledger.NewOrchestrator(client, conf.Ledger)
	if err != nil {
		return errors.Wrap(err, "can't create transaction orchestrator")
	}

	registryContract, err := ledger.NewContract(conf.Ledger.RegistryAddress, ledger.IPRegistryABI)
	if err != nil {
		return errors.Wrap(err, "invalid registry contract")
	}
	licenseManagerContract, err := ledger.NewContract(conf.Ledger.LicenseManagerAddress, ledger.LicenseManagerABI)
	if err != nil {
		return errors.Wrap(err, "invalid license manager contract")
	}
	oracleContract, err := ledger.NewContract(conf.Ledger.OracleAddress, ledger.OracleABI)
	if err != nil {
		return errors.Wrap(err, "invalid oracle contract")
	}

	uc := registryusecase.New(cidMapRepo, checker, pinner, orchestrator,
		registryContract, licenseManagerContract, oracleContract, conf)

	apiHandlers := lo.Uniq(conf.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			httpHandler := registryapi.NewHTTPHandler(conf, uc)
			if err := httpHandler.Mount(httpServer); err != nil {
				return errors.Wrap(err, "can't mount registry API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}
	return nil
}
