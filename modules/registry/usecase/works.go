package usecase

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"golang.org/x/sync/errgroup"
)

// ListWorks reads every registered work id from the registry contract
// and hydrates the records concurrently. Order follows the contract's
// id list.
func (u *Usecase) ListWorks(ctx context.Context) ([]*entity.Work, error) {
	values, err := u.orchestrator.Call(ctx, u.registry, "getAllWorks")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(values) != 1 {
		return nil, errors.Wrapf(errs.LedgerCall, "getAllWorks returned %d values", len(values))
	}
	ids, ok := values[0].([]*big.Int)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "getAllWorks returned unexpected type %T", values[0])
	}

	works := make([]*entity.Work, len(ids))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(licenseHydrationConcurrency)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			work, err := u.GetWork(egCtx, id)
			if err != nil {
				return errors.Wrapf(err, "can't read work %s", id)
			}
			works[i] = work
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}
	return works, nil
}

// GetWork reads one registered work by id. A zero author address means
// the id was never registered.
func (u *Usecase) GetWork(ctx context.Context, workID *big.Int) (*entity.Work, error) {
	if workID == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "work id is required")
	}
	values, err := u.orchestrator.Call(ctx, u.registry, "getIPData", workID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	work, err := workFromValues(workID, values)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if work.Author == (common.Address{}).Hex() {
		return nil, errors.Wrapf(errs.NotFound, "work %s not found", workID)
	}
	return work, nil
}

func workFromValues(id *big.Int, values []any) (*entity.Work, error) {
	if len(values) != 8 {
		return nil, errors.Wrapf(errs.LedgerCall, "getIPData returned %d values", len(values))
	}
	author, ok := values[0].(common.Address)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected author type %T", values[0])
	}
	filename, ok := values[1].(string)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected filename type %T", values[1])
	}
	registeredAt, ok := values[2].(*big.Int)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected timestamp type %T", values[2])
	}
	description, ok := values[3].(string)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected description type %T", values[3])
	}
	cid, ok := values[4].(string)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected cid type %T", values[4])
	}
	licenseType, ok := values[5].(string)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected license type %T", values[5])
	}
	location, ok := values[6].(string)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected location type %T", values[6])
	}
	isCommercial, ok := values[7].(bool)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected commercial flag type %T", values[7])
	}

	return &entity.Work{
		ID:             id,
		Author:         author.Hex(),
		Filename:       filename,
		Description:    description,
		ContentAddress: cid,
		LicenseType:    licenseType,
		Location:       location,
		IsCommercial:   isCommercial,
		RegisteredAt:   registeredAt.Uint64(),
	}, nil
}
