package usecase

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/shopspring/decimal"
)

// weiDecimals shifts a wei amount to whole ledger-native currency units.
const weiDecimals = -18

// ResolveTerms validates the scope against the closed enumeration, reads
// the terms record from the license manager and derives the display price
// in the configured secondary currency. Unknown scopes fail before any
// ledger call.
func (u *Usecase) ResolveTerms(ctx context.Context, tokenID *big.Int, scopeName string) (*entity.LicenseTerms, error) {
	scope, err := entity.ParseLicenseScope(scopeName)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	values, err := u.orchestrator.Call(ctx, u.licenseManager, "getTerms", tokenID, scope.Code())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	price, duration, transferable, legalTerms, err := unpackTerms(values)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	// an all-zero record means no terms were ever set for this pair
	if price.Sign() == 0 && duration.Sign() == 0 && legalTerms == "" {
		return nil, errors.Wrapf(errs.NotFound, "no terms set for token %s scope %s", tokenID, scope)
	}

	rate, err := u.exchangeRate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &entity.LicenseTerms{
		TokenID:         tokenID,
		Scope:           scope,
		PriceWei:        price,
		DurationSeconds: duration.Uint64(),
		Transferable:    transferable,
		LegalTerms:      legalTerms,
		PriceSecondary:  decimal.NewFromBigInt(price, weiDecimals).Mul(decimal.NewFromBigInt(rate, 0)),
	}, nil
}

// exchangeRate reads the oracle rate for the configured secondary
// currency. A rate of exactly zero is a hard error: a zero-derived price
// would read as "free" downstream.
func (u *Usecase) exchangeRate(ctx context.Context) (*big.Int, error) {
	rate, err := u.GetPrice(ctx, u.conf.Ledger.SecondaryCurrency)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if rate.Sign() == 0 {
		return nil, errors.Wrapf(errs.InvalidExchangeRate, "oracle rate for %q is zero", u.conf.Ledger.SecondaryCurrency)
	}
	return rate, nil
}

// GetPrice reads the oracle rate for a currency symbol as-is.
func (u *Usecase) GetPrice(ctx context.Context, currency string) (*big.Int, error) {
	if currency == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "currency is required")
	}
	values, err := u.orchestrator.Call(ctx, u.oracle, "getPrice", currency)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(values) != 1 {
		return nil, errors.Wrapf(errs.LedgerCall, "getPrice returned %d values", len(values))
	}
	rate, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "getPrice returned unexpected type %T", values[0])
	}
	return rate, nil
}

func unpackTerms(values []any) (price *big.Int, duration *big.Int, transferable bool, legalTerms string, err error) {
	if len(values) != 4 {
		return nil, nil, false, "", errors.Wrapf(errs.LedgerCall, "getTerms returned %d values", len(values))
	}
	var ok bool
	if price, ok = values[0].(*big.Int); !ok {
		return nil, nil, false, "", errors.Wrapf(errs.LedgerCall, "unexpected price type %T", values[0])
	}
	if duration, ok = values[1].(*big.Int); !ok {
		return nil, nil, false, "", errors.Wrapf(errs.LedgerCall, "unexpected duration type %T", values[1])
	}
	if transferable, ok = values[2].(bool); !ok {
		return nil, nil, false, "", errors.Wrapf(errs.LedgerCall, "unexpected transferable type %T", values[2])
	}
	if legalTerms, ok = values[3].(string); !ok {
		return nil, nil, false, "", errors.Wrapf(errs.LedgerCall, "unexpected terms type %T", values[3])
	}
	return price, duration, transferable, legalTerms, nil
}
