package usecase

import (
	"context"
	"math/big"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/modules/registry/ledger"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
	"github.com/mintmark-network/ip-gateway/pkg/logger/slogx"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// licenseHydrationConcurrency bounds parallel getLicense reads when
// expanding an id list into full records.
const licenseHydrationConcurrency = 8

// CreateLicenseParams carries a direct license grant between two parties.
// Price is a decimal amount in whole ledger-native units ("0.05"), not wei.
type CreateLicenseParams struct {
	Licensor     string
	Licensee     string
	Price        string
	Scope        string
	Terms        string
	ContentAddr  string
	Transferable bool
	BeginDate    uint64
	EndDate      uint64
}

func (p CreateLicenseParams) validate() (scope entity.LicenseScope, priceWei *big.Int, err error) {
	if !common.IsHexAddress(p.Licensor) {
		return "", nil, errors.Wrapf(errs.InvalidArgument, "invalid licensor address %q", p.Licensor)
	}
	if !common.IsHexAddress(p.Licensee) {
		return "", nil, errors.Wrapf(errs.InvalidArgument, "invalid licensee address %q", p.Licensee)
	}
	if p.ContentAddr == "" {
		return "", nil, errors.Wrap(errs.InvalidArgument, "content address is required")
	}
	scope, err = entity.ParseLicenseScope(p.Scope)
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	priceWei, err = parseNativeAmount(p.Price)
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	return scope, priceWei, nil
}

// parseNativeAmount converts a decimal string in whole native units to
// wei. Negative and malformed amounts are rejected; fractional wei is
// truncated.
func parseNativeAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "price is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(errs.InvalidArgument, "invalid price %q", s)
	}
	if d.IsNegative() {
		return nil, errors.Wrapf(errs.InvalidArgument, "price %q must not be negative", s)
	}
	return d.Shift(18).BigInt(), nil
}

// CreateLicense grants a license directly from licensor to licensee and
// waits for the transaction to reach a terminal state.
func (u *Usecase) CreateLicense(ctx context.Context, params CreateLicenseParams) (*entity.TransactionResult, error) {
	scope, priceWei, err := params.validate()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	result, err := u.orchestrator.Execute(ctx, ledger.TxRequest{
		Intent:   entity.IntentCreateLicense,
		Contract: u.licenseManager,
		Method:   "createLicense",
		Args: []any{
			common.HexToAddress(params.Licensor),
			common.HexToAddress(params.Licensee),
			priceWei,
			scope.Code(),
			params.Terms,
			params.ContentAddr,
			params.Transferable,
			new(big.Int).SetUint64(params.BeginDate),
			new(big.Int).SetUint64(params.EndDate),
		},
		EventName: ledger.EventLicenseCreated,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return result, nil
}

// SetTermsParams carries a sale offer for one (token, scope) pair.
// Setting terms again for the same pair overwrites the previous offer.
type SetTermsParams struct {
	TokenID         *big.Int
	Scope           string
	Price           string
	DurationSeconds uint64
	Transferable    bool
	Terms           string
}

// SetTerms publishes or replaces the sale terms for a (token, scope) pair.
func (u *Usecase) SetTerms(ctx context.Context, params SetTermsParams) (*entity.TransactionResult, error) {
	if params.TokenID == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "token id is required")
	}
	scope, err := entity.ParseLicenseScope(params.Scope)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	priceWei, err := parseNativeAmount(params.Price)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	result, err := u.orchestrator.Execute(ctx, ledger.TxRequest{
		Intent:   entity.IntentSetTerms,
		Contract: u.licenseManager,
		Method:   "setTerms",
		Args: []any{
			params.TokenID,
			scope.Code(),
			priceWei,
			new(big.Int).SetUint64(params.DurationSeconds),
			params.Transferable,
			params.Terms,
		},
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return result, nil
}

// PurchaseLicense buys a license under the published terms for the pair.
// The payable value is taken from the on-ledger terms, never from the
// caller, so a stale client cannot underpay.
func (u *Usecase) PurchaseLicense(ctx context.Context, tokenID *big.Int, scopeName string) (*entity.TransactionResult, error) {
	if tokenID == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "token id is required")
	}
	terms, err := u.ResolveTerms(ctx, tokenID, scopeName)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !terms.IsForSale() {
		return nil, errors.WithStack(errs.NewPublicError("license is not for sale for this scope"))
	}

	result, err := u.orchestrator.Execute(ctx, ledger.TxRequest{
		Intent:    entity.IntentPurchaseLicense,
		Contract:  u.licenseManager,
		Method:    "purchaseLicense",
		Args:      []any{tokenID, terms.Scope.Code()},
		Value:     terms.PriceWei,
		EventName: ledger.EventLicenseCreated,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return result, nil
}

// TransferLicense moves an existing license to a new holder. The record
// is read first; non-transferable licenses are rejected before any gas
// is spent.
func (u *Usecase) TransferLicense(ctx context.Context, licenseID *big.Int, to string) (*entity.TransactionResult, error) {
	if licenseID == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "license id is required")
	}
	if !common.IsHexAddress(to) {
		return nil, errors.Wrapf(errs.InvalidArgument, "invalid recipient address %q", to)
	}
	license, err := u.GetLicense(ctx, licenseID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !license.Transferable {
		return nil, errors.WithStack(errs.NewPublicError("license is not transferable"))
	}

	result, err := u.orchestrator.Execute(ctx, ledger.TxRequest{
		Intent:   entity.IntentTransferLicense,
		Contract: u.licenseManager,
		Method:   "transferLicense",
		Args:     []any{licenseID, common.HexToAddress(to)},
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return result, nil
}

// RevokeLicense deactivates a license.
func (u *Usecase) RevokeLicense(ctx context.Context, licenseID *big.Int) (*entity.TransactionResult, error) {
	if licenseID == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "license id is required")
	}
	result, err := u.orchestrator.Execute(ctx, ledger.TxRequest{
		Intent:   entity.IntentRevokeLicense,
		Contract: u.licenseManager,
		Method:   "revokeLicense",
		Args:     []any{licenseID},
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return result, nil
}

// ValidateLicense reports whether the user currently holds a valid
// license for the content address.
func (u *Usecase) ValidateLicense(ctx context.Context, user string, contentAddr string) (bool, error) {
	if !common.IsHexAddress(user) {
		return false, errors.Wrapf(errs.InvalidArgument, "invalid user address %q", user)
	}
	if contentAddr == "" {
		return false, errors.Wrap(errs.InvalidArgument, "content address is required")
	}
	values, err := u.orchestrator.Call(ctx, u.licenseManager, "hasValidLicense", common.HexToAddress(user), contentAddr)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if len(values) != 1 {
		return false, errors.Wrapf(errs.LedgerCall, "hasValidLicense returned %d values", len(values))
	}
	valid, ok := values[0].(bool)
	if !ok {
		return false, errors.Wrapf(errs.LedgerCall, "hasValidLicense returned unexpected type %T", values[0])
	}
	return valid, nil
}

// GetLicense reads one license record by id. Unknown scope codes coming
// back from the contract are surfaced as their decimal string rather
// than rejected, so a contract upgrade does not brick reads.
func (u *Usecase) GetLicense(ctx context.Context, licenseID *big.Int) (*entity.License, error) {
	if licenseID == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "license id is required")
	}
	values, err := u.orchestrator.Call(ctx, u.licenseManager, "getLicense", licenseID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	license, err := licenseFromValues(licenseID, values)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if license.Licensor == (common.Address{}).Hex() {
		return nil, errors.Wrapf(errs.NotFound, "license %s not found", licenseID)
	}
	return license, nil
}

// ListAllLicenses reads every license id known to the contract and
// hydrates the records concurrently. Order follows the contract's id
// list.
func (u *Usecase) ListAllLicenses(ctx context.Context) ([]*entity.License, error) {
	ids, err := u.licenseIDs(ctx, "getAllLicensesId")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return u.hydrateLicenses(ctx, ids)
}

// LicensesByUser lists the licenses held by one address.
func (u *Usecase) LicensesByUser(ctx context.Context, user string) ([]*entity.License, error) {
	if !common.IsHexAddress(user) {
		return nil, errors.Wrapf(errs.InvalidArgument, "invalid user address %q", user)
	}
	ids, err := u.licenseIDs(ctx, "getLicensesByLicensee", common.HexToAddress(user))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return u.hydrateLicenses(ctx, ids)
}

// LicensesByToken lists the licenses attached to one work token.
func (u *Usecase) LicensesByToken(ctx context.Context, tokenID *big.Int) ([]*entity.License, error) {
	if tokenID == nil {
		return nil, errors.Wrap(errs.InvalidArgument, "token id is required")
	}
	ids, err := u.licenseIDs(ctx, "getLicensesByTokenId", tokenID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return u.hydrateLicenses(ctx, ids)
}

func (u *Usecase) licenseIDs(ctx context.Context, method string, args ...any) ([]*big.Int, error) {
	values, err := u.orchestrator.Call(ctx, u.licenseManager, method, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(values) != 1 {
		return nil, errors.Wrapf(errs.LedgerCall, "%s returned %d values", method, len(values))
	}
	ids, ok := values[0].([]*big.Int)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "%s returned unexpected type %T", method, values[0])
	}
	return ids, nil
}

// hydrateLicenses expands an id list into full records with a bounded
// fan-out. The oracle rate is read once for the whole batch; a missing
// or zero rate drops the secondary price but never fails the listing.
func (u *Usecase) hydrateLicenses(ctx context.Context, ids []*big.Int) ([]*entity.License, error) {
	rate := u.listExchangeRate(ctx)

	licenses := make([]*entity.License, len(ids))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(licenseHydrationConcurrency)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			values, err := u.orchestrator.Call(egCtx, u.licenseManager, "getLicense", id)
			if err != nil {
				return errors.Wrapf(err, "can't read license %s", id)
			}
			license, err := licenseFromValues(id, values)
			if err != nil {
				return errors.WithStack(err)
			}
			if rate != nil {
				license.PriceSecondary = decimal.NewFromBigInt(license.PriceWei, weiDecimals).Mul(decimal.NewFromBigInt(rate, 0))
			}
			licenses[i] = license
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}
	return licenses, nil
}

func (u *Usecase) listExchangeRate(ctx context.Context) *big.Int {
	rate, err := u.GetPrice(ctx, u.conf.Ledger.SecondaryCurrency)
	if err != nil {
		logger.WarnContext(ctx, "oracle rate unavailable, omitting secondary prices", slogx.Error(err))
		return nil
	}
	if rate.Sign() == 0 {
		return nil
	}
	return rate
}

func licenseFromValues(id *big.Int, values []any) (*entity.License, error) {
	if len(values) != 10 {
		return nil, errors.Wrapf(errs.LedgerCall, "getLicense returned %d values", len(values))
	}
	licensor, ok := values[0].(common.Address)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected licensor type %T", values[0])
	}
	licensee, ok := values[1].(common.Address)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected licensee type %T", values[1])
	}
	price, ok := values[2].(*big.Int)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected price type %T", values[2])
	}
	scopeCode, ok := values[3].(uint8)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected scope type %T", values[3])
	}
	terms, ok := values[4].(string)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected terms type %T", values[4])
	}
	cid, ok := values[5].(string)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected cid type %T", values[5])
	}
	transferable, ok := values[6].(bool)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected transferable type %T", values[6])
	}
	active, ok := values[7].(bool)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected active type %T", values[7])
	}
	beginDate, ok := values[8].(*big.Int)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected begin date type %T", values[8])
	}
	endDate, ok := values[9].(*big.Int)
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected end date type %T", values[9])
	}

	scope := strconv.Itoa(int(scopeCode))
	if s, known := entity.ScopeFromCode(scopeCode); known {
		scope = s.String()
	}
	return &entity.License{
		ID:             id,
		Licensor:       licensor.Hex(),
		Licensee:       licensee.Hex(),
		PriceWei:       price,
		Scope:          scope,
		Terms:          terms,
		ContentAddress: cid,
		Transferable:   transferable,
		Active:         active,
		BeginDate:      beginDate.Uint64(),
		EndDate:        endDate.Uint64(),
	}, nil
}
