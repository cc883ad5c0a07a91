package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// LicenseTerms is the ledger-owned terms record for one (token, scope)
// pair. It is read through the license manager contract and never cached
// beyond a single request.
type LicenseTerms struct {
	TokenID         *big.Int
	Scope           LicenseScope
	PriceWei        *big.Int
	DurationSeconds uint64
	Transferable    bool
	LegalTerms      string

	// PriceSecondary is the display price in the configured secondary
	// currency, derived from the oracle rate. Never stored.
	PriceSecondary decimal.Decimal
}

// IsForSale reports whether a license can be purchased under these terms.
func (t LicenseTerms) IsForSale() bool {
	return t.PriceWei != nil && t.PriceWei.Sign() > 0
}
