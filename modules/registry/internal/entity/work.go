package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Work is a registered creative work as stored by the registry contract.
type Work struct {
	ID             *big.Int
	Author         string
	Filename       string
	Description    string
	ContentAddress string
	LicenseType    string
	Location       string
	IsCommercial   bool
	RegisteredAt   uint64
}

// License is a license record as stored by the license manager contract.
type License struct {
	ID             *big.Int
	Licensor       string
	Licensee       string
	PriceWei       *big.Int
	Scope          string
	Terms          string
	ContentAddress string
	Transferable   bool
	Active         bool
	BeginDate      uint64
	EndDate        uint64

	// PriceSecondary is the display price in the configured secondary
	// currency. Zero when no oracle rate was available at read time;
	// list reads never fail on a missing rate.
	PriceSecondary decimal.Decimal
}
