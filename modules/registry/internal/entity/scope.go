package entity

import (
	"github.com/cockroachdb/errors"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

// LicenseScope is the closed set of licensing-use categories understood by
// the license manager contract. Any other scope string is rejected before
// a ledger call is attempted.
type LicenseScope string

const (
	ScopeDisplay       = LicenseScope("Display")
	ScopePrint         = LicenseScope("Print")
	ScopeCommercialWeb = LicenseScope("CommercialWeb")
	ScopeNFTRemix      = LicenseScope("NFTRemix")
	ScopeSocialMedia   = LicenseScope("SocialMedia")
	ScopeResaleRights  = LicenseScope("ResaleRights")
)

// scopeCodes binds each scope to the stable uint8 code the contract uses.
var scopeCodes = map[LicenseScope]uint8{
	ScopeDisplay:       0,
	ScopePrint:         1,
	ScopeCommercialWeb: 2,
	ScopeNFTRemix:      3,
	ScopeSocialMedia:   4,
	ScopeResaleRights:  5,
}

// ParseLicenseScope validates a scope string against the closed enumeration.
func ParseLicenseScope(s string) (LicenseScope, error) {
	scope := LicenseScope(s)
	if _, ok := scopeCodes[scope]; !ok {
		return "", errors.Wrapf(errs.InvalidArgument, "unknown license scope %q", s)
	}
	return scope, nil
}

// ScopeFromCode maps a ledger-side code back to its scope name.
func ScopeFromCode(code uint8) (LicenseScope, bool) {
	for scope, c := range scopeCodes {
		if c == code {
			return scope, true
		}
	}
	return "", false
}

// Code returns the ledger-side enumerated code for the scope.
func (s LicenseScope) Code() uint8 {
	return scopeCodes[s]
}

func (s LicenseScope) String() string {
	return string(s)
}
