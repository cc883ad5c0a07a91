package entity

import (
	"math/big"
	"testing"

	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLicenseScope(t *testing.T) {
	testcases := []struct {
		input string
		scope LicenseScope
		code  uint8
	}{
		{"Display", ScopeDisplay, 0},
		{"Print", ScopePrint, 1},
		{"CommercialWeb", ScopeCommercialWeb, 2},
		{"NFTRemix", ScopeNFTRemix, 3},
		{"SocialMedia", ScopeSocialMedia, 4},
		{"ResaleRights", ScopeResaleRights, 5},
	}
	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			scope, err := ParseLicenseScope(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.scope, scope)
			assert.Equal(t, tc.code, scope.Code())
		})
	}
}

func TestParseLicenseScopeRejectsUnknown(t *testing.T) {
	for _, input := range []string{"Poster", "", "display", "Display "} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseLicenseScope(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.InvalidArgument)
		})
	}
}

func TestLicenseTermsIsForSale(t *testing.T) {
	assert.False(t, LicenseTerms{}.IsForSale())
	assert.False(t, LicenseTerms{PriceWei: big.NewInt(0)}.IsForSale())
	assert.True(t, LicenseTerms{PriceWei: big.NewInt(1)}.IsForSale())
}
