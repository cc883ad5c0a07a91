package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContractRejectsBadAddress(t *testing.T) {
	_, err := NewContract("not-an-address", IPRegistryABI)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.InvalidArgument)
}

func TestContractABIsParse(t *testing.T) {
	for name, abiJSON := range map[string]string{
		"registry":        IPRegistryABI,
		"license_manager": LicenseManagerABI,
		"oracle":          OracleABI,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewContract(testRegistryAddress, abiJSON)
			assert.NoError(t, err)
		})
	}
}

func TestDecodeEventLogFirstMatchWins(t *testing.T) {
	contract := registryContract(t)
	author := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72")

	logs := []*types.Log{
		{Topics: []common.Hash{common.HexToHash("0xbeef")}}, // unrelated
		workRegisteredLog(t, contract, 1, author, "QmFirst"),
		workRegisteredLog(t, contract, 2, author, "QmSecond"),
	}

	fields, ok := contract.DecodeEventLog(EventWorkRegistered, logs)
	require.True(t, ok)
	workID := fields["workId"].(*big.Int)
	assert.Zero(t, workID.Cmp(big.NewInt(1)))
	assert.Equal(t, "QmFirst", fields["cid"])
}

func TestDecodeEventLogNoMatch(t *testing.T) {
	contract := registryContract(t)

	fields, ok := contract.DecodeEventLog(EventWorkRegistered, []*types.Log{
		{Topics: []common.Hash{common.HexToHash("0xbeef")}},
		nil,
	})
	assert.False(t, ok)
	assert.Nil(t, fields)
}

func TestDecodeEventLogUnknownEventName(t *testing.T) {
	contract := registryContract(t)

	_, ok := contract.DecodeEventLog("NoSuchEvent", nil)
	assert.False(t, ok)
}
