package ledger

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

// Contract is a deployed contract handle: its address plus parsed ABI.
type Contract struct {
	Address common.Address
	ABI     abi.ABI
}

// NewContract parses a checksummed or plain hex address and an ABI
// definition. Address validation happens here, before any network use.
func NewContract(address string, abiJSON string) (*Contract, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.Wrapf(errs.InvalidArgument, "invalid contract address %q", address)
	}
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, errors.Wrap(err, "can't parse contract ABI")
	}
	return &Contract{
		Address: common.HexToAddress(address),
		ABI:     parsed,
	}, nil
}

// DecodeEventLog scans receipt logs for the first one that decodes to the
// named event and returns its fields. Multiple logs with the same event
// are not expected; only the first is surfaced. Returns false when no log
// matches, which callers translate to absent event fields, never invented
// ones.
func (c *Contract) DecodeEventLog(name string, logs []*types.Log) (map[string]any, bool) {
	event, ok := c.ABI.Events[name]
	if !ok {
		return nil, false
	}
	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}
		fields := make(map[string]any)
		if len(log.Data) > 0 {
			if err := c.ABI.UnpackIntoMap(fields, name, log.Data); err != nil {
				continue
			}
		}
		var indexed abi.Arguments
		for _, arg := range event.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		if len(indexed) > 0 {
			if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
				continue
			}
		}
		return fields, true
	}
	return nil, false
}

// Contract interface definitions for the three collaborating contracts.
// The ABIs mirror the deployed Solidity interfaces; scopes travel as the
// uint8 codes bound in the entity enumeration.
const (
	IPRegistryABI = `[
		{"type":"function","name":"registerIP","stateMutability":"nonpayable","inputs":[{"name":"author","type":"address"},{"name":"filename","type":"string"},{"name":"timestamp","type":"string"},{"name":"description","type":"string"},{"name":"cid","type":"string"},{"name":"licenseType","type":"string"},{"name":"location","type":"string"},{"name":"isCommercial","type":"bool"}],"outputs":[]},
		{"type":"function","name":"getAllWorks","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
		{"type":"function","name":"getIPData","stateMutability":"view","inputs":[{"name":"workId","type":"uint256"}],"outputs":[{"name":"author","type":"address"},{"name":"filename","type":"string"},{"name":"registeredAt","type":"uint256"},{"name":"description","type":"string"},{"name":"cid","type":"string"},{"name":"licenseType","type":"string"},{"name":"location","type":"string"},{"name":"isCommercial","type":"bool"}]},
		{"type":"event","name":"WorkRegistered","anonymous":false,"inputs":[{"name":"workId","type":"uint256","indexed":true},{"name":"author","type":"address","indexed":true},{"name":"cid","type":"string","indexed":false}]}
	]`

	LicenseManagerABI = `[
		{"type":"function","name":"createLicense","stateMutability":"nonpayable","inputs":[{"name":"licensor","type":"address"},{"name":"licensee","type":"address"},{"name":"price","type":"uint256"},{"name":"scope","type":"uint8"},{"name":"terms","type":"string"},{"name":"cid","type":"string"},{"name":"transferable","type":"bool"},{"name":"beginDate","type":"uint256"},{"name":"endDate","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"setTerms","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"scope","type":"uint8"},{"name":"price","type":"uint256"},{"name":"duration","type":"uint256"},{"name":"transferable","type":"bool"},{"name":"terms","type":"string"}],"outputs":[]},
		{"type":"function","name":"getTerms","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"},{"name":"scope","type":"uint8"}],"outputs":[{"name":"price","type":"uint256"},{"name":"duration","type":"uint256"},{"name":"transferable","type":"bool"},{"name":"terms","type":"string"}]},
		{"type":"function","name":"purchaseLicense","stateMutability":"payable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"scope","type":"uint8"}],"outputs":[]},
		{"type":"function","name":"transferLicense","stateMutability":"nonpayable","inputs":[{"name":"licenseId","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
		{"type":"function","name":"revokeLicense","stateMutability":"nonpayable","inputs":[{"name":"licenseId","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"hasValidLicense","stateMutability":"view","inputs":[{"name":"user","type":"address"},{"name":"cid","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
		{"type":"function","name":"getLicense","stateMutability":"view","inputs":[{"name":"licenseId","type":"uint256"}],"outputs":[{"name":"licensor","type":"address"},{"name":"licensee","type":"address"},{"name":"price","type":"uint256"},{"name":"scope","type":"uint8"},{"name":"terms","type":"string"},{"name":"cid","type":"string"},{"name":"transferable","type":"bool"},{"name":"active","type":"bool"},{"name":"beginDate","type":"uint256"},{"name":"endDate","type":"uint256"}]},
		{"type":"function","name":"getAllLicensesId","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
		{"type":"function","name":"getLicensesByLicensee","stateMutability":"view","inputs":[{"name":"licensee","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
		{"type":"function","name":"getLicensesByTokenId","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"uint256[]"}]},
		{"type":"event","name":"LicenseCreated","anonymous":false,"inputs":[{"name":"licenseId","type":"uint256","indexed":true},{"name":"licensor","type":"address","indexed":true},{"name":"licensee","type":"address","indexed":true}]}
	]`

	OracleABI = `[
		{"type":"function","name":"getPrice","stateMutability":"view","inputs":[{"name":"currency","type":"string"}],"outputs":[{"name":"","type":"int256"}]}
	]`
)

// Event names decoded from receipts.
const (
	EventWorkRegistered = "WorkRegistered"
	EventLicenseCreated = "LicenseCreated"
)
