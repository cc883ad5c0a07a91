package ledger

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	sleeps int
}

func (f *fakeClock) Sleep(_ context.Context, _ time.Duration) error {
	f.sleeps++
	return nil
}

type fakeClient struct {
	gasEstimate uint64
	estimateErr error
	sendErr     error

	sentTx *types.Transaction

	receiptCalls int
	receiptFn    func(call int) (*types.Receipt, error)

	txByHashCalls int
	txByHashFn    func(call int) (*types.Transaction, bool, error)

	callContractFn func(msg ethereum.CallMsg) ([]byte, error)
}

func (f *fakeClient) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	return f.gasEstimate, f.estimateErr
}

func (f *fakeClient) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeClient) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeClient) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentTx = tx
	return nil
}

func (f *fakeClient) TransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	f.receiptCalls++
	if f.receiptFn == nil {
		return nil, ethereum.NotFound
	}
	return f.receiptFn(f.receiptCalls)
}

func (f *fakeClient) TransactionByHash(_ context.Context, _ common.Hash) (*types.Transaction, bool, error) {
	f.txByHashCalls++
	if f.txByHashFn == nil {
		return nil, true, nil
	}
	return f.txByHashFn(f.txByHashCalls)
}

func (f *fakeClient) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.callContractFn == nil {
		return nil, errors.New("unexpected CallContract")
	}
	return f.callContractFn(msg)
}

const testRegistryAddress = "0x1b5B8b2c0fD8c7a8f2A45dD8A9c2E35C11b0E0a1"

func newTestOrchestrator(t *testing.T, client Client, clock retry.Clock) *Orchestrator {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &Orchestrator{
		client:      client,
		key:         key,
		from:        crypto.PubkeyToAddress(key.PublicKey),
		chainID:     big.NewInt(11155111),
		explorerURL: "https://sepolia.etherscan.io",
		policy:      retry.Policy{Interval: 5 * time.Second, MaxAttempts: 60, Clock: clock},
	}
}

func registryContract(t *testing.T) *Contract {
	t.Helper()
	contract, err := NewContract(testRegistryAddress, IPRegistryABI)
	require.NoError(t, err)
	return contract
}

func registerRequest(contract *Contract) TxRequest {
	return TxRequest{
		Intent:    entity.IntentRegisterWork,
		Contract:  contract,
		Method:    "registerIP",
		EventName: EventWorkRegistered,
		Args: []any{
			common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"),
			"sunset.png", "1714000000", "a sunset", "QmSunset", "royalty-free", "AU", true,
		},
	}
}

// workRegisteredLog builds a receipt log that decodes to WorkRegistered.
func workRegisteredLog(t *testing.T, contract *Contract, workID int64, author common.Address, cid string) *types.Log {
	t.Helper()
	event := contract.ABI.Events[EventWorkRegistered]
	data, err := event.Inputs.NonIndexed().Pack(cid)
	require.NoError(t, err)
	return &types.Log{
		Address: contract.Address,
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(big.NewInt(workID)),
			common.BytesToHash(common.LeftPadBytes(author.Bytes(), 32)),
		},
		Data: data,
	}
}

func TestExecuteSuccessDecodesEvent(t *testing.T) {
	contract := registryContract(t)
	author := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72")

	client := &fakeClient{gasEstimate: 100_000}
	client.receiptFn = func(call int) (*types.Receipt, error) {
		if call < 3 {
			return nil, ethereum.NotFound
		}
		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(123456),
			GasUsed:     90_000,
			Logs:        []*types.Log{workRegisteredLog(t, contract, 42, author, "QmSunset")},
		}, nil
	}

	clock := &fakeClock{}
	orchestrator := newTestOrchestrator(t, client, clock)

	result, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.NoError(t, err)
	assert.Equal(t, entity.TxStateSuccess, result.State)
	assert.Equal(t, uint64(123456), result.BlockNumber)
	assert.Equal(t, uint64(90_000), result.GasUsed)
	assert.NotEmpty(t, result.TxHash)

	require.NotNil(t, result.Event)
	workID, ok := result.Event["workId"].(*big.Int)
	require.True(t, ok)
	assert.Zero(t, workID.Cmp(big.NewInt(42)))
	assert.Equal(t, author, result.Event["author"])
	assert.Equal(t, "QmSunset", result.Event["cid"])

	// two empty attempts, then the receipt: two sleeps
	assert.Equal(t, 2, clock.sleeps)
}

func TestExecuteAppliesGasMargin(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{gasEstimate: 100_000}
	client.receiptFn = func(int) (*types.Receipt, error) {
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}, nil
	}

	orchestrator := newTestOrchestrator(t, client, &fakeClock{})
	_, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.NoError(t, err)

	require.NotNil(t, client.sentTx)
	assert.Equal(t, uint64(120_000), client.sentTx.Gas())
}

func TestExecuteSuccessWithoutMatchingEvent(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{gasEstimate: 50_000}
	client.receiptFn = func(int) (*types.Receipt, error) {
		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(99),
			Logs:        []*types.Log{{Topics: []common.Hash{common.HexToHash("0xdead")}}},
		}, nil
	}

	orchestrator := newTestOrchestrator(t, client, &fakeClock{})
	result, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.NoError(t, err)
	assert.Equal(t, entity.TxStateSuccess, result.State)
	// absent fields stay absent rather than being invented
	assert.Nil(t, result.Event)
}

func TestExecuteFailedReceipt(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{gasEstimate: 50_000}
	client.receiptFn = func(int) (*types.Receipt, error) {
		return &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(77), GasUsed: 50_000}, nil
	}

	orchestrator := newTestOrchestrator(t, client, &fakeClock{})
	result, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.NoError(t, err)
	assert.Equal(t, entity.TxStateFailed, result.State)
	assert.NotEmpty(t, result.TxHash)
	assert.Nil(t, result.Event)
}

func TestExecuteTimesOutAfterAllAttempts(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{gasEstimate: 50_000}

	clock := &fakeClock{}
	orchestrator := newTestOrchestrator(t, client, clock)

	result, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.NoError(t, err, "timeout is a provisional result, not an error")
	assert.Equal(t, entity.TxStateTimedOut, result.State)
	assert.NotEmpty(t, result.TxHash)
	assert.Equal(t, "https://sepolia.etherscan.io/tx/"+result.TxHash, result.ExplorerURL)

	assert.Equal(t, 60, client.receiptCalls)
	assert.Equal(t, 59, clock.sleeps)
}

func TestExecuteEstimationFailureIsSynchronous(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{estimateErr: errors.New("execution reverted")}

	orchestrator := newTestOrchestrator(t, client, &fakeClock{})
	_, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.LedgerCall)
	assert.Nil(t, client.sentTx, "estimation failure must not broadcast")
	assert.Zero(t, client.receiptCalls, "estimation failure must not enter the polling loop")
}

func TestExecuteBroadcastFailureIsSynchronous(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{gasEstimate: 50_000, sendErr: errors.New("nonce too low")}

	orchestrator := newTestOrchestrator(t, client, &fakeClock{})
	_, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.LedgerCall)
	assert.Zero(t, client.receiptCalls)
}

func TestPollingSwallowsAttemptErrors(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{gasEstimate: 50_000}
	client.receiptFn = func(call int) (*types.Receipt, error) {
		switch call {
		case 1, 2:
			return nil, errors.New("rpc: connection reset")
		default:
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(5)}, nil
		}
	}

	orchestrator := newTestOrchestrator(t, client, &fakeClock{})
	result, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.NoError(t, err)
	assert.Equal(t, entity.TxStateSuccess, result.State)
	assert.Equal(t, 3, client.receiptCalls)
}

func TestPollingContinuesWhenTransactionUnknown(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{gasEstimate: 50_000}
	client.receiptFn = func(call int) (*types.Receipt, error) {
		if call < 4 {
			return nil, ethereum.NotFound
		}
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(9)}, nil
	}
	// the endpoint claims the transaction does not exist at all; that is
	// a transient blind spot, not a terminal condition
	client.txByHashFn = func(int) (*types.Transaction, bool, error) {
		return nil, false, ethereum.NotFound
	}

	orchestrator := newTestOrchestrator(t, client, &fakeClock{})
	result, err := orchestrator.Execute(context.Background(), registerRequest(contract))
	require.NoError(t, err)
	assert.Equal(t, entity.TxStateSuccess, result.State)
	assert.Equal(t, 3, client.txByHashCalls)
}

func TestExecuteRunsToTerminalStateAfterCallerDisconnect(t *testing.T) {
	contract := registryContract(t)
	client := &fakeClient{gasEstimate: 50_000}
	client.receiptFn = func(call int) (*types.Receipt, error) {
		if call < 2 {
			return nil, ethereum.NotFound
		}
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(3)}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // caller already gone

	orchestrator := newTestOrchestrator(t, client, &fakeClock{})
	result, err := orchestrator.Execute(ctx, registerRequest(contract))
	require.NoError(t, err)
	assert.Equal(t, entity.TxStateSuccess, result.State)
}
