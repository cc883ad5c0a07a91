package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/config"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
	"github.com/mintmark-network/ip-gateway/pkg/logger/slogx"
	"github.com/mintmark-network/ip-gateway/pkg/retry"
)

const (
	defaultPollInterval    = 5 * time.Second
	defaultPollMaxAttempts = 60

	// gas estimation is a point-in-time approximation; broadcasting at
	// the bare estimate risks out-of-gas if execution conditions shift
	// between estimation and inclusion, so a 20% margin is added.
	gasMarginNumerator   = 120
	gasMarginDenominator = 100
)

// TxRequest describes one ledger write: which contract method to call,
// with what arguments, and which emitted event (if any) carries the
// ledger-assigned identifier to recover from the receipt.
type TxRequest struct {
	Intent    entity.TxIntent
	Contract  *Contract
	Method    string
	Args      []any
	EventName string
	Value     *big.Int
}

// Orchestrator drives a ledger write from construction through
// confirmation: estimate, add margin, sign, broadcast, poll for the
// receipt on a fixed cadence, and decode events from the result. One
// request owns one job; nothing is shared or persisted across requests.
type Orchestrator struct {
	client      Client
	key         *ecdsa.PrivateKey
	from        common.Address
	chainID     *big.Int
	explorerURL string
	policy      retry.Policy
}

func NewOrchestrator(client Client, conf config.Ledger) (*Orchestrator, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(conf.PrivateKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "can't parse signing key")
	}
	if conf.ChainID == 0 {
		return nil, errors.Wrap(errs.InvalidArgument, "ledger chain_id is required")
	}
	return &Orchestrator{
		client:      client,
		key:         key,
		from:        crypto.PubkeyToAddress(key.PublicKey),
		chainID:     big.NewInt(conf.ChainID),
		explorerURL: strings.TrimSuffix(conf.ExplorerURL, "/"),
		policy: retry.Policy{
			Interval:    utils.Default(conf.PollInterval, defaultPollInterval),
			MaxAttempts: utils.Default(conf.PollMaxAttempts, defaultPollMaxAttempts),
		},
	}, nil
}

// From returns the signing account's address.
func (o *Orchestrator) From() common.Address {
	return o.from
}

// Execute runs the request to one of its terminal states. Estimation and
// broadcast failures return synchronously as errs.LedgerCall and never
// enter the polling loop. A missing receipt after the full polling window
// is not an error: the result carries the hash and an explorer link
// because the transaction may still land later.
func (o *Orchestrator) Execute(ctx context.Context, req TxRequest) (*entity.TransactionResult, error) {
	// The job runs to a terminal state even if the caller disconnects;
	// there is no cancellation protocol for in-flight ledger writes.
	ctx = context.WithoutCancel(ctx)
	ctx = logger.WithContext(ctx, slogx.String("intent", string(req.Intent)), slogx.String("method", req.Method))

	calldata, err := req.Contract.ABI.Pack(req.Method, req.Args...)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "can't encode %s call: %s", req.Method, err)
	}
	if req.Value == nil {
		req.Value = new(big.Int)
	}

	msg := ethereum.CallMsg{
		From:  o.from,
		To:    &req.Contract.Address,
		Data:  calldata,
		Value: req.Value,
	}
	gasEstimate, err := o.client.EstimateGas(ctx, msg)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "gas estimation failed: %s", err)
	}
	gasLimit := gasEstimate * gasMarginNumerator / gasMarginDenominator
	logger.DebugContext(ctx, "estimated gas", slogx.Uint64("estimate", gasEstimate), slogx.Uint64("gasLimit", gasLimit))

	gasPrice, err := o.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "can't fetch gas price: %s", err)
	}
	nonce, err := o.client.PendingNonceAt(ctx, o.from)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "can't fetch account nonce: %s", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       &req.Contract.Address,
		Value:    req.Value,
		Data:     calldata,
	})
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(o.chainID), o.key)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "can't sign transaction: %s", err)
	}
	if err := o.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "broadcast failed: %s", err)
	}

	txHash := signedTx.Hash()
	logger.InfoContext(ctx, "transaction submitted", slogx.Stringer("txHash", txHash))

	receipt, err := o.awaitReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			logger.WarnContext(ctx, "confirmation timed out, transaction may still land", slogx.Stringer("txHash", txHash))
			return &entity.TransactionResult{
				Intent:      req.Intent,
				State:       entity.TxStateTimedOut,
				TxHash:      txHash.Hex(),
				ExplorerURL: o.ExplorerTxURL(txHash.Hex()),
			}, nil
		}
		return nil, errors.WithStack(err)
	}

	result := &entity.TransactionResult{
		Intent:      req.Intent,
		TxHash:      txHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		result.State = entity.TxStateFailed
		logger.WarnContext(ctx, "transaction reverted", slogx.Stringer("txHash", txHash))
		return result, nil
	}

	result.State = entity.TxStateSuccess
	if req.EventName != "" {
		if fields, ok := req.Contract.DecodeEventLog(req.EventName, receipt.Logs); ok {
			result.Event = fields
		} else {
			logger.WarnContext(ctx, "receipt carried no decodable event, omitting event fields",
				slogx.String("event", req.EventName), slogx.Stringer("txHash", txHash))
		}
	}
	logger.InfoContext(ctx, "transaction confirmed",
		slogx.Stringer("txHash", txHash),
		slogx.Uint64("blockNumber", result.BlockNumber),
		slogx.Uint64("gasUsed", result.GasUsed))
	return result, nil
}

// awaitReceipt polls for the receipt on the configured cadence. Receipt
// arrival is the only early exit. A transaction unknown even to the
// mempool is a soft anomaly (RPC endpoints have transient blind spots):
// logged, and polling continues. Per-attempt RPC errors are likewise
// swallowed; only exhausting every attempt ends the loop.
func (o *Orchestrator) awaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := o.policy.Poll(ctx, func(ctx context.Context, attempt int) (bool, error) {
		logger.DebugContext(ctx, "checking transaction status",
			slogx.Int("attempt", attempt),
			slogx.Int("maxAttempts", o.policy.MaxAttempts))

		found, err := o.client.TransactionReceipt(ctx, txHash)
		if err == nil && found != nil {
			receipt = found
			return true, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			logger.WarnContext(ctx, "receipt lookup failed, will retry", slogx.Error(err))
			return false, nil
		}

		if _, _, err := o.client.TransactionByHash(ctx, txHash); err != nil {
			if errors.Is(err, ethereum.NotFound) {
				logger.WarnContext(ctx, "transaction not found in mempool, continuing to poll", slogx.Stringer("txHash", txHash))
			} else {
				logger.WarnContext(ctx, "pending lookup failed, will retry", slogx.Error(err))
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return receipt, nil
}

// Call executes a read-only contract call and returns the unpacked
// outputs in declaration order.
func (o *Orchestrator) Call(ctx context.Context, contract *Contract, method string, args ...any) ([]any, error) {
	calldata, err := contract.ABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "can't encode %s call: %s", method, err)
	}
	output, err := o.client.CallContract(ctx, ethereum.CallMsg{
		From: o.from,
		To:   &contract.Address,
		Data: calldata,
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "%s call failed: %s", method, err)
	}
	values, err := contract.ABI.Unpack(method, output)
	if err != nil {
		return nil, errors.Wrapf(errs.LedgerCall, "can't decode %s output: %s", method, err)
	}
	return values, nil
}

// ExplorerTxURL returns the block explorer link for a transaction hash.
func (o *Orchestrator) ExplorerTxURL(txHash string) string {
	if o.explorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", o.explorerURL, txHash)
}
