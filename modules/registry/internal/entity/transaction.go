package entity

// TxIntent names the ledger write a transaction job carries out.
type TxIntent string

const (
	IntentRegisterWork    = TxIntent("RegisterWork")
	IntentCreateLicense   = TxIntent("CreateLicense")
	IntentSetTerms        = TxIntent("SetTerms")
	IntentPurchaseLicense = TxIntent("PurchaseLicense")
	IntentTransferLicense = TxIntent("TransferLicense")
	IntentRevokeLicense   = TxIntent("RevokeLicense")
)

// TxState is the terminal state of a transaction job. Jobs that fail
// before broadcast never produce a result; those errors surface directly.
type TxState string

const (
	// TxStateSuccess means a receipt arrived with a success status.
	TxStateSuccess = TxState("success")

	// TxStateFailed means a receipt arrived with a failure status.
	TxStateFailed = TxState("failed")

	// TxStateTimedOut means no receipt arrived within the polling window.
	// The transaction may still land later; the result carries the hash
	// and an explorer link so the caller can check.
	TxStateTimedOut = TxState("timeout")
)

// TransactionResult is the terminal outcome of one ledger write, shaped
// for the response. It is owned by a single request and never persisted.
type TransactionResult struct {
	Intent      TxIntent
	State       TxState
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64

	// Event holds the decoded fields of the first receipt log matching
	// the job's expected event name. Nil when the receipt carried no
	// such event or on failure/timeout.
	Event map[string]any

	// ExplorerURL points at the transaction on a block explorer. Set on
	// timeout so the caller can check the outcome later.
	ExplorerURL string
}
