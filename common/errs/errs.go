package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when input fails local validation
	// before any network call is attempted.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned for configuration values outside the
	// supported set.
	Unsupported = ErrorKind("Unsupported")

	// CollaboratorUnavailable is returned when the similarity checker
	// process fails to start, exits non-zero, or produces unparsable
	// output. No side effects have been committed when this is returned.
	CollaboratorUnavailable = ErrorKind("Similarity Checker Unavailable")

	// LedgerCall is returned for gas estimation, broadcast and RPC read
	// failures. No retry is attempted at this layer.
	LedgerCall = ErrorKind("Ledger Call Failed")

	// InvalidExchangeRate is returned when the price oracle reports a
	// conversion rate of exactly zero. A derived zero price would be
	// indistinguishable from "free" to a purchaser, so it is a hard
	// error rather than a zero result.
	InvalidExchangeRate = ErrorKind("Invalid Exchange Rate")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
