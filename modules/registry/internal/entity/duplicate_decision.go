package entity

// DuplicateDecision is the outcome of the two-threshold dedup check for a
// single upload. It is shaped per request and never persisted.
type DuplicateDecision struct {
	IsDuplicate bool

	// MatchedAddress and Similarity describe the nearest existing asset
	// when IsDuplicate is true. The checker may report "Unknown CID" for
	// assets it indexed before their address was mapped.
	MatchedAddress string
	Similarity     float64

	// AssetID is the checker-assigned id of the newly indexed asset.
	// Present only when IsDuplicate is false.
	AssetID string
}
