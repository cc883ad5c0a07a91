package similarity

import "context"

// Match is one ranked result from a similarity query.
type Match struct {
	AssetID        string
	ContentAddress string
	Similarity     float64
}

// InsertStatus is the checker's verdict on an insert-with-check call.
type InsertStatus string

const (
	StatusInserted    = InsertStatus("inserted")
	StatusNotInserted = InsertStatus("not_inserted")
)

// InsertResult is the outcome of an insert-with-check call. When the
// checker refuses the insert it reports the existing near-duplicate; its
// content address may be "Unknown CID" for assets indexed before they
// were mapped.
type InsertResult struct {
	Status InsertStatus

	// AssetID is the id assigned to the newly indexed asset. Set only
	// when Status is StatusInserted.
	AssetID string

	// ExistingAssetID, ExistingContentAddress and Similarity describe
	// the near-duplicate that blocked the insert.
	ExistingAssetID        string
	ExistingContentAddress string
	Similarity             float64
}

// Client is the capability interface over the similarity engine. The
// engine runs out of process today; hiding the process boundary here lets
// an in-process reimplementation drop in later.
type Client interface {
	// Query returns up to topN indexed assets with similarity at or
	// above threshold, ranked by similarity descending.
	Query(ctx context.Context, imagePath string, topN int, threshold float64) ([]Match, error)

	// InsertWithCheck indexes the image unless the checker itself finds
	// a near-duplicate above threshold. Exactly one index mutation
	// happens on success; callers must not retry on their own.
	InsertWithCheck(ctx context.Context, imagePath string, threshold float64) (InsertResult, error)
}
