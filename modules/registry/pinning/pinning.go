package pinning

import "context"

// Pinner is the content-addressable storage gateway: it accepts a byte
// stream and returns the content address it pinned.
type Pinner interface {
	// PinFile pins the file at path under the given display name and
	// returns its content address.
	PinFile(ctx context.Context, path string, displayName string) (string, error)

	// GatewayURL returns the public retrieval URL for a content address.
	GatewayURL(contentAddress string) string
}
