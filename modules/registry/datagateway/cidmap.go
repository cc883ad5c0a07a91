package datagateway

import (
	"context"

	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
)

// CidMapDataGateway persists the mapping from checker-assigned asset ids
// to content addresses.
type CidMapDataGateway interface {
	// Put durably persists the mapping before returning. Remapping an
	// existing id is last-write-wins.
	Put(ctx context.Context, assetID string, contentAddress string) error

	// Get returns the content address for an asset id. Returns
	// errs.NotFound if the id is not mapped.
	Get(ctx context.Context, assetID string) (string, error)

	// List returns all mappings.
	List(ctx context.Context) ([]entity.AssetRecord, error)

	// ListByAddressHint returns mappings whose content address starts
	// with hint. This is the documented uploads-ownership heuristic: the
	// hint is a short substring of an owner address, not a cryptographic
	// binding, so false positives and negatives are expected.
	ListByAddressHint(ctx context.Context, hint string) ([]entity.AssetRecord, error)
}
