package usecase

import (
	"context"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/modules/registry/similarity"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
	"github.com/mintmark-network/ip-gateway/pkg/logger/slogx"
)

const (
	// defaultQueryThreshold is the tight top-1 short-circuit: a match at
	// or above it skips the more expensive insert-with-check path.
	defaultQueryThreshold = 0.95

	// defaultInsertThreshold is the authoritative dedup boundary the
	// checker enforces during insertion.
	defaultInsertThreshold = 0.85
)

// UploadResult is the outcome of one publish attempt.
type UploadResult struct {
	Duplicated     bool
	ContentAddress string
	URL            string
	AssetID        string
	Similarity     float64
}

// DecideDuplicate runs the two-threshold dedup check. On a non-duplicate
// outcome the checker's index has gained exactly one entry; the method
// never retries the insert, so a single request can never insert twice.
func (u *Usecase) DecideDuplicate(ctx context.Context, imagePath string) (entity.DuplicateDecision, error) {
	queryThreshold := utils.Default(u.conf.Checker.QueryThreshold, defaultQueryThreshold)
	insertThreshold := utils.Default(u.conf.Checker.InsertThreshold, defaultInsertThreshold)

	matches, err := u.checker.Query(ctx, imagePath, 1, queryThreshold)
	if err != nil {
		return entity.DuplicateDecision{}, errors.WithStack(err)
	}
	if len(matches) > 0 && matches[0].Similarity >= queryThreshold {
		return entity.DuplicateDecision{
			IsDuplicate:    true,
			MatchedAddress: matches[0].ContentAddress,
			Similarity:     matches[0].Similarity,
		}, nil
	}

	inserted, err := u.checker.InsertWithCheck(ctx, imagePath, insertThreshold)
	if err != nil {
		return entity.DuplicateDecision{}, errors.WithStack(err)
	}
	if inserted.Status != similarity.StatusInserted {
		return entity.DuplicateDecision{
			IsDuplicate:    true,
			MatchedAddress: inserted.ExistingContentAddress,
			Similarity:     inserted.Similarity,
		}, nil
	}

	return entity.DuplicateDecision{
		IsDuplicate: false,
		AssetID:     inserted.AssetID,
	}, nil
}

// Upload publishes one asset: dedup check first, and only on a
// non-duplicate outcome pin the bytes and record the mapping. A
// duplicate response carries the existing match and commits nothing.
func (u *Usecase) Upload(ctx context.Context, imagePath string, displayName string) (*UploadResult, error) {
	decision, err := u.DecideDuplicate(ctx, imagePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if decision.IsDuplicate {
		result := &UploadResult{
			Duplicated:     true,
			ContentAddress: decision.MatchedAddress,
			Similarity:     decision.Similarity,
		}
		if decision.MatchedAddress != "" {
			result.URL = u.pinner.GatewayURL(decision.MatchedAddress)
		}
		return result, nil
	}

	contentAddress, err := u.pinner.PinFile(ctx, imagePath, displayName)
	if err != nil {
		return nil, errors.Wrap(err, "can't pin asset")
	}
	if err := u.cidMapDg.Put(ctx, decision.AssetID, contentAddress); err != nil {
		return nil, errors.Wrap(err, "can't record asset mapping")
	}

	logger.InfoContext(ctx, "asset published",
		slogx.String("assetId", decision.AssetID),
		slogx.String("cid", contentAddress))
	return &UploadResult{
		Duplicated:     false,
		ContentAddress: contentAddress,
		URL:            u.pinner.GatewayURL(contentAddress),
		AssetID:        decision.AssetID,
	}, nil
}

// SimilarAsset is one ranked similarity query result.
type SimilarAsset struct {
	ContentAddress string
	Similarity     float64
	URL            string
}

// QuerySimilar returns up to five indexed assets ranked by similarity,
// with no acceptance threshold.
func (u *Usecase) QuerySimilar(ctx context.Context, imagePath string) ([]SimilarAsset, error) {
	matches, err := u.checker.Query(ctx, imagePath, 5, 0)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	results := make([]SimilarAsset, 0, len(matches))
	for _, match := range matches {
		results = append(results, SimilarAsset{
			ContentAddress: match.ContentAddress,
			Similarity:     match.Similarity,
			URL:            u.pinner.GatewayURL(match.ContentAddress),
		})
	}
	return results, nil
}

// ListUploads returns mappings whose content address starts with a short
// substring of the owner address. This mirrors the historical filter: a
// heuristic, not a cryptographic binding between uploader and content.
func (u *Usecase) ListUploads(ctx context.Context, ownerAddress string) ([]entity.AssetRecord, error) {
	if !common.IsHexAddress(ownerAddress) {
		return nil, errors.Wrapf(errs.InvalidArgument, "invalid owner address %q", ownerAddress)
	}
	hint := ownerAddress[2:8]
	records, err := u.cidMapDg.ListByAddressHint(ctx, hint)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return records, nil
}
