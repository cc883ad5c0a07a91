package cidmapfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/datagateway"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/pkg/logger"
	"github.com/mintmark-network/ip-gateway/pkg/logger/slogx"
)

// Repository stores the id-to-content-address map as a single JSON object
// on disk, rewritten in full on every Put. A malformed file is treated as
// an empty store rather than a fatal error; availability wins over the
// lost mappings, and the next Put rewrites a well-formed file.
type Repository struct {
	path string

	// mu serializes read-merge-write cycles so a Put is atomic from the
	// point of view of other goroutines. Concurrent Puts for the same
	// key resolve last-write-wins.
	mu sync.Mutex
}

var _ datagateway.CidMapDataGateway = (*Repository)(nil)

func New(path string) *Repository {
	return &Repository{path: path}
}

func (r *Repository) Put(ctx context.Context, assetID string, contentAddress string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cidMap := r.read(ctx)
	cidMap[assetID] = contentAddress

	data, err := json.MarshalIndent(cidMap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "can't marshal cid map")
	}

	// Write to a temp file in the same directory and rename over the
	// target so readers never observe a partially written map.
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "can't create temp cid map file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "can't write cid map")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "can't sync cid map")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "can't close cid map")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return errors.Wrap(err, "can't replace cid map")
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, assetID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cidMap := r.read(ctx)
	addr, ok := cidMap[assetID]
	if !ok {
		return "", errors.Wrapf(errs.NotFound, "asset id %q is not mapped", assetID)
	}
	return addr, nil
}

func (r *Repository) List(ctx context.Context) ([]entity.AssetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return recordsOf(r.read(ctx)), nil
}

func (r *Repository) ListByAddressHint(ctx context.Context, hint string) ([]entity.AssetRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := recordsOf(r.read(ctx))
	filtered := records[:0]
	for _, record := range records {
		if strings.HasPrefix(record.ContentAddress, hint) {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

// read loads the current map. A missing file is an empty store; a corrupt
// file is reset to empty to keep the service available.
func (r *Repository) read(ctx context.Context) map[string]string {
	cidMap := make(map[string]string)
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WarnContext(ctx, "can't read cid map file, treating as empty", slogx.String("path", r.path), slogx.Error(err))
		}
		return cidMap
	}
	if err := json.Unmarshal(data, &cidMap); err != nil {
		logger.WarnContext(ctx, "cid map file is corrupt, resetting to empty", slogx.String("path", r.path), slogx.Error(err))
		return make(map[string]string)
	}
	return cidMap
}

func recordsOf(cidMap map[string]string) []entity.AssetRecord {
	records := make([]entity.AssetRecord, 0, len(cidMap))
	for id, addr := range cidMap {
		records = append(records, entity.AssetRecord{AssetID: id, ContentAddress: addr})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].AssetID < records[j].AssetID })
	return records
}
