package usecase

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/config"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/modules/registry/ledger"
	"github.com/mintmark-network/ip-gateway/modules/registry/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwnerAddress = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"
	testPeerAddress  = "0x1111111111111111111111111111111111111111"
)

type fakeChecker struct {
	queries      int
	inserts      int
	queryMatches []similarity.Match
	insertResult similarity.InsertResult
	queryErr     error
	insertErr    error
}

func (f *fakeChecker) Query(_ context.Context, _ string, _ int, _ float64) ([]similarity.Match, error) {
	f.queries++
	return f.queryMatches, f.queryErr
}

func (f *fakeChecker) InsertWithCheck(_ context.Context, _ string, _ float64) (similarity.InsertResult, error) {
	f.inserts++
	return f.insertResult, f.insertErr
}

type fakePinner struct {
	pins int
	cid  string
	err  error
}

func (f *fakePinner) PinFile(_ context.Context, _ string, _ string) (string, error) {
	f.pins++
	return f.cid, f.err
}

func (f *fakePinner) GatewayURL(cid string) string {
	return "https://gateway.test/ipfs/" + cid
}

type fakeCidMap struct {
	puts    map[string]string
	records []entity.AssetRecord
}

func newFakeCidMap() *fakeCidMap {
	return &fakeCidMap{puts: make(map[string]string)}
}

func (f *fakeCidMap) Put(_ context.Context, assetID string, cid string) error {
	f.puts[assetID] = cid
	return nil
}

func (f *fakeCidMap) Get(_ context.Context, assetID string) (string, error) {
	cid, ok := f.puts[assetID]
	if !ok {
		return "", errors.WithStack(errs.NotFound)
	}
	return cid, nil
}

func (f *fakeCidMap) List(_ context.Context) ([]entity.AssetRecord, error) {
	return f.records, nil
}

func (f *fakeCidMap) ListByAddressHint(_ context.Context, hint string) ([]entity.AssetRecord, error) {
	var out []entity.AssetRecord
	for _, r := range f.records {
		if len(r.ContentAddress) >= len(hint) && r.ContentAddress[:len(hint)] == hint {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeOrchestrator answers reads from a per-method table and records
// every write request.
type fakeOrchestrator struct {
	mu            sync.Mutex
	executed      []ledger.TxRequest
	executeResult *entity.TransactionResult
	executeErr    error
	called        []string
	calls         map[string][]any
	callErr       map[string]error
}

func newFakeOrchestrator() *fakeOrchestrator {
	return &fakeOrchestrator{
		executeResult: &entity.TransactionResult{State: entity.TxStateSuccess, TxHash: "0xfeed"},
		calls:         make(map[string][]any),
		callErr:       make(map[string]error),
	}
}

func (f *fakeOrchestrator) Execute(_ context.Context, req ledger.TxRequest) (*entity.TransactionResult, error) {
	f.executed = append(f.executed, req)
	return f.executeResult, f.executeErr
}

func (f *fakeOrchestrator) Call(_ context.Context, _ *ledger.Contract, method string, _ ...any) ([]any, error) {
	f.mu.Lock()
	f.called = append(f.called, method)
	f.mu.Unlock()
	if err := f.callErr[method]; err != nil {
		return nil, err
	}
	values, ok := f.calls[method]
	if !ok {
		return nil, errors.Wrapf(errs.LedgerCall, "unexpected call %q", method)
	}
	return values, nil
}

func (f *fakeOrchestrator) ExplorerTxURL(txHash string) string {
	return "https://explorer.test/tx/" + txHash
}

type testDeps struct {
	checker      *fakeChecker
	pinner       *fakePinner
	cidMap       *fakeCidMap
	orchestrator *fakeOrchestrator
}

func newTestUsecase(t *testing.T) (*Usecase, *testDeps) {
	t.Helper()
	registry, err := ledger.NewContract(testPeerAddress, ledger.IPRegistryABI)
	require.NoError(t, err)
	licenseManager, err := ledger.NewContract(testPeerAddress, ledger.LicenseManagerABI)
	require.NoError(t, err)
	oracle, err := ledger.NewContract(testPeerAddress, ledger.OracleABI)
	require.NoError(t, err)

	deps := &testDeps{
		checker:      &fakeChecker{},
		pinner:       &fakePinner{cid: "QmPinned"},
		cidMap:       newFakeCidMap(),
		orchestrator: newFakeOrchestrator(),
	}
	uc := New(deps.cidMap, deps.checker, deps.pinner, deps.orchestrator, registry, licenseManager, oracle, config.Config{
		Ledger: config.Ledger{SecondaryCurrency: "AUD"},
	})
	return uc, deps
}

func TestDecideDuplicate(t *testing.T) {
	t.Run("tight top-1 match short-circuits without touching the index", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.checker.queryMatches = []similarity.Match{{AssetID: "7", ContentAddress: "QmExisting", Similarity: 0.97}}

		decision, err := uc.DecideDuplicate(context.Background(), "a.png")
		require.NoError(t, err)
		assert.True(t, decision.IsDuplicate)
		assert.Equal(t, "QmExisting", decision.MatchedAddress)
		assert.InDelta(t, 0.97, decision.Similarity, 1e-9)
		assert.Zero(t, deps.checker.inserts)
	})

	t.Run("refused insert is a duplicate carrying the existing match", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.checker.queryMatches = []similarity.Match{{ContentAddress: "QmNear", Similarity: 0.90}}
		deps.checker.insertResult = similarity.InsertResult{
			Status:                 similarity.StatusNotInserted,
			ExistingAssetID:        "3",
			ExistingContentAddress: "QmNear",
			Similarity:             0.88,
		}

		decision, err := uc.DecideDuplicate(context.Background(), "a.png")
		require.NoError(t, err)
		assert.True(t, decision.IsDuplicate)
		assert.Equal(t, "QmNear", decision.MatchedAddress)
		assert.InDelta(t, 0.88, decision.Similarity, 1e-9)
		assert.Equal(t, 1, deps.checker.inserts)
	})

	t.Run("accepted insert is a non-duplicate with the new asset id", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.checker.insertResult = similarity.InsertResult{Status: similarity.StatusInserted, AssetID: "42"}

		decision, err := uc.DecideDuplicate(context.Background(), "a.png")
		require.NoError(t, err)
		assert.False(t, decision.IsDuplicate)
		assert.Equal(t, "42", decision.AssetID)
	})

	t.Run("checker failure surfaces as collaborator unavailable", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.checker.queryErr = errors.WithStack(errs.CollaboratorUnavailable)

		_, err := uc.DecideDuplicate(context.Background(), "a.png")
		require.ErrorIs(t, err, errs.CollaboratorUnavailable)
	})
}

func TestUpload(t *testing.T) {
	t.Run("duplicate commits nothing", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.checker.queryMatches = []similarity.Match{{ContentAddress: "QmExisting", Similarity: 0.99}}

		result, err := uc.Upload(context.Background(), "a.png", "a.png")
		require.NoError(t, err)
		assert.True(t, result.Duplicated)
		assert.Equal(t, "QmExisting", result.ContentAddress)
		assert.Equal(t, "https://gateway.test/ipfs/QmExisting", result.URL)
		assert.Zero(t, deps.pinner.pins)
		assert.Empty(t, deps.cidMap.puts)
	})

	t.Run("duplicate with unmapped match has no url", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.checker.insertResult = similarity.InsertResult{
			Status:     similarity.StatusNotInserted,
			Similarity: 0.9,
		}

		result, err := uc.Upload(context.Background(), "a.png", "a.png")
		require.NoError(t, err)
		assert.True(t, result.Duplicated)
		assert.Empty(t, result.URL)
	})

	t.Run("non-duplicate pins then records the mapping", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.checker.insertResult = similarity.InsertResult{Status: similarity.StatusInserted, AssetID: "42"}

		result, err := uc.Upload(context.Background(), "a.png", "a.png")
		require.NoError(t, err)
		assert.False(t, result.Duplicated)
		assert.Equal(t, "QmPinned", result.ContentAddress)
		assert.Equal(t, "42", result.AssetID)
		assert.Equal(t, "QmPinned", deps.cidMap.puts["42"])
	})

	t.Run("pin failure leaves no mapping behind", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.checker.insertResult = similarity.InsertResult{Status: similarity.StatusInserted, AssetID: "42"}
		deps.pinner.err = errors.New("gateway down")

		_, err := uc.Upload(context.Background(), "a.png", "a.png")
		require.Error(t, err)
		assert.Empty(t, deps.cidMap.puts)
	})
}

func TestListUploads(t *testing.T) {
	uc, deps := newTestUsecase(t)
	deps.cidMap.records = []entity.AssetRecord{
		{AssetID: "1", ContentAddress: "AbCdEf111"},
		{AssetID: "2", ContentAddress: "QmOther"},
	}

	records, err := uc.ListUploads(context.Background(), testOwnerAddress)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].AssetID)

	_, err = uc.ListUploads(context.Background(), "not-an-address")
	require.ErrorIs(t, err, errs.InvalidArgument)
}

func TestRegisterWork(t *testing.T) {
	t.Run("invalid author rejected before any ledger call", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		_, err := uc.RegisterWork(context.Background(), RegisterWorkParams{
			Author: "bogus", Filename: "a.png", ContentAddr: "QmX",
		})
		require.ErrorIs(t, err, errs.InvalidArgument)
		assert.Empty(t, deps.orchestrator.executed)
	})

	t.Run("submits registerIP with a decimal unix timestamp", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		result, err := uc.RegisterWork(context.Background(), RegisterWorkParams{
			Author:      testOwnerAddress,
			Filename:    "a.png",
			ContentAddr: "QmX",
			Description: "desc",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.TxStateSuccess, result.State)

		require.Len(t, deps.orchestrator.executed, 1)
		req := deps.orchestrator.executed[0]
		assert.Equal(t, entity.IntentRegisterWork, req.Intent)
		assert.Equal(t, "registerIP", req.Method)
		assert.Equal(t, ledger.EventWorkRegistered, req.EventName)
		require.Len(t, req.Args, 8)
		timestamp, ok := req.Args[2].(string)
		require.True(t, ok)
		assert.Regexp(t, `^\d+$`, timestamp)
	})
}

func TestResolveTerms(t *testing.T) {
	tokenID := big.NewInt(5)

	t.Run("unknown scope rejected before any ledger call", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		_, err := uc.ResolveTerms(context.Background(), tokenID, "Poster")
		require.ErrorIs(t, err, errs.InvalidArgument)
		assert.Empty(t, deps.orchestrator.called)
	})

	t.Run("all-zero record means no terms set", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.orchestrator.calls["getTerms"] = []any{big.NewInt(0), big.NewInt(0), false, ""}

		_, err := uc.ResolveTerms(context.Background(), tokenID, "Print")
		require.ErrorIs(t, err, errs.NotFound)
	})

	t.Run("derives the secondary price from the oracle rate", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		// 0.05 native units at a rate of 3 per unit
		price, _ := new(big.Int).SetString("50000000000000000", 10)
		deps.orchestrator.calls["getTerms"] = []any{price, big.NewInt(3600), true, "terms text"}
		deps.orchestrator.calls["getPrice"] = []any{big.NewInt(3)}

		terms, err := uc.ResolveTerms(context.Background(), tokenID, "Print")
		require.NoError(t, err)
		assert.Equal(t, entity.ScopePrint, terms.Scope)
		assert.Equal(t, price, terms.PriceWei)
		assert.Equal(t, uint64(3600), terms.DurationSeconds)
		assert.True(t, terms.Transferable)
		assert.Equal(t, "0.15", terms.PriceSecondary.String())
	})

	t.Run("zero oracle rate is a hard error", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.orchestrator.calls["getTerms"] = []any{big.NewInt(1), big.NewInt(1), false, "t"}
		deps.orchestrator.calls["getPrice"] = []any{big.NewInt(0)}

		_, err := uc.ResolveTerms(context.Background(), tokenID, "Print")
		require.ErrorIs(t, err, errs.InvalidExchangeRate)
	})
}

func TestPurchaseLicense(t *testing.T) {
	tokenID := big.NewInt(9)

	t.Run("zero price blocks the purchase before broadcast", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.orchestrator.calls["getTerms"] = []any{big.NewInt(0), big.NewInt(10), true, "t"}
		deps.orchestrator.calls["getPrice"] = []any{big.NewInt(2)}

		_, err := uc.PurchaseLicense(context.Background(), tokenID, "Display")
		require.Error(t, err)
		var public *errs.PublicError
		assert.ErrorAs(t, err, &public)
		assert.Empty(t, deps.orchestrator.executed)
	})

	t.Run("payable value comes from the published terms", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		price := big.NewInt(1234)
		deps.orchestrator.calls["getTerms"] = []any{price, big.NewInt(10), true, "t"}
		deps.orchestrator.calls["getPrice"] = []any{big.NewInt(2)}

		_, err := uc.PurchaseLicense(context.Background(), tokenID, "Display")
		require.NoError(t, err)
		require.Len(t, deps.orchestrator.executed, 1)
		req := deps.orchestrator.executed[0]
		assert.Equal(t, "purchaseLicense", req.Method)
		assert.Equal(t, price, req.Value)
		assert.Equal(t, ledger.EventLicenseCreated, req.EventName)
	})
}

func licenseValues(transferable bool) []any {
	return []any{
		common.HexToAddress(testOwnerAddress),
		common.HexToAddress(testPeerAddress),
		big.NewInt(100),
		uint8(1),
		"terms",
		"QmX",
		transferable,
		true,
		big.NewInt(1000),
		big.NewInt(2000),
	}
}

func TestTransferLicense(t *testing.T) {
	licenseID := big.NewInt(4)

	t.Run("non-transferable license is rejected", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.orchestrator.calls["getLicense"] = licenseValues(false)

		_, err := uc.TransferLicense(context.Background(), licenseID, testPeerAddress)
		require.Error(t, err)
		var public *errs.PublicError
		assert.ErrorAs(t, err, &public)
		assert.Empty(t, deps.orchestrator.executed)
	})

	t.Run("transferable license moves to the recipient", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.orchestrator.calls["getLicense"] = licenseValues(true)

		_, err := uc.TransferLicense(context.Background(), licenseID, testPeerAddress)
		require.NoError(t, err)
		require.Len(t, deps.orchestrator.executed, 1)
		assert.Equal(t, "transferLicense", deps.orchestrator.executed[0].Method)
	})
}

func TestGetLicense(t *testing.T) {
	uc, deps := newTestUsecase(t)
	deps.orchestrator.calls["getLicense"] = licenseValues(true)

	license, err := uc.GetLicense(context.Background(), big.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, "Print", license.Scope)
	assert.Equal(t, uint64(1000), license.BeginDate)
	assert.True(t, license.Active)
}

func TestListAllLicenses(t *testing.T) {
	t.Run("hydrates records in id order with secondary prices", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.orchestrator.calls["getAllLicensesId"] = []any{[]*big.Int{big.NewInt(1), big.NewInt(2)}}
		deps.orchestrator.calls["getLicense"] = licenseValues(true)
		deps.orchestrator.calls["getPrice"] = []any{big.NewInt(2)}

		licenses, err := uc.ListAllLicenses(context.Background())
		require.NoError(t, err)
		require.Len(t, licenses, 2)
		assert.Equal(t, big.NewInt(1), licenses[0].ID)
		assert.Equal(t, big.NewInt(2), licenses[1].ID)
		assert.False(t, licenses[0].PriceSecondary.IsZero())
	})

	t.Run("unavailable oracle rate never fails the listing", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		deps.orchestrator.calls["getAllLicensesId"] = []any{[]*big.Int{big.NewInt(1)}}
		deps.orchestrator.calls["getLicense"] = licenseValues(true)

		licenses, err := uc.ListAllLicenses(context.Background())
		require.NoError(t, err)
		require.Len(t, licenses, 1)
		assert.True(t, licenses[0].PriceSecondary.IsZero())
	})
}

func TestListWorks(t *testing.T) {
	uc, deps := newTestUsecase(t)
	deps.orchestrator.calls["getAllWorks"] = []any{[]*big.Int{big.NewInt(7)}}
	deps.orchestrator.calls["getIPData"] = []any{
		common.HexToAddress(testOwnerAddress),
		"a.png",
		big.NewInt(1700000000),
		"desc",
		"QmX",
		"CC-BY",
		"AU",
		true,
	}

	works, err := uc.ListWorks(context.Background())
	require.NoError(t, err)
	require.Len(t, works, 1)
	assert.Equal(t, "a.png", works[0].Filename)
	assert.Equal(t, uint64(1700000000), works[0].RegisteredAt)
	assert.True(t, works[0].IsCommercial)
}

func TestValidateLicense(t *testing.T) {
	uc, deps := newTestUsecase(t)
	deps.orchestrator.calls["hasValidLicense"] = []any{true}

	valid, err := uc.ValidateLicense(context.Background(), testOwnerAddress, "QmX")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestCreateLicense(t *testing.T) {
	t.Run("price parses from whole native units", func(t *testing.T) {
		uc, deps := newTestUsecase(t)
		_, err := uc.CreateLicense(context.Background(), CreateLicenseParams{
			Licensor:    testOwnerAddress,
			Licensee:    testPeerAddress,
			Price:       "0.05",
			Scope:       "Display",
			ContentAddr: "QmX",
		})
		require.NoError(t, err)
		require.Len(t, deps.orchestrator.executed, 1)
		req := deps.orchestrator.executed[0]
		assert.Equal(t, "createLicense", req.Method)
		want, _ := new(big.Int).SetString("50000000000000000", 10)
		assert.Equal(t, want, req.Args[2])
		assert.Equal(t, uint8(0), req.Args[3])
	})

	t.Run("negative price rejected", func(t *testing.T) {
		uc, _ := newTestUsecase(t)
		_, err := uc.CreateLicense(context.Background(), CreateLicenseParams{
			Licensor:    testOwnerAddress,
			Licensee:    testPeerAddress,
			Price:       "-1",
			Scope:       "Display",
			ContentAddr: "QmX",
		})
		require.ErrorIs(t, err, errs.InvalidArgument)
	})
}
