package httphandler

import (
	"math/big"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/config"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/mintmark-network/ip-gateway/modules/registry/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	conf    config.Config
}

func New(conf config.Config, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		conf:    conf,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

// saveUpload writes the request's "file" part to a temp file and returns
// its path with a cleanup func. The similarity checker and the pinning
// client both want a file path, not a stream.
func (h *HttpHandler) saveUpload(ctx *fiber.Ctx) (path string, name string, cleanup func(), err error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return "", "", nil, errs.NewPublicError("file is required")
	}

	dir := h.conf.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path = filepath.Join(dir, uuid.NewString()+filepath.Ext(fileHeader.Filename))
	if err := ctx.SaveFile(fileHeader, path); err != nil {
		return "", "", nil, errors.Wrap(err, "can't save uploaded file")
	}
	return path, fileHeader.Filename, func() { _ = os.Remove(path) }, nil
}

func parseBigInt(s string, field string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errs.NewPublicError("invalid " + field)
	}
	return v, nil
}

// transactionResponse is the wire shape of a terminal ledger outcome.
type transactionResponse struct {
	Status      string         `json:"status"`
	TxHash      string         `json:"txHash"`
	BlockNumber uint64         `json:"blockNumber,omitempty"`
	GasUsed     uint64         `json:"gasUsed,omitempty"`
	Event       map[string]any `json:"event,omitempty"`
	ExplorerURL string         `json:"explorerUrl,omitempty"`
}

func newTransactionResponse(result *entity.TransactionResult) transactionResponse {
	return transactionResponse{
		Status:      string(result.State),
		TxHash:      result.TxHash,
		BlockNumber: result.BlockNumber,
		GasUsed:     result.GasUsed,
		Event:       result.Event,
		ExplorerURL: result.ExplorerURL,
	}
}

// license is the wire shape of one license record.
type license struct {
	ID             string `json:"id"`
	Licensor       string `json:"licensor"`
	Licensee       string `json:"licensee"`
	PriceWei       string `json:"priceWei"`
	Scope          string `json:"scope"`
	Terms          string `json:"terms"`
	ContentAddress string `json:"cid"`
	Transferable   bool   `json:"transferable"`
	Active         bool   `json:"active"`
	BeginDate      uint64 `json:"beginDate"`
	EndDate        uint64 `json:"endDate"`
	PriceSecondary string `json:"priceSecondary,omitempty"`
}

func newLicense(l *entity.License) license {
	return license{
		ID:             l.ID.String(),
		Licensor:       l.Licensor,
		Licensee:       l.Licensee,
		PriceWei:       l.PriceWei.String(),
		Scope:          l.Scope,
		Terms:          l.Terms,
		ContentAddress: l.ContentAddress,
		Transferable:   l.Transferable,
		Active:         l.Active,
		BeginDate:      l.BeginDate,
		EndDate:        l.EndDate,
	}
}

func newLicenseWithSecondary(l *entity.License) license {
	out := newLicense(l)
	if !l.PriceSecondary.IsZero() {
		out.PriceSecondary = l.PriceSecondary.String()
	}
	return out
}

// work is the wire shape of one registered work.
type work struct {
	ID             string `json:"id"`
	Author         string `json:"author"`
	Filename       string `json:"filename"`
	Description    string `json:"description"`
	ContentAddress string `json:"cid"`
	LicenseType    string `json:"licenseType"`
	Location       string `json:"location"`
	IsCommercial   bool   `json:"isCommercial"`
	RegisteredAt   uint64 `json:"registeredAt"`
}

func newWork(w *entity.Work) work {
	return work{
		ID:             w.ID.String(),
		Author:         w.Author,
		Filename:       w.Filename,
		Description:    w.Description,
		ContentAddress: w.ContentAddress,
		LicenseType:    w.LicenseType,
		Location:       w.Location,
		IsCommercial:   w.IsCommercial,
		RegisteredAt:   w.RegisteredAt,
	}
}
