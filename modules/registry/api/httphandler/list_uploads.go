package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/samber/lo"
)

type listUploadsRequest struct {
	Address string `query:"address"`
}

func (r listUploadsRequest) Validate() error {
	if r.Address == "" {
		return errs.NewPublicError("address is required")
	}
	return nil
}

type uploadRecord struct {
	AssetID string `json:"imgId"`
	Cid     string `json:"cid"`
}

type listUploadsResult struct {
	Uploads []uploadRecord `json:"uploads"`
}

type listUploadsResponse = HttpResponse[listUploadsResult]

func (h *HttpHandler) ListUploads(ctx *fiber.Ctx) (err error) {
	var req listUploadsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	records, err := h.usecase.ListUploads(ctx.UserContext(), req.Address)
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return errs.NewPublicError("invalid address")
		}
		return errors.Wrap(err, "error during ListUploads")
	}

	return errors.WithStack(ctx.JSON(listUploadsResponse{
		Result: &listUploadsResult{
			Uploads: lo.Map(records, func(r entity.AssetRecord, _ int) uploadRecord {
				return uploadRecord{AssetID: r.AssetID, Cid: r.ContentAddress}
			}),
		},
	}))
}
