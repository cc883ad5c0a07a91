package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

type getLicenseRequest struct {
	ID string `params:"id"`
}

func (r getLicenseRequest) Validate() error {
	if r.ID == "" {
		return errs.NewPublicError("license id is required")
	}
	return nil
}

type getLicenseResponse = HttpResponse[license]

func (h *HttpHandler) GetLicense(ctx *fiber.Ctx) (err error) {
	var req getLicenseRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	licenseID, err := parseBigInt(req.ID, "license id")
	if err != nil {
		return errors.WithStack(err)
	}

	record, err := h.usecase.GetLicense(ctx.UserContext(), licenseID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return fiber.NewError(fiber.StatusNotFound, "license not found")
		}
		return errors.Wrap(err, "error during GetLicense")
	}

	resp := newLicense(record)
	return errors.WithStack(ctx.JSON(getLicenseResponse{
		Result: &resp,
	}))
}
