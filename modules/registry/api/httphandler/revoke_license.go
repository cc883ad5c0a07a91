package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

type revokeLicenseRequest struct {
	LicenseID string `json:"licenseId"`
}

func (r revokeLicenseRequest) Validate() error {
	if r.LicenseID == "" {
		return errs.NewPublicError("licenseId is required")
	}
	return nil
}

type revokeLicenseResponse = HttpResponse[transactionResponse]

func (h *HttpHandler) RevokeLicense(ctx *fiber.Ctx) (err error) {
	var req revokeLicenseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	licenseID, err := parseBigInt(req.LicenseID, "licenseId")
	if err != nil {
		return errors.WithStack(err)
	}

	result, err := h.usecase.RevokeLicense(ctx.UserContext(), licenseID)
	if err != nil {
		return errors.Wrap(err, "error during RevokeLicense")
	}

	resp := newTransactionResponse(result)
	return errors.WithStack(ctx.JSON(revokeLicenseResponse{
		Result: &resp,
	}))
}
