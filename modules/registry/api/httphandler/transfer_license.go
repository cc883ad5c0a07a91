package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

type transferLicenseRequest struct {
	LicenseID string `json:"licenseId"`
	To        string `json:"to"`
}

func (r transferLicenseRequest) Validate() error {
	var errList []error
	if r.LicenseID == "" {
		errList = append(errList, errs.NewPublicError("licenseId is required"))
	}
	if !common.IsHexAddress(r.To) {
		errList = append(errList, errs.NewPublicError("to must be a valid address"))
	}
	if len(errList) == 0 {
		return nil
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type transferLicenseResponse = HttpResponse[transactionResponse]

func (h *HttpHandler) TransferLicense(ctx *fiber.Ctx) (err error) {
	var req transferLicenseRequest
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

	result, err := h.usecase.TransferLicense(ctx.UserContext(), licenseID, req.To)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return fiber.NewError(fiber.StatusNotFound, "license not found")
		}
		return errors.Wrap(err, "error during TransferLicense")
	}

	resp := newTransactionResponse(result)
	return errors.WithStack(ctx.JSON(transferLicenseResponse{
		Result: &resp,
	}))
}
