package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

type validateLicenseRequest struct {
	User string `query:"user"`
	Cid  string `query:"cid"`
}

func (r validateLicenseRequest) Validate() error {
	var errList []error
	if !common.IsHexAddress(r.User) {
		errList = append(errList, errs.NewPublicError("user must be a valid address"))
	}
	if r.Cid == "" {
		errList = append(errList, errs.NewPublicError("cid is required"))
	}
	if len(errList) == 0 {
		return nil
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type validateLicenseResult struct {
	Valid bool `json:"valid"`
}

type validateLicenseResponse = HttpResponse[validateLicenseResult]

func (h *HttpHandler) ValidateLicense(ctx *fiber.Ctx) (err error) {
	var req validateLicenseRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	valid, err := h.usecase.ValidateLicense(ctx.UserContext(), req.User, req.Cid)
	if err != nil {
		return errors.Wrap(err, "error during ValidateLicense")
	}

	return errors.WithStack(ctx.JSON(validateLicenseResponse{
		Result: &validateLicenseResult{Valid: valid},
	}))
}
