package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

type purchaseLicenseRequest struct {
	TokenID string `json:"tokenId"`
	Scope   string `json:"scope"`
}

func (r purchaseLicenseRequest) Validate() error {
	var errList []error
	if r.TokenID == "" {
		errList = append(errList, errs.NewPublicError("tokenId is required"))
	}
	if r.Scope == "" {
		errList = append(errList, errs.NewPublicError("scope is required"))
	}
	if len(errList) == 0 {
		return nil
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type purchaseLicenseResponse = HttpResponse[transactionResponse]

func (h *HttpHandler) PurchaseLicense(ctx *fiber.Ctx) (err error) {
	var req purchaseLicenseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	tokenID, err := parseBigInt(req.TokenID, "tokenId")
	if err != nil {
		return errors.WithStack(err)
	}

	result, err := h.usecase.PurchaseLicense(ctx.UserContext(), tokenID, req.Scope)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no terms set for this token and scope")
		}
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid purchase parameters")
		}
		return errors.Wrap(err, "error during PurchaseLicense")
	}

	resp := newTransactionResponse(result)
	return errors.WithStack(ctx.JSON(purchaseLicenseResponse{
		Result: &resp,
	}))
}
