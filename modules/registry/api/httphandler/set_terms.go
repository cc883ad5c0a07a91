package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/usecase"
)

type setTermsRequest struct {
	TokenID         string `json:"tokenId"`
	Scope           string `json:"scope"`
	Price           string `json:"price"`
	DurationSeconds uint64 `json:"duration"`
	Transferable    bool   `json:"transferable"`
	Terms           string `json:"terms"`
}

func (r setTermsRequest) Validate() error {
	var errList []error
	if r.TokenID == "" {
		errList = append(errList, errs.NewPublicError("tokenId is required"))
	}
	if r.Scope == "" {
		errList = append(errList, errs.NewPublicError("scope is required"))
	}
	if r.Price == "" {
		errList = append(errList, errs.NewPublicError("price is required"))
	}
	if len(errList) == 0 {
		return nil
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type setTermsResponse = HttpResponse[transactionResponse]

func (h *HttpHandler) SetTerms(ctx *fiber.Ctx) (err error) {
	var req setTermsRequest
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

	result, err := h.usecase.SetTerms(ctx.UserContext(), usecase.SetTermsParams{
		TokenID:         tokenID,
		Scope:           req.Scope,
		Price:           req.Price,
		DurationSeconds: req.DurationSeconds,
		Transferable:    req.Transferable,
		Terms:           req.Terms,
	})
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid terms parameters")
		}
		return errors.Wrap(err, "error during SetTerms")
	}

	resp := newTransactionResponse(result)
	return errors.WithStack(ctx.JSON(setTermsResponse{
		Result: &resp,
	}))
}
