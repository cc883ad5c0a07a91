package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

type getPriceRequest struct {
	Currency string `query:"currency"`
}

func (r getPriceRequest) Validate() error {
	if r.Currency == "" {
		return errs.NewPublicError("currency is required")
	}
	return nil
}

type getPriceResult struct {
	Currency string `json:"currency"`
	Rate     string `json:"rate"`
}

type getPriceResponse = HttpResponse[getPriceResult]

func (h *HttpHandler) GetPrice(ctx *fiber.Ctx) (err error) {
	var req getPriceRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	rate, err := h.usecase.GetPrice(ctx.UserContext(), req.Currency)
	if err != nil {
		return errors.Wrap(err, "error during GetPrice")
	}

	return errors.WithStack(ctx.JSON(getPriceResponse{
		Result: &getPriceResult{
			Currency: req.Currency,
			Rate:     rate.String(),
		},
	}))
}
