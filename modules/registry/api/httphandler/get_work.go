package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
)

type getWorkRequest struct {
	ID string `params:"id"`
}

func (r getWorkRequest) Validate() error {
	if r.ID == "" {
		return errs.NewPublicError("work id is required")
	}
	return nil
}

type getWorkResponse = HttpResponse[work]

func (h *HttpHandler) GetWork(ctx *fiber.Ctx) (err error) {
	var req getWorkRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	workID, err := parseBigInt(req.ID, "work id")
	if err != nil {
		return errors.WithStack(err)
	}

	record, err := h.usecase.GetWork(ctx.UserContext(), workID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return fiber.NewError(fiber.StatusNotFound, "work not found")
		}
		return errors.Wrap(err, "error during GetWork")
	}

	resp := newWork(record)
	return errors.WithStack(ctx.JSON(getWorkResponse{
		Result: &resp,
	}))
}
