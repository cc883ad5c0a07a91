package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/samber/lo"
)

type listWorksResult struct {
	Works []work `json:"works"`
}

type listWorksResponse = HttpResponse[listWorksResult]

func (h *HttpHandler) ListWorks(ctx *fiber.Ctx) (err error) {
	records, err := h.usecase.ListWorks(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during ListWorks")
	}

	return errors.WithStack(ctx.JSON(listWorksResponse{
		Result: &listWorksResult{
			Works: lo.Map(records, func(w *entity.Work, _ int) work {
				return newWork(w)
			}),
		},
	}))
}
