package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/modules/registry/usecase"
	"github.com/samber/lo"
)

type similarAsset struct {
	Cid        string  `json:"cid"`
	Similarity float64 `json:"similarity"`
	URL        string  `json:"url,omitempty"`
}

type querySimilarResult struct {
	Matches []similarAsset `json:"matches"`
}

type querySimilarResponse = HttpResponse[querySimilarResult]

func (h *HttpHandler) QuerySimilar(ctx *fiber.Ctx) (err error) {
	path, _, cleanup, err := h.saveUpload(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	defer cleanup()

	matches, err := h.usecase.QuerySimilar(ctx.UserContext(), path)
	if err != nil {
		return errors.Wrap(err, "error during QuerySimilar")
	}

	return errors.WithStack(ctx.JSON(querySimilarResponse{
		Result: &querySimilarResult{
			Matches: lo.Map(matches, func(m usecase.SimilarAsset, _ int) similarAsset {
				return similarAsset{
					Cid:        m.ContentAddress,
					Similarity: m.Similarity,
					URL:        m.URL,
				}
			}),
		},
	}))
}
