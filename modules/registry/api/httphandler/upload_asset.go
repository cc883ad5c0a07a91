package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type uploadAssetResult struct {
	Duplicated bool    `json:"duplicated"`
	Cid        string  `json:"cid"`
	URL        string  `json:"url,omitempty"`
	AssetID    string  `json:"imgId,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

type uploadAssetResponse = HttpResponse[uploadAssetResult]

func (h *HttpHandler) UploadAsset(ctx *fiber.Ctx) (err error) {
	path, name, cleanup, err := h.saveUpload(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	defer cleanup()

	result, err := h.usecase.Upload(ctx.UserContext(), path, name)
	if err != nil {
		return errors.Wrap(err, "error during Upload")
	}

	return errors.WithStack(ctx.JSON(uploadAssetResponse{
		Result: &uploadAssetResult{
			Duplicated: result.Duplicated,
			Cid:        result.ContentAddress,
			URL:        result.URL,
			AssetID:    result.AssetID,
			Similarity: result.Similarity,
		},
	}))
}
