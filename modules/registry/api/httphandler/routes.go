package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1")

	r.Post("/ipfs/upload", h.UploadAsset)
	r.Post("/ipfs/similar", h.QuerySimilar)
	r.Get("/ipfs/list", h.ListUploads)

	r.Post("/ip/register", h.RegisterWork)

	r.Post("/license/create", h.CreateLicense)
	r.Post("/license/terms", h.SetTerms)
	r.Post("/license/purchase", h.PurchaseLicense)
	r.Post("/license/transfer", h.TransferLicense)
	r.Post("/license/revoke", h.RevokeLicense)
	r.Get("/license/validate", h.ValidateLicense)
	r.Get("/license/all", h.ListAllLicenses)
	r.Get("/license/user/:address", h.LicensesByUser)
	r.Get("/license/token/:tokenId", h.LicensesByToken)
	r.Get("/license/:id", h.GetLicense)

	r.Get("/oracle/price", h.GetPrice)

	r.Get("/works/list", h.ListWorks)
	r.Get("/works/:id", h.GetWork)
	return nil
}
