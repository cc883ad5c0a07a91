package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/internal/entity"
	"github.com/samber/lo"
)

type listLicensesResult struct {
	Licenses []license `json:"licenses"`
}

type listLicensesResponse = HttpResponse[listLicensesResult]

func newListLicensesResponse(records []*entity.License) listLicensesResponse {
	return listLicensesResponse{
		Result: &listLicensesResult{
			Licenses: lo.Map(records, func(l *entity.License, _ int) license {
				return newLicenseWithSecondary(l)
			}),
		},
	}
}

func (h *HttpHandler) ListAllLicenses(ctx *fiber.Ctx) (err error) {
	records, err := h.usecase.ListAllLicenses(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during ListAllLicenses")
	}
	return errors.WithStack(ctx.JSON(newListLicensesResponse(records)))
}

type licensesByUserRequest struct {
	Address string `params:"address"`
}

func (r licensesByUserRequest) Validate() error {
	if !common.IsHexAddress(r.Address) {
		return errs.NewPublicError("address must be a valid address")
	}
	return nil
}

func (h *HttpHandler) LicensesByUser(ctx *fiber.Ctx) (err error) {
	var req licensesByUserRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	records, err := h.usecase.LicensesByUser(ctx.UserContext(), req.Address)
	if err != nil {
		return errors.Wrap(err, "error during LicensesByUser")
	}
	return errors.WithStack(ctx.JSON(newListLicensesResponse(records)))
}

type licensesByTokenRequest struct {
	TokenID string `params:"tokenId"`
}

func (r licensesByTokenRequest) Validate() error {
	if r.TokenID == "" {
		return errs.NewPublicError("tokenId is required")
	}
	return nil
}

func (h *HttpHandler) LicensesByToken(ctx *fiber.Ctx) (err error) {
	var req licensesByTokenRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	tokenID, err := parseBigInt(req.TokenID, "tokenId")
	if err != nil {
		return errors.WithStack(err)
	}

	records, err := h.usecase.LicensesByToken(ctx.UserContext(), tokenID)
	if err != nil {
		return errors.Wrap(err, "error during LicensesByToken")
	}
	return errors.WithStack(ctx.JSON(newListLicensesResponse(records)))
}
