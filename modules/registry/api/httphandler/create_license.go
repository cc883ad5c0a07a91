package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/usecase"
)

type createLicenseRequest struct {
	Licensor     string `json:"licensor"`
	Licensee     string `json:"licensee"`
	Price        string `json:"price"`
	Scope        string `json:"scope"`
	Terms        string `json:"terms"`
	Cid          string `json:"cid"`
	Transferable bool   `json:"transferable"`
	BeginDate    uint64 `json:"beginDate"`
	EndDate      uint64 `json:"endDate"`
}

func (r createLicenseRequest) Validate() error {
	var errList []error
	if !common.IsHexAddress(r.Licensor) {
		errList = append(errList, errs.NewPublicError("licensor must be a valid address"))
	}
	if !common.IsHexAddress(r.Licensee) {
		errList = append(errList, errs.NewPublicError("licensee must be a valid address"))
	}
	if r.Price == "" {
		errList = append(errList, errs.NewPublicError("price is required"))
	}
	if r.Scope == "" {
		errList = append(errList, errs.NewPublicError("scope is required"))
	}
	if r.Cid == "" {
		errList = append(errList, errs.NewPublicError("cid is required"))
	}
	if len(errList) == 0 {
		return nil
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createLicenseResponse = HttpResponse[transactionResponse]

func (h *HttpHandler) CreateLicense(ctx *fiber.Ctx) (err error) {
	var req createLicenseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.usecase.CreateLicense(ctx.UserContext(), usecase.CreateLicenseParams{
		Licensor:     req.Licensor,
		Licensee:     req.Licensee,
		Price:        req.Price,
		Scope:        req.Scope,
		Terms:        req.Terms,
		ContentAddr:  req.Cid,
		Transferable: req.Transferable,
		BeginDate:    req.BeginDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return errs.WithPublicMessage(err, "invalid license parameters")
		}
		return errors.Wrap(err, "error during CreateLicense")
	}

	resp := newTransactionResponse(result)
	return errors.WithStack(ctx.JSON(createLicenseResponse{
		Result: &resp,
	}))
}
