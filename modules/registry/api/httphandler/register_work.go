package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/mintmark-network/ip-gateway/common/errs"
	"github.com/mintmark-network/ip-gateway/modules/registry/usecase"
)

type registerWorkRequest struct {
	Author       string `json:"author"`
	Filename     string `json:"filename"`
	Description  string `json:"description"`
	Cid          string `json:"cid"`
	LicenseType  string `json:"licenseType"`
	Location     string `json:"location"`
	IsCommercial bool   `json:"isCommercial"`
}

func (r registerWorkRequest) Validate() error {
	var errList []error
	if !common.IsHexAddress(r.Author) {
		errList = append(errList, errs.NewPublicError("author must be a valid address"))
	}
	if r.Filename == "" {
		errList = append(errList, errs.NewPublicError("filename is required"))
	}
	if r.Cid == "" {
		errList = append(errList, errs.NewPublicError("cid is required"))
	}
	if len(errList) == 0 {
		return nil
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type registerWorkResponse = HttpResponse[transactionResponse]

func (h *HttpHandler) RegisterWork(ctx *fiber.Ctx) (err error) {
	var req registerWorkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.usecase.RegisterWork(ctx.UserContext(), usecase.RegisterWorkParams{
		Author:       req.Author,
		Filename:     req.Filename,
		Description:  req.Description,
		ContentAddr:  req.Cid,
		LicenseType:  req.LicenseType,
		Location:     req.Location,
		IsCommercial: req.IsCommercial,
	})
	if err != nil {
		return errors.Wrap(err, "error during RegisterWork")
	}

	resp := newTransactionResponse(result)
	return errors.WithStack(ctx.JSON(registerWorkResponse{
		Result: &resp,
	}))
}
