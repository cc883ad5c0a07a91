package api

import (
	"github.com/mintmark-network/ip-gateway/modules/registry/api/httphandler"
	"github.com/mintmark-network/ip-gateway/modules/registry/config"
	"github.com/mintmark-network/ip-gateway/modules/registry/usecase"
)

func NewHTTPHandler(conf config.Config, usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(conf, usecase)
}
