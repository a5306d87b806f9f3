package handler

import (
	"github.com/deppfellow/webbrayns-backend/internal/model"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/deppfellow/webbrayns-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ConnectomeHandler struct {
	Handler
	connectome *service.ConnectomeService
}

func NewConnectomeHandler(s *server.Server, connectome *service.ConnectomeService) *ConnectomeHandler {
	return &ConnectomeHandler{Handler: NewHandler(s), connectome: connectome}
}

// EnqueueImport serves {circuitPath, file} -> {taskId, ...}.
func (h *ConnectomeHandler) EnqueueImport() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ImportConnectomeRequest) (*service.ImportTicket, error) {
		return h.connectome.EnqueueImport(c.Request().Context(), *req.CircuitPath, *req.File)
	}, func() *model.ImportConnectomeRequest { return &model.ImportConnectomeRequest{} })
}
