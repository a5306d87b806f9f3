package handler

import (
	"github.com/deppfellow/webbrayns-backend/internal/middleware"
	"github.com/deppfellow/webbrayns-backend/internal/model"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/deppfellow/webbrayns-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CircuitHandler serves the circuit queries. Routes are mounted behind
// middleware.RequireBraynsHost.
type CircuitHandler struct {
	Handler
	circuits *service.CircuitService
}

func NewCircuitHandler(s *server.Server, circuits *service.CircuitService) *CircuitHandler {
	return &CircuitHandler{Handler: NewHandler(s), circuits: circuits}
}

func (h *CircuitHandler) logHost(c echo.Context) {
	middleware.GetLogger(c).Debug().Str("brayns_host", middleware.GetBraynsHost(c)).Msg("circuit query")
}

func (h *CircuitHandler) ListTargets() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ListTargetsRequest) ([]string, error) {
		h.logHost(c)
		return h.circuits.ListTargets(c.Request().Context(), *req.CircuitPath)
	}, func() *model.ListTargetsRequest { return &model.ListTargetsRequest{} })
}

func (h *CircuitHandler) ListGIDs() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ListGIDsRequest) ([]string, error) {
		h.logHost(c)
		return h.circuits.ListGIDs(c.Request().Context(), *req.CircuitPath, req.Targets)
	}, func() *model.ListGIDsRequest { return &model.ListGIDsRequest{} })
}

func newConnectivityRequest() *model.ConnectivityRequest { return &model.ConnectivityRequest{} }

func (h *CircuitHandler) AfferentGIDs() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ConnectivityRequest) ([]string, error) {
		h.logHost(c)
		gids, err := model.GIDs(req.SourcesGIDs)
		if err != nil {
			return nil, err
		}
		return h.circuits.AfferentGIDs(c.Request().Context(), *req.CircuitPath, gids)
	}, newConnectivityRequest)
}

func (h *CircuitHandler) EfferentGIDs() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ConnectivityRequest) ([]string, error) {
		h.logHost(c)
		gids, err := model.GIDs(req.SourcesGIDs)
		if err != nil {
			return nil, err
		}
		return h.circuits.EfferentGIDs(c.Request().Context(), *req.CircuitPath, gids)
	}, newConnectivityRequest)
}
