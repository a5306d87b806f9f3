package handler

import (
	"github.com/deppfellow/webbrayns-backend/internal/model"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/deppfellow/webbrayns-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type FSHandler struct {
	Handler
	files *service.FileService
}

func NewFSHandler(s *server.Server, files *service.FileService) *FSHandler {
	return &FSHandler{Handler: NewHandler(s), files: files}
}

func newPathRequest() *model.PathRequest { return &model.PathRequest{} }

// ListDir serves {path} -> {path, children}.
func (h *FSHandler) ListDir() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.PathRequest) (*service.DirListing, error) {
		return h.files.ListDir(c.Request().Context(), *req.Path)
	}, newPathRequest)
}

// ReadFile serves {path} -> file content.
func (h *FSHandler) ReadFile() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.PathRequest) (string, error) {
		return h.files.ReadFile(c.Request().Context(), *req.Path)
	}, newPathRequest)
}

// Root serves {} -> {root}. The input is optional.
func (h *FSHandler) Root(c echo.Context) error {
	return JSONResponseHandler{}.Handle(c, h.files.Root())
}
