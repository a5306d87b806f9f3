package handler

import (
	"github.com/deppfellow/webbrayns-backend/internal/model"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/deppfellow/webbrayns-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type MaterialHandler struct {
	Handler
	materials *service.MaterialService
}

func NewMaterialHandler(s *server.Server, materials *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{Handler: NewHandler(s), materials: materials}
}

// SetMaterial serves the Phaneron material change and answers true.
func (h *MaterialHandler) SetMaterial() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.SetMaterialRequest) (bool, error) {
		err := h.materials.SetMaterial(c.Request().Context(), service.SetMaterialInput{
			Host:         *req.Host,
			ModelID:      *req.ModelID,
			MaterialID:   *req.MaterialID,
			DiffuseColor: req.DiffuseColor,
			ShadingMode:  *req.ShadingMode,
			Glossiness:   req.Glossiness,
			Opacity:      req.Opacity,
		})
		if err != nil {
			return false, err
		}
		return true, nil
	}, func() *model.SetMaterialRequest { return &model.SetMaterialRequest{} })
}
