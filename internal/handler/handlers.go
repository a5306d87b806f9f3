package handler

import (
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/deppfellow/webbrayns-backend/internal/service"
)

// Handlers groups all HTTP handlers so the router receives a single value.
type Handlers struct {
	Health     *HealthHandler
	OpenAPI    *OpenAPIHandler
	FS         *FSHandler
	Circuit    *CircuitHandler
	Connectome *ConnectomeHandler
	Material   *MaterialHandler
	Echo       *EchoHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s),
		OpenAPI:    NewOpenAPIHandler(s),
		FS:         NewFSHandler(s, services.File),
		Circuit:    NewCircuitHandler(s, services.Circuit),
		Connectome: NewConnectomeHandler(s, services.Connectome),
		Material:   NewMaterialHandler(s, services.Material),
		Echo:       NewEchoHandler(s),
	}
}
