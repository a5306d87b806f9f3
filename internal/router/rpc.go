package router

import (
	"net/http"

	"github.com/deppfellow/webbrayns-backend/internal/handler"
	"github.com/deppfellow/webbrayns-backend/internal/middleware"
	"github.com/deppfellow/webbrayns-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// rpcMethods are accepted on the RPC routes: the web client sends query
// strings with GET and FormData with POST.
var rpcMethods = []string{http.MethodGet, http.MethodPost}

// rpcRoute is an RPC operation mounted under /api/v1 and, when legacy is
// set, under its historical /cgi-bin script name.
type rpcRoute struct {
	path       string
	legacy     string
	methods    []string
	handler    echo.HandlerFunc
	middleware []echo.MiddlewareFunc
}

func rpcRoutes(h *handler.Handlers, m *middleware.Middlewares, auth *service.AuthService) []rpcRoute {
	braynsHost := m.BraynsHost

	importChain := []echo.MiddlewareFunc{m.RateLimit.Limit()}
	if auth.Enabled() {
		importChain = append([]echo.MiddlewareFunc{m.Auth.RequireAuth}, importChain...)
	}

	return []rpcRoute{
		{path: "/fs/dir", legacy: "/dir.py", handler: h.FS.ListDir()},
		{path: "/fs/file", legacy: "/file-read.py", handler: h.FS.ReadFile()},
		{path: "/fs/root", handler: h.FS.Root},
		{path: "/echo", legacy: "/test.py", handler: h.Echo.Echo()},
		{
			path:       "/circuit/targets",
			legacy:     "/circuit/listTargets.py",
			handler:    h.Circuit.ListTargets(),
			middleware: []echo.MiddlewareFunc{braynsHost},
		},
		{
			path:       "/circuit/gids",
			legacy:     "/circuit/listGIDs.py",
			handler:    h.Circuit.ListGIDs(),
			middleware: []echo.MiddlewareFunc{braynsHost},
		},
		{
			path:       "/circuit/afferent-gids",
			legacy:     "/circuit/getAfferentGIDs.py",
			handler:    h.Circuit.AfferentGIDs(),
			middleware: []echo.MiddlewareFunc{braynsHost},
		},
		{
			path:       "/circuit/efferent-gids",
			legacy:     "/circuit/getEfferentGIDs.py",
			handler:    h.Circuit.EfferentGIDs(),
			middleware: []echo.MiddlewareFunc{braynsHost},
		},
		{
			path:       "/circuit/connectome/import",
			methods:    []string{http.MethodPost},
			handler:    h.Connectome.EnqueueImport(),
			middleware: importChain,
		},
		{
			path:       "/phaneron/material",
			legacy:     "/phaneron/set-material.py",
			handler:    h.Material.SetMaterial(),
			middleware: []echo.MiddlewareFunc{m.RateLimit.Limit()},
		},
	}
}

// registerRPCRoutes mounts every RPC operation. Both groups carry the RPC
// marker so failures are rendered as {code, text}.
func registerRPCRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares, auth *service.AuthService) {
	api := r.Group("/api/v1", m.RPC)
	cgi := r.Group("/cgi-bin", m.RPC)

	for _, route := range rpcRoutes(h, m, auth) {
		methods := route.methods
		if methods == nil {
			methods = rpcMethods
		}

		api.Match(methods, route.path, route.handler, route.middleware...)
		if route.legacy != "" {
			cgi.Match(methods, route.legacy, route.handler, route.middleware...)
		}
	}
}
