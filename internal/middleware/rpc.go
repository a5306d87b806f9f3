package middleware

import (
	"github.com/deppfellow/webbrayns-backend/internal/validation"
	"github.com/labstack/echo/v4"
)

const (
	rpcRouteKey   = "rpc_route"
	BraynsHostKey = "brayns_host"
)

// RPC marks the routes of a group as RPC endpoints: their failures are
// rendered as a {code, text} body with a 200 status.
func RPC() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(rpcRouteKey, true)
			return next(c)
		}
	}
}

func IsRPCRoute(c echo.Context) bool {
	rpc, _ := c.Get(rpcRouteKey).(bool)
	return rpc
}

// RequireBraynsHost rejects requests without the "h" parameter and stores
// the decoded hostname for GetBraynsHost.
func RequireBraynsHost() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			host, err := validation.BindHost(c)
			if err != nil {
				return err
			}

			c.Set(BraynsHostKey, host)
			return next(c)
		}
	}
}

func GetBraynsHost(c echo.Context) string {
	if host, ok := c.Get(BraynsHostKey).(string); ok {
		return host
	}
	return ""
}
