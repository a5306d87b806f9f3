package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/webbrayns-backend/internal/config"
)

// AuthService configures Clerk for bearer-token authentication.
type AuthService struct {
	enabled bool
}

// NewAuthService registers the Clerk secret key. Without one, authentication
// stays disabled.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	if cfg.Enabled() {
		clerk.SetKey(cfg.SecretKey)
	}
	return &AuthService{enabled: cfg.Enabled()}
}

// Enabled reports whether protected routes require a session token.
func (a *AuthService) Enabled() bool {
	return a != nil && a.enabled
}
