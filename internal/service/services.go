// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// input from the handlers, runs the operation, and reports failures as
// *errs.RPCError values.
package service

import (
	"context"

	"github.com/deppfellow/webbrayns-backend/internal/lib/job"
	"github.com/deppfellow/webbrayns-backend/internal/repository"
	"github.com/deppfellow/webbrayns-backend/internal/sandbox"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/rs/zerolog"
)

type Services struct {
	Auth       *AuthService
	File       *FileService
	Circuit    *CircuitService
	Connectome *ConnectomeService
	Material   *MaterialService
	Job        *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	cfg := s.Config
	sb := sandbox.New(cfg.FS.Root)

	cache := NewTargetCache(s.Redis, cfg.Circuit.CacheTTL, s.Logger)
	circuits := NewCircuitService(sb, cfg.Circuit.ConfigFileName, cache, repos.Connectome, s.Logger)

	return &Services{
		Auth:       NewAuthService(cfg.Auth),
		File:       NewFileService(sb, cfg.FS.MaxReadSize),
		Circuit:    circuits,
		Connectome: NewConnectomeService(circuits, repos.Connectome, s.Job, s.Logger),
		Material:   NewMaterialService(DialBrayns, cfg.Brayns.DialTimeout, cfg.Brayns.RequestTimeout, s.Logger),
		Job:        s.Job,
	}, nil
}

// requestLogger returns the logger attached to ctx by the HTTP layer, or
// fallback outside of a request.
func requestLogger(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return fallback
}
