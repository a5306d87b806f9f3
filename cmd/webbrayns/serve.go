package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/webbrayns-backend/internal/handler"
	"github.com/deppfellow/webbrayns-backend/internal/repository"
	"github.com/deppfellow/webbrayns-backend/internal/router"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/deppfellow/webbrayns-backend/internal/service"
	"github.com/spf13/cobra"
)

// DefaultShutdownTimeout bounds the graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the connectome import workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, loggerService, err := bootstrap()
		if err != nil {
			return err
		}
		defer loggerService.Shutdown()

		srv, err := server.New(cfg, log, loggerService)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize server")
			return err
		}

		repos := repository.NewRepositories(srv)
		services, err := service.NewService(srv, repos)
		if err != nil {
			log.Error().Err(err).Msg("could not create services")
			return err
		}

		srv.Job.InitHandlers(services.Connectome)
		if err := srv.Job.Start(); err != nil {
			_ = srv.Close()
			return err
		}

		handlers := handler.NewHandlers(srv, services)
		r := router.NewRouter(srv, handlers, services)
		srv.SetupHTTPServer(r)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case err := <-serveErr:
			if err != nil {
				log.Error().Err(err).Msg("server stopped unexpectedly")
				_ = srv.Shutdown(context.Background())
				return err
			}
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return err
		}

		log.Info().Msg("server exited properly")
		return nil
	},
}
