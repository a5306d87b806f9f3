package main

import (
	"fmt"
	"os"

	"github.com/deppfellow/webbrayns-backend/internal/config"
	"github.com/deppfellow/webbrayns-backend/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "webbrayns",
	Short:         "RPC backend of the Brayns web client",
	Long:          `webbrayns answers circuit queries, sandboxed filesystem reads and Phaneron material edits for the Brayns web client.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, importConnectomeCmd)
}

// bootstrap loads the configuration and builds the application logger.
// The returned LoggerService must be shut down by the caller.
func bootstrap() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, &log, loggerService, nil
}
