package main

import (
	"fmt"

	"github.com/deppfellow/webbrayns-backend/internal/repository"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/deppfellow/webbrayns-backend/internal/service"
	"github.com/spf13/cobra"
)

var (
	importCircuit string
	importFile    string
	importEnqueue bool
)

var importConnectomeCmd = &cobra.Command{
	Use:   "import-connectome",
	Short: "Load a CSV edge list into the connectome of a circuit",
	Long: `import-connectome reads a "source,target" CSV edge list and replaces the
stored connectome of the circuit with it. Both paths are resolved against the
filesystem root. With --enqueue the import runs on the background workers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, loggerService, err := bootstrap()
		if err != nil {
			return err
		}
		defer loggerService.Shutdown()

		srv, err := server.New(cfg, log, loggerService)
		if err != nil {
			return err
		}
		defer func() {
			srv.Job.Stop()
			_ = srv.Close()
		}()

		services, err := service.NewService(srv, repository.NewRepositories(srv))
		if err != nil {
			return err
		}

		if importEnqueue {
			ticket, err := services.Connectome.EnqueueImport(cmd.Context(), importCircuit, importFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on %s\n", ticket.TaskID, ticket.Queue)
			return nil
		}

		count, err := services.Connectome.ImportConnectome(cmd.Context(), importCircuit, importFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d edges\n", count)
		return nil
	},
}

func init() {
	importConnectomeCmd.Flags().StringVar(&importCircuit, "circuit", "", "circuit config or directory")
	importConnectomeCmd.Flags().StringVar(&importFile, "file", "", "CSV edge list")
	importConnectomeCmd.Flags().BoolVar(&importEnqueue, "enqueue", false, "run the import on the background workers")
	_ = importConnectomeCmd.MarkFlagRequired("circuit")
	_ = importConnectomeCmd.MarkFlagRequired("file")
}
