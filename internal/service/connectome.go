package service

import (
	"context"
	"os"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/lib/connectome"
	"github.com/deppfellow/webbrayns-backend/internal/lib/job"
	"github.com/deppfellow/webbrayns-backend/internal/sqlerr"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Enqueuer pushes background tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task) (*asynq.TaskInfo, error)
}

// ConnectomeService loads CSV edge lists into the connectome store.
type ConnectomeService struct {
	circuits *CircuitService
	store    ConnectomeStore
	jobs     Enqueuer
	logger   *zerolog.Logger
}

func NewConnectomeService(circuits *CircuitService, store ConnectomeStore, jobs Enqueuer, logger *zerolog.Logger) *ConnectomeService {
	return &ConnectomeService{circuits: circuits, store: store, jobs: jobs, logger: logger}
}

// ImportTicket identifies an enqueued import.
type ImportTicket struct {
	TaskID      string `json:"taskId"`
	Queue       string `json:"queue"`
	CircuitPath string `json:"circuitPath"`
	File        string `json:"file"`
}

// resolve sandboxes both paths and checks the edge list is a regular file.
func (s *ConnectomeService) resolve(circuitPath, file string) (string, string, error) {
	configPath, err := s.circuits.configPath(circuitPath)
	if err != nil {
		return "", "", err
	}

	edgesPath, err := s.circuits.sandbox.Resolve(file)
	if err != nil {
		return "", "", err
	}
	if info, err := os.Stat(edgesPath); err != nil || !info.Mode().IsRegular() {
		return "", "", errs.NotAFile(edgesPath)
	}

	return configPath, edgesPath, nil
}

// ImportConnectome replaces the edges of a circuit with the content of a CSV
// edge list and returns the number of distinct edges stored.
func (s *ConnectomeService) ImportConnectome(ctx context.Context, circuitPath, file string) (int64, error) {
	configPath, edgesPath, err := s.resolve(circuitPath, file)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(edgesPath)
	if err != nil {
		return 0, errs.Unexpected(err)
	}
	defer f.Close()

	edges := connectome.NewEdgeReader(f)
	count, err := s.store.ReplaceEdges(ctx, configPath, edgesPath, edges)
	if err != nil {
		// CopyFrom reports the reader's own error when parsing stopped it.
		if readErr := edges.Err(); readErr != nil {
			return 0, errs.BadInput("%s: %v", edgesPath, readErr).WithCause(readErr)
		}
		return 0, sqlerr.HandleError(err)
	}

	s.logger.Info().
		Str("circuit", configPath).
		Str("file", edgesPath).
		Int64("read", edges.Count()).
		Int64("stored", count).
		Msg("connectome imported")
	return count, nil
}

// EnqueueImport validates the paths and schedules ImportConnectome on the
// job workers.
func (s *ConnectomeService) EnqueueImport(ctx context.Context, circuitPath, file string) (*ImportTicket, error) {
	configPath, edgesPath, err := s.resolve(circuitPath, file)
	if err != nil {
		return nil, err
	}

	task, err := job.NewImportConnectomeTask(job.ImportConnectomePayload{
		CircuitPath: configPath,
		File:        edgesPath,
	})
	if err != nil {
		return nil, errs.Unexpected(err)
	}

	info, err := s.jobs.Enqueue(ctx, task)
	if err != nil {
		return nil, errs.Unexpected(err)
	}

	return &ImportTicket{
		TaskID:      info.ID,
		Queue:       info.Queue,
		CircuitPath: configPath,
		File:        edgesPath,
	}, nil
}
