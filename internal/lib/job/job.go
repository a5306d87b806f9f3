// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - tasks are enqueued with an asynq.Client
//   - an asynq.Server runs the workers that process them
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/webbrayns-backend/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	server   *asynq.Server
	logger   *zerolog.Logger
	importer ConnectomeImporter
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Connectome imports are heavy, so the worker pool is small. Imports are
// enqueued on the "critical" queue.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client: client,
		server: server,
		logger: logger,
	}
}

// Start registers task handlers and starts the workers. It does not block.
// InitHandlers must be called first.
func (j *JobService) Start() error {
	if j.importer == nil {
		return fmt.Errorf("job handlers are not initialized")
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskImportConnectome, j.handleImportConnectomeTask)

	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}
	return nil
}

// Stop gracefully stops the job server and closes client resources.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("failed to close job client")
	}
}

// Enqueue pushes a task and logs where it went.
func (j *JobService) Enqueue(ctx context.Context, task *asynq.Task) (*asynq.TaskInfo, error) {
	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}

	j.logger.Info().
		Str("task_id", info.ID).
		Str("type", info.Type).
		Str("queue", info.Queue).
		Msg("task enqueued")
	return info, nil
}
