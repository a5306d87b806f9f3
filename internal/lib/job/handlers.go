package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// ConnectomeImporter performs the import behind TaskImportConnectome.
type ConnectomeImporter interface {
	ImportConnectome(ctx context.Context, circuitPath, file string) (int64, error)
}

// InitHandlers injects the dependencies the task handlers need.
func (j *JobService) InitHandlers(importer ConnectomeImporter) {
	j.importer = importer
}

func (j *JobService) handleImportConnectomeTask(ctx context.Context, t *asynq.Task) error {
	var p ImportConnectomePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A malformed payload never succeeds, do not retry it.
		return fmt.Errorf("failed to unmarshal import payload: %v: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", TaskImportConnectome).
		Str("circuit_path", p.CircuitPath).
		Str("file", p.File).
		Logger()

	log.Info().Msg("Processing connectome import task")

	count, err := j.importer.ImportConnectome(ctx, p.CircuitPath, p.File)
	if err != nil {
		log.Error().Err(err).Msg("Failed to import connectome")
		return err
	}

	log.Info().Int64("edges", count).Msg("Successfully imported connectome")
	return nil
}
