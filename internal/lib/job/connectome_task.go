package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Queue names, by priority.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// TaskImportConnectome loads a CSV edge list into the connectome store.
const TaskImportConnectome = "connectome:import"

// ImportConnectomeTimeout bounds a single import attempt.
const ImportConnectomeTimeout = 30 * time.Minute

// ImportConnectomePayload is the JSON payload of TaskImportConnectome.
// Both paths are already resolved inside the sandbox.
type ImportConnectomePayload struct {
	CircuitPath string `json:"circuit_path"`
	File        string `json:"file"`
}

// NewImportConnectomeTask builds the import task. Imports replace the
// previous edges of the circuit, so retrying is safe.
func NewImportConnectomeTask(p ImportConnectomePayload) (*asynq.Task, error) {
	if p.CircuitPath == "" || p.File == "" {
		return nil, fmt.Errorf("import task needs a circuit path and a file")
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskImportConnectome, payload, importConnectomeOptions()...), nil
}

// Imports are started by a user waiting on the result, so they run ahead
// of background work.
func importConnectomeOptions() []asynq.Option {
	return []asynq.Option{
		asynq.MaxRetry(2),
		asynq.Queue(QueueCritical),
		asynq.Timeout(ImportConnectomeTimeout),
	}
}
