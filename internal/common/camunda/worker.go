// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"entity-dedup-workers/internal/common/logger"
)

// JobHandlerFunc matches the Zeebe job handler signature. Handlers complete
// or fail the job themselves through the passed JobClient.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// CamundaWorker owns one open job worker subscription for a task type.
// The underlying Zeebe client is shared and stays open after Stop.
type CamundaWorker struct {
	worker   worker.JobWorker
	taskType string
	logger   logger.Logger
}

// WorkerOptions configures a job worker subscription.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// NewWorker opens a job worker on the shared client and starts polling.
func NewWorker(client *Client, taskType string, opts WorkerOptions, handler JobHandlerFunc, log logger.Logger) *CamundaWorker {
	builder := client.GetClient().NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler))

	if opts.MaxJobsActive > 0 {
		builder = builder.MaxJobsActive(opts.MaxJobsActive)
	}
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}

	jobWorker := builder.Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})

	return &CamundaWorker{
		worker:   jobWorker,
		taskType: taskType,
		logger:   log,
	}
}

// Stop drains the subscription. It does not close the shared client.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
