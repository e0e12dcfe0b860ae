package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTotalsIntegrity is the task type for the document totals scan.
	TaskTotalsIntegrity = "totals:integrity"
)

// NewTotalsIntegrityTask constructs the totals integrity scan task. The scan
// takes no parameters; it always covers every document.
func NewTotalsIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskTotalsIntegrity, nil)
}
