package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-computes dashboard summaries into the cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// DashboardWarmupPayload selects which report years the warmup visits. An
// empty list means the current year plus YearsBack prior ones.
type DashboardWarmupPayload struct {
	Years     []string `json:"years,omitempty"`
	YearsBack int      `json:"yearsBack,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
