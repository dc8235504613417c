package finetune

import "context"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobCancelled
}

// Job is the orchestrator's view of a fine-tuning job. The external service
// owns all state transitions; the orchestrator only observes them.
type Job struct {
	ID             string
	Status         JobStatus
	FineTunedModel string
}

// TrainingService is the external fine-tuning provider.
type TrainingService interface {
	UploadTrainingData(ctx context.Context, filename string, data []byte) (string, error)
	CreateJob(ctx context.Context, baseModel, trainingFileID string) (Job, error)
	GetJob(ctx context.Context, jobID string) (Job, error)
	CancelJob(ctx context.Context, jobID string) error
}
