package finetune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

var (
	// ErrEmptyDataset is returned before the external service is contacted.
	ErrEmptyDataset = errors.New("training dataset is empty")
	// ErrUpload indicates the service rejected the dataset upload.
	ErrUpload = errors.New("training file upload rejected")
	// ErrJobCreation indicates the service rejected the fine-tuning request.
	ErrJobCreation = errors.New("fine-tuning job creation rejected")
	// ErrJobFailed indicates the job reached a terminal state with no usable model.
	ErrJobFailed = errors.New("fine-tuning job failed")
	// ErrPollTimeout indicates the job never reached a terminal state within PollConfig.MaxWait.
	ErrPollTimeout = errors.New("fine-tuning job did not finish within the polling bound")
)

// PollConfig bounds the status polling loop: exponential backoff starting at
// InitialInterval, capped at MaxInterval, abandoned after MaxWait.
type PollConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxWait         time.Duration
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialInterval: 5 * time.Second,
		MaxInterval:     time.Minute,
		MaxWait:         2 * time.Hour,
	}
}

type Result struct {
	JobID   string
	ModelID string
}

// Orchestrator uploads a serialized dataset, submits a fine-tuning job
// against a base model, and observes the job until it terminates.
type Orchestrator struct {
	service TrainingService
	poll    PollConfig
}

func NewOrchestrator(service TrainingService, poll PollConfig) *Orchestrator {
	defaults := DefaultPollConfig()
	if poll.InitialInterval <= 0 {
		poll.InitialInterval = defaults.InitialInterval
	}
	if poll.MaxInterval <= 0 {
		poll.MaxInterval = defaults.MaxInterval
	}
	if poll.MaxWait <= 0 {
		poll.MaxWait = defaults.MaxWait
	}
	return &Orchestrator{service: service, poll: poll}
}

func (o *Orchestrator) Run(ctx context.Context, dataset []byte, baseModel string) (Result, error) {
	if len(dataset) == 0 {
		return Result{}, ErrEmptyDataset
	}

	fileID, err := o.service.UploadTrainingData(ctx, "training.jsonl", dataset)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	slog.Info("uploaded training dataset", "file_id", fileID, "bytes", len(dataset))

	job, err := o.service.CreateJob(ctx, baseModel, fileID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrJobCreation, err)
	}
	slog.Info("created fine-tuning job", "job_id", job.ID, "base_model", baseModel)

	return o.awaitJob(ctx, job.ID)
}

var errJobPending = errors.New("fine-tuning job still in progress")

func (o *Orchestrator) awaitJob(ctx context.Context, jobID string) (Result, error) {
	backoff := retry.WithMaxDuration(o.poll.MaxWait,
		retry.WithCappedDuration(o.poll.MaxInterval, retry.NewExponential(o.poll.InitialInterval)))

	var final Job
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		job, err := o.service.GetJob(ctx, jobID)
		if err != nil {
			// Transient status retrievals are retried within the same bound.
			return retry.RetryableError(err)
		}
		if !job.Status.IsTerminal() {
			slog.Info("fine-tuning job in progress", "job_id", jobID, "status", job.Status)
			return retry.RetryableError(errJobPending)
		}
		final = job
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// The caller gave up; the remote job would keep running otherwise.
		o.cancelRemote(jobID)
		return Result{}, fmt.Errorf("polling aborted for job %s: %w", jobID, err)
	case errors.Is(err, errJobPending):
		return Result{}, fmt.Errorf("%w: job %s after %s", ErrPollTimeout, jobID, o.poll.MaxWait)
	default:
		return Result{}, fmt.Errorf("polling job %s: %w", jobID, err)
	}

	if final.Status != JobSucceeded {
		return Result{}, fmt.Errorf("%w: job %s ended with status %s", ErrJobFailed, jobID, final.Status)
	}

	slog.Info("fine-tuning job succeeded", "job_id", jobID, "model_id", final.FineTunedModel)
	return Result{JobID: jobID, ModelID: final.FineTunedModel}, nil
}

func (o *Orchestrator) cancelRemote(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := o.service.CancelJob(ctx, jobID); err != nil {
		slog.Warn("failed to cancel remote fine-tuning job", "job_id", jobID, "error", err)
	} else {
		slog.Info("cancelled remote fine-tuning job", "job_id", jobID)
	}
}
