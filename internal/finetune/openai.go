package finetune

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// OpenAIService drives fine-tuning through the OpenAI files and fine-tuning
// endpoints.
type OpenAIService struct {
	client openai.Client
}

func NewOpenAIService() *OpenAIService {
	return &OpenAIService{client: openai.NewClient()}
}

func (s *OpenAIService) UploadTrainingData(ctx context.Context, filename string, data []byte) (string, error) {
	file, err := s.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(data), filename, "application/jsonl"),
		Purpose: openai.FilePurposeFineTune,
	})
	if err != nil {
		return "", fmt.Errorf("uploading training file: %w", err)
	}
	return file.ID, nil
}

func (s *OpenAIService) CreateJob(ctx context.Context, baseModel, trainingFileID string) (Job, error) {
	job, err := s.client.FineTuning.Jobs.New(ctx, openai.FineTuningJobNewParams{
		Model:        openai.FineTuningJobNewParamsModel(baseModel),
		TrainingFile: trainingFileID,
	})
	if err != nil {
		return Job{}, fmt.Errorf("creating fine-tuning job: %w", err)
	}
	return fromOpenAIJob(job), nil
}

func (s *OpenAIService) GetJob(ctx context.Context, jobID string) (Job, error) {
	job, err := s.client.FineTuning.Jobs.Get(ctx, jobID)
	if err != nil {
		return Job{}, fmt.Errorf("retrieving fine-tuning job %s: %w", jobID, err)
	}
	return fromOpenAIJob(job), nil
}

func (s *OpenAIService) CancelJob(ctx context.Context, jobID string) error {
	if _, err := s.client.FineTuning.Jobs.Cancel(ctx, jobID); err != nil {
		return fmt.Errorf("cancelling fine-tuning job %s: %w", jobID, err)
	}
	return nil
}

func fromOpenAIJob(job *openai.FineTuningJob) Job {
	return Job{
		ID:             job.ID,
		Status:         mapStatus(job.Status),
		FineTunedModel: job.FineTunedModel,
	}
}

func mapStatus(status openai.FineTuningJobStatus) JobStatus {
	switch status {
	case openai.FineTuningJobStatusValidatingFiles, openai.FineTuningJobStatusQueued:
		return JobQueued
	case openai.FineTuningJobStatusRunning:
		return JobRunning
	case openai.FineTuningJobStatusSucceeded:
		return JobSucceeded
	case openai.FineTuningJobStatusFailed:
		return JobFailed
	case openai.FineTuningJobStatusCancelled:
		return JobCancelled
	default:
		return JobStatus(status)
	}
}
