package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tuneforge-backend/internal/dataset"
	"tuneforge-backend/internal/finetune"

	"github.com/google/uuid"
)

// ErrValidation indicates the request itself is unusable; no pipeline stage runs.
var ErrValidation = errors.New("invalid tuning request")

// Category classifies a pipeline failure for the caller: bad input, a broken
// external dependency, or an internal processing fault.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryExternal   Category = "external_service"
	CategoryProcessing Category = "processing"
)

func Categorize(err error) Category {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, finetune.ErrEmptyDataset):
		return CategoryValidation
	case errors.Is(err, finetune.ErrUpload),
		errors.Is(err, finetune.ErrJobCreation),
		errors.Is(err, finetune.ErrJobFailed),
		errors.Is(err, finetune.ErrPollTimeout):
		return CategoryExternal
	default:
		return CategoryProcessing
	}
}

// Extractor turns a staged document into its flat text content.
type Extractor func(path string) (string, error)

// Summarizer condenses each paragraph, index-aligned with the input.
type Summarizer interface {
	SummarizeAll(ctx context.Context, paragraphs []string) ([]string, error)
}

// JobRunner submits the serialized dataset to the training service and
// drives the fine-tuning job to a terminal state.
type JobRunner interface {
	Run(ctx context.Context, dataset []byte, baseModel string) (finetune.Result, error)
}

type Request struct {
	Document  io.Reader
	Filename  string
	BaseModel string
	RoleLabel string
}

type Result struct {
	JobID   string
	ModelID string
	Records int
}

// Pipeline runs the stages strictly in order: extract, segment, summarize,
// build the dataset, orchestrate the fine-tuning job.
type Pipeline struct {
	extract    Extractor
	summarizer Summarizer
	runner     JobRunner
}

func New(extract Extractor, summarizer Summarizer, runner JobRunner) *Pipeline {
	return &Pipeline{extract: extract, summarizer: summarizer, runner: runner}
}

func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if req.Document == nil {
		return Result{}, fmt.Errorf("%w: no document provided", ErrValidation)
	}
	if req.BaseModel == "" {
		return Result{}, fmt.Errorf("%w: base model identifier not provided", ErrValidation)
	}
	if req.RoleLabel == "" {
		return Result{}, fmt.Errorf("%w: system role not provided", ErrValidation)
	}

	runID := uuid.New()

	staged, err := stageDocument(req.Document, runID)
	if err != nil {
		return Result{}, fmt.Errorf("staging document: %w", err)
	}
	// The staging copy is scoped to this run and removed on every exit path.
	defer func() {
		if err := os.Remove(staged); err != nil {
			slog.Warn("failed to remove staged document", "run_id", runID, "path", staged, "error", err)
		}
	}()

	slog.Info("starting tuning pipeline", "run_id", runID, "filename", req.Filename, "base_model", req.BaseModel)

	text, err := p.extract(staged)
	if err != nil {
		return Result{}, err
	}

	paragraphs := dataset.SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return Result{}, fmt.Errorf("%w: document contains no text to train on", ErrValidation)
	}
	slog.Info("segmented document", "run_id", runID, "paragraphs", len(paragraphs))

	summaries, err := p.summarizer.SummarizeAll(ctx, paragraphs)
	if err != nil {
		return Result{}, err
	}

	records, err := dataset.BuildRecords(paragraphs, summaries, req.RoleLabel)
	if err != nil {
		slog.Error("dataset invariant violation", "run_id", runID, "error", err)
		return Result{}, err
	}

	payload, err := dataset.MarshalJSONL(records)
	if err != nil {
		return Result{}, err
	}

	jobRes, err := p.runner.Run(ctx, payload, req.BaseModel)
	if err != nil {
		return Result{}, err
	}

	slog.Info("tuning pipeline finished", "run_id", runID, "job_id", jobRes.JobID, "model_id", jobRes.ModelID, "records", len(records))
	return Result{JobID: jobRes.JobID, ModelID: jobRes.ModelID, Records: len(records)}, nil
}

func stageDocument(doc io.Reader, runID uuid.UUID) (string, error) {
	file, err := os.CreateTemp("", "tuneforge-"+runID.String()+"-*.pdf")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, doc); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}
