package api

import (
	"context"
	"log/slog"
	"net/http"

	"tuneforge-backend/internal/pipeline"
	"tuneforge-backend/pkg/models"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

// TuningPipeline is the document-to-fine-tuned-model pipeline behind the
// upload endpoint.
type TuningPipeline interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

type BackendService struct {
	pipeline       TuningPipeline
	maxUploadBytes int64
}

func NewBackendService(p TuningPipeline, maxUploadBytes int64) *BackendService {
	return &BackendService{pipeline: p, maxUploadBytes: maxUploadBytes}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post("/tune", RestHandler(s.SubmitTuningJob))
}

type tuneForm struct {
	ModelType  string `schema:"model_type"`
	SystemRole string `schema:"system_role"`
}

func (s *BackendService) SubmitTuningJob(r *http.Request) (any, error) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse multipart form: %v", err)
	}

	var form tuneForm
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&form, r.MultipartForm.Value); err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to parse form fields: %v", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "no file part in request")
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "no selected file")
	}

	res, err := s.pipeline.Run(r.Context(), pipeline.Request{
		Document:  file,
		Filename:  header.Filename,
		BaseModel: form.ModelType,
		RoleLabel: form.SystemRole,
	})
	if err != nil {
		category := pipeline.Categorize(err)
		slog.Error("tuning pipeline failed", "filename", header.Filename, "category", category, "error", err)
		return nil, CodedError(statusForCategory(category), category, err)
	}

	return models.TuneResponse{
		Message: "Fine-tuning job created successfully",
		JobId:   res.JobID,
		ModelId: res.ModelID,
		Records: res.Records,
	}, nil
}

func statusForCategory(category pipeline.Category) int {
	switch category {
	case pipeline.CategoryValidation:
		return http.StatusBadRequest
	case pipeline.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
