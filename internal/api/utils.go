package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tuneforge-backend/internal/pipeline"
	"tuneforge-backend/pkg/models"
)

type codedError struct {
	err      error
	code     int
	category pipeline.Category
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(code int, category pipeline.Category, err error) error {
	return &codedError{err: err, code: code, category: category}
}

func CodedErrorf(code int, format string, args ...any) error {
	return &codedError{err: fmt.Errorf(format, args...), code: code, category: categoryForStatus(code)}
}

func categoryForStatus(code int) pipeline.Category {
	switch {
	case code == http.StatusBadGateway:
		return pipeline.CategoryExternal
	case code >= 400 && code < 500:
		return pipeline.CategoryValidation
	default:
		return pipeline.CategoryProcessing
	}
}

func RestHandler(handler func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := handler(r)
		if err != nil {
			code, category := http.StatusInternalServerError, pipeline.CategoryProcessing

			var cerr *codedError
			if errors.As(err, &cerr) {
				code, category = cerr.code, cerr.category
			} else {
				slog.Error("received non coded error from endpoint", "error", err)
			}
			if code == http.StatusInternalServerError {
				slog.Error("internal server error received in endpoint", "error", err)
			}

			writeJson(w, code, models.ErrorResponse{Error: err.Error(), Category: string(category)})
			return
		}

		if res == nil {
			res = struct{}{}
		}
		writeJson(w, http.StatusOK, res)
	}
}

func writeJson(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("error serializing response body", "error", err)
	}
}
