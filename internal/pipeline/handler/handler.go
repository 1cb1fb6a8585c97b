// Package handler exposes pipeline runs and run log queries over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"onboard/internal/runlog"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
)

// Service is the pipeline surface the handler needs.
type Service interface {
	Execute(ctx context.Context, employeeID int64) ([]int64, error)
	Logs(ctx context.Context, employeeID int64) ([]*runlog.Entry, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the run and log routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/run/{id}", h.handleRun)
	r.Get("/api/logs/{id}", h.handleLogs)
}

type entryResponse struct {
	ID           int64                `json:"id"`
	Step         string               `json:"step"`
	Input        map[string]any       `json:"input"`
	Observations []runlog.Observation `json:"steps"`
	Output       map[string]any       `json:"output"`
	Status       string               `json:"status"`
	CreatedAt    string               `json:"created_at"`
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid employee id"))
		return
	}

	trail, err := h.svc.Execute(ctx, id)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "pipeline run failed", "employee_id", id, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "result": trail})
}

func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid employee id"))
		return
	}

	entries, err := h.svc.Logs(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:           e.ID,
			Step:         e.Step,
			Input:        e.Input,
			Observations: e.Observations,
			Output:       e.Output,
			Status:       string(e.Status),
			CreatedAt:    e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
