// Package handler exposes employee record management over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"onboard/internal/employee/models"
	"onboard/internal/employee/service"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
)

// CSV uploads above this size are rejected outright.
const maxCSVBytes = 5 << 20

// Service is the employee operations surface the handler needs.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.Employee, error)
	List(ctx context.Context) ([]*models.Employee, error)
	Delete(ctx context.Context, id int64) error
	ImportCSV(ctx context.Context, reader io.Reader) (*service.ImportSummary, error)
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

// Register mounts the employee routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/employees", h.handleList)
	r.Post("/api/employees", h.handleCreate)
	r.Delete("/api/employees/{id}", h.handleDelete)
	r.Post("/api/employees/csv", h.handleImportCSV)
	r.Get("/api/employees/csv/sample", h.handleSampleCSV)
}

type createRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	StartDate  string `json:"start_date"`
}

type employeeResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	StartDate  string `json:"start_date"`
	Status     string `json:"status"`
}

func toResponse(emp *models.Employee) employeeResponse {
	department := emp.Department
	if department == "" {
		department = "-"
	}
	return employeeResponse{
		ID:         emp.ID,
		Name:       emp.Name,
		Email:      emp.Email,
		Role:       emp.Role,
		Department: department,
		StartDate:  emp.StartDate.Format("2006-01-02"),
		Status:     string(emp.Status),
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	employees, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list employees", "error", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]employeeResponse, 0, len(employees))
	for _, emp := range employees {
		out = append(out, toResponse(emp))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if !govalidator.StringLength(req.Name, "1", "255") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "name is required"))
		return
	}
	if !govalidator.StringLength(req.Email, "3", "255") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "email is required"))
		return
	}
	if !govalidator.StringLength(req.Role, "1", "255") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "role is required"))
		return
	}

	emp, err := h.svc.Create(ctx, service.CreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		StartDate:  req.StartDate,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create employee rejected", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": emp.ID})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid employee id"))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxCSVBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file field is required"))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".csv") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "please upload a .csv file"))
		return
	}

	summary, err := h.svc.ImportCSV(ctx, io.LimitReader(file, maxCSVBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "csv import rejected", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "summary": summary, "errors": summary.ErrorRows})
}

func (h *Handler) handleSampleCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="onboarding_sample.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(service.SampleCSV())
}
