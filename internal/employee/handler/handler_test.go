package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/employee/models"
	"onboard/internal/employee/service"
	dErrors "onboard/pkg/domain-errors"
)

type stubService struct {
	created   *service.CreateInput
	createErr error
	employees []*models.Employee
	deleteErr error
	summary   *service.ImportSummary
}

func (s *stubService) Create(_ context.Context, in service.CreateInput) (*models.Employee, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &in
	return &models.Employee{ID: 7, Name: in.Name, Status: models.StatusPending}, nil
}

func (s *stubService) List(context.Context) ([]*models.Employee, error) {
	return s.employees, nil
}

func (s *stubService) Delete(context.Context, int64) error {
	return s.deleteErr
}

func (s *stubService) ImportCSV(context.Context, io.Reader) (*service.ImportSummary, error) {
	return s.summary, nil
}

func newRouter(svc Service) *chi.Mux {
	r := chi.NewRouter()
	New(svc, nil).Register(r)
	return r
}

func TestHandleCreate(t *testing.T) {
	t.Run("valid request returns 201", func(t *testing.T) {
		svc := &stubService{}
		body := `{"name":"Ada Lovelace","email":"ada@example.com","role":"AI Engineer","start_date":"2026-09-01"}`

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(body))
		newRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, svc.created)
		assert.Equal(t, "Ada Lovelace", svc.created.Name)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, float64(7), resp["id"])
	})

	t.Run("missing name is 422", func(t *testing.T) {
		body := `{"email":"ada@example.com","role":"AI Engineer","start_date":"2026-09-01"}`

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(body))
		newRouter(&stubService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("malformed json is 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader("{"))
		newRouter(&stubService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service error is mapped", func(t *testing.T) {
		svc := &stubService{createErr: dErrors.New(dErrors.CodeBadRequest, "invalid date format")}
		body := `{"name":"Ada","email":"ada@example.com","role":"HR","start_date":"bad"}`

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(body))
		newRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid date format")
	})
}

func TestHandleList(t *testing.T) {
	svc := &stubService{employees: []*models.Employee{{
		ID:        1,
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Role:      "AI Engineer",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusPending,
	}}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "2026-09-01", resp[0]["start_date"])
	// Empty department renders as a dash.
	assert.Equal(t, "-", resp[0]["department"])
}

func TestHandleDelete(t *testing.T) {
	t.Run("unknown employee is 404", func(t *testing.T) {
		svc := &stubService{deleteErr: dErrors.New(dErrors.CodeNotFound, "employee not found")}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/employees/42", nil)
		newRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/employees/abc", nil)
		newRouter(&stubService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleImportCSV(t *testing.T) {
	buildUpload := func(t *testing.T, filename, content string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	t.Run("returns summary", func(t *testing.T) {
		svc := &stubService{summary: &service.ImportSummary{Inserted: 2, Skipped: 1, ErrorRows: []service.RowError{}}}
		buf, contentType := buildUpload(t, "people.csv", "name,email,role,start_date\n")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/employees/csv", buf)
		req.Header.Set("Content-Type", contentType)
		newRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"inserted":2`)
	})

	t.Run("rejects non-csv filename", func(t *testing.T) {
		buf, contentType := buildUpload(t, "people.xlsx", "data")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/employees/csv", buf)
		req.Header.Set("Content-Type", contentType)
		newRouter(&stubService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleSampleCSV(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/employees/csv/sample", nil)
	newRouter(&stubService{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "name,email,role,department,start_date"))
}
