// Package api exposes HTTP handlers for the dashboard.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"example.com/healthdash/internal/dashboard"
	"example.com/healthdash/internal/domain"
	"example.com/healthdash/internal/projection"
	"example.com/healthdash/internal/web"
)

const (
	archiveField = "archive"
	rangeField   = "range"
	// multipartMemory is how much of a form is buffered before spilling to temp files.
	multipartMemory = 32 << 20
)

// Processor runs the upload pipeline.
type Processor interface {
	Process(ctx context.Context, data []byte, req dashboard.Request) (*dashboard.Report, error)
}

// Handler coordinates HTTP requests with the upload pipeline.
type Handler struct {
	processor      Processor
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(processor Processor, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{processor: processor, maxUploadBytes: maxUploadBytes, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.index)
	mux.HandleFunc("/upload", h.uploadPage)
	mux.HandleFunc("/v1/uploads", h.uploads)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	templ.Handler(web.Page(web.PageData{Range: domain.RangeAll})).ServeHTTP(w, r)
}

// uploadPage handles the browser form and answers with the rendered dashboard.
func (h *Handler) uploadPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, rng, failure := h.handleUpload(w, r)
	if failure != nil {
		page := web.Page(web.PageData{Range: rng, Error: failure.detail})
		templ.Handler(page, templ.WithStatus(failure.status)).ServeHTTP(w, r)
		return
	}

	page := web.Page(web.PageData{Range: report.Range, Report: &web.ReportView{
		UploadID: report.UploadID,
		Range:    report.Range,
		Total:    report.Total,
		Skipped:  report.Skipped,
		Filtered: report.Filtered,
		Groups:   report.Groups,
		Daily:    report.Daily,
	}})
	templ.Handler(page).ServeHTTP(w, r)
}

// uploads is the JSON rendering of the same pipeline.
func (h *Handler) uploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	report, _, failure := h.handleUpload(w, r)
	if failure != nil {
		writeError(w, failure.status, failure.code, failure.detail)
		return
	}
	writeJSON(w, http.StatusOK, toUploadResponse(report))
}

// uploadFailure is an upload error already mapped to its HTTP shape.
type uploadFailure struct {
	status int
	code   string
	detail string
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) (*dashboard.Report, domain.TimeRange, *uploadFailure) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.RangeAll, &uploadFailure{http.StatusRequestEntityTooLarge, "payload_too_large", "archive exceeds the upload limit"}
		}
		return nil, domain.RangeAll, &uploadFailure{http.StatusBadRequest, "invalid_request", "expected a multipart form upload"}
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	rng, err := domain.ParseTimeRange(r.FormValue(rangeField))
	if err != nil {
		return nil, domain.RangeAll, &uploadFailure{http.StatusBadRequest, "validation_failed", err.Error()}
	}

	file, _, err := r.FormFile(archiveField)
	if err != nil {
		return nil, rng, &uploadFailure{http.StatusBadRequest, "validation_failed", "missing archive file"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, rng, &uploadFailure{http.StatusBadRequest, "invalid_request", "unable to read archive"}
	}

	report, err := h.processor.Process(r.Context(), data, dashboard.Request{Range: rng})
	if err != nil {
		return nil, rng, h.pipelineFailure(err)
	}
	return report, rng, nil
}

func (h *Handler) pipelineFailure(err error) *uploadFailure {
	switch category := domain.Category(err); category {
	case domain.CategoryMalformedArchive, domain.CategoryEncoding:
		return &uploadFailure{http.StatusBadRequest, category, err.Error()}
	case domain.CategoryMalformedDocument:
		return &uploadFailure{http.StatusUnprocessableEntity, category, err.Error()}
	default:
		h.logger.Error("upload pipeline failed", zap.Error(err))
		return &uploadFailure{http.StatusInternalServerError, "server_error", "unable to process archive"}
	}
}

// UploadResponse is the body returned by POST /v1/uploads.
type UploadResponse struct {
	UploadID string                `json:"upload_id"`
	Range    string                `json:"range"`
	Total    int                   `json:"total"`
	Skipped  int                   `json:"skipped"`
	Filtered int                   `json:"filtered"`
	Groups   []projection.Group    `json:"groups"`
	Daily    projection.DailyTable `json:"daily"`
}

func toUploadResponse(report *dashboard.Report) UploadResponse {
	groups := report.Groups
	if groups == nil {
		groups = []projection.Group{}
	}
	return UploadResponse{
		UploadID: report.UploadID,
		Range:    string(report.Range),
		Total:    report.Total,
		Skipped:  report.Skipped,
		Filtered: report.Filtered,
		Groups:   groups,
		Daily:    report.Daily,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
