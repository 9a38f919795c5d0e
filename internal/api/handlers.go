// Package api exposes HTTP handlers for uploads, the latest summary and insights.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"example.com/wellness/internal/domain"
	"example.com/wellness/internal/health"
)

// DefaultMaxUploadBytes caps an upload body when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// uploadField is the multipart form field carrying the CSV file.
const uploadField = "file"

// ErrUploadTooLarge is reported when the request body exceeds the configured limit.
var ErrUploadTooLarge = errors.New("upload exceeds size limit")

// Handler coordinates HTTP requests with the health service.
type Handler struct {
	service        *health.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

// Option customises the Handler.
type Option func(*Handler)

// WithMaxUploadBytes caps the accepted request body size.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler builds a Handler.
func NewHandler(service *health.Service, opts ...Option) *Handler {
	h := &Handler{service: service, maxUploadBytes: DefaultMaxUploadBytes, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/health/upload", h.upload)
	mux.HandleFunc("/v1/health/summary", h.summary)
	mux.HandleFunc("/v1/insights", h.insights)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	body, closeBody, err := csvBody(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	defer closeBody()

	snapshot, err := h.service.Upload(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotView(snapshot))
}

// csvBody locates the CSV stream: the "file" part of a multipart form, or the raw body otherwise.
func csvBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, nil, &requestError{detail: "malformed multipart body"}
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil, &requestError{detail: "missing form field " + uploadField}
		}
		if err != nil {
			return nil, nil, err
		}
		if part.FormName() == uploadField {
			return part, func() { _ = part.Close() }, nil
		}
		_ = part.Close()
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	snapshot, ok := h.service.Latest()
	if !ok {
		h.writeServiceError(w, domain.ErrNoSummary)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotView(snapshot))
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	user := r.URL.Query().Get("user")
	text, err := h.service.Insights(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InsightsResponse{Insights: text})
}

// SnapshotView is the response body for uploads and summary reads.
type SnapshotView struct {
	SnapshotID string           `json:"snapshot_id"`
	UploadedAt time.Time        `json:"uploaded_at"`
	Rows       int              `json:"rows"`
	Summary    domain.Summary7d `json:"summary"`
}

// InsightsResponse wraps the generated narrative.
type InsightsResponse struct {
	Insights string `json:"insights"`
}

func toSnapshotView(s domain.Snapshot) SnapshotView {
	return SnapshotView{
		SnapshotID: s.ID,
		UploadedAt: s.UploadedAt,
		Rows:       s.Rows,
		Summary:    s.Summary.Rounded(),
	}
}

type requestError struct {
	detail string
}

func (e *requestError) Error() string { return e.detail }

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var (
		tooLarge *http.MaxBytesError
		badReq   *requestError
	)
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large", ErrUploadTooLarge.Error())
	case errors.As(err, &badReq):
		writeError(w, http.StatusBadRequest, "invalid_request", badReq.detail)
	case errors.Is(err, domain.ErrNoSummary):
		writeError(w, http.StatusNotFound, "no_summary", err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", err.Error())
	case domain.ErrorKind(err) != "":
		writeError(w, http.StatusBadRequest, domain.ErrorKind(err), err.Error())
	default:
		h.logger.Error("request failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
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
