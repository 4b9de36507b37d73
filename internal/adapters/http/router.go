package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/ports"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/usecase"
	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/export"
	"github.com/lfarias-dev/labreport-pipeline/internal/observability/metrics"
)

const ownerSubjectHeader = "X-Owner-Subject"

// Options bounds inbound traffic. Zero values disable the corresponding
// limit.
type Options struct {
	Service        string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	ShedAfter      time.Duration
}

type Router struct {
	extractor ports.ReportExtractor
	processor ports.ReportProcessor
	artifacts ports.ArtifactReader
	history   ports.ReportHistory
	metrics   *metrics.HTTPServerMetrics
	opts      Options
}

func NewRouter(
	extractor ports.ReportExtractor,
	processor ports.ReportProcessor,
	artifacts ports.ArtifactReader,
	history ports.ReportHistory,
	m *metrics.HTTPServerMetrics,
	opts Options,
) *Router {
	if opts.Service == "" {
		opts.Service = "api"
	}
	if opts.ShedAfter <= 0 {
		opts.ShedAfter = 2 * time.Second
	}
	return &Router{
		extractor: extractor,
		processor: processor,
		artifacts: artifacts,
		history:   history,
		metrics:   m,
		opts:      opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/reports/extract", rt.extractReport)
	mux.HandleFunc("/v1/reports/process", rt.processReport)
	mux.HandleFunc("/v1/reports/export", rt.exportHistory)
	mux.HandleFunc("/v1/reports", rt.listReports)
	mux.HandleFunc("/v1/artifacts/", rt.getArtifact)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.ShedAfter)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	handler = metricsMiddleware(handler, rt.metrics, rt.opts.Service)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) extractReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("document")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'document' is required"})
		return
	}
	defer file.Close()
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	documentKey := strings.TrimSpace(r.FormValue("documentKey"))
	ownerKey, err := rt.ownerKey(r, r.FormValue("ownerSubject"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	start := time.Now()
	raw, err := rt.extractor.Extract(
		r.Context(),
		documentKey,
		ownerKey,
		file,
		fileHeader.Header.Get("Content-Type"),
	)
	rt.observeStage("extract", start, err)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	// The response body is the raw extracted payload exactly as the gateway
	// returned it, so the reviewer sees what the pipeline cached.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (rt *Router) processReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		DocumentKey   string          `json:"documentKey"`
		OwnerSubject  string          `json:"ownerSubject"`
		CorrectedData json.RawMessage `json:"correctedData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.DocumentKey) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "documentKey is required"})
		return
	}

	ownerKey, err := rt.ownerKey(r, req.OwnerSubject)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	correctedData := unwrapCorrectedData(req.CorrectedData)

	start := time.Now()
	result, err := rt.processor.Process(r.Context(), req.DocumentKey, ownerKey, correctedData)
	rt.observeStage("process", start, err)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getArtifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/v1/artifacts/")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artifact key is required"})
		return
	}

	artifact, err := rt.artifacts.Artifact(r.Context(), key)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	defer artifact.Close()

	w.Header().Set("Content-Type", usecase.PDFMediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", key))
	n, err := io.Copy(w, artifact)
	if rt.metrics != nil {
		rt.metrics.AddArtifactBytes(n)
	}
	if err != nil {
		// Headers are already on the wire; all we can do is log.
		slog.Warn("artifact stream interrupted",
			"request_id", requestIDFromContext(r.Context()),
			"artifact_key", key,
			"error", err)
	}
}

func (rt *Router) listReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	summaries, err := rt.history.History(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": summaries})
}

func (rt *Router) exportHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	summaries, err := rt.history.History(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteHistoryXLSX(&buf, summaries); err != nil {
		rt.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="reports.xlsx"`)
	_, _ = buf.WriteTo(w)
}

// unwrapCorrectedData accepts the documented form, a JSON-encoded string
// carrying the reviewed object, and also tolerates the object sent directly.
func unwrapCorrectedData(raw json.RawMessage) json.RawMessage {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return json.RawMessage(encoded)
	}
	return raw
}

// ownerKey resolves the caller identity from the explicit field or the
// X-Owner-Subject header and normalizes it to the digits-only form.
func (rt *Router) ownerKey(r *http.Request, subject string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = strings.TrimSpace(r.Header.Get(ownerSubjectHeader))
	}
	if subject == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve owner subject",
			errors.New("owner subject is required"))
	}
	return usecase.NormalizeOwnerKey(subject)
}

func (rt *Router) observeStage(stage string, start time.Time, err error) {
	if rt.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	switch stage {
	case "extract":
		rt.metrics.ObserveExtraction(rt.opts.Service, outcome)
	case "process":
		rt.metrics.ObserveProcessing(rt.opts.Service, outcome)
	}
	rt.metrics.ObserveStageDuration(rt.opts.Service, stage, time.Since(start))
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status >= 500 {
		slog.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err)
		message = "internal error"
		if status == http.StatusServiceUnavailable {
			message = "storage temporarily unavailable"
		}
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
