package simd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
)

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
}

func NewHTTPServer(store *RunStore, executor *RunExecutor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// handleRuns handles /v1/runs endpoint
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id} and related endpoints
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	// /v1/runs/{id}, /v1/runs/{id}:stop, /v1/runs/{id}/metrics, /v1/runs/{id}/metrics/stream
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	route := func(suffix, method string, h func(http.ResponseWriter, *http.Request, string)) bool {
		if !strings.HasSuffix(path, suffix) {
			return false
		}
		if r.Method != method {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return true
		}
		h(w, r, strings.TrimSuffix(path, suffix))
		return true
	}

	switch {
	case route(":stop", http.MethodPost, s.handleStopRun):
	case route("/metrics/stream", http.MethodGet, s.handleMetricsStream):
	case route("/metrics", http.MethodGet, s.handleGetRunMetrics):
	default:
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.handleGetRun(w, r, path)
	}
}

type createRunRequest struct {
	RunID string `json:"run_id,omitempty"`
	RunInput
}

// handleCreateRun handles POST /v1/runs. The run is created and started.
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := createAndStart(s.store, s.Executor, req.RunID, &req.RunInput)
	if err != nil {
		s.writeError(w, httpStatusFor(err), err.Error())
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.Run.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": rec.Run,
	})
}

// handleListRuns handles GET /v1/runs with pagination and filtering
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, 1000)
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var statusFilter RunStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		statusFilter = ParseRunStatus(strings.ToLower(statusStr))
		if statusFilter == "" {
			s.writeError(w, http.StatusBadRequest, "invalid status: "+statusStr)
			return
		}
	}

	recs := s.store.List(limit, offset, statusFilter)
	runs := make([]*Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runs,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": rec.Run,
	})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		s.writeError(w, httpStatusFor(err), err.Error())
		return
	}

	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": updated.Run,
	})
}

// handleGetRunMetrics handles GET /v1/runs/{id}/metrics. ?last=N limits the
// generation history to the newest N entries.
func (s *HTTPServer) handleGetRunMetrics(w http.ResponseWriter, r *http.Request, runID string) {
	if _, ok := s.store.Get(runID); !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	collector, ok := s.store.GetCollector(runID)
	if !ok {
		s.writeError(w, http.StatusPreconditionFailed, "metrics not available")
		return
	}

	history := collector.History()
	if lastStr := r.URL.Query().Get("last"); lastStr != "" {
		last, err := strconv.Atoi(lastStr)
		if err != nil || last < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid last: "+lastStr)
			return
		}
		if last < len(history) {
			history = history[len(history)-last:]
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"summary":     collector.Summary(),
		"generations": history,
	})
}

// handleMetricsStream handles GET /v1/runs/{id}/metrics/stream as Server-Sent
// Events: status_change, generation and a final complete event.
func (s *HTTPServer) handleMetricsStream(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	interval := 500 * time.Millisecond
	if intervalStr := r.URL.Query().Get("interval_ms"); intervalStr != "" {
		if intervalMs, err := strconv.ParseInt(intervalStr, 10, 64); err == nil && intervalMs > 0 {
			interval = time.Duration(intervalMs) * time.Millisecond
		}
	}

	flush := func() {
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}

	previousStatus := rec.Run.Status
	s.sendSSEEvent(w, "status_change", map[string]any{"status": previousStatus})
	flush()

	lastSent := -1
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		// Generations are sent before the status so a terminal run's final
		// statistics precede the complete event.
		if collector, ok := s.store.GetCollector(runID); ok {
			for _, g := range collector.History() {
				if g.Generation <= lastSent {
					continue
				}
				s.sendSSEEvent(w, "generation", map[string]any{"stats": g})
				lastSent = g.Generation
			}
		}

		rec, ok := s.store.Get(runID)
		if !ok {
			s.sendSSEEvent(w, "error", map[string]any{"error": "run not found"})
			flush()
			return
		}
		if rec.Run.Status != previousStatus {
			s.sendSSEEvent(w, "status_change", map[string]any{"status": rec.Run.Status})
			previousStatus = rec.Run.Status
		}
		if rec.Run.Status.IsTerminal() {
			s.sendSSEEvent(w, "complete", map[string]any{
				"status": rec.Run.Status,
				"result": rec.Run.Result,
			})
			flush()
			return
		}
		flush()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sendSSEEvent sends a Server-Sent Event
func (s *HTTPServer) sendSSEEvent(w http.ResponseWriter, eventType string, data map[string]any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to marshal SSE event data", "error", err)
		return
	}

	// SSE streams are best-effort; write errors are only logged
	if _, err := w.Write([]byte("event: " + eventType + "\n")); err != nil {
		logger.Error("failed to write SSE event header", "error", err)
		return
	}
	if _, err := w.Write([]byte("data: " + string(jsonData) + "\n\n")); err != nil {
		logger.Error("failed to write SSE event data", "error", err)
		return
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrRunIDMissing):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunExists):
		return http.StatusConflict
	case errors.Is(err, ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRunTerminal):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
