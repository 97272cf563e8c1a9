package gripd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GripSim-25-26J-441/control-core/internal/safety"
	"github.com/GripSim-25-26J-441/control-core/internal/sim"
	"github.com/GripSim-25-26J-441/control-core/internal/vision"
	"github.com/GripSim-25-26J-441/control-core/pkg/logger"
	"github.com/GripSim-25-26J-441/control-core/pkg/models"
)

// maxScanBytes caps classify upload size
const maxScanBytes = 8 << 20

// HTTPServer exposes the run store, executor, and classifier as a JSON API
type HTTPServer struct {
	mux        *http.ServeMux
	store      *RunStore
	executor   *RunExecutor
	classifier vision.Classifier
}

// NewHTTPServer wires the API routes
func NewHTTPServer(store *RunStore, executor *RunExecutor, classifier vision.Classifier) *HTTPServer {
	s := &HTTPServer{
		mux:        http.NewServeMux(),
		store:      store,
		executor:   executor,
		classifier: classifier,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/tissues", s.handleTissues)
	s.mux.HandleFunc("/v1/classify", s.handleClassify)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)

	return s
}

// Handler returns the root handler
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTissues handles GET /v1/tissues
func (s *HTTPServer) handleTissues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"tissues": s.executor.Table().Profiles(),
	})
}

// handleClassify handles POST /v1/classify with a raw image body.
// Classification is best-effort: undecodable input yields the Unknown
// profile rather than an error.
func (s *HTTPServer) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScanBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "scan too large")
		return
	}

	detected := vision.ClassifyBytes(s.classifier, data)
	profile := s.executor.Table().LookupOrUnknown(detected)

	logger.Info("scan classified", "detected", detected, "bytes", len(data))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"detected": detected,
		"profile":  profile,
	})
}

// handleRuns handles /v1/runs
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
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	if runID, ok := strings.CutSuffix(path, ":start"); ok {
		s.requirePost(w, r, func() { s.handleStartRun(w, runID) })
		return
	}
	if runID, ok := strings.CutSuffix(path, ":stop"); ok {
		s.requirePost(w, r, func() { s.handleStopRun(w, runID) })
		return
	}
	if runID, ok := strings.CutSuffix(path, "/result"); ok {
		s.requireGet(w, r, func() { s.handleRunResult(w, runID) })
		return
	}
	if runID, ok := strings.CutSuffix(path, "/series"); ok {
		s.requireGet(w, r, func() { s.handleRunSeries(w, r, runID) })
		return
	}
	if runID, ok := strings.CutSuffix(path, "/log"); ok {
		s.requireGet(w, r, func() { s.handleRunLog(w, runID) })
		return
	}

	s.requireGet(w, r, func() { s.handleGetRun(w, path) })
}

func (s *HTTPServer) requirePost(w http.ResponseWriter, r *http.Request, fn func()) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	fn()
}

func (s *HTTPServer) requireGet(w http.ResponseWriter, r *http.Request, fn func()) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	fn()
}

// handleCreateRun handles POST /v1/runs
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RunID string    `json:"run_id,omitempty"`
		Input *RunInput `json:"input"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Input == nil {
		s.writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	rec, err := s.store.Create(req.RunID, req.Input)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			s.writeError(w, http.StatusConflict, err.Error())
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run created", "run_id", rec.ID, "mode", rec.Input.Mode)
	s.writeJSON(w, http.StatusCreated, map[string]any{"run": rec})
}

// handleListRuns handles GET /v1/runs
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > 1000 {
				limit = 1000
			}
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": s.store.List(limit)})
}

func (s *HTTPServer) handleStartRun(w http.ResponseWriter, runID string) {
	rec, err := s.executor.Start(runID)
	if err != nil {
		s.writeExecutorError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": rec})
}

func (s *HTTPServer) handleStopRun(w http.ResponseWriter, runID string) {
	rec, err := s.executor.Stop(runID)
	if err != nil {
		s.writeExecutorError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": rec})
}

func (s *HTTPServer) handleGetRun(w http.ResponseWriter, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found: "+runID)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": rec})
}

func (s *HTTPServer) handleRunResult(w http.ResponseWriter, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found: "+runID)
		return
	}
	if rec.Result == nil {
		s.writeError(w, http.StatusConflict, "run has no result yet: "+runID)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": rec.Result})
}

// bandedSample is a series sample with its safety classification
type bandedSample struct {
	TimeS  float64     `json:"time_s"`
	ForceN float64     `json:"force_n"`
	Band   safety.Band `json:"band"`
}

// handleRunSeries handles GET /v1/runs/{id}/series. The optional
// warn_fraction query parameter moves the warning band boundary.
func (s *HTTPServer) handleRunSeries(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found: "+runID)
		return
	}
	if rec.Result == nil {
		s.writeError(w, http.StatusConflict, "run has no result yet: "+runID)
		return
	}

	warnFraction := 0.0
	if v := r.URL.Query().Get("warn_fraction"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid warn_fraction: "+v)
			return
		}
		warnFraction = parsed
	}

	profile := s.executor.Table().LookupOrUnknown(rec.Result.Tissue)
	thresholds := safety.NewThresholds(profile.BreakingPointN, warnFraction)

	banded := make([]bandedSample, 0, len(rec.Result.Run.Series))
	for _, sample := range rec.Result.Run.Series {
		banded = append(banded, bandedSample{
			TimeS:  sample.TimeS,
			ForceN: sample.ForceN,
			Band:   thresholds.Classify(sample.ForceN),
		})
	}

	// Ghost curves: the rejected tuning candidates, series only
	var ghosts [][]models.Sample
	if rec.Result.Tuning != nil {
		ghosts = make([][]models.Sample, 0, len(rec.Result.Tuning.Rejected))
		for _, rejected := range rec.Result.Tuning.Rejected {
			ghosts = append(ghosts, rejected.Series)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"target_n":         rec.Result.Run.TargetN,
		"breaking_point_n": thresholds.BreakingPointN,
		"warn_level_n":     thresholds.WarnLevelN(),
		"samples":          banded,
		"ghosts":           ghosts,
	})
}

// handleRunLog handles GET /v1/runs/{id}/log, serving the decision log
// as plain text
func (s *HTTPServer) handleRunLog(w http.ResponseWriter, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found: "+runID)
		return
	}
	if rec.Result == nil {
		s.writeError(w, http.StatusConflict, "run has no result yet: "+runID)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, rec.Result.Log); err != nil {
		logger.Error("failed to write decision log", "run_id", runID, "error", err)
	}
}

// writeExecutorError maps executor errors to HTTP statuses
func (s *HTTPServer) writeExecutorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRunNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRunTerminal):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrRunIDMissing),
		errors.Is(err, ErrUnknownMode),
		errors.Is(err, sim.ErrNonPositiveDuration),
		errors.Is(err, sim.ErrNonPositiveDt),
		errors.Is(err, sim.ErrNegativeGains),
		errors.Is(err, sim.ErrNegativeTarget):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
