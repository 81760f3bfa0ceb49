package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ibis-project/kedro-ibis-tutorial/internal/project"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/config"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/shared/logging"
	"github.com/ibis-project/kedro-ibis-tutorial/internal/storage"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type RunService interface {
	SubmitRun(pipeline string, nodes []string) (*storage.Run, error)
	GetRun(id uuid.UUID) (*storage.Run, error)
	GetRuns(filter storage.RunFilter) ([]*storage.Run, int, error)
	Pipelines() ([]project.PipelineInfo, error)
}

type API struct {
	runs   RunService
	logger logging.Logger
}

func NewAPI(runs RunService, logger logging.Logger) *API {
	return &API{runs: runs, logger: logger}
}

func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/runs", a.submitRun)
	mux.HandleFunc("GET /api/runs", a.listRuns)
	mux.HandleFunc("GET /api/runs/{id}", a.getRun)
	mux.HandleFunc("GET /api/pipelines", a.listPipelines)
}

// submitRun handles POST /api/runs
func (a *API) submitRun(w http.ResponseWriter, r *http.Request) {
	var req SubmitRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	annotateRun(r, "pipeline", req.Pipeline)
	run, err := a.runs.SubmitRun(req.Pipeline, req.Nodes)
	if err != nil {
		if errors.Is(err, project.ErrInvalidSelection) {
			a.respondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		a.logger.Error("Failed to submit run", "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to submit run", "")
		return
	}

	annotateRun(r, "run_id", run.ID.String())
	a.respondJSON(w, http.StatusCreated, mapRunToSubmitResponse(run))
}

// getRun handles GET /api/runs/{id}
func (a *API) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid run ID", err.Error())
		return
	}

	annotateRun(r, "run_id", id.String())
	run, err := a.runs.GetRun(id)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			a.respondError(w, http.StatusNotFound, "run not found", "")
			return
		}
		a.logger.Error("Failed to get run", "run_id", id.String(), "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to get run", "")
		return
	}

	annotateRun(r, "pipeline", run.Pipeline, "run_status", string(run.Status))
	a.respondJSON(w, http.StatusOK, mapRunToGetResponse(run))
}

// listRuns handles GET /api/runs with filters and pagination
func (a *API) listRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := storage.RunFilter{Limit: defaultLimit}
	if s := query.Get("status"); s != "" {
		status, ok := storage.ParseRunStatus(s)
		if !ok {
			a.respondError(w, http.StatusBadRequest, "invalid status", s)
			return
		}
		filter.Status = &status
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = min(l, maxLimit)
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	runs, total, err := a.runs.GetRuns(filter)
	if err != nil {
		a.logger.Error("Failed to list runs", "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to list runs", "")
		return
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, mapRunToSummary(run))
	}

	var nextOffset *int
	if end := filter.Offset + len(runs); end < total {
		nextOffset = &end
	}

	a.respondJSON(w, http.StatusOK, ListRunsResponse{
		Runs:       summaries,
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		NextOffset: nextOffset,
	})
}

// listPipelines handles GET /api/pipelines
func (a *API) listPipelines(w http.ResponseWriter, _ *http.Request) {
	infos, err := a.runs.Pipelines()
	if err != nil {
		a.logger.Error("Failed to list pipelines", "error", err)
		a.respondError(w, http.StatusInternalServerError, "failed to list pipelines", "")
		return
	}
	a.respondJSON(w, http.StatusOK, mapPipelines(infos))
}

func (a *API) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, data, a.logger)
}

func writeJSON(w http.ResponseWriter, statusCode int, data any, logger logging.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func (a *API) respondError(w http.ResponseWriter, statusCode int, error string, message string) {
	resp := ErrorResponse{
		Error:   error,
		Message: message,
		Code:    statusCode,
	}
	a.respondJSON(w, statusCode, resp)
}

func NewServer(cfg config.ServerConfig, runs RunService, logger logging.Logger) *http.Server {
	api := NewAPI(runs, logger)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := ChainMiddleware(
		mux,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
	)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
