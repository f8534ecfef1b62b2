// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/teamfit/internal/app"
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/pkg/logger"
)

const maxBodyBytes = 1 << 20

// statusClientClosedRequest is reported when the client went away mid-request.
const statusClientClosedRequest = 499

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EmployeeDependencies
	TeamDependencies
	ProjectDependencies
	TaskDependencies
	MatchDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	employeesHandler *EmployeesHandler
	teamsHandler     *TeamsHandler
	projectsHandler  *ProjectsHandler
	tasksHandler     *TasksHandler
	matchHandler     *MatchHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		employeesHandler: NewEmployeesHandler(deps),
		teamsHandler:     NewTeamsHandler(deps),
		projectsHandler:  NewProjectsHandler(deps),
		tasksHandler:     NewTasksHandler(deps),
		matchHandler:     NewMatchHandler(deps),
	}
}

type route struct {
	pattern  string
	endpoint string
	handler  http.HandlerFunc
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	routes := []route{
		{"GET /healthz", "healthz", s.healthHandler.HandleHealth},
		{"GET /stats", "stats", s.statsHandler.HandleStats},

		{"POST /employees", "employees", s.employeesHandler.HandleUpsert},
		{"GET /employees", "employees", s.employeesHandler.HandleList},
		{"GET /employees/{id}", "employee", s.employeesHandler.HandleGet},
		{"DELETE /employees/{id}", "employee", s.employeesHandler.HandleDelete},
		{"POST /employees/{id}/resume", "employee_resume", s.employeesHandler.HandleResume},

		{"POST /teams", "teams", s.teamsHandler.HandleCreate},
		{"GET /teams", "teams", s.teamsHandler.HandleList},
		{"GET /teams/{id}", "team", s.teamsHandler.HandleGet},
		{"DELETE /teams/{id}", "team", s.teamsHandler.HandleDelete},
		{"PUT /teams/{id}/members/{employee_id}", "team_member", s.teamsHandler.HandleAddMember},
		{"DELETE /teams/{id}/members/{employee_id}", "team_member", s.teamsHandler.HandleRemoveMember},
		{"PUT /teams/{id}/lead/{employee_id}", "team_lead", s.teamsHandler.HandleSetLead},

		{"POST /projects", "projects", s.projectsHandler.HandleUpsert},
		{"GET /projects", "projects", s.projectsHandler.HandleList},
		{"GET /projects/{id}", "project", s.projectsHandler.HandleGet},
		{"DELETE /projects/{id}", "project", s.projectsHandler.HandleDelete},

		{"GET /tasks/{id}", "task", s.tasksHandler.HandleGet},

		{"GET /projects/{id}/teams", "project_teams", s.matchHandler.HandleTopTeams},
		{"GET /projects/{id}/ranking", "project_ranking", s.matchHandler.HandleRanking},
		{"POST /projects/{id}/evaluations", "project_evaluations", s.matchHandler.HandleEvaluate},
		{"GET /projects/{id}/evaluations", "project_evaluations", s.matchHandler.HandleEvaluations},
		{"GET /teams/{id}/projects", "team_projects", s.matchHandler.HandleTeamProjects},
		{"GET /teams/{id}/projects/{project_id}/score", "team_score", s.matchHandler.HandleScore},
		{"GET /teams/{id}/projects/{project_id}/gap", "team_gap", s.matchHandler.HandleTeamGap},
		{"GET /teams/{id}/heatmap", "team_heatmap", s.matchHandler.HandleHeatmap},
		{"GET /employees/{id}/projects", "employee_projects", s.matchHandler.HandleEmployeeProjects},
		{"GET /employees/{id}/projects/{project_id}/gap", "employee_gap", s.matchHandler.HandleEmployeeGap},
	}
	for _, rt := range routes {
		mux.HandleFunc(rt.pattern, MetricsMiddleware(rt.handler, rt.endpoint))
	}
	logger.Get().Named("api").Debug(ctx, "routes registered", logger.Int("routes", len(routes)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail maps err onto a status code by kind and writes it.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	err = Wrap(op, err)
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, model.ErrMissingEntity):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, model.ErrModelUnavailable), errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.Canceled):
		logger.Get().Named("api").Debug(r.Context(), "request canceled",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
		)
		writeError(w, statusClientClosedRequest, "canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Get().Named("api").Warn(r.Context(), "request timed out",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
		)
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decode reads a JSON request body into v.
func decode(r *http.Request, w http.ResponseWriter, op string, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// limitParam parses the optional limit query parameter. 0 means the default.
func limitParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, name)
	}
	return n, nil
}
