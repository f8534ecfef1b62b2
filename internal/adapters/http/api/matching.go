package api

import (
	"context"
	"net/http"

	service "github.com/okian/teamfit/internal/app"
	"github.com/okian/teamfit/internal/domain/gap"
	"github.com/okian/teamfit/internal/domain/model"
)

// MatchDependencies defines the interface for scoring and ranking.
type MatchDependencies interface {
	Score(ctx context.Context, teamID, projectID string) (model.MatchResult, error)
	TopTeamsFor(ctx context.Context, projectID string, limit int) ([]model.MatchResult, error)
	RankTeams(ctx context.Context, projectID string) ([]model.MatchResult, error)
	TopProjectsForTeam(ctx context.Context, teamID string, limit int) ([]model.MatchResult, error)
	TopProjectsForEmployee(ctx context.Context, employeeID string, limit int) ([]service.EmployeeMatch, error)
	TeamGap(ctx context.Context, teamID, projectID string) (gap.Report, error)
	EmployeeGap(ctx context.Context, employeeID, projectID string) (gap.Report, error)
	Heatmap(ctx context.Context, teamID string) (gap.Heatmap, error)
	Evaluate(ctx context.Context, projectID string) ([]model.Evaluation, error)
	Evaluations(ctx context.Context, projectID string, n int) ([]model.Evaluation, error)
}

// MatchHandler handles scoring, ranking and gap requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandleTopTeams handles GET /projects/{id}/teams?limit=N.
func (h *MatchHandler) HandleTopTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_teams"
	limit, err := limitParam(r, "limit")
	if err != nil {
		fail(w, r, op, err)
		return
	}
	out, err := h.deps.TopTeamsFor(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleRanking handles GET /projects/{id}/ranking.
func (h *MatchHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.RankTeams(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, "api.rank_teams", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleEvaluate handles POST /projects/{id}/evaluations.
func (h *MatchHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Evaluate(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, "api.evaluate", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleEvaluations handles GET /projects/{id}/evaluations?limit=N.
func (h *MatchHandler) HandleEvaluations(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluations"
	n, err := limitParam(r, "limit")
	if err != nil {
		fail(w, r, op, err)
		return
	}
	out, err := h.deps.Evaluations(r.Context(), r.PathValue("id"), n)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleTeamProjects handles GET /teams/{id}/projects?limit=N.
func (h *MatchHandler) HandleTeamProjects(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_projects"
	limit, err := limitParam(r, "limit")
	if err != nil {
		fail(w, r, op, err)
		return
	}
	out, err := h.deps.TopProjectsForTeam(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleEmployeeProjects handles GET /employees/{id}/projects?limit=N.
func (h *MatchHandler) HandleEmployeeProjects(w http.ResponseWriter, r *http.Request) {
	const op = "api.employee_projects"
	limit, err := limitParam(r, "limit")
	if err != nil {
		fail(w, r, op, err)
		return
	}
	out, err := h.deps.TopProjectsForEmployee(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleScore handles GET /teams/{id}/projects/{project_id}/score.
func (h *MatchHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Score(r.Context(), r.PathValue("id"), r.PathValue("project_id"))
	if err != nil {
		fail(w, r, "api.score", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleTeamGap handles GET /teams/{id}/projects/{project_id}/gap.
func (h *MatchHandler) HandleTeamGap(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.TeamGap(r.Context(), r.PathValue("id"), r.PathValue("project_id"))
	if err != nil {
		fail(w, r, "api.team_gap", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleEmployeeGap handles GET /employees/{id}/projects/{project_id}/gap.
func (h *MatchHandler) HandleEmployeeGap(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.EmployeeGap(r.Context(), r.PathValue("id"), r.PathValue("project_id"))
	if err != nil {
		fail(w, r, "api.employee_gap", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleHeatmap handles GET /teams/{id}/heatmap.
func (h *MatchHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Heatmap(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, "api.heatmap", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
