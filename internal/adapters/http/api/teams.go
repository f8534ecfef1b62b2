package api

import (
	"context"
	"net/http"

	service "github.com/okian/teamfit/internal/app"
	"github.com/okian/teamfit/internal/domain/model"
)

// TeamDependencies defines the interface for team operations.
type TeamDependencies interface {
	CreateTeam(ctx context.Context, in service.TeamInput) (model.Team, error)
	AddMember(ctx context.Context, teamID, employeeID string) (model.Team, error)
	RemoveMember(ctx context.Context, teamID, employeeID string) (model.Team, error)
	SetLead(ctx context.Context, teamID, employeeID string) (model.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
	Team(ctx context.Context, teamID string) (model.Team, error)
	Teams(ctx context.Context) []service.TeamSummary
}

// TeamsHandler handles team requests.
type TeamsHandler struct {
	deps TeamDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// HandleCreate handles POST /teams.
func (h *TeamsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team"
	var req service.TeamInput
	if err := decode(r, w, op, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	t, err := h.deps.CreateTeam(r.Context(), req)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HandleAddMember handles PUT /teams/{id}/members/{employee_id}.
func (h *TeamsHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.AddMember(r.Context(), r.PathValue("id"), r.PathValue("employee_id"))
	if err != nil {
		fail(w, r, "api.add_member", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleRemoveMember handles DELETE /teams/{id}/members/{employee_id}.
func (h *TeamsHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.RemoveMember(r.Context(), r.PathValue("id"), r.PathValue("employee_id"))
	if err != nil {
		fail(w, r, "api.remove_member", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleSetLead handles PUT /teams/{id}/lead/{employee_id}.
func (h *TeamsHandler) HandleSetLead(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.SetLead(r.Context(), r.PathValue("id"), r.PathValue("employee_id"))
	if err != nil {
		fail(w, r, "api.set_lead", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleGet handles GET /teams/{id}.
func (h *TeamsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.Team(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, "api.get_team", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleList handles GET /teams.
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Teams(r.Context()))
}

// HandleDelete handles DELETE /teams/{id}.
func (h *TeamsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteTeam(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, "api.delete_team", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
