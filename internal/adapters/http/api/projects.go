package api

import (
	"context"
	"net/http"

	service "github.com/okian/teamfit/internal/app"
	"github.com/okian/teamfit/internal/domain/model"
)

// ProjectDependencies defines the interface for project operations.
type ProjectDependencies interface {
	UpsertProject(ctx context.Context, in service.ProjectInput) (model.Project, model.Task, error)
	DeleteProject(ctx context.Context, id string) error
	Project(ctx context.Context, id string) (model.Project, error)
	Projects(ctx context.Context) []model.Project
}

type projectAccepted struct {
	Project model.Project    `json:"project"`
	TaskID  string           `json:"task_id"`
	Status  model.TaskStatus `json:"status"`
}

// ProjectsHandler handles project requests.
type ProjectsHandler struct {
	deps ProjectDependencies
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(deps ProjectDependencies) *ProjectsHandler {
	return &ProjectsHandler{deps: deps}
}

// HandleUpsert handles POST /projects.
func (h *ProjectsHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	const op = "api.upsert_project"
	var req service.ProjectInput
	if err := decode(r, w, op, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	p, t, err := h.deps.UpsertProject(r.Context(), req)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, projectAccepted{Project: p, TaskID: t.ID, Status: t.Status})
}

// HandleGet handles GET /projects/{id}.
func (h *ProjectsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Project(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, "api.get_project", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleList handles GET /projects.
func (h *ProjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Projects(r.Context()))
}

// HandleDelete handles DELETE /projects/{id}.
func (h *ProjectsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, "api.delete_project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
