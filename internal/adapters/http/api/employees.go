package api

import (
	"context"
	"net/http"

	service "github.com/okian/teamfit/internal/app"
	"github.com/okian/teamfit/internal/domain/model"
)

// EmployeeDependencies defines the interface for employee operations.
type EmployeeDependencies interface {
	UpsertEmployee(ctx context.Context, in service.EmployeeInput) (model.Employee, model.Task, error)
	IngestResume(ctx context.Context, employeeID string, ex model.Extraction) (model.Employee, model.Task, error)
	DeleteEmployee(ctx context.Context, id string) error
	Employee(ctx context.Context, id string) (model.Employee, error)
	Employees(ctx context.Context) []model.Employee
}

type employeeAccepted struct {
	Employee model.Employee   `json:"employee"`
	TaskID   string           `json:"task_id"`
	Status   model.TaskStatus `json:"status"`
}

// EmployeesHandler handles employee requests.
type EmployeesHandler struct {
	deps EmployeeDependencies
}

// NewEmployeesHandler creates a new employees handler.
func NewEmployeesHandler(deps EmployeeDependencies) *EmployeesHandler {
	return &EmployeesHandler{deps: deps}
}

// HandleUpsert handles POST /employees.
func (h *EmployeesHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	const op = "api.upsert_employee"
	var req service.EmployeeInput
	if err := decode(r, w, op, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	e, t, err := h.deps.UpsertEmployee(r.Context(), req)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, employeeAccepted{Employee: e, TaskID: t.ID, Status: t.Status})
}

// HandleResume handles POST /employees/{id}/resume with extractor output.
func (h *EmployeesHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest_resume"
	var req model.Extraction
	if err := decode(r, w, op, &req); err != nil {
		fail(w, r, op, err)
		return
	}
	e, t, err := h.deps.IngestResume(r.Context(), r.PathValue("id"), req)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, employeeAccepted{Employee: e, TaskID: t.ID, Status: t.Status})
}

// HandleGet handles GET /employees/{id}.
func (h *EmployeesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.deps.Employee(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, "api.get_employee", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleList handles GET /employees.
func (h *EmployeesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Employees(r.Context()))
}

// HandleDelete handles DELETE /employees/{id}.
func (h *EmployeesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteEmployee(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, "api.delete_employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
