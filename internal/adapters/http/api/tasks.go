package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/teamfit/internal/domain/model"
)

// maxTaskWait bounds GET /tasks/{id}?wait=1.
const maxTaskWait = 30 * time.Second

// TaskDependencies defines the interface for task status lookups.
type TaskDependencies interface {
	Task(ctx context.Context, id string) (model.Task, error)
	AwaitTask(ctx context.Context, id string) (model.Task, error)
}

// TasksHandler handles embedding task requests.
type TasksHandler struct {
	deps TaskDependencies
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(deps TaskDependencies) *TasksHandler {
	return &TasksHandler{deps: deps}
}

// HandleGet handles GET /tasks/{id}. With wait=1 (or true) it blocks until
// the task finishes or maxTaskWait passes, then reports the current status.
func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_task"
	id := r.PathValue("id")

	switch r.URL.Query().Get("wait") {
	case "1", "true":
		ctx, cancel := context.WithTimeout(r.Context(), maxTaskWait)
		defer cancel()
		t, err := h.deps.AwaitTask(ctx, id)
		if err == nil {
			writeJSON(w, http.StatusOK, t)
			return
		}
		if ctx.Err() == nil {
			fail(w, r, op, err)
			return
		}
	}

	t, err := h.deps.Task(r.Context(), id)
	if err != nil {
		fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
