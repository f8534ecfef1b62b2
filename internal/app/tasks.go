package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/pkg/metrics"
)

type taskEntry struct {
	task model.Task
	done chan struct{}
}

// taskRegistry tracks embedding task status. Finished tasks are kept up to
// retention (0 = unbounded), oldest dropped first.
type taskRegistry struct {
	mu        sync.Mutex
	tasks     map[string]*taskEntry
	finished  []string
	retention int
}

func newTaskRegistry(retention int) *taskRegistry {
	return &taskRegistry{tasks: make(map[string]*taskEntry), retention: retention}
}

func (r *taskRegistry) create(kind model.TaskKind, entityID, text string, digest uint64) model.Task {
	t := model.Task{
		ID:          uuid.NewString(),
		Kind:        kind,
		EntityID:    entityID,
		Text:        text,
		Digest:      digest,
		Status:      model.TaskPending,
		SubmittedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.tasks[t.ID] = &taskEntry{task: t, done: make(chan struct{})}
	r.mu.Unlock()
	return t
}

// drop forgets a task that never reached the queue.
func (r *taskRegistry) drop(id string) {
	r.mu.Lock()
	delete(r.tasks, id)
	r.mu.Unlock()
}

func (r *taskRegistry) start(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.tasks[id]; ok && e.task.Status == model.TaskPending {
		e.task.Status = model.TaskRunning
	}
}

func (r *taskRegistry) finish(id string, err error, skipped bool) model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[id]
	if !ok || e.task.Status.Terminal() {
		if ok {
			return e.task
		}
		return model.Task{}
	}
	e.task.FinishedAt = time.Now().UTC()
	e.task.Skipped = skipped
	if err != nil {
		e.task.Status = model.TaskFailed
		e.task.Error = err.Error()
	} else {
		e.task.Status = model.TaskCompleted
	}
	close(e.done)
	metrics.RecordTaskFinished(string(e.task.Status))

	r.finished = append(r.finished, id)
	for r.retention > 0 && len(r.finished) > r.retention {
		delete(r.tasks, r.finished[0])
		r.finished = r.finished[1:]
	}
	return e.task
}

func (r *taskRegistry) get(id string) (model.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return e.task, true
}

// await blocks until the task is terminal or ctx is done.
func (r *taskRegistry) await(ctx context.Context, id string) (model.Task, bool, error) {
	r.mu.Lock()
	e, ok := r.tasks[id]
	r.mu.Unlock()
	if !ok {
		return model.Task{}, false, nil
	}
	select {
	case <-e.done:
	case <-ctx.Done():
		return model.Task{}, true, ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return e.task, true, nil
}

func (r *taskRegistry) counts() map[model.TaskStatus]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.TaskStatus]int{}
	for _, e := range r.tasks {
		out[e.task.Status]++
	}
	return out
}
