package model

import "time"

// TaskKind names the entity an embedding task refreshes.
type TaskKind string

const (
	TaskEmployee TaskKind = "employee"
	TaskProject  TaskKind = "project"
)

// TaskStatus is the lifecycle state of an embedding task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task is one unit of embedding work: encode Text and store it for the entity.
// Completion means the vector is stored and affected team state is recomputed.
type Task struct {
	ID          string     `json:"task_id"`
	Kind        TaskKind   `json:"kind"`
	EntityID    string     `json:"entity_id"`
	Text        string     `json:"-"`
	Digest      uint64     `json:"-"`
	Status      TaskStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	Skipped     bool       `json:"skipped,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	FinishedAt  time.Time  `json:"finished_at,omitzero"`
}
