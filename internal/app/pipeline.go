package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/teamfit/internal/adapters/mq/queue"
	"github.com/okian/teamfit/internal/domain/dedupe"
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/team"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/logger"
	"github.com/okian/teamfit/pkg/metrics"
)

// errSuperseded ends a task whose key received a newer submission.
var errSuperseded = errors.New("superseded by a newer task")

func taskKey(kind model.TaskKind, entityID string) vector.Key {
	if kind == model.TaskProject {
		return vector.Key{Kind: vector.KindProject, ID: entityID}
	}
	return vector.Key{Kind: vector.KindEmployee, ID: entityID}
}

// submit registers an embedding task for the entity text. Text whose
// fingerprint matches the stored vector completes at once as skipped.
func (s *Service) submit(ctx context.Context, kind model.TaskKind, entityID, text string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Task{}, ErrNotStarted
	}

	key := taskKey(kind, entityID)
	digest := dedupe.Digest(text)
	t := s.tasks.create(kind, entityID, text, digest)

	s.latestMu.Lock()
	s.latest[key] = t.ID
	s.latestMu.Unlock()

	if s.tracker.Unchanged(ctx, key.String(), digest) {
		if _, err := s.vecs.Get(ctx, key); err == nil {
			metrics.RecordEmbeddingSkipped()
			s.clearLatest(key, t.ID)
			return s.tasks.finish(t.ID, nil, true), nil
		}
	}

	if err := s.queue.Enqueue(ctx, t); err != nil {
		s.tasks.drop(t.ID)
		s.clearLatest(key, t.ID)
		if errors.Is(err, queue.ErrFull) {
			return model.Task{}, fmt.Errorf("%w: %s %s", ErrBackpressure, kind, entityID)
		}
		if errors.Is(err, queue.ErrClosed) {
			return model.Task{}, ErrNotStarted
		}
		return model.Task{}, err
	}
	return t, nil
}

// Process executes one embedding task. It implements worker.Processor.
func (s *Service) Process(ctx context.Context, t model.Task) error { //nolint:gocritic // hugeParam: Task is received by value
	s.tasks.start(t.ID)
	err := s.process(ctx, t)
	skipped := errors.Is(err, errSuperseded)
	if skipped {
		err = nil
	}
	s.tasks.finish(t.ID, err, skipped)
	return err
}

func (s *Service) process(ctx context.Context, t model.Task) error { //nolint:gocritic // hugeParam: Task is received by value
	key := taskKey(t.Kind, t.EntityID)

	v, err := s.gen.Embed(ctx, t.Text)
	if err != nil {
		s.clearLatest(key, t.ID)
		return err
	}

	lock := s.stripe(key)
	lock.Lock()
	if !s.isLatest(key, t.ID) {
		lock.Unlock()
		return errSuperseded
	}
	if !s.exists(ctx, t.Kind, t.EntityID) {
		s.clearLatest(key, t.ID)
		lock.Unlock()
		return fmt.Errorf("%w: %s %s", model.ErrMissingEntity, t.Kind, t.EntityID)
	}
	if err := s.vecs.Upsert(ctx, key, v); err != nil {
		s.clearLatest(key, t.ID)
		lock.Unlock()
		return fmt.Errorf("store %s: %w", key, err)
	}
	s.tracker.Record(ctx, key.String(), t.Digest)
	s.clearLatest(key, t.ID)
	lock.Unlock()

	if t.Kind == model.TaskEmployee {
		e, err := s.catalog.Employee(ctx, t.EntityID)
		if err == nil && e.TeamID != "" {
			s.cache.Invalidate(e.TeamID, team.ReasonMemberEmbedding)
			return s.refresh(ctx, e.TeamID)
		}
	}
	return nil
}

func (s *Service) exists(ctx context.Context, kind model.TaskKind, id string) bool {
	if kind == model.TaskProject {
		return s.catalog.HasProject(ctx, id)
	}
	return s.catalog.HasEmployee(ctx, id)
}

func (s *Service) isLatest(key vector.Key, taskID string) bool {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	return s.latest[key] == taskID
}

func (s *Service) clearLatest(key vector.Key, taskID string) {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	if s.latest[key] == taskID {
		delete(s.latest, key)
	}
}

// forgetVector removes the stored vector and fingerprint for key. Pending
// tasks for key are discarded when they finish.
func (s *Service) forgetVector(ctx context.Context, key vector.Key) error {
	lock := s.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	s.latestMu.Lock()
	delete(s.latest, key)
	s.latestMu.Unlock()

	s.tracker.Forget(ctx, key.String())
	return s.vecs.Delete(ctx, key)
}

// refresh recomputes a team profile so its stored vector is current.
// A team deleted in the meantime is not an error.
func (s *Service) refresh(ctx context.Context, teamID string) error {
	if _, err := s.cache.Profile(ctx, teamID); err != nil {
		if errors.Is(err, model.ErrMissingEntity) {
			return nil
		}
		s.logger.Warn(ctx, "team recompute failed", logger.String("team_id", teamID), logger.Error(err))
		return fmt.Errorf("recompute team %s: %w", teamID, err)
	}
	return nil
}

// Task returns the status of a task.
func (s *Service) Task(ctx context.Context, id string) (model.Task, error) {
	t, ok := s.tasks.get(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: task %s", model.ErrMissingEntity, id)
	}
	return t, nil
}

// AwaitTask blocks until the task completes or fails, or ctx is done.
func (s *Service) AwaitTask(ctx context.Context, id string) (model.Task, error) {
	t, ok, err := s.tasks.await(ctx, id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: task %s", model.ErrMissingEntity, id)
	}
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}
