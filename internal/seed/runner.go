// Package seed loads the demo organization into a running teamfit service
// and checks that the rankings it serves are consistent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/okian/teamfit/pkg/logger"
)

// Run seeds the service at cfg.BaseURL with the demo dataset.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	return RunDataset(ctx, cfg, Demo())
}

// RunDataset seeds the service with d, waits for every embedding task and,
// when cfg.Verify is set, checks the resulting rankings.
func RunDataset(ctx context.Context, cfg *Config, d Dataset) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("seed")
	c := NewClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})

	log.Info(ctx, "starting teamfit seed",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("employees", len(d.Employees)),
		logger.Int("teams", len(d.Teams)),
		logger.Int("projects", len(d.Projects)),
		logger.Duration("timeout", cfg.Timeout))

	if err := c.Get(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	empTasks, err := submitAll(ctx, cfg, d.Employees, func(ctx context.Context, e Employee) (string, error) {
		var ack accepted
		err := c.Post(ctx, "/employees", e, &ack, http.StatusAccepted)
		return ack.TaskID, err
	})
	if err != nil {
		return stats, fmt.Errorf("employee submission failed: %w", err)
	}
	stats.EmployeesSubmitted = len(empTasks)
	log.Info(ctx, "employees submitted", logger.Int("count", stats.EmployeesSubmitted))

	for _, t := range d.Teams {
		if err := c.Post(ctx, "/teams", t, nil, http.StatusCreated); err != nil {
			return stats, fmt.Errorf("create team %s: %w", t.ID, err)
		}
		stats.TeamsCreated++
		if cfg.Verbose {
			log.Info(ctx, "team created",
				logger.String("team", t.ID),
				logger.Int("members", len(t.MemberIDs)),
				logger.String("lead", t.LeadID))
		}
	}

	projTasks, err := submitAll(ctx, cfg, d.Projects, func(ctx context.Context, p Project) (string, error) {
		var ack accepted
		err := c.Post(ctx, "/projects", p, &ack, http.StatusAccepted)
		return ack.TaskID, err
	})
	if err != nil {
		return stats, fmt.Errorf("project submission failed: %w", err)
	}
	stats.ProjectsSubmitted = len(projTasks)
	log.Info(ctx, "projects submitted", logger.Int("count", stats.ProjectsSubmitted))

	if err := awaitTasks(ctx, cfg, c, append(empTasks, projTasks...), stats); err != nil {
		return stats, err
	}

	if cfg.Verify {
		if err := verify(ctx, cfg, c, d, stats); err != nil {
			return stats, fmt.Errorf("result verification failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// submitAll posts items on cfg.Workers goroutines and returns the task ids
// in input order.
func submitAll[T any](ctx context.Context, cfg *Config, items []T, post func(context.Context, T) (string, error)) ([]string, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	ids := make([]string, len(items))
	errs := make([]error, len(items))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				ids[i], errs[i] = post(ctx, items[i])
			}
		}()
	}
	for i := range items {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return ids, nil
}

// awaitTasks long-polls every task until it reaches a terminal status.
func awaitTasks(ctx context.Context, cfg *Config, c *Client, ids []string, stats *Stats) error {
	log := logger.Get().Named("seed")
	log.Info(ctx, "waiting for embedding tasks", logger.Int("tasks", len(ids)))

	tasks, err := submitAll(ctx, cfg, ids, func(ctx context.Context, id string) (string, error) {
		for {
			var t task
			if err := c.Get(ctx, "/tasks/"+url.PathEscape(id)+"?wait=1", &t); err != nil {
				return "", err
			}
			switch t.Status {
			case taskStatusCompleted:
				if t.Skipped {
					return "skipped", nil
				}
				return taskStatusCompleted, nil
			case taskStatusFailed:
				log.Warn(ctx, "embedding task failed",
					logger.String("task_id", t.ID),
					logger.String("entity_id", t.Entity),
					logger.String("error", t.Error))
				return taskStatusFailed, nil
			}
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
	})
	if err != nil {
		return fmt.Errorf("await tasks: %w", err)
	}

	for _, s := range tasks {
		switch s {
		case taskStatusCompleted:
			stats.TasksCompleted++
		case taskStatusFailed:
			stats.TasksFailed++
		default:
			stats.TasksSkipped++
		}
	}
	log.Info(ctx, "embedding tasks finished",
		logger.Int("completed", stats.TasksCompleted),
		logger.Int("skipped", stats.TasksSkipped),
		logger.Int("failed", stats.TasksFailed))
	if stats.TasksFailed > 0 {
		return fmt.Errorf("%d embedding tasks failed", stats.TasksFailed)
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("employeesSubmitted", stats.EmployeesSubmitted),
		logger.Int("teamsCreated", stats.TeamsCreated),
		logger.Int("projectsSubmitted", stats.ProjectsSubmitted),
		logger.Int("tasksCompleted", stats.TasksCompleted),
		logger.Int("tasksSkipped", stats.TasksSkipped),
		logger.Int("rankingsChecked", stats.RankingsChecked),
		logger.Int("expectedTopMisses", stats.ExpectedTopMisses),
		logger.Int("evaluationsStored", stats.EvaluationsStored),
		logger.Duration("duration", stats.Duration))
}
