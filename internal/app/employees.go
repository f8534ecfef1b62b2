package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/teamfit/internal/domain/embedding"
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/skills"
	"github.com/okian/teamfit/internal/domain/team"
	"github.com/okian/teamfit/internal/domain/vector"
)

// Resume merge caps.
const (
	maxMergedSkills = 40
	maxMergedItems  = 10
)

// EmployeeInput creates or replaces an employee profile.
type EmployeeInput struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           model.Role `json:"role"`
	Skills         []string   `json:"skills"`
	Experience     float64    `json:"experience"`
	Certifications []string   `json:"certifications"`
	PastProjects   []string   `json:"past_projects"`
}

// UpsertEmployee stores the employee and submits its embedding task.
// Team membership and the resume flag survive a replace.
func (s *Service) UpsertEmployee(ctx context.Context, in EmployeeInput) (model.Employee, model.Task, error) {
	if !s.isStarted() {
		return model.Employee{}, model.Task{}, ErrNotStarted
	}
	set, err := skills.New(in.Skills...)
	if err != nil {
		return model.Employee{}, model.Task{}, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	e := model.Employee{
		ID:             strings.TrimSpace(in.ID),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Role:           in.Role,
		Skills:         set,
		Experience:     in.Experience,
		Certifications: compact(in.Certifications, 0),
		PastProjects:   compact(in.PastProjects, 0),
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if cur, err := s.catalog.Employee(ctx, e.ID); err == nil {
		e.ResumeUploaded = cur.ResumeUploaded
	}

	prev, existed, err := s.catalog.PutEmployee(ctx, e)
	if err != nil {
		return model.Employee{}, model.Task{}, err
	}
	stored, err := s.catalog.Employee(ctx, e.ID)
	if err != nil {
		return model.Employee{}, model.Task{}, err
	}
	if existed && stored.TeamID != "" && profileChanged(prev, stored) {
		s.cache.Invalidate(stored.TeamID, team.ReasonMemberProfile)
		if err := s.refresh(ctx, stored.TeamID); err != nil {
			return model.Employee{}, model.Task{}, err
		}
	}

	t, err := s.submit(ctx, model.TaskEmployee, stored.ID, embedding.EmployeeText(stored, ""))
	if err != nil {
		return model.Employee{}, model.Task{}, err
	}
	return stored, t, nil
}

// IngestResume merges extractor output into an existing employee and submits
// an embedding of the merged profile plus the raw resume text. Skills are
// unioned, experience takes the larger value, certifications and past
// projects are unioned.
func (s *Service) IngestResume(ctx context.Context, employeeID string, ex model.Extraction) (model.Employee, model.Task, error) {
	if !s.isStarted() {
		return model.Employee{}, model.Task{}, ErrNotStarted
	}
	if math.IsNaN(ex.Experience) || math.IsInf(ex.Experience, 0) || ex.Experience < 0 {
		return model.Employee{}, model.Task{}, fmt.Errorf("%w: extracted experience must be a finite non-negative number", model.ErrInvalidInput)
	}
	extracted, err := skills.New(ex.Skills...)
	if err != nil {
		return model.Employee{}, model.Task{}, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}

	e, err := s.catalog.UpdateEmployee(ctx, employeeID, func(e *model.Employee) error {
		merged := skills.Union(e.Skills, extracted)
		if merged.Len() > maxMergedSkills {
			merged = skills.MustNew(merged.Displays()[:maxMergedSkills]...)
		}
		e.Skills = merged
		e.Experience = max(e.Experience, ex.Experience)
		e.Certifications = compact(append(slices.Clone(e.Certifications), ex.Certifications...), maxMergedItems)
		e.PastProjects = compact(append(slices.Clone(e.PastProjects), ex.PastProjects...), maxMergedItems)
		e.ResumeUploaded = true
		return nil
	})
	if err != nil {
		return model.Employee{}, model.Task{}, err
	}
	if e.TeamID != "" {
		s.cache.Invalidate(e.TeamID, team.ReasonMemberProfile)
		if err := s.refresh(ctx, e.TeamID); err != nil {
			return model.Employee{}, model.Task{}, err
		}
	}

	t, err := s.submit(ctx, model.TaskEmployee, e.ID, embedding.EmployeeText(e, ex.RawText))
	if err != nil {
		return model.Employee{}, model.Task{}, err
	}
	return e, t, nil
}

// DeleteEmployee removes the employee, its embedding and its team membership.
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	teamID, err := s.catalog.DeleteEmployee(ctx, id)
	if err != nil {
		return err
	}
	if err := s.forgetVector(ctx, vector.Key{Kind: vector.KindEmployee, ID: id}); err != nil {
		return fmt.Errorf("delete employee %s embedding: %w", id, err)
	}
	if teamID != "" {
		s.cache.Invalidate(teamID, team.ReasonMemberLeft)
		return s.refresh(ctx, teamID)
	}
	return nil
}

// Employee returns one employee.
func (s *Service) Employee(ctx context.Context, id string) (model.Employee, error) {
	return s.catalog.Employee(ctx, id)
}

// Employees returns every employee ordered by id.
func (s *Service) Employees(ctx context.Context) []model.Employee {
	return s.catalog.Employees(ctx)
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// profileChanged reports whether a change affects team derived state.
func profileChanged(a, b model.Employee) bool {
	return a.Experience != b.Experience || !slices.Equal(a.Skills.Keys(), b.Skills.Keys())
}

// compact trims entries, drops blanks and duplicates, and keeps at most
// limit items (0 = no limit).
func compact(in []string, limit int) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
