package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/teamfit/internal/domain/embedding"
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/skills"
	"github.com/okian/teamfit/internal/domain/vector"
)

// ProjectInput creates or replaces a project.
type ProjectInput struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	RequiredSkills     []string `json:"required_skills"`
	RequiredExperience float64  `json:"required_experience"`
}

// UpsertProject stores the project and submits its embedding task.
func (s *Service) UpsertProject(ctx context.Context, in ProjectInput) (model.Project, model.Task, error) {
	if !s.isStarted() {
		return model.Project{}, model.Task{}, ErrNotStarted
	}
	set, err := skills.New(in.RequiredSkills...)
	if err != nil {
		return model.Project{}, model.Task{}, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	p := model.Project{
		ID:                 strings.TrimSpace(in.ID),
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		RequiredSkills:     set,
		RequiredExperience: in.RequiredExperience,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, _, err := s.catalog.PutProject(ctx, p); err != nil {
		return model.Project{}, model.Task{}, err
	}

	t, err := s.submit(ctx, model.TaskProject, p.ID, embedding.ProjectText(p))
	if err != nil {
		return model.Project{}, model.Task{}, err
	}
	return p, t, nil
}

// Project returns one project.
func (s *Service) Project(ctx context.Context, id string) (model.Project, error) {
	return s.catalog.Project(ctx, id)
}

// Projects returns every project ordered by id.
func (s *Service) Projects(ctx context.Context) []model.Project {
	return s.catalog.Projects(ctx)
}

// DeleteProject removes the project, its embedding and its evaluations.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.catalog.DeleteProject(ctx, id); err != nil {
		return err
	}
	if err := s.forgetVector(ctx, vector.Key{Kind: vector.KindProject, ID: id}); err != nil {
		return fmt.Errorf("delete project %s embedding: %w", id, err)
	}
	s.board.RemoveProject(ctx, id)
	return nil
}
