package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/teamfit/internal/domain/gap"
	"github.com/okian/teamfit/internal/domain/model"
)

// EmployeeMatch is a project recommendation for an individual employee.
type EmployeeMatch struct {
	model.MatchResult
	ProjectTitle string   `json:"project_title"`
	SkillGap     []string `json:"skill_gap"`
}

// Score scores one team against one project.
func (s *Service) Score(ctx context.Context, teamID, projectID string) (model.MatchResult, error) {
	return s.engine.Score(ctx, teamID, projectID)
}

// TopTeamsFor returns the best-matching teams for a project.
func (s *Service) TopTeamsFor(ctx context.Context, projectID string, limit int) ([]model.MatchResult, error) {
	return s.ranking.TopTeamsFor(ctx, projectID, limit)
}

// RankTeams returns every team ranked for a project.
func (s *Service) RankTeams(ctx context.Context, projectID string) ([]model.MatchResult, error) {
	return s.ranking.RankTeams(ctx, projectID)
}

// TopProjectsForTeam returns the best-matching projects for a team.
func (s *Service) TopProjectsForTeam(ctx context.Context, teamID string, limit int) ([]model.MatchResult, error) {
	return s.ranking.TopProjectsForTeam(ctx, teamID, limit)
}

// TopProjectsForEmployee returns the best-matching projects for an employee
// scored as a one-member team, each with the skills the employee lacks.
func (s *Service) TopProjectsForEmployee(ctx context.Context, employeeID string, limit int) ([]EmployeeMatch, error) {
	results, err := s.ranking.TopProjectsForEmployee(ctx, employeeID, limit)
	if err != nil {
		return nil, err
	}
	e, err := s.catalog.Employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	out := make([]EmployeeMatch, 0, len(results))
	for _, r := range results {
		p, err := s.catalog.Project(ctx, r.ProjectID)
		if err != nil {
			// deleted after ranking
			continue
		}
		out = append(out, EmployeeMatch{
			MatchResult:  r,
			ProjectTitle: p.Title,
			SkillGap:     gap.SkillGap(e.Skills, p.RequiredSkills),
		})
	}
	return out, nil
}

// TeamGap reports which required skills a team covers and lacks.
func (s *Service) TeamGap(ctx context.Context, teamID, projectID string) (gap.Report, error) {
	res, err := s.engine.Score(ctx, teamID, projectID)
	if err != nil {
		return gap.Report{}, err
	}
	t, err := s.catalog.Team(ctx, teamID)
	if err != nil {
		return gap.Report{}, err
	}
	profile, err := s.cache.Profile(ctx, teamID)
	if err != nil {
		return gap.Report{}, err
	}
	p, err := s.catalog.Project(ctx, projectID)
	if err != nil {
		return gap.Report{}, err
	}
	return gap.NewReport(teamID, t.Name, profile.Skills, p, res.MatchPercentage), nil
}

// EmployeeGap reports which required skills an employee covers and lacks.
func (s *Service) EmployeeGap(ctx context.Context, employeeID, projectID string) (gap.Report, error) {
	res, err := s.engine.ScoreEmployee(ctx, employeeID, projectID)
	if err != nil {
		return gap.Report{}, err
	}
	e, err := s.catalog.Employee(ctx, employeeID)
	if err != nil {
		return gap.Report{}, err
	}
	p, err := s.catalog.Project(ctx, projectID)
	if err != nil {
		return gap.Report{}, err
	}
	return gap.NewReport(employeeID, e.Name, e.Skills, p, res.MatchPercentage), nil
}

// Heatmap returns per-member skill coverage for a team.
func (s *Service) Heatmap(ctx context.Context, teamID string) (gap.Heatmap, error) {
	_, members, err := s.catalog.TeamMembers(ctx, teamID)
	if err != nil {
		return gap.Heatmap{}, err
	}
	return gap.BuildHeatmap(teamID, members), nil
}

// Evaluate ranks every team for a project and records the scores on the
// evaluation board, replacing earlier ones. It returns the full standings.
func (s *Service) Evaluate(ctx context.Context, projectID string) ([]model.Evaluation, error) {
	results, err := s.ranking.RankTeams(ctx, projectID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for _, r := range results {
		s.board.Put(ctx, projectID, r.TeamID, r.FinalScore, now)
	}
	return s.board.Standings(ctx, projectID, 0)
}

// Evaluations lists the top n recorded evaluations for a project (0 = all).
func (s *Service) Evaluations(ctx context.Context, projectID string, n int) ([]model.Evaluation, error) {
	if !s.catalog.HasProject(ctx, projectID) {
		return nil, fmt.Errorf("%w: project %s", model.ErrMissingEntity, projectID)
	}
	out, err := s.board.Standings(ctx, projectID, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	return out, nil
}
