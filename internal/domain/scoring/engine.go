package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/team"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/logger"
	"github.com/okian/teamfit/pkg/metrics"
)

// Profiles resolves team derived state.
type Profiles interface {
	Profile(ctx context.Context, teamID string) (team.Profile, error)
}

// Catalog resolves projects and employees.
type Catalog interface {
	Project(ctx context.Context, id string) (model.Project, error)
	Employee(ctx context.Context, id string) (model.Employee, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithEmptyRequirementCoverage sets the coverage used when a project
// requires no skills.
func WithEmptyRequirementCoverage(v float64) Option {
	return func(e *Engine) { e.emptyCoverage = Clamp(v) }
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine scores teams and employees against projects.
type Engine struct {
	profiles      Profiles
	catalog       Catalog
	vecs          vector.Store
	emptyCoverage float64
	log           logger.Logger
}

// NewEngine builds an Engine.
func NewEngine(profiles Profiles, catalog Catalog, vecs vector.Store, opts ...Option) *Engine {
	e := &Engine{
		profiles:      profiles,
		catalog:       catalog,
		vecs:          vecs,
		emptyCoverage: EmptyCoverageVacuous,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score computes the MatchResult for a team and a project.
func (e *Engine) Score(ctx context.Context, teamID, projectID string) (model.MatchResult, error) {
	start := time.Now()
	p, err := e.profiles.Profile(ctx, teamID)
	if err != nil {
		metrics.RecordScoringError()
		return model.MatchResult{}, fmt.Errorf("score team %s: %w", teamID, err)
	}
	proj, err := e.catalog.Project(ctx, projectID)
	if err != nil {
		metrics.RecordScoringError()
		return model.MatchResult{}, fmt.Errorf("score team %s: %w", teamID, err)
	}
	res, err := e.ScoreProfile(ctx, p, proj)
	if err != nil {
		metrics.RecordScoringError()
		return model.MatchResult{}, err
	}
	res.TeamID = teamID
	metrics.RecordMatchScored(float64(time.Since(start).Microseconds()) / 1000)
	return res, nil
}

// ScoreEmployee evaluates a single employee as a one-member team.
func (e *Engine) ScoreEmployee(ctx context.Context, employeeID, projectID string) (model.MatchResult, error) {
	start := time.Now()
	emp, err := e.catalog.Employee(ctx, employeeID)
	if err != nil {
		metrics.RecordScoringError()
		return model.MatchResult{}, fmt.Errorf("score employee %s: %w", employeeID, err)
	}
	proj, err := e.catalog.Project(ctx, projectID)
	if err != nil {
		metrics.RecordScoringError()
		return model.MatchResult{}, fmt.Errorf("score employee %s: %w", employeeID, err)
	}
	emb, err := e.vecs.Get(ctx, vector.Key{Kind: vector.KindEmployee, ID: employeeID})
	if err != nil && !errors.Is(err, vector.ErrNotFound) {
		metrics.RecordScoringError()
		return model.MatchResult{}, fmt.Errorf("score employee %s: %w", employeeID, err)
	}
	res, err := e.ScoreProfile(ctx, team.Solo(emp, emb), proj)
	if err != nil {
		metrics.RecordScoringError()
		return model.MatchResult{}, err
	}
	res.EmployeeID = employeeID
	metrics.RecordMatchScored(float64(time.Since(start).Microseconds()) / 1000)
	return res, nil
}

// ScoreProfile scores an already resolved profile. The project embedding is
// read from the vector store; a missing embedding on either side yields a
// similarity of 0.
func (e *Engine) ScoreProfile(ctx context.Context, p team.Profile, proj model.Project) (model.MatchResult, error) {
	var sim float64
	if p.Embedding != nil {
		pv, err := e.vecs.Get(ctx, vector.Key{Kind: vector.KindProject, ID: proj.ID})
		switch {
		case err == nil:
			dot, derr := vector.Dot(p.Embedding, pv)
			if derr != nil {
				return model.MatchResult{}, fmt.Errorf("compare with project %s: %w", proj.ID, derr)
			}
			sim = Similarity(dot)
		case errors.Is(err, vector.ErrNotFound):
			e.log.Debug(ctx, "project has no embedding yet",
				logger.String("project_id", proj.ID),
				logger.Int("members", p.MemberCount))
		default:
			return model.MatchResult{}, fmt.Errorf("load project %s embedding: %w", proj.ID, err)
		}
	}

	c := Components{
		EmbeddingSimilarity: sim,
		SkillCoverage:       SkillCoverage(proj.RequiredSkills, p.Skills, e.emptyCoverage),
		ExperienceMatch:     ExperienceMatch(p.AvgExperience, proj.RequiredExperience),
		TeamBalance:         Clamp(p.Balance),
	}
	final := Final(c)
	return model.MatchResult{
		ProjectID:           proj.ID,
		EmbeddingSimilarity: c.EmbeddingSimilarity,
		SkillCoverage:       c.SkillCoverage,
		ExperienceMatch:     c.ExperienceMatch,
		TeamBalance:         c.TeamBalance,
		FinalScore:          final,
		MatchPercentage:     model.Percentage(final),
	}, nil
}
