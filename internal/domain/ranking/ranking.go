// Package ranking orders projects for a team or employee, and teams for a
// project, by hybrid final score.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/logger"
	"github.com/okian/teamfit/pkg/metrics"
)

// Scan directions, used as metric labels.
const (
	DirectionTeamsForProject     = "teams_for_project"
	DirectionProjectsForTeam     = "projects_for_team"
	DirectionProjectsForEmployee = "projects_for_employee"
)

// DefaultLimit is the number of results returned when no limit is given.
const DefaultLimit = 5

// Scorer computes match results.
type Scorer interface {
	Score(ctx context.Context, teamID, projectID string) (model.MatchResult, error)
	ScoreEmployee(ctx context.Context, employeeID, projectID string) (model.MatchResult, error)
}

// Catalog enumerates rankable entities.
type Catalog interface {
	HasTeam(ctx context.Context, id string) bool
	HasProject(ctx context.Context, id string) bool
	HasEmployee(ctx context.Context, id string) bool
	TeamIDs(ctx context.Context) []string
	ProjectIDs(ctx context.Context) []string
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultLimit sets the limit used when callers pass limit <= 0.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithMaxLimit caps the number of results per call.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithPrefilter sets the candidate prefilter.
func WithPrefilter(p Prefilter) Option {
	return func(s *Service) {
		if p != nil {
			s.prefilter = p
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// Service ranks candidates. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	scorer       Scorer
	catalog      Catalog
	prefilter    Prefilter
	defaultLimit int
	maxLimit     int
	log          logger.Logger
}

// NewService builds a ranking Service.
func NewService(scorer Scorer, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		scorer:       scorer,
		catalog:      catalog,
		prefilter:    FullScan{},
		defaultLimit: DefaultLimit,
		maxLimit:     100,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxLimit < s.defaultLimit {
		s.maxLimit = s.defaultLimit
	}
	return s
}

// Limit resolves a requested limit: <= 0 means the default, anything above
// the maximum is clamped.
func (s *Service) Limit(n int) int {
	switch {
	case n <= 0:
		return s.defaultLimit
	case n > s.maxLimit:
		return s.maxLimit
	}
	return n
}

// TopTeamsFor returns the best teams for a project, ties broken by lower
// team id.
func (s *Service) TopTeamsFor(ctx context.Context, projectID string, limit int) ([]model.MatchResult, error) {
	return s.teams(ctx, projectID, s.Limit(limit))
}

// RankTeams scores every team against a project.
func (s *Service) RankTeams(ctx context.Context, projectID string) ([]model.MatchResult, error) {
	return s.teams(ctx, projectID, 0)
}

// TopProjectsForTeam returns the best projects for a team, ties broken by
// lower project id.
func (s *Service) TopProjectsForTeam(ctx context.Context, teamID string, limit int) ([]model.MatchResult, error) {
	if !s.catalog.HasTeam(ctx, teamID) {
		return nil, fmt.Errorf("%w: team %s", model.ErrMissingEntity, teamID)
	}
	query := vector.Key{Kind: vector.KindTeam, ID: teamID}
	return s.scan(ctx, DirectionProjectsForTeam, query, vector.KindProject, s.catalog.ProjectIDs(ctx), s.Limit(limit),
		func(ctx context.Context, projectID string) (model.MatchResult, error) {
			return s.scorer.Score(ctx, teamID, projectID)
		}, projectKey)
}

// TopProjectsForEmployee returns the best projects for a single employee.
func (s *Service) TopProjectsForEmployee(ctx context.Context, employeeID string, limit int) ([]model.MatchResult, error) {
	if !s.catalog.HasEmployee(ctx, employeeID) {
		return nil, fmt.Errorf("%w: employee %s", model.ErrMissingEntity, employeeID)
	}
	query := vector.Key{Kind: vector.KindEmployee, ID: employeeID}
	return s.scan(ctx, DirectionProjectsForEmployee, query, vector.KindProject, s.catalog.ProjectIDs(ctx), s.Limit(limit),
		func(ctx context.Context, projectID string) (model.MatchResult, error) {
			return s.scorer.ScoreEmployee(ctx, employeeID, projectID)
		}, projectKey)
}

func (s *Service) teams(ctx context.Context, projectID string, limit int) ([]model.MatchResult, error) {
	if !s.catalog.HasProject(ctx, projectID) {
		return nil, fmt.Errorf("%w: project %s", model.ErrMissingEntity, projectID)
	}
	query := vector.Key{Kind: vector.KindProject, ID: projectID}
	ids := s.catalog.TeamIDs(ctx)
	if limit == 0 {
		// a full ranking must not be narrowed
		return s.rank(ctx, DirectionTeamsForProject, ids, 0,
			func(ctx context.Context, teamID string) (model.MatchResult, error) {
				return s.scorer.Score(ctx, teamID, projectID)
			}, teamKey)
	}
	return s.scan(ctx, DirectionTeamsForProject, query, vector.KindTeam, ids, limit,
		func(ctx context.Context, teamID string) (model.MatchResult, error) {
			return s.scorer.Score(ctx, teamID, projectID)
		}, teamKey)
}

type scoreFunc func(ctx context.Context, candidate string) (model.MatchResult, error)

func teamKey(m model.MatchResult) string    { return m.TeamID }
func projectKey(m model.MatchResult) string { return m.ProjectID }

func (s *Service) scan(ctx context.Context, direction string, query vector.Key, kind vector.Kind, ids []string, limit int, score scoreFunc, key func(model.MatchResult) string) ([]model.MatchResult, error) {
	ids, err := s.prefilter.Candidates(ctx, query, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("prefilter %s: %w", direction, err)
	}
	return s.rank(ctx, direction, ids, limit, score, key)
}

// rank scores every candidate and returns the sorted top limit results
// (all when limit is 0). Partial results are discarded on cancellation.
func (s *Service) rank(ctx context.Context, direction string, ids []string, limit int, score scoreFunc, key func(model.MatchResult) string) ([]model.MatchResult, error) {
	start := time.Now()
	out := make([]model.MatchResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := score(ctx, id)
		if err != nil {
			if errors.Is(err, model.ErrMissingEntity) {
				// the candidate vanished after enumeration
				s.log.Warn(ctx, "ranking candidate excluded",
					logger.String("direction", direction),
					logger.String("candidate", id),
					logger.Error(err))
				metrics.RecordRankingExcluded(direction)
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
		out = append(out, res)
	}

	Sort(out, key)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	metrics.RecordRankingScan(direction, float64(time.Since(start).Microseconds())/1000)
	return out, nil
}

// Sort orders results by final score desc, then by key asc.
func Sort(out []model.MatchResult, key func(model.MatchResult) string) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return key(out[i]) < key(out[j])
	})
}
