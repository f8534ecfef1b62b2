package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/okian/teamfit/internal/domain/scoring"
	"github.com/okian/teamfit/pkg/logger"
)

// verify checks every project's ranking, its top-N prefix and the stored
// evaluation board. A best team that differs from the dataset's expectation
// is logged, not failed, since it depends on the embedding backend.
func verify(ctx context.Context, cfg *Config, c *Client, d Dataset, stats *Stats) error {
	log := logger.Get().Named("seed")
	var errs []error
	for _, p := range d.Projects {
		path := "/projects/" + url.PathEscape(p.ID)

		var ranking []match
		if err := c.Get(ctx, path+"/ranking", &ranking); err != nil {
			errs = append(errs, err)
			continue
		}
		if len(ranking) != len(d.Teams) {
			errs = append(errs, fmt.Errorf("project %s: ranked %d teams, want %d", p.ID, len(ranking), len(d.Teams)))
		}
		errs = append(errs, checkRanking(p.ID, ranking)...)

		var top []match
		if err := c.Get(ctx, path+"/teams?limit="+strconv.Itoa(cfg.TopN), &top); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := checkPrefix(p.ID, top, ranking, cfg.TopN); err != nil {
			errs = append(errs, err)
		}

		var board []evaluation
		if err := c.Post(ctx, path+"/evaluations", nil, &board); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := checkBoard(p.ID, board); err != nil {
			errs = append(errs, err)
		}
		stats.EvaluationsStored += len(board)
		stats.RankingsChecked++

		if len(ranking) > 0 {
			best := ranking[0]
			fields := []logger.Field{
				logger.String("project", p.ID),
				logger.String("title", p.Title),
				logger.String("best_team", best.TeamID),
				logger.Float64("match_percentage", best.MatchPercentage),
			}
			if p.ExpectedTeam != "" && best.TeamID != p.ExpectedTeam {
				stats.ExpectedTopMisses++
				log.Warn(ctx, "unexpected best team", append(fields, logger.String("expected", p.ExpectedTeam))...)
			} else if cfg.Verbose {
				log.Info(ctx, "ranking verified", fields...)
			}
		}
	}
	return errors.Join(errs...)
}

// checkRanking validates component ranges, the weighted final score and the
// ordering: final score desc, team id asc on ties.
func checkRanking(projectID string, rs []match) []error {
	var errs []error
	for i, r := range rs {
		for name, v := range map[string]float64{
			"embedding_similarity": r.EmbeddingSimilarity,
			"skill_coverage":       r.SkillCoverage,
			"experience_match":     r.ExperienceMatch,
			"team_balance":         r.TeamBalance,
			"final_score":          r.FinalScore,
		} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				errs = append(errs, fmt.Errorf("project %s team %s: %s %v out of range", projectID, r.TeamID, name, v))
			}
		}
		want := scoring.Final(scoring.Components{
			EmbeddingSimilarity: r.EmbeddingSimilarity,
			SkillCoverage:       r.SkillCoverage,
			ExperienceMatch:     r.ExperienceMatch,
			TeamBalance:         r.TeamBalance,
		})
		if math.Abs(want-r.FinalScore) > scoreEpsilon {
			errs = append(errs, fmt.Errorf("project %s team %s: final score %v, want %v", projectID, r.TeamID, r.FinalScore, want))
		}
		if i == 0 {
			continue
		}
		prev := rs[i-1]
		if prev.FinalScore < r.FinalScore || (prev.FinalScore == r.FinalScore && prev.TeamID > r.TeamID) {
			errs = append(errs, fmt.Errorf("project %s: %s ranked before %s out of order", projectID, prev.TeamID, r.TeamID))
		}
	}
	return errs
}

func checkPrefix(projectID string, top, ranking []match, n int) error {
	want := min(n, len(ranking))
	if len(top) != want {
		return fmt.Errorf("project %s: top teams returned %d, want %d", projectID, len(top), want)
	}
	for i := range top {
		if top[i].TeamID != ranking[i].TeamID || math.Abs(top[i].FinalScore-ranking[i].FinalScore) > scoreEpsilon {
			return fmt.Errorf("project %s: top team %d is %s, ranking has %s", projectID, i+1, top[i].TeamID, ranking[i].TeamID)
		}
	}
	return nil
}

// checkBoard validates dense ranks: equal scores share a rank and each new
// score advances the rank by one.
func checkBoard(projectID string, board []evaluation) error {
	for i, e := range board {
		if e.ProjectID != projectID {
			return fmt.Errorf("project %s: evaluation for %s", projectID, e.ProjectID)
		}
		if i == 0 {
			if e.Rank != 1 {
				return fmt.Errorf("project %s: first rank %d", projectID, e.Rank)
			}
			continue
		}
		prev := board[i-1]
		switch {
		case e.Score > prev.Score:
			return fmt.Errorf("project %s: board not sorted at %s", projectID, e.TeamID)
		case e.Score == prev.Score && e.Rank != prev.Rank:
			return fmt.Errorf("project %s: tied teams %s and %s ranked %d and %d", projectID, prev.TeamID, e.TeamID, prev.Rank, e.Rank)
		case e.Score < prev.Score && e.Rank != prev.Rank+1:
			return fmt.Errorf("project %s: rank jumps from %d to %d", projectID, prev.Rank, e.Rank)
		}
	}
	return nil
}
