// Package board keeps the latest evaluation of every team per project in a
// ranked, in-memory treap.
package board

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/pkg/metrics"
)

// Ordering: score DESC, then teamID ASC. "less" means ranks earlier, so an
// in-order traversal yields the standings from best to worst.

// scoreScale controls fixed-point scaling so equal scores compare exactly.
const scoreScale = 1_000_000_000_000

type scoreFP int64

// toFixedPoint maps a [0,1] score to fixed point. NaN and negatives pin to 0.
func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x), x <= 0:
		return 0
	case x >= 1:
		return scoreScale
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

type record struct {
	score       scoreFP
	evaluatedAt time.Time
}

type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: rand.Uint64(), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// collect appends up to limit entries in rank order; limit <= 0 means all.
func collect(n *node, limit int, out *[]model.Evaluation, byID map[string]record) {
	if n == nil || (limit > 0 && len(*out) >= limit) {
		return
	}
	collect(n.left, limit, out, byID)
	if limit <= 0 || len(*out) < limit {
		*out = append(*out, model.Evaluation{
			TeamID:      n.id,
			Score:       toFloat(n.score),
			EvaluatedAt: byID[n.id].evaluatedAt,
		})
	}
	collect(n.right, limit, out, byID)
}

// standings is the treap of one project.
type standings struct {
	root *node
	byID map[string]record
}

func (s *standings) put(teamID string, score scoreFP, at time.Time) bool {
	old, existed := s.byID[teamID]
	if existed {
		s.root = deleteNode(s.root, teamID, old.score)
	}
	s.byID[teamID] = record{score: score, evaluatedAt: at}
	s.root = insert(s.root, teamID, score)
	return !existed
}

func (s *standings) remove(teamID string) bool {
	old, ok := s.byID[teamID]
	if !ok {
		return false
	}
	s.root = deleteNode(s.root, teamID, old.score)
	delete(s.byID, teamID)
	return true
}

// Board holds per-project standings. It is safe for concurrent use.
type Board struct {
	mu       sync.RWMutex
	projects map[string]*standings
	total    int
}

// New returns an empty Board.
func New() *Board {
	return &Board{projects: make(map[string]*standings)}
}

// Put records the latest score of a team for a project, replacing any
// earlier evaluation even if it was higher.
func (b *Board) Put(ctx context.Context, projectID, teamID string, score float64, at time.Time) {
	b.mu.Lock()
	s, ok := b.projects[projectID]
	if !ok {
		s = &standings{byID: make(map[string]record)}
		b.projects[projectID] = s
	}
	if s.put(teamID, toFixedPoint(score), at) {
		b.total++
	}
	total := b.total
	b.mu.Unlock()
	metrics.UpdateEvaluationRecords(total)
}

// RemoveTeam drops a team from every project's standings.
func (b *Board) RemoveTeam(ctx context.Context, teamID string) {
	b.mu.Lock()
	for _, s := range b.projects {
		if s.remove(teamID) {
			b.total--
		}
	}
	total := b.total
	b.mu.Unlock()
	metrics.UpdateEvaluationRecords(total)
}

// RemoveProject drops a project's standings.
func (b *Board) RemoveProject(ctx context.Context, projectID string) {
	b.mu.Lock()
	if s, ok := b.projects[projectID]; ok {
		b.total -= len(s.byID)
		delete(b.projects, projectID)
	}
	total := b.total
	b.mu.Unlock()
	metrics.UpdateEvaluationRecords(total)
}

// Standings returns the top n evaluations of a project with dense ranks.
// n == 0 returns every evaluation.
func (b *Board) Standings(ctx context.Context, projectID string, n int) ([]model.Evaluation, error) {
	if n < 0 {
		metrics.RecordErrorByComponent("board", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.projects[projectID]
	if !ok {
		return []model.Evaluation{}, nil
	}
	capHint := len(s.byID)
	if n > 0 && n < capHint {
		capHint = n
	}
	out := make([]model.Evaluation, 0, capHint)
	collect(s.root, n, &out, s.byID)
	assignRanks(out, projectID)
	return out, nil
}

// Rank returns a team's evaluation and dense rank for a project.
func (b *Board) Rank(ctx context.Context, projectID, teamID string) (model.Evaluation, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.projects[projectID]
	if !ok {
		return model.Evaluation{}, ErrNotFound
	}
	if _, ok := s.byID[teamID]; !ok {
		return model.Evaluation{}, ErrNotFound
	}
	all := make([]model.Evaluation, 0, len(s.byID))
	collect(s.root, 0, &all, s.byID)
	assignRanks(all, projectID)
	for _, e := range all {
		if e.TeamID == teamID {
			return e, nil
		}
	}
	return model.Evaluation{}, ErrNotFound
}

// Count returns the number of evaluations across projects.
func (b *Board) Count(ctx context.Context) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}

// assignRanks gives equal scores the same rank; ranks are consecutive.
func assignRanks(entries []model.Evaluation, projectID string) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			rank++
		}
		entries[i].Rank = rank
		entries[i].ProjectID = projectID
	}
}
