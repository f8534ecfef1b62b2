package team

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/logger"
	"github.com/okian/teamfit/pkg/metrics"
)

// Reason records why a team's derived state was invalidated.
type Reason string

const (
	ReasonCreated         Reason = "created"
	ReasonMemberEmbedding Reason = "member_embedding"
	ReasonMemberJoined    Reason = "member_joined"
	ReasonMemberLeft      Reason = "member_left"
	ReasonMemberProfile   Reason = "member_profile"
	ReasonLeadChanged     Reason = "lead_changed"
)

// Source provides team membership.
type Source interface {
	TeamMembers(ctx context.Context, teamID string) (model.Team, []model.Employee, error)
}

type state uint8

const (
	stale state = iota
	valid
)

type entry struct {
	mu      sync.Mutex
	state   state
	gen     uint64
	reason  Reason
	profile Profile

	// recompute serializes recomputation for one team.
	recompute sync.Mutex
}

// load returns the cached profile, or ErrStaleDerivedState with the
// generation that a recomputation must match to be stored.
func (e *entry) load() (Profile, uint64, Reason, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != valid {
		return Profile{}, e.gen, e.reason, model.ErrStaleDerivedState
	}
	return e.profile, e.gen, e.reason, nil
}

// Cache holds one derived Profile per team. Entries start stale and become
// valid only through recomputation; any invalidation in between discards
// the in-flight result.
type Cache struct {
	src  Source
	vecs vector.Store
	log  logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewCache returns an empty cache.
func NewCache(src Source, vecs vector.Store, log logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{src: src, vecs: vecs, log: log, entries: make(map[string]*entry)}
}

func (c *Cache) entry(teamID string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[teamID]
	if !ok {
		e = &entry{reason: ReasonCreated}
		c.entries[teamID] = e
	}
	return e
}

// Invalidate marks the team stale. It is cheap and never blocks on a
// recomputation.
func (c *Cache) Invalidate(teamID string, reason Reason) {
	e := c.entry(teamID)
	e.mu.Lock()
	e.state = stale
	e.gen++
	e.reason = reason
	e.mu.Unlock()
}

// Forget drops the team entry and its stored vector. It waits for an
// in-flight recomputation of the team so that nothing is written after it.
func (c *Cache) Forget(ctx context.Context, teamID string) error {
	c.mu.Lock()
	e, ok := c.entries[teamID]
	delete(c.entries, teamID)
	c.mu.Unlock()

	if ok {
		e.recompute.Lock()
		e.mu.Lock()
		e.state = stale
		e.gen++
		e.mu.Unlock()
		e.recompute.Unlock()
	}
	return c.vecs.Delete(ctx, vector.Key{Kind: vector.KindTeam, ID: teamID})
}

// Len returns the number of teams with a cache entry.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// drop removes e if it is still the entry for teamID.
func (c *Cache) drop(teamID string, e *entry) {
	c.mu.Lock()
	if c.entries[teamID] == e {
		delete(c.entries, teamID)
	}
	c.mu.Unlock()
}

// IsValid reports whether the team has a valid cached profile.
func (c *Cache) IsValid(teamID string) bool {
	c.mu.Lock()
	e, ok := c.entries[teamID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	_, _, _, err := e.load()
	return err == nil
}

// Profile returns the team profile, recomputing it first if stale.
func (c *Cache) Profile(ctx context.Context, teamID string) (Profile, error) {
	e := c.entry(teamID)
	if p, _, _, err := e.load(); err == nil {
		metrics.RecordTeamCacheHit()
		return p, nil
	}

	e.recompute.Lock()
	defer e.recompute.Unlock()

	p, gen, reason, err := e.load()
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, model.ErrStaleDerivedState) {
		return Profile{}, err
	}

	p, err = c.compute(ctx, teamID, e, gen)
	if err != nil {
		if errors.Is(err, model.ErrMissingEntity) {
			c.drop(teamID, e)
		}
		return Profile{}, err
	}
	metrics.RecordTeamRecompute(string(reason))

	e.mu.Lock()
	if e.gen == gen {
		e.state = valid
		e.profile = p
	}
	e.mu.Unlock()

	c.log.Debug(ctx, "team profile recomputed",
		logger.String("team_id", teamID),
		logger.String("reason", string(reason)),
		logger.Int("members", p.MemberCount),
		logger.Int("embedded", p.EmbeddedMembers),
	)
	return p, nil
}

// current reports whether no invalidation or Forget happened since gen.
func (e *entry) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen == gen
}

func (c *Cache) compute(ctx context.Context, teamID string, e *entry, gen uint64) (Profile, error) {
	t, employees, err := c.src.TeamMembers(ctx, teamID)
	if err != nil {
		return Profile{}, err
	}

	members := make([]Member, 0, len(employees))
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return Profile{}, err
		}
		v, err := c.vecs.Get(ctx, vector.Key{Kind: vector.KindEmployee, ID: emp.ID})
		switch {
		case err == nil:
		case errors.Is(err, vector.ErrNotFound):
			v = nil
		default:
			return Profile{}, fmt.Errorf("load member %s embedding: %w", emp.ID, err)
		}
		members = append(members, Member{Employee: emp, Embedding: v})
	}

	p := Aggregate(teamID, members, t.LeadID)
	if !e.current(gen) {
		// superseded; the next read recomputes and stores the vector
		return p, nil
	}

	key := vector.Key{Kind: vector.KindTeam, ID: teamID}
	if p.Embedding != nil {
		if err := c.vecs.Upsert(ctx, key, p.Embedding); err != nil {
			return Profile{}, fmt.Errorf("store team %s embedding: %w", teamID, err)
		}
	} else if err := c.vecs.Delete(ctx, key); err != nil {
		return Profile{}, fmt.Errorf("clear team %s embedding: %w", teamID, err)
	}
	return p, nil
}
