package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/team"
)

// TeamInput creates a team with initial members and an optional lead.
type TeamInput struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
	LeadID    string   `json:"lead_id"`
}

// TeamSummary is a team with its member count.
type TeamSummary struct {
	model.Team
	MemberCount int `json:"member_count"`
}

// CreateTeam creates (or renames) a team and adds the given members.
// Members already on another team move to this one.
func (s *Service) CreateTeam(ctx context.Context, in TeamInput) (model.Team, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	for _, m := range in.MemberIDs {
		if !s.catalog.HasEmployee(ctx, m) {
			return model.Team{}, fmt.Errorf("%w: employee %s", model.ErrMissingEntity, m)
		}
	}
	if in.LeadID != "" && !slices.Contains(in.MemberIDs, in.LeadID) {
		if t, err := s.catalog.Team(ctx, id); err != nil || !t.HasMember(in.LeadID) {
			return model.Team{}, fmt.Errorf("%w: lead %s is not a member of team %s", model.ErrInvalidInput, in.LeadID, id)
		}
	}

	if _, err := s.catalog.PutTeam(ctx, id, strings.TrimSpace(in.Name)); err != nil {
		return model.Team{}, err
	}
	s.cache.Invalidate(id, team.ReasonCreated)

	left := map[string]bool{}
	for _, m := range in.MemberIDs {
		changed, err := s.catalog.AddMember(ctx, id, m)
		if err != nil {
			return model.Team{}, err
		}
		for _, tid := range changed {
			if tid != id {
				left[tid] = true
			}
		}
	}
	if in.LeadID != "" {
		if err := s.catalog.SetLead(ctx, id, in.LeadID); err != nil {
			return model.Team{}, err
		}
	}

	for tid := range left {
		s.cache.Invalidate(tid, team.ReasonMemberLeft)
		if err := s.refresh(ctx, tid); err != nil {
			return model.Team{}, err
		}
	}
	if err := s.refresh(ctx, id); err != nil {
		return model.Team{}, err
	}
	return s.catalog.Team(ctx, id)
}

// AddMember puts an employee on a team, moving them off any previous team.
func (s *Service) AddMember(ctx context.Context, teamID, employeeID string) (model.Team, error) {
	changed, err := s.catalog.AddMember(ctx, teamID, employeeID)
	if err != nil {
		return model.Team{}, err
	}
	for _, tid := range changed {
		reason := team.ReasonMemberLeft
		if tid == teamID {
			reason = team.ReasonMemberJoined
		}
		s.cache.Invalidate(tid, reason)
		if err := s.refresh(ctx, tid); err != nil {
			return model.Team{}, err
		}
	}
	return s.catalog.Team(ctx, teamID)
}

// RemoveMember takes an employee off a team.
func (s *Service) RemoveMember(ctx context.Context, teamID, employeeID string) (model.Team, error) {
	if err := s.catalog.RemoveMember(ctx, teamID, employeeID); err != nil {
		return model.Team{}, err
	}
	s.cache.Invalidate(teamID, team.ReasonMemberLeft)
	if err := s.refresh(ctx, teamID); err != nil {
		return model.Team{}, err
	}
	return s.catalog.Team(ctx, teamID)
}

// SetLead designates a team member as lead.
func (s *Service) SetLead(ctx context.Context, teamID, employeeID string) (model.Team, error) {
	if err := s.catalog.SetLead(ctx, teamID, employeeID); err != nil {
		return model.Team{}, err
	}
	s.cache.Invalidate(teamID, team.ReasonLeadChanged)
	if err := s.refresh(ctx, teamID); err != nil {
		return model.Team{}, err
	}
	return s.catalog.Team(ctx, teamID)
}

// DeleteTeam removes a team, its derived state and its evaluations.
func (s *Service) DeleteTeam(ctx context.Context, teamID string) error {
	if err := s.catalog.DeleteTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.cache.Forget(ctx, teamID); err != nil {
		return fmt.Errorf("forget team %s: %w", teamID, err)
	}
	s.board.RemoveTeam(ctx, teamID)
	return nil
}

// Team returns one team.
func (s *Service) Team(ctx context.Context, teamID string) (model.Team, error) {
	return s.catalog.Team(ctx, teamID)
}

// Teams lists every team with its member count, ordered by id.
func (s *Service) Teams(ctx context.Context) []TeamSummary {
	teams := s.catalog.Teams(ctx)
	out := make([]TeamSummary, 0, len(teams))
	for _, t := range teams {
		out = append(out, TeamSummary{Team: t, MemberCount: len(t.MemberIDs)})
	}
	return out
}
