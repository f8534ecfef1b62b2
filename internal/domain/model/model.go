// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/teamfit/internal/domain/skills"
)

// Role is an employee's organizational role.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleTeamLead Role = "team_lead"
	RoleHR       Role = "hr"
)

// Valid reports whether r is a known role. The empty role is treated as employee.
func (r Role) Valid() bool {
	switch r {
	case "", RoleEmployee, RoleTeamLead, RoleHR:
		return true
	}
	return false
}

// Employee is a person whose skills and experience feed team profiles.
// The embedding lives in the vector store under (employee, ID).
type Employee struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Role           Role       `json:"role"`
	Skills         skills.Set `json:"skills"`
	Experience     float64    `json:"experience"`
	Certifications []string   `json:"certifications,omitempty"`
	PastProjects   []string   `json:"past_projects,omitempty"`
	TeamID         string     `json:"team_id,omitempty"`
	ResumeUploaded bool       `json:"resume_uploaded"`
}

// Validate checks identity and numeric ranges.
func (e Employee) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: employee %s: name is required", ErrInvalidInput, e.ID)
	}
	if !e.Role.Valid() {
		return fmt.Errorf("%w: employee %s: unknown role %q", ErrInvalidInput, e.ID, e.Role)
	}
	if err := validYears(e.Experience); err != nil {
		return fmt.Errorf("%w: employee %s: experience %w", ErrInvalidInput, e.ID, err)
	}
	return nil
}

// Team is a named group of employees with an optional lead who must be a member.
type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
	LeadID    string   `json:"lead_id,omitempty"`
}

// HasMember reports whether employeeID belongs to the team.
func (t Team) HasMember(employeeID string) bool {
	for _, id := range t.MemberIDs {
		if id == employeeID {
			return true
		}
	}
	return false
}

// Validate checks identity and the lead membership invariant.
func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: team %s: name is required", ErrInvalidInput, t.ID)
	}
	if t.LeadID != "" && !t.HasMember(t.LeadID) {
		return fmt.Errorf("%w: team %s: lead %s is not a member", ErrInvalidInput, t.ID, t.LeadID)
	}
	return nil
}

// Project is a unit of work teams are matched against.
type Project struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	RequiredSkills     skills.Set `json:"required_skills"`
	RequiredExperience float64    `json:"required_experience"`
}

// Validate checks identity and numeric ranges.
func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: project %s: title is required", ErrInvalidInput, p.ID)
	}
	if err := validYears(p.RequiredExperience); err != nil {
		return fmt.Errorf("%w: project %s: required_experience %w", ErrInvalidInput, p.ID, err)
	}
	return nil
}

// Extraction is the structured output of the external resume extractor.
type Extraction struct {
	Skills         []string `json:"skills"`
	Experience     float64  `json:"experience"`
	Certifications []string `json:"certifications"`
	PastProjects   []string `json:"past_projects"`
	RawText        string   `json:"raw_text"`
}

// MatchResult is the explainable outcome of scoring one subject against one
// project. Every component and FinalScore lie in [0, 1].
type MatchResult struct {
	TeamID              string  `json:"team_id,omitempty"`
	EmployeeID          string  `json:"employee_id,omitempty"`
	ProjectID           string  `json:"project_id"`
	EmbeddingSimilarity float64 `json:"embedding_similarity"`
	SkillCoverage       float64 `json:"skill_coverage"`
	ExperienceMatch     float64 `json:"experience_match"`
	TeamBalance         float64 `json:"team_balance"`
	FinalScore          float64 `json:"final_score"`
	MatchPercentage     float64 `json:"match_percentage"`
}

// SubjectID returns the team or employee the result is about.
func (m MatchResult) SubjectID() string {
	if m.TeamID != "" {
		return m.TeamID
	}
	return m.EmployeeID
}

// Percentage renders a [0,1] score as a percentage rounded to two decimals.
func Percentage(score float64) float64 {
	return math.Round(score*100*100) / 100
}

// Evaluation is a persisted team score for a project.
type Evaluation struct {
	ProjectID   string    `json:"project_id"`
	TeamID      string    `json:"team_id"`
	Rank        int       `json:"rank"`
	Score       float64   `json:"score"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

func validYears(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("must be a finite number")
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
