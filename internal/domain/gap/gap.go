// Package gap derives skill gaps and team skill heatmaps from skill sets.
package gap

import (
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/skills"
)

// SkillGap returns the required skills missing from have, in required order,
// using the required display form.
func SkillGap(have, required skills.Set) []string {
	return required.Minus(have).Displays()
}

// Covered returns the required skills present in have, in required order.
func Covered(have, required skills.Set) []string {
	return required.Intersect(have).Displays()
}

// CoveragePercentage is covered/required*100 rounded to two decimals, or 100
// when nothing is required.
func CoveragePercentage(have, required skills.Set) float64 {
	if required.Len() == 0 {
		return 100
	}
	return model.Percentage(float64(required.Intersect(have).Len()) / float64(required.Len()))
}

// Report explains skill coverage of one subject for one project.
type Report struct {
	SubjectID          string   `json:"subject_id"`
	SubjectName        string   `json:"subject_name,omitempty"`
	ProjectID          string   `json:"project_id"`
	ProjectTitle       string   `json:"project_title,omitempty"`
	RequiredSkills     []string `json:"required_skills"`
	CoveredSkills      []string `json:"covered_skills"`
	SkillGap           []string `json:"skill_gap"`
	CoveragePercentage float64  `json:"coverage_percentage"`
	MatchPercentage    float64  `json:"match_percentage"`
}

// NewReport builds a Report for have against the project's requirements.
// matchPercentage is carried through from the scoring result.
func NewReport(subjectID, subjectName string, have skills.Set, p model.Project, matchPercentage float64) Report {
	return Report{
		SubjectID:          subjectID,
		SubjectName:        subjectName,
		ProjectID:          p.ID,
		ProjectTitle:       p.Title,
		RequiredSkills:     p.RequiredSkills.Displays(),
		CoveredSkills:      Covered(have, p.RequiredSkills),
		SkillGap:           SkillGap(have, p.RequiredSkills),
		CoveragePercentage: CoveragePercentage(have, p.RequiredSkills),
		MatchPercentage:    matchPercentage,
	}
}

// Row is one employee line of a heatmap.
type Row struct {
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Skills       []string `json:"skills"`
}

// Heatmap shows which team member holds which skill.
type Heatmap struct {
	TeamID string `json:"team_id"`
	// AllSkills lists canonical keys in first-seen member order.
	AllSkills []string `json:"all_skills"`
	Employees []Row    `json:"employees"`
	// Coverage maps each key to the fraction of members holding it.
	Coverage map[string]float64 `json:"coverage"`
}

// BuildHeatmap computes the heatmap for a team's members.
func BuildHeatmap(teamID string, members []model.Employee) Heatmap {
	h := Heatmap{
		TeamID:    teamID,
		AllSkills: []string{},
		Employees: make([]Row, 0, len(members)),
		Coverage:  make(map[string]float64),
	}
	sets := make([]skills.Set, 0, len(members))
	counts := make(map[string]int)
	for _, m := range members {
		sets = append(sets, m.Skills)
		h.Employees = append(h.Employees, Row{
			EmployeeID:   m.ID,
			EmployeeName: m.Name,
			Skills:       m.Skills.Displays(),
		})
		for _, k := range m.Skills.Keys() {
			counts[k]++
		}
	}
	h.AllSkills = skills.Union(sets...).Keys()
	for _, k := range h.AllSkills {
		h.Coverage[k] = float64(counts[k]) / float64(len(members))
	}
	return h
}
