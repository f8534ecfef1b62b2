package embedding

import (
	"strconv"
	"strings"

	"github.com/okian/teamfit/internal/domain/model"
)

// EmployeeText renders the employee profile that is embedded. The raw resume
// text, when present, is appended after the structured summary.
func EmployeeText(e model.Employee, raw string) string {
	var b strings.Builder
	b.WriteString("Employee: ")
	b.WriteString(e.Name)
	b.WriteString(". Skills: ")
	b.WriteString(strings.Join(e.Skills.Displays(), ", "))
	b.WriteString(". Experience: ")
	b.WriteString(years(e.Experience))
	b.WriteString(" years. Certifications: ")
	b.WriteString(strings.Join(e.Certifications, ", "))
	b.WriteString(". Past projects: ")
	b.WriteString(strings.Join(e.PastProjects, ", "))
	b.WriteString(".")
	if raw = strings.TrimSpace(raw); raw != "" {
		b.WriteString("\n")
		b.WriteString(raw)
	}
	return b.String()
}

// ProjectText renders the project description that is embedded.
func ProjectText(p model.Project) string {
	var b strings.Builder
	b.WriteString("Project: ")
	b.WriteString(p.Title)
	b.WriteString(". Description: ")
	b.WriteString(p.Description)
	b.WriteString(". Required skills: ")
	b.WriteString(strings.Join(p.RequiredSkills.Displays(), ", "))
	b.WriteString(". Required experience: ")
	b.WriteString(years(p.RequiredExperience))
	b.WriteString(" years.")
	return b.String()
}

func years(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
