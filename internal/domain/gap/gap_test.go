package gap

import (
	"testing"

	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/scoring"
	"github.com/okian/teamfit/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkillGap(t *testing.T) {
	Convey("Scenario A: team knows python and react, project needs nlp too", t, func() {
		have := skills.MustNew("Python", "React")
		required := skills.MustNew("python", "react", "NLP")

		So(SkillGap(have, required), ShouldResemble, []string{"NLP"})
		So(Covered(have, required), ShouldResemble, []string{"python", "react"})
		So(CoveragePercentage(have, required), ShouldEqual, 66.67)

		Convey("And skill coverage equals one minus the gap share", func() {
			cov := scoring.SkillCoverage(required, have, scoring.EmptyCoverageVacuous)
			So(cov, ShouldAlmostEqual, 1-float64(len(SkillGap(have, required)))/float64(required.Len()), 1e-12)
		})
	})

	Convey("Given a project with no requirements", t, func() {
		p := model.Project{ID: "p", Title: "Open"}
		r := NewReport("e1", "Ann", skills.MustNew("go"), p, 42.5)

		So(r.SkillGap, ShouldBeEmpty)
		So(r.CoveredSkills, ShouldBeEmpty)
		So(r.CoveragePercentage, ShouldEqual, 100)
		So(r.MatchPercentage, ShouldEqual, 42.5)
	})

	Convey("Given a full report", t, func() {
		p := model.Project{ID: "p", Title: "Search", RequiredSkills: skills.MustNew("Go", "Elasticsearch")}
		r := NewReport("t1", "", skills.MustNew("go"), p, 10)

		So(r.RequiredSkills, ShouldResemble, []string{"Go", "Elasticsearch"})
		So(r.CoveredSkills, ShouldResemble, []string{"Go"})
		So(r.SkillGap, ShouldResemble, []string{"Elasticsearch"})
		So(r.CoveragePercentage, ShouldEqual, 50)
		So(r.ProjectTitle, ShouldEqual, "Search")
	})
}

func TestHeatmap(t *testing.T) {
	Convey("Given a team of three", t, func() {
		members := []model.Employee{
			{ID: "a", Name: "Ann", Skills: skills.MustNew("Go", "SQL")},
			{ID: "b", Name: "Bob", Skills: skills.MustNew("sql", "React")},
			{ID: "c", Name: "Cy", Skills: skills.MustNew("go")},
		}

		h := BuildHeatmap("t1", members)

		Convey("Then skills are canonical keys in first-seen order", func() {
			So(h.TeamID, ShouldEqual, "t1")
			So(h.AllSkills, ShouldResemble, []string{"go", "sql", "react"})
		})

		Convey("Then rows keep member order and display forms", func() {
			So(h.Employees, ShouldHaveLength, 3)
			So(h.Employees[1].EmployeeName, ShouldEqual, "Bob")
			So(h.Employees[1].Skills, ShouldResemble, []string{"sql", "React"})
		})

		Convey("Then coverage is the share of members holding each skill", func() {
			So(h.Coverage["go"], ShouldAlmostEqual, 2.0/3.0, 1e-12)
			So(h.Coverage["react"], ShouldAlmostEqual, 1.0/3.0, 1e-12)
		})
	})

	Convey("Given an empty team", t, func() {
		h := BuildHeatmap("t0", nil)

		So(h.AllSkills, ShouldBeEmpty)
		So(h.Employees, ShouldBeEmpty)
		So(h.Coverage, ShouldBeEmpty)
	})
}
