package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/teamfit/internal/adapters/http/api"
	service "github.com/okian/teamfit/internal/app"
	"github.com/okian/teamfit/internal/domain/gap"
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type client struct {
	mux *http.ServeMux
}

func (c client) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	c.mux.ServeHTTP(w, req)
	return w
}

// accepted posts body and waits for the returned task to finish.
func (c client) accepted(path, body string) model.Task {
	w := c.do(http.MethodPost, path, body)
	So(w.Code, ShouldEqual, http.StatusAccepted)
	var resp struct {
		TaskID string `json:"task_id"`
	}
	So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
	So(resp.TaskID, ShouldNotBeEmpty)

	w = c.do(http.MethodGet, "/tasks/"+resp.TaskID+"?wait=1", "")
	So(w.Code, ShouldEqual, http.StatusOK)
	var t model.Task
	So(json.NewDecoder(w.Body).Decode(&t), ShouldBeNil)
	So(t.Status, ShouldEqual, model.TaskCompleted)
	return t
}

func newClient(t *testing.T) (client, *service.Service) {
	t.Helper()
	svc := service.New(service.WithWorkerCount(2), service.WithEmbeddingDimension(64))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	return client{mux: mux}, svc
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		c, svc := newClient(t)
		defer svc.Stop()

		Convey("Then the health endpoint exposes Prometheus metrics", func() {
			w := c.do(http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "teamfit_")
		})

		Convey("Then the stats endpoint reports the service state", func() {
			w := c.do(http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.NewDecoder(w.Body).Decode(&stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("Then unknown routes are not found", func() {
			So(c.do(http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a wrong method is rejected", func() {
			So(c.do(http.MethodPatch, "/teams", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServer_Flow(t *testing.T) {
	Convey("Given employees, a team and projects created over HTTP", t, func() {
		c, svc := newClient(t)
		defer svc.Stop()

		c.accepted("/employees", `{"id":"e1","name":"Alice","experience":6,"skills":["Go","Kubernetes","Terraform"]}`)
		c.accepted("/employees", `{"id":"e2","name":"Bob","experience":2,"skills":["Go","SQL"]}`)

		w := c.do(http.MethodPost, "/teams", `{"id":"t1","name":"Platform","member_ids":["e1"]}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		So(c.do(http.MethodPut, "/teams/t1/members/e2", "").Code, ShouldEqual, http.StatusOK)
		So(c.do(http.MethodPut, "/teams/t1/lead/e1", "").Code, ShouldEqual, http.StatusOK)

		c.accepted("/projects", `{"id":"p1","title":"Cluster tooling","description":"Operators in Go","required_skills":["Go","Kubernetes","React"],"required_experience":3}`)
		c.accepted("/projects", `{"id":"p2","title":"Reporting","description":"SQL reports","required_skills":["SQL"],"required_experience":1}`)

		Convey("When listing teams", func() {
			w := c.do(http.MethodGet, "/teams", "")
			var teams []service.TeamSummary
			So(json.NewDecoder(w.Body).Decode(&teams), ShouldBeNil)

			Convey("Then member counts and the lead are reported", func() {
				So(teams, ShouldHaveLength, 1)
				So(teams[0].MemberCount, ShouldEqual, 2)
				So(teams[0].LeadID, ShouldEqual, "e1")
			})
		})

		Convey("When ranking teams for a project", func() {
			w := c.do(http.MethodGet, "/projects/p1/teams?limit=3", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var res []model.MatchResult
			So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)

			Convey("Then the team is returned with bounded components", func() {
				So(res, ShouldHaveLength, 1)
				So(res[0].TeamID, ShouldEqual, "t1")
				So(res[0].FinalScore, ShouldBeBetweenOrEqual, 0, 1)
				So(res[0].SkillCoverage, ShouldAlmostEqual, 2.0/3.0, 1e-9)
			})
		})

		Convey("When scoring and explaining a pair", func() {
			w := c.do(http.MethodGet, "/teams/t1/projects/p1/score", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var res model.MatchResult
			So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)

			w = c.do(http.MethodGet, "/teams/t1/projects/p1/gap", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var rep gap.Report
			So(json.NewDecoder(w.Body).Decode(&rep), ShouldBeNil)

			Convey("Then the gap lists the missing skill and carries the match percentage", func() {
				So(rep.SkillGap, ShouldResemble, []string{"React"})
				So(rep.CoveredSkills, ShouldResemble, []string{"Go", "Kubernetes"})
				So(rep.MatchPercentage, ShouldEqual, res.MatchPercentage)
			})
		})

		Convey("When recommending projects for an employee", func() {
			w := c.do(http.MethodGet, "/employees/e2/projects", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var recs []service.EmployeeMatch
			So(json.NewDecoder(w.Body).Decode(&recs), ShouldBeNil)

			Convey("Then every project is listed with the employee's gap", func() {
				So(recs, ShouldHaveLength, 2)
				So(recs[0].ProjectID, ShouldEqual, "p2")
				So(recs[0].SkillGap, ShouldBeEmpty)
			})
		})

		Convey("When the team heatmap is requested", func() {
			w := c.do(http.MethodGet, "/teams/t1/heatmap", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var hm gap.Heatmap
			So(json.NewDecoder(w.Body).Decode(&hm), ShouldBeNil)

			Convey("Then shared skills are fully covered", func() {
				So(hm.Coverage["go"], ShouldEqual, 1.0)
				So(hm.Coverage["sql"], ShouldEqual, 0.5)
			})
		})

		Convey("When evaluating a project", func() {
			So(c.do(http.MethodPost, "/projects/p1/evaluations", "").Code, ShouldEqual, http.StatusOK)
			w := c.do(http.MethodGet, "/projects/p1/evaluations?limit=5", "")
			var evals []model.Evaluation
			So(json.NewDecoder(w.Body).Decode(&evals), ShouldBeNil)

			Convey("Then the board lists the team at rank one", func() {
				So(evals, ShouldHaveLength, 1)
				So(evals[0].TeamID, ShouldEqual, "t1")
				So(evals[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When a resume extraction is ingested", func() {
			t := c.accepted("/employees/e2/resume", `{"skills":["React"],"experience":4,"raw_text":"Built dashboards in React."}`)
			So(t.Kind, ShouldEqual, model.TaskEmployee)

			Convey("Then the employee profile is merged", func() {
				w := c.do(http.MethodGet, "/employees/e2", "")
				var e model.Employee
				So(json.NewDecoder(w.Body).Decode(&e), ShouldBeNil)
				So(e.Skills.Displays(), ShouldResemble, []string{"Go", "SQL", "React"})
				So(e.Experience, ShouldEqual, 4)
				So(e.ResumeUploaded, ShouldBeTrue)
			})
		})

		Convey("When removing a member and deleting a project", func() {
			So(c.do(http.MethodDelete, "/teams/t1/members/e2", "").Code, ShouldEqual, http.StatusOK)
			So(c.do(http.MethodDelete, "/projects/p2", "").Code, ShouldEqual, http.StatusNoContent)

			Convey("Then the project is gone", func() {
				So(c.do(http.MethodGet, "/projects/p2", "").Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestServer_Errors(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		c, svc := newClient(t)
		defer svc.Stop()

		Convey("Then malformed JSON is a bad request", func() {
			w := c.do(http.MethodPost, "/employees", `{bad`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var resp struct {
				Code string `json:"code"`
			}
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, "bad_request")
		})

		Convey("Then invalid field values are a bad request", func() {
			So(c.do(http.MethodPost, "/employees", `{"id":"e1","name":"A","experience":-2}`).Code, ShouldEqual, http.StatusBadRequest)
			So(c.do(http.MethodPost, "/projects", `{"id":"p1"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then a bad limit is a bad request", func() {
			So(c.do(http.MethodGet, "/projects/p1/teams?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then unknown entities are not found", func() {
			So(c.do(http.MethodGet, "/projects/nope/teams", "").Code, ShouldEqual, http.StatusNotFound)
			So(c.do(http.MethodGet, "/teams/nope/heatmap", "").Code, ShouldEqual, http.StatusNotFound)
			So(c.do(http.MethodGet, "/tasks/nope", "").Code, ShouldEqual, http.StatusNotFound)
			So(c.do(http.MethodPut, "/teams/nope/members/e1", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then requests after shutdown are unavailable", func() {
			svc.Stop()
			w := c.do(http.MethodPost, "/projects", `{"id":"p1","title":"API"}`)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
