package scoring_test

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/okian/teamfit/internal/adapters/repository/catalog"
	"github.com/okian/teamfit/internal/adapters/repository/vectors"
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/scoring"
	"github.com/okian/teamfit/internal/domain/skills"
	"github.com/okian/teamfit/internal/domain/team"
	"github.com/okian/teamfit/internal/domain/vector"
	"github.com/okian/teamfit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComponents(t *testing.T) {
	Convey("Given the pure scoring functions", t, func() {
		Convey("Scenario A: two of three required skills present", func() {
			cov := scoring.SkillCoverage(skills.MustNew("python", "react", "nlp"), skills.MustNew("Python", "React"), scoring.EmptyCoverageVacuous)
			So(cov, ShouldAlmostEqual, 2.0/3.0, 1e-9)
		})

		Convey("Scenario B: experience ratio is capped at one", func() {
			So(scoring.ExperienceMatch(2, 4), ShouldEqual, 0.5)
			So(scoring.ExperienceMatch(6, 4), ShouldEqual, 1.0)
			So(scoring.ExperienceMatch(0, 0), ShouldEqual, 1.0)
		})

		Convey("Empty requirements follow the configured policy", func() {
			So(scoring.SkillCoverage(skills.Set{}, skills.MustNew("go"), scoring.EmptyCoverageVacuous), ShouldEqual, 1.0)
			So(scoring.SkillCoverage(skills.Set{}, skills.MustNew("go"), scoring.EmptyCoverageZero), ShouldEqual, 0.0)
		})

		Convey("Negative similarity and NaN are pinned to zero", func() {
			So(scoring.Similarity(-0.3), ShouldEqual, 0)
			So(scoring.Clamp(math.NaN()), ShouldEqual, 0)
			So(scoring.Clamp(1.7), ShouldEqual, 1)
		})

		Convey("The weights sum to one", func() {
			sum := scoring.WeightEmbedding + scoring.WeightSkill + scoring.WeightExperience + scoring.WeightBalance
			So(sum, ShouldAlmostEqual, 1.0, 1e-12)
			So(scoring.Final(scoring.Components{1, 1, 1, 1}), ShouldAlmostEqual, 1.0, 1e-12)
			So(scoring.Final(scoring.Components{0.5, 0, 0, 0}), ShouldAlmostEqual, 0.2, 1e-12)
		})

		Convey("Random components always produce a final score in [0, 1]", func() {
			rng := rand.New(rand.NewPCG(7, 11))
			for i := 0; i < 1000; i++ {
				c := scoring.Components{
					EmbeddingSimilarity: rng.Float64()*4 - 2,
					SkillCoverage:       rng.Float64()*4 - 2,
					ExperienceMatch:     rng.Float64()*4 - 2,
					TeamBalance:         rng.Float64()*4 - 2,
				}
				f := scoring.Final(c)
				So(f >= 0 && f <= 1, ShouldBeTrue)
			}
		})
	})
}

type fixture struct {
	ctx    context.Context
	cat    *catalog.Catalog
	vecs   *vectors.MemoryStore
	cache  *team.Cache
	engine *scoring.Engine
}

func newFixture(opts ...scoring.Option) *fixture {
	ctx := context.Background()
	cat := catalog.New()
	vs := vectors.NewMemoryStore(vectors.WithDimension(2))
	cache := team.NewCache(cat, vs, nil)
	return &fixture{ctx: ctx, cat: cat, vecs: vs, cache: cache, engine: scoring.NewEngine(cache, cat, vs, opts...)}
}

func (f *fixture) employee(id string, exp float64, emb vector.Vector, sk ...string) {
	_, _, err := f.cat.PutEmployee(f.ctx, model.Employee{ID: id, Name: id, Experience: exp, Skills: skills.MustNew(sk...)})
	So(err, ShouldBeNil)
	if emb != nil {
		So(f.vecs.Upsert(f.ctx, vector.Key{Kind: vector.KindEmployee, ID: id}, emb), ShouldBeNil)
	}
}

func (f *fixture) team(id string, members ...string) {
	_, err := f.cat.PutTeam(f.ctx, id, id)
	So(err, ShouldBeNil)
	for _, m := range members {
		_, err := f.cat.AddMember(f.ctx, id, m)
		So(err, ShouldBeNil)
	}
	f.cache.Invalidate(id, team.ReasonMemberJoined)
}

func (f *fixture) project(id string, exp float64, emb vector.Vector, sk ...string) {
	_, _, err := f.cat.PutProject(f.ctx, model.Project{ID: id, Title: id, RequiredExperience: exp, RequiredSkills: skills.MustNew(sk...)})
	So(err, ShouldBeNil)
	if emb != nil {
		So(f.vecs.Upsert(f.ctx, vector.Key{Kind: vector.KindProject, ID: id}, emb), ShouldBeNil)
	}
}

func TestEngine(t *testing.T) {
	Convey("Given a team and a project with embeddings", t, func() {
		f := newFixture()
		f.employee("a", 2, vector.Vector{1, 0}, "Python", "React")
		f.employee("b", 2, vector.Vector{1, 0}, "Python")
		f.team("t1", "a", "b")
		f.project("p1", 4, vector.Vector{1, 0}, "python", "react", "nlp")

		Convey("When scoring the pair", func() {
			res, err := f.engine.Score(f.ctx, "t1", "p1")

			Convey("Then each component follows its definition", func() {
				So(err, ShouldBeNil)
				So(res.TeamID, ShouldEqual, "t1")
				So(res.ProjectID, ShouldEqual, "p1")
				So(res.EmbeddingSimilarity, ShouldAlmostEqual, 1.0, 1e-6)
				So(res.SkillCoverage, ShouldAlmostEqual, 2.0/3.0, 1e-9)
				So(res.ExperienceMatch, ShouldEqual, 0.5)
				So(res.TeamBalance, ShouldAlmostEqual, 2.0/3.0, 1e-9)
				want := 0.4*1.0 + 0.3*(2.0/3.0) + 0.2*0.5 + 0.1*(2.0/3.0)
				So(res.FinalScore, ShouldAlmostEqual, want, 1e-6)
				So(res.MatchPercentage, ShouldEqual, model.Percentage(res.FinalScore))
			})
		})

		Convey("When the project has no embedding yet", func() {
			f.project("p2", 0, nil, "python")
			res, err := f.engine.Score(f.ctx, "t1", "p2")

			Convey("Then similarity is zero and the rest still counts", func() {
				So(err, ShouldBeNil)
				So(res.EmbeddingSimilarity, ShouldEqual, 0)
				So(res.SkillCoverage, ShouldEqual, 1)
				So(res.ExperienceMatch, ShouldEqual, 1)
			})
		})

		Convey("When the vectors point away from each other", func() {
			f.project("p3", 0, vector.Vector{-1, 0})
			res, err := f.engine.Score(f.ctx, "t1", "p3")

			Convey("Then similarity is clamped to zero", func() {
				So(err, ShouldBeNil)
				So(res.EmbeddingSimilarity, ShouldEqual, 0)
			})
		})

		Convey("When the team or project is unknown", func() {
			_, errT := f.engine.Score(f.ctx, "ghost", "p1")
			_, errP := f.engine.Score(f.ctx, "t1", "ghost")

			Convey("Then MissingEntity is returned", func() {
				So(errors.Is(errT, model.ErrMissingEntity), ShouldBeTrue)
				So(errors.Is(errP, model.ErrMissingEntity), ShouldBeTrue)
			})
		})

		Convey("When scoring a single employee", func() {
			res, err := f.engine.ScoreEmployee(f.ctx, "a", "p1")

			Convey("Then the employee is a one-member team", func() {
				So(err, ShouldBeNil)
				So(res.EmployeeID, ShouldEqual, "a")
				So(res.TeamID, ShouldEqual, "")
				So(res.SkillCoverage, ShouldAlmostEqual, 2.0/3.0, 1e-9)
				So(res.TeamBalance, ShouldEqual, 1)
			})
		})

		Convey("When a member joins and the cache is invalidated", func() {
			before, err := f.engine.Score(f.ctx, "t1", "p1")
			So(err, ShouldBeNil)
			f.employee("c", 8, vector.Vector{0, 1}, "NLP")
			_, err = f.cat.AddMember(f.ctx, "t1", "c")
			So(err, ShouldBeNil)
			f.cache.Invalidate("t1", team.ReasonMemberJoined)
			after, err := f.engine.Score(f.ctx, "t1", "p1")

			Convey("Then the next score reflects the new member", func() {
				So(err, ShouldBeNil)
				So(after.SkillCoverage, ShouldEqual, 1)
				So(after.ExperienceMatch, ShouldEqual, 1)
				So(after.EmbeddingSimilarity, ShouldBeLessThan, before.EmbeddingSimilarity)
			})
		})
	})

	Convey("Given the zero empty-requirement policy", t, func() {
		f := newFixture(scoring.WithEmptyRequirementCoverage(scoring.EmptyCoverageZero))
		f.employee("a", 1, nil, "Go")
		f.team("t1", "a")
		f.project("p1", 0, nil)

		Convey("When scoring a project without required skills", func() {
			res, err := f.engine.Score(f.ctx, "t1", "p1")

			Convey("Then coverage is zero", func() {
				So(err, ShouldBeNil)
				So(res.SkillCoverage, ShouldEqual, 0)
			})
		})
	})
}

func TestSimilaritySymmetry(t *testing.T) {
	Convey("Given a scored team and project pointing in different directions", t, func() {
		f := newFixture()
		f.employee("a", 1, vector.Vector{1, 0}, "Go")
		f.team("t1", "a")
		f.project("p1", 0, unit(3, 4), "go")
		res, err := f.engine.Score(f.ctx, "t1", "p1")
		So(err, ShouldBeNil)

		teamKey := vector.Key{Kind: vector.KindTeam, ID: "t1"}
		projectKey := vector.Key{Kind: vector.KindProject, ID: "p1"}

		Convey("Then similarity is the same in both directions", func() {
			ab, err := f.vecs.Similarity(f.ctx, teamKey, projectKey)
			So(err, ShouldBeNil)
			ba, err := f.vecs.Similarity(f.ctx, projectKey, teamKey)
			So(err, ShouldBeNil)
			So(ab, ShouldEqual, ba)
			So(res.EmbeddingSimilarity, ShouldAlmostEqual, ab, 1e-9)
			So(res.EmbeddingSimilarity, ShouldAlmostEqual, 0.6, 1e-6)
		})

		Convey("Then the dot product is symmetric for random unit vectors", func() {
			rng := rand.New(rand.NewPCG(3, 5))
			for i := 0; i < 200; i++ {
				a := randomUnit(rng, 16)
				b := randomUnit(rng, 16)
				ab, err := vector.Dot(a, b)
				So(err, ShouldBeNil)
				ba, err := vector.Dot(b, a)
				So(err, ShouldBeNil)
				So(scoring.Similarity(ab), ShouldEqual, scoring.Similarity(ba))
			}
		})
	})
}

func unit(xs ...float32) vector.Vector {
	v, _ := vector.Normalize(xs)
	return v
}

func randomUnit(rng *rand.Rand, dim int) vector.Vector {
	v := make(vector.Vector, dim)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	out, err := vector.Normalize(v)
	So(err, ShouldBeNil)
	return out
}

type debugRecorder struct {
	logger.Logger
	messages []string
}

func (r *debugRecorder) Debug(_ context.Context, msg string, _ ...logger.Field) {
	r.messages = append(r.messages, msg)
}

func TestEngineLogging(t *testing.T) {
	Convey("Given an engine with a logger", t, func() {
		rec := &debugRecorder{Logger: logger.Nop()}
		f := newFixture(scoring.WithLogger(rec))
		f.employee("a", 1, vector.Vector{1, 0}, "Go")
		f.team("t1", "a")

		Convey("When the project has not been embedded", func() {
			f.project("p1", 0, nil, "go")
			_, err := f.engine.Score(f.ctx, "t1", "p1")

			Convey("Then the missing embedding is logged at debug level", func() {
				So(err, ShouldBeNil)
				So(rec.messages, ShouldContain, "project has no embedding yet")
			})
		})

		Convey("When the project is embedded", func() {
			f.project("p1", 0, vector.Vector{1, 0}, "go")
			_, err := f.engine.Score(f.ctx, "t1", "p1")

			Convey("Then nothing is logged", func() {
				So(err, ShouldBeNil)
				So(rec.messages, ShouldBeEmpty)
			})
		})
	})
}
