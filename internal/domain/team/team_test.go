package team_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/okian/teamfit/internal/adapters/repository/catalog"
	"github.com/okian/teamfit/internal/adapters/repository/vectors"
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/skills"
	"github.com/okian/teamfit/internal/domain/team"
	"github.com/okian/teamfit/internal/domain/vector"
	. "github.com/smartystreets/goconvey/convey"
)

func emp(id string, exp float64, sk ...string) model.Employee {
	return model.Employee{ID: id, Name: id, Experience: exp, Skills: skills.MustNew(sk...)}
}

func TestAggregate(t *testing.T) {
	Convey("Given team members", t, func() {
		a := team.Member{Employee: emp("a", 4, "Python", "SQL"), Embedding: vector.Vector{1, 0}}
		b := team.Member{Employee: emp("b", 2, "python", "Go"), Embedding: vector.Vector{0, 1}}
		c := team.Member{Employee: emp("c", 6)}

		Convey("When aggregating with a lead", func() {
			p := team.Aggregate("t1", []team.Member{a, b, c}, "a")

			Convey("Then skills, experience and balance follow the definitions", func() {
				So(p.Skills.Displays(), ShouldResemble, []string{"Python", "SQL", "Go"})
				So(p.AvgExperience, ShouldEqual, 4)
				So(p.Balance, ShouldAlmostEqual, 3.0/4.0, 1e-9)
				So(p.MemberCount, ShouldEqual, 3)
				So(p.EmbeddedMembers, ShouldEqual, 2)
			})

			Convey("Then the embedding leans toward the lead and is unit length", func() {
				So(vector.IsUnit(p.Embedding), ShouldBeTrue)
				So(float64(p.Embedding[0]), ShouldAlmostEqual, 1.5/math.Sqrt(3.25), 1e-6)
			})
		})

		Convey("When no member has an embedding", func() {
			p := team.Aggregate("t1", []team.Member{c}, "")

			Convey("Then the embedding is undefined", func() {
				So(p.Embedding, ShouldBeNil)
				So(p.Balance, ShouldEqual, 0)
				So(p.AvgExperience, ShouldEqual, 6)
			})
		})

		Convey("When the team is empty", func() {
			p := team.Aggregate("t1", nil, "")

			Convey("Then every derived number is zero", func() {
				So(p.AvgExperience, ShouldEqual, 0)
				So(p.Balance, ShouldEqual, 0)
				So(p.Skills.Len(), ShouldEqual, 0)
				So(p.Embedding, ShouldBeNil)
			})
		})

		Convey("When every member has the same single skill", func() {
			p := team.Aggregate("t1", []team.Member{
				{Employee: emp("x", 1, "Go")}, {Employee: emp("y", 1, "go")}, {Employee: emp("z", 1, "GO")},
			}, "")

			Convey("Then balance is one third", func() {
				So(p.Balance, ShouldAlmostEqual, 1.0/3.0, 1e-9)
			})
		})

		Convey("When three members share the same two skills", func() {
			p := team.Aggregate("t1", []team.Member{
				{Employee: emp("x", 1, "Go", "SQL")}, {Employee: emp("y", 1, "go", "sql")}, {Employee: emp("z", 1, "GO", "Sql")},
			}, "")

			Convey("Then balance is two distinct over six instances", func() {
				So(p.Balance, ShouldAlmostEqual, 2.0/6.0, 1e-9)
			})
		})

		Convey("When three members each have two skills of their own", func() {
			p := team.Aggregate("t1", []team.Member{
				{Employee: emp("x", 1, "Go", "SQL")}, {Employee: emp("y", 1, "React", "CSS")}, {Employee: emp("z", 1, "Kafka", "Java")},
			}, "")

			Convey("Then balance is one", func() {
				So(p.Balance, ShouldEqual, 1.0)
			})
		})
	})
}

func TestAggregateNorm(t *testing.T) {
	Convey("Given teams of one to twenty members with random embeddings", t, func() {
		rng := rand.New(rand.NewPCG(42, 7))
		for n := 1; n <= 20; n++ {
			members := make([]team.Member, n)
			for i := range members {
				v := make(vector.Vector, 32)
				for j := range v {
					v[j] = float32(rng.NormFloat64())
				}
				members[i] = team.Member{Employee: emp(fmt.Sprintf("m%d", i), 1), Embedding: unit(v...)}
			}
			lead := members[rng.IntN(n)].Employee.ID
			p := team.Aggregate("t", members, lead)

			So(p.Embedding, ShouldNotBeNil)
			So(vector.Norm(p.Embedding), ShouldAlmostEqual, 1.0, 1e-6)
		}
	})
}

func unit(xs ...float32) vector.Vector {
	v, _ := vector.Normalize(xs)
	return v
}

func TestCache(t *testing.T) {
	Convey("Given a catalog, vector store and cache", t, func() {
		ctx := context.Background()
		cat := catalog.New()
		vs := vectors.NewMemoryStore(vectors.WithDimension(2))
		cache := team.NewCache(cat, vs, nil)

		for _, e := range []model.Employee{emp("a", 4, "Python"), emp("b", 2, "Go")} {
			_, _, err := cat.PutEmployee(ctx, e)
			So(err, ShouldBeNil)
		}
		_, err := cat.PutTeam(ctx, "t1", "Alpha")
		So(err, ShouldBeNil)
		_, err = cat.AddMember(ctx, "t1", "a")
		So(err, ShouldBeNil)
		So(vs.Upsert(ctx, vector.Key{Kind: vector.KindEmployee, ID: "a"}, unit(1, 0)), ShouldBeNil)

		Convey("When reading a never-computed team", func() {
			So(cache.IsValid("t1"), ShouldBeFalse)
			p, err := cache.Profile(ctx, "t1")

			Convey("Then it is computed, stored and becomes valid", func() {
				So(err, ShouldBeNil)
				So(p.MemberCount, ShouldEqual, 1)
				So(cache.IsValid("t1"), ShouldBeTrue)
				v, err := vs.Get(ctx, vector.Key{Kind: vector.KindTeam, ID: "t1"})
				So(err, ShouldBeNil)
				So(v, ShouldResemble, unit(1, 0))
			})
		})

		Convey("When a member joins after the profile was computed", func() {
			_, err := cache.Profile(ctx, "t1")
			So(err, ShouldBeNil)

			_, err = cat.AddMember(ctx, "t1", "b")
			So(err, ShouldBeNil)
			So(vs.Upsert(ctx, vector.Key{Kind: vector.KindEmployee, ID: "b"}, unit(0, 1)), ShouldBeNil)
			cache.Invalidate("t1", team.ReasonMemberJoined)

			Convey("Then the entry is stale until the next read recomputes it", func() {
				So(cache.IsValid("t1"), ShouldBeFalse)
				p, err := cache.Profile(ctx, "t1")
				So(err, ShouldBeNil)
				So(p.MemberCount, ShouldEqual, 2)
				So(p.AvgExperience, ShouldEqual, 3)
				So(cache.IsValid("t1"), ShouldBeTrue)
			})
		})

		Convey("When the last embedded member leaves", func() {
			_, err := cache.Profile(ctx, "t1")
			So(err, ShouldBeNil)
			So(cat.RemoveMember(ctx, "t1", "a"), ShouldBeNil)
			cache.Invalidate("t1", team.ReasonMemberLeft)
			p, err := cache.Profile(ctx, "t1")

			Convey("Then the team vector is removed", func() {
				So(err, ShouldBeNil)
				So(p.Embedding, ShouldBeNil)
				_, err := vs.Get(ctx, vector.Key{Kind: vector.KindTeam, ID: "t1"})
				So(errors.Is(err, vector.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the team does not exist", func() {
			_, err := cache.Profile(ctx, "ghost")

			Convey("Then MissingEntity is returned", func() {
				So(errors.Is(err, model.ErrMissingEntity), ShouldBeTrue)
			})
		})

		Convey("When many readers race with invalidations", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, _ = cache.Profile(ctx, "t1")
				}()
				go func() {
					defer wg.Done()
					cache.Invalidate("t1", team.ReasonMemberProfile)
				}()
			}
			wg.Wait()

			Convey("Then a final read returns a consistent profile", func() {
				p, err := cache.Profile(ctx, "t1")
				So(err, ShouldBeNil)
				So(p.MemberCount, ShouldEqual, 1)
				So(cache.IsValid("t1"), ShouldBeTrue)
			})
		})

		Convey("When many unknown teams are looked up", func() {
			for i := 0; i < 1000; i++ {
				_, err := cache.Profile(ctx, fmt.Sprintf("ghost-%d", i))
				So(errors.Is(err, model.ErrMissingEntity), ShouldBeTrue)
			}
			So(cache.IsValid("ghost-0"), ShouldBeFalse)

			Convey("Then no cache entries are retained", func() {
				So(cache.Len(), ShouldEqual, 0)
			})
		})

		Convey("When forgetting a team", func() {
			_, err := cache.Profile(ctx, "t1")
			So(err, ShouldBeNil)
			So(cache.Forget(ctx, "t1"), ShouldBeNil)

			Convey("Then its vector is gone", func() {
				_, err := vs.Get(ctx, vector.Key{Kind: vector.KindTeam, ID: "t1"})
				So(errors.Is(err, vector.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

// gatedSource blocks the first membership read until released.
type gatedSource struct {
	team.Source
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSource) TeamMembers(ctx context.Context, teamID string) (model.Team, []model.Employee, error) {
	t, members, err := g.Source.TeamMembers(ctx, teamID)
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return t, members, err
}

func TestCacheForgetDuringRecompute(t *testing.T) {
	Convey("Given a recomputation blocked after reading the members", t, func() {
		ctx := context.Background()
		cat := catalog.New()
		vs := vectors.NewMemoryStore(vectors.WithDimension(2))
		src := &gatedSource{Source: cat, entered: make(chan struct{}), release: make(chan struct{})}
		cache := team.NewCache(src, vs, nil)

		_, _, err := cat.PutEmployee(ctx, emp("a", 4, "Python"))
		So(err, ShouldBeNil)
		_, err = cat.PutTeam(ctx, "t1", "Alpha")
		So(err, ShouldBeNil)
		_, err = cat.AddMember(ctx, "t1", "a")
		So(err, ShouldBeNil)
		So(vs.Upsert(ctx, vector.Key{Kind: vector.KindEmployee, ID: "a"}, unit(1, 0)), ShouldBeNil)

		computed := make(chan error, 1)
		go func() {
			_, err := cache.Profile(ctx, "t1")
			computed <- err
		}()
		<-src.entered

		Convey("When the team is deleted and forgotten before it finishes", func() {
			So(cat.DeleteTeam(ctx, "t1"), ShouldBeNil)
			forgot := make(chan error, 1)
			go func() { forgot <- cache.Forget(ctx, "t1") }()
			close(src.release)
			<-computed
			So(<-forgot, ShouldBeNil)

			Convey("Then no team vector survives", func() {
				_, err := vs.Get(ctx, vector.Key{Kind: vector.KindTeam, ID: "t1"})
				So(errors.Is(err, vector.ErrNotFound), ShouldBeTrue)
				n, err := vs.Count(ctx, vector.KindTeam)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
				So(cache.Len(), ShouldEqual, 0)
				So(cache.IsValid("t1"), ShouldBeFalse)
			})
		})
	})
}
