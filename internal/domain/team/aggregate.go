// Package team derives composite team profiles from member data and keeps
// them in a cache that is explicitly invalidated when members change.
package team

import (
	"github.com/okian/teamfit/internal/domain/model"
	"github.com/okian/teamfit/internal/domain/skills"
	"github.com/okian/teamfit/internal/domain/vector"
)

// Member weights in the composite embedding.
const (
	LeadWeight   = 1.5
	MemberWeight = 1.0
)

// Member is an employee together with its stored embedding (nil if none).
type Member struct {
	Employee  model.Employee
	Embedding vector.Vector
}

// Profile is the derived state of a team.
type Profile struct {
	TeamID string
	// Skills is the union of member skills in first-seen order.
	Skills skills.Set
	// AvgExperience is the mean over all members; 0 for an empty team.
	AvgExperience float64
	// Balance is distinct skills over total skill instances; 0 when no
	// member lists a skill.
	Balance float64
	// Embedding is the weighted, renormalized member centroid, or nil when
	// no member has an embedding.
	Embedding       vector.Vector
	MemberCount     int
	EmbeddedMembers int
}

// Aggregate computes a Profile. Members without embeddings still count
// toward skills and experience.
func Aggregate(teamID string, members []Member, leadID string) Profile {
	p := Profile{TeamID: teamID, MemberCount: len(members)}
	if len(members) == 0 {
		return p
	}

	sets := make([]skills.Set, 0, len(members))
	var (
		expSum    float64
		instances int
		vecs      []vector.Vector
		weights   []float64
	)
	for _, m := range members {
		sets = append(sets, m.Employee.Skills)
		instances += m.Employee.Skills.Len()
		expSum += m.Employee.Experience
		if len(m.Embedding) > 0 {
			w := MemberWeight
			if leadID != "" && m.Employee.ID == leadID {
				w = LeadWeight
			}
			vecs = append(vecs, m.Embedding)
			weights = append(weights, w)
		}
	}

	p.Skills = skills.Union(sets...)
	p.AvgExperience = expSum / float64(len(members))
	if instances > 0 {
		p.Balance = float64(p.Skills.Len()) / float64(instances)
	}
	if emb, err := vector.WeightedMean(vecs, weights); err == nil {
		p.Embedding = emb
		p.EmbeddedMembers = len(vecs)
	}
	return p
}

// Solo treats a single employee as a one-member team led by themselves.
func Solo(e model.Employee, emb vector.Vector) Profile {
	return Aggregate("", []Member{{Employee: e, Embedding: emb}}, e.ID)
}
