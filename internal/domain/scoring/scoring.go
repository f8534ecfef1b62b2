// Package scoring computes the hybrid team/project compatibility score.
//
//	final = 0.4*embedding_similarity + 0.3*skill_coverage
//	      + 0.2*experience_match + 0.1*team_balance
//
// Every component is clamped to [0, 1] and NaN is pinned to 0, so the final
// score is always in [0, 1].
package scoring

import (
	"math"

	"github.com/okian/teamfit/internal/domain/skills"
)

// Component weights. They sum to 1.
const (
	WeightEmbedding  = 0.4
	WeightSkill      = 0.3
	WeightExperience = 0.2
	WeightBalance    = 0.1
)

// Empty requirement policies for SkillCoverage.
const (
	EmptyCoverageVacuous = 1.0
	EmptyCoverageZero    = 0.0
)

// Components are the four inputs of the final score.
type Components struct {
	EmbeddingSimilarity float64
	SkillCoverage       float64
	ExperienceMatch     float64
	TeamBalance         float64
}

// Clamp pins x to [0, 1]; NaN becomes 0.
func Clamp(x float64) float64 {
	switch {
	case math.IsNaN(x), x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	return x
}

// Final combines clamped components with the fixed weights.
func Final(c Components) float64 {
	return Clamp(WeightEmbedding*Clamp(c.EmbeddingSimilarity) +
		WeightSkill*Clamp(c.SkillCoverage) +
		WeightExperience*Clamp(c.ExperienceMatch) +
		WeightBalance*Clamp(c.TeamBalance))
}

// SkillCoverage is |required ∩ have| / |required|. When nothing is required
// the configured policy value is returned.
func SkillCoverage(required, have skills.Set, emptyPolicy float64) float64 {
	if required.Len() == 0 {
		return Clamp(emptyPolicy)
	}
	return Clamp(float64(required.Intersect(have).Len()) / float64(required.Len()))
}

// ExperienceMatch is min(avg/required, 1); 1 when nothing is required.
func ExperienceMatch(avg, required float64) float64 {
	if required <= 0 {
		return 1
	}
	return Clamp(avg / required)
}

// Similarity clamps a raw inner product; negative similarity counts as 0.
func Similarity(dot float64) float64 {
	return Clamp(dot)
}
