package matching

import (
	"bytes"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"hire-match/internal/domain/position"
	"hire-match/internal/domain/profile"
)

// Weights balance the three score components. They are normalized to sum 1.
type Weights struct {
	Skill        float64
	Compensation float64
	Location     float64
}

func DefaultWeights() Weights {
	return Weights{Skill: 0.6, Compensation: 0.25, Location: 0.15}
}

var ErrInvalidWeights = errors.New("invalid scoring weights")

func (w Weights) Normalize() (Weights, error) {
	if w.Skill < 0 || w.Compensation < 0 || w.Location < 0 {
		return Weights{}, ErrInvalidWeights
	}
	if math.IsNaN(w.Skill) || math.IsNaN(w.Compensation) || math.IsNaN(w.Location) {
		return Weights{}, ErrInvalidWeights
	}
	sum := w.Skill + w.Compensation + w.Location
	if sum <= 0 || math.IsInf(sum, 0) {
		return Weights{}, ErrInvalidWeights
	}
	return Weights{Skill: w.Skill / sum, Compensation: w.Compensation / sum, Location: w.Location / sum}, nil
}

type MatchedSkill struct {
	Name         string
	Required     profile.Level
	Possessed    profile.Level
	Contribution float64
	// Partial is set when the professional holds the skill below the required level.
	Partial bool
}

type MissingSkill struct {
	Name     string
	Required profile.Level
}

type Breakdown struct {
	SkillScore        float64
	CompensationScore float64
	LocationScore     float64
	// Coverage is the share of required-skill weight the professional holds at any level.
	Coverage float64
	// Ceiling is the highest total attainable given the missing skills.
	Ceiling        float64
	HardGateFailed bool
	MatchedSkills  []MatchedSkill
	MissingSkills  []MissingSkill
}

type Result struct {
	Score     float64
	Breakdown Breakdown
}

// Scorer is the compatibility function. It holds no state beyond its weights and
// is safe for concurrent use.
type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) (Scorer, error) {
	n, err := w.Normalize()
	if err != nil {
		return Scorer{}, err
	}
	return Scorer{weights: n}, nil
}

func (s Scorer) Weights() Weights {
	return s.weights
}

func (s Scorer) Score(p profile.Professional, j position.Position) Result {
	w := s.weights
	if w == (Weights{}) {
		w, _ = DefaultWeights().Normalize()
	}

	possessed := make(map[string]profile.Level, len(p.Skills))
	for _, sk := range p.Skills {
		key := profile.NormalizeSkillName(sk.Name)
		if key == "" {
			continue
		}
		lvl := sk.Level.Clamp()
		if lvl > possessed[key] {
			possessed[key] = lvl
		}
	}

	required := make(map[string]profile.Level, len(j.RequiredSkills))
	for _, rs := range j.RequiredSkills {
		key := profile.NormalizeSkillName(rs.Name)
		if key == "" {
			continue
		}
		lvl := rs.MinLevel.Clamp()
		if lvl > required[key] {
			required[key] = lvl
		}
	}

	// Iterate in name order so float accumulation does not depend on input order.
	names := make([]string, 0, len(required))
	for k := range required {
		names = append(names, k)
	}
	sort.Strings(names)

	var totalW, coveredW, skillSum float64
	gateUnmet := false
	matched := make([]MatchedSkill, 0, len(names))
	missing := make([]MissingSkill, 0)

	for _, name := range names {
		req := required[name]
		weight := float64(req)
		totalW += weight

		have, ok := possessed[name]
		if !ok {
			gateUnmet = true
			missing = append(missing, MissingSkill{Name: name, Required: req})
			continue
		}

		coveredW += weight
		ratio := 1.0
		if have < req {
			ratio = float64(have) / float64(req)
			gateUnmet = true
		}
		contrib := weight * ratio
		skillSum += contrib
		matched = append(matched, MatchedSkill{
			Name:         name,
			Required:     req,
			Possessed:    have,
			Contribution: round(contrib),
			Partial:      have < req,
		})
	}

	comp := compensationFit(p.MinCompensation, j.Compensation)
	loc := locationFit(p.Location, j.Location)

	bd := Breakdown{
		CompensationScore: round(comp),
		LocationScore:     round(loc),
		MatchedSkills:     matched,
		MissingSkills:     missing,
	}

	var total float64
	if totalW == 0 {
		// Nothing to match on skills: score on compensation and location alone.
		bd.SkillScore = 0
		bd.Coverage = 1
		bd.Ceiling = 1
		denom := w.Compensation + w.Location
		if denom > 0 {
			total = (w.Compensation*comp + w.Location*loc) / denom
		} else {
			total = 1
		}
	} else {
		skill := skillSum / totalW
		coverage := coveredW / totalW
		bd.SkillScore = round(skill)
		bd.Coverage = round(coverage)
		bd.Ceiling = round(clamp01(w.Skill*coverage + w.Compensation + w.Location))
		total = w.Skill*skill + w.Compensation*comp + w.Location*loc
	}

	if j.HardSkillGate && gateUnmet {
		bd.HardGateFailed = true
		return Result{Score: 0, Breakdown: bd}
	}

	return Result{Score: round(clamp01(total)), Breakdown: bd}
}

// compensationFit is 1 when the position can pay the professional's minimum and
// decays proportionally with the shortfall otherwise.
func compensationFit(minAcceptable int64, r position.CompensationRange) float64 {
	if minAcceptable <= 0 {
		return 1
	}
	hi := r.Max
	if hi == 0 {
		return 1
	}
	if hi < r.Min {
		hi = r.Min
	}
	if minAcceptable <= hi {
		return 1
	}
	if hi <= 0 {
		return 0
	}
	return clamp01(float64(hi) / float64(minAcceptable))
}

func locationFit(professional, pos string) float64 {
	want := profile.NormalizeLocation(pos)
	if want == "" || want == "remote" {
		return 1
	}
	if profile.NormalizeLocation(professional) == want {
		return 1
	}
	return 0
}

// Candidate is what ranking orders by.
type Candidate struct {
	Score float64
	Since time.Time
	ID    uuid.UUID
}

// Less orders by score descending, then earlier Since, then ID for a total order.
func Less(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Since.Equal(b.Since) {
		return a.Since.Before(b.Since)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
