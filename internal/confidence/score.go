// File path: internal/confidence/score.go
package confidence

import (
	"fmt"
	"sort"
	"strings"
)

// Level is the discrete band a numeric score falls into.
type Level string

const (
	LevelVeryHigh Level = "very_high"
	LevelHigh     Level = "high"
	LevelMedium   Level = "medium"
	LevelLow      Level = "low"
	LevelVeryLow  Level = "very_low"
)

// Band thresholds shared by every assessment.
const (
	veryHighThreshold = 0.9
	highThreshold     = 0.7
	mediumThreshold   = 0.5
	lowThreshold      = 0.3
)

// Mapping acceptance gates.
const (
	AutoAcceptThreshold = 0.8
	ReviewThreshold     = 0.5
)

// LevelFor bands a [0,1] score.
func LevelFor(score float64) Level {
	switch {
	case score >= veryHighThreshold:
		return LevelVeryHigh
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	case score >= lowThreshold:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// Score is one confidence assessment: an overall value, its band, the named
// weighted components behind it, and human-readable rationale.
type Score struct {
	Overall         float64            `json:"overall_score"`
	Level           Level              `json:"level"`
	Components      map[string]float64 `json:"components,omitempty"`
	Reasoning       string             `json:"reasoning,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Factors         []string           `json:"factors,omitempty"`
}

// MappingAssessment is the full layered confidence picture for one
// step→tool pairing.
type MappingAssessment struct {
	StepConfidence     Score `json:"step_confidence"`
	ToolCompatibility  Score `json:"tool_compatibility"`
	SemanticSimilarity Score `json:"semantic_similarity"`
	ContextualMatch    Score `json:"contextual_match"`
	OverallMapping     Score `json:"overall_mapping"`
	AutoAccept         bool  `json:"auto_accept"`
	RequiresReview     bool  `json:"requires_review"`
}

type component struct {
	name   string
	weight float64
	score  float64
}

func blend(components []component) float64 {
	total := 0.0
	for _, c := range components {
		total += c.weight * c.score
	}
	return clamp(total, 0, 1)
}

func buildScore(subject string, components []component, recommendations, factors []string) Score {
	overall := blend(components)
	named := make(map[string]float64, len(components))
	parts := make([]string, 0, len(components))
	for _, c := range components {
		named[c.name] = c.score
		parts = append(parts, fmt.Sprintf("%s %.2f (weight %.2f)", c.name, c.score, c.weight))
	}
	sort.Strings(parts)
	reasoning := fmt.Sprintf("%s scored %.2f (%s): %s", subject, overall, LevelFor(overall), strings.Join(parts, ", "))
	return Score{
		Overall:         overall,
		Level:           LevelFor(overall),
		Components:      named,
		Reasoning:       reasoning,
		Recommendations: recommendations,
		Factors:         factors,
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
