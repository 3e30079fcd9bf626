// File path: internal/mapper/mapper.go
package mapper

import (
	"context"
	"fmt"
	"sort"

	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common/telemetry"
	"github.com/nicodishanthj/Reciplan_phase1/internal/confidence"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
	"github.com/nicodishanthj/Reciplan_phase1/internal/search"
)

const (
	// DefaultStrategy keeps only the strongest matches per step.
	DefaultStrategy = "best_match"
	// StrategyComprehensive retains every match that passed the
	// threshold, useful for review surfaces.
	StrategyComprehensive = "comprehensive"

	DefaultThreshold  = 0.3
	DefaultMaxMatches = 5

	// Review triggers.
	autoAcceptFloor = confidence.AutoAcceptThreshold
	ambiguityGap    = 0.1
)

// Inline ranking weights. Deliberately simpler than the confidence
// engine's overall-mapping weights: this path ranks candidates during
// search, the engine's richer assessment explains them afterwards.
const (
	rankSimilarityWeight    = 0.4
	rankContextWeight       = 0.3
	rankCompatibilityWeight = 0.3
)

// Context score ingredients for the inline ranking.
const (
	contextBase          = 0.4
	contextEntityBonus   = 0.15
	contextEntityCap     = 0.3
	contextSemanticBonus = 0.2
)

// ToolMatch is one evaluated candidate for a step.
type ToolMatch struct {
	ToolID             string             `json:"tool_id"`
	ToolName           string             `json:"tool_name"`
	ToolType           string             `json:"tool_type"`
	SimilarityScore    float64            `json:"similarity_score"`
	ContextScore       float64            `json:"context_score"`
	CompatibilityScore float64            `json:"compatibility_score"`
	OverallConfidence  float64            `json:"overall_confidence"`
	Reasoning          string             `json:"reasoning,omitempty"`
	Capabilities       []string           `json:"capabilities,omitempty"`
	ToolData           catalog.ToolRecord `json:"tool_data"`
}

// StepMapping is the mapping outcome for one step: every match that
// passed the threshold, the winner, and any review guidance.
type StepMapping struct {
	StepID               string             `json:"step_id"`
	Step                 recipe.ParsedStep  `json:"step"`
	Matches              []ToolMatch        `json:"matches,omitempty"`
	BestMatch            *ToolMatch         `json:"best_match,omitempty"`
	MappingConfidence    float64            `json:"mapping_confidence"`
	RequiresManualReview bool               `json:"requires_manual_review"`
	Suggestions          []string           `json:"suggestions,omitempty"`
}

// Mapper orchestrates per-step candidate search, match evaluation, and
// the global conflict-resolution pass.
type Mapper struct {
	engine *search.Engine
}

func NewMapper(engine *search.Engine) *Mapper {
	return &Mapper{engine: engine}
}

// MapRecipeToTools maps every step to its best available tool. Failures
// never abort the recipe: a step that cannot be mapped comes back as a
// zero-confidence entry flagged for review, and the returned list always
// has one entry per input step, in step order.
func (m *Mapper) MapRecipeToTools(ctx context.Context, steps []recipe.ParsedStep, strategy string, threshold float64, maxMatches int, filters map[string]string) []StepMapping {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if strategy != DefaultStrategy && strategy != StrategyComprehensive {
		common.Logger().Warn("mapper: unknown strategy, using default", "strategy", strategy)
		strategy = DefaultStrategy
	}
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	ctx, end := telemetry.StartSpan(ctx, "mapper.map_recipe")
	defer end("steps", len(steps))

	mappings := make([]StepMapping, 0, len(steps))
	for _, step := range steps {
		mappings = append(mappings, m.mapStep(ctx, step, strategy, threshold, maxMatches, filters))
	}
	resolveConflicts(mappings)
	for i := range mappings {
		telemetry.RecordMapping(mappings[i].RequiresManualReview)
	}
	common.Logger().Debug("mapper: recipe mapped", "steps", len(steps), "elapsed", telemetry.SpanDuration(ctx))
	return mappings
}

func (m *Mapper) mapStep(ctx context.Context, step recipe.ParsedStep, strategy string, threshold float64, maxMatches int, filters map[string]string) (mapping StepMapping) {
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("mapper: step mapping panicked", "step", step.ID, "panic", r)
			mapping = failedMapping(step, fmt.Sprintf("mapping failed: %v", r))
		}
	}()

	candidates := m.engine.FindCandidates(ctx, step, maxMatches*2, filters)

	matches := make([]ToolMatch, 0, len(candidates))
	for _, candidate := range candidates {
		match, err := evaluateCandidate(step, candidate)
		if err != nil {
			common.Logger().Warn("mapper: skipping candidate", "step", step.ID, "tool", candidate.Record.ID, "error", err)
			continue
		}
		if match.OverallConfidence >= threshold {
			matches = append(matches, match)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].OverallConfidence != matches[j].OverallConfidence {
			return matches[i].OverallConfidence > matches[j].OverallConfidence
		}
		return matches[i].ToolID < matches[j].ToolID
	})
	if strategy == DefaultStrategy && len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	mapping = StepMapping{StepID: step.ID, Step: step, Matches: matches}
	if len(matches) == 0 {
		mapping.RequiresManualReview = true
		mapping.Suggestions = append(mapping.Suggestions,
			"no compatible tools found for this step; rephrase it with an explicit action and the system it touches")
		return mapping
	}

	best := matches[0]
	mapping.BestMatch = &best
	mapping.MappingConfidence = best.OverallConfidence
	if best.OverallConfidence < autoAcceptFloor {
		mapping.RequiresManualReview = true
		mapping.Suggestions = append(mapping.Suggestions,
			fmt.Sprintf("confidence %.2f is below the auto-accept threshold; verify %q fits this step", best.OverallConfidence, best.ToolName))
	}
	if len(matches) > 1 && best.OverallConfidence-matches[1].OverallConfidence < ambiguityGap {
		mapping.RequiresManualReview = true
		mapping.Suggestions = append(mapping.Suggestions,
			fmt.Sprintf("%q and %q scored within %.2f of each other; pick one manually", best.ToolName, matches[1].ToolName, ambiguityGap))
	}
	return mapping
}

// evaluateCandidate turns a search candidate into a ranked ToolMatch
// using the inline formula.
func evaluateCandidate(step recipe.ParsedStep, candidate search.Candidate) (ToolMatch, error) {
	if candidate.Record.ID == "" {
		return ToolMatch{}, fmt.Errorf("candidate missing tool id")
	}
	similarity := clamp(candidate.Similarity, 0, 1)
	ctxScore := contextScore(candidate)
	compatibility := confidence.TypeCompatibility(step.StepType, candidate.Record.ToolType)
	overall := rankSimilarityWeight*similarity + rankContextWeight*ctxScore + rankCompatibilityWeight*compatibility

	return ToolMatch{
		ToolID:             candidate.Record.ID,
		ToolName:           candidate.Record.Name,
		ToolType:           candidate.Record.ToolType,
		SimilarityScore:    similarity,
		ContextScore:       ctxScore,
		CompatibilityScore: compatibility,
		OverallConfidence:  clamp(overall, 0, 1),
		Reasoning: fmt.Sprintf("ranked %.2f via %s search: similarity %.2f, context %.2f, compatibility %.2f",
			clamp(overall, 0, 1), candidate.Method, similarity, ctxScore, compatibility),
		Capabilities: candidate.Record.Capabilities,
		ToolData:     candidate.Record,
	}, nil
}

func contextScore(candidate search.Candidate) float64 {
	score := contextBase
	entityBonus := contextEntityBonus * float64(candidate.EntityHits)
	if entityBonus > contextEntityCap {
		entityBonus = contextEntityCap
	}
	score += entityBonus
	if candidate.Method == search.MethodSemantic {
		score += contextSemanticBonus
	}
	return clamp(score, 0, 1)
}

func failedMapping(step recipe.ParsedStep, reason string) StepMapping {
	return StepMapping{
		StepID:               step.ID,
		Step:                 step,
		RequiresManualReview: true,
		Suggestions:          []string{reason},
	}
}

// resolveConflicts runs the single global pass over the finished
// mappings: when two steps claim the same tool, the higher-confidence
// step keeps it and the others fall back to their next-best alternative.
// The pass runs exactly once; a reassignment that introduces a fresh
// collision is left for manual review rather than iterated.
func resolveConflicts(mappings []StepMapping) {
	groups := make(map[string][]int)
	for i := range mappings {
		if mappings[i].BestMatch != nil {
			id := mappings[i].BestMatch.ToolID
			groups[id] = append(groups[id], i)
		}
	}
	toolIDs := make([]string, 0, len(groups))
	for id := range groups {
		toolIDs = append(toolIDs, id)
	}
	sort.Strings(toolIDs)

	for _, toolID := range toolIDs {
		members := groups[toolID]
		if len(members) < 2 {
			continue
		}
		telemetry.RecordConflict()

		winner := members[0]
		for _, idx := range members[1:] {
			if mappings[idx].MappingConfidence > mappings[winner].MappingConfidence {
				winner = idx
			}
		}
		for _, idx := range members {
			if idx == winner {
				continue
			}
			reassign(&mappings[idx], toolID)
		}
	}
}

func reassign(mapping *StepMapping, conflictID string) {
	for i := range mapping.Matches {
		if mapping.Matches[i].ToolID == conflictID {
			continue
		}
		alternative := mapping.Matches[i]
		mapping.BestMatch = &alternative
		mapping.MappingConfidence = alternative.OverallConfidence
		mapping.RequiresManualReview = true
		mapping.Suggestions = append(mapping.Suggestions,
			fmt.Sprintf("tool %q was claimed by a higher-confidence step; reassigned to %q", conflictID, alternative.ToolName))
		return
	}
	mapping.BestMatch = nil
	mapping.MappingConfidence = 0
	mapping.RequiresManualReview = true
	mapping.Suggestions = append(mapping.Suggestions,
		fmt.Sprintf("tool %q was claimed by a higher-confidence step and no alternative tool is available", conflictID))
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
