// File path: internal/agent/graph.go
package agent

import (
	"context"
	"fmt"

	langgraphgo "github.com/tmc/langgraphgo"

	"github.com/nicodishanthj/Reciplan_phase1/internal/llm"
	"github.com/nicodishanthj/Reciplan_phase1/internal/mapper"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
)

// Planner wires the analyze, map, and narrate stages into the one-shot
// plan operation.
type Planner struct {
	provider llm.Provider
	mapper   *mapper.Mapper
}

func NewPlanner(provider llm.Provider, m *mapper.Mapper) *Planner {
	return &Planner{provider: provider, mapper: m}
}

// PlanOptions tune the mapping stage. Zero values fall back to the
// mapper defaults.
type PlanOptions struct {
	Name       string            `json:"name,omitempty"`
	Strategy   string            `json:"strategy,omitempty"`
	Threshold  float64           `json:"threshold,omitempty"`
	MaxMatches int               `json:"max_matches,omitempty"`
	Filters    map[string]string `json:"catalog_filters,omitempty"`
}

// PlanResult is the full outcome of a plan run: the parsed recipe, the
// conflict-resolved mappings, and a reviewer-facing narrative.
type PlanResult struct {
	Analysis  *recipe.RecipeAnalysis `json:"analysis"`
	Mappings  []mapper.StepMapping   `json:"mappings"`
	Narrative string                 `json:"narrative,omitempty"`
}

// Plan runs the pipeline over one recipe text. Only an unanalyzable
// recipe (empty text) fails the call; mapping and narration degrade
// into review flags and the deterministic digest instead of errors.
func (p *Planner) Plan(ctx context.Context, text string, opts *PlanOptions) (*PlanResult, error) {
	if opts == nil {
		opts = &PlanOptions{}
	}
	if p.mapper == nil {
		return nil, fmt.Errorf("planner has no mapper configured")
	}

	result := &PlanResult{}
	graph := langgraphgo.NewGraph(func(ctx context.Context, input string) (string, error) {
		analysis, err := recipe.AnalyzeRecipe(input, opts.Name)
		if err != nil {
			return "", fmt.Errorf("analyze recipe: %w", err)
		}
		result.Analysis = analysis
		result.Mappings = p.mapper.MapRecipeToTools(ctx, analysis.Steps, opts.Strategy, opts.Threshold, opts.MaxMatches, opts.Filters)
		return llm.NarratePlan(ctx, p.provider, analysis, result.Mappings), nil
	})

	narrative, err := graph.Run(ctx, text)
	if err != nil {
		return nil, err
	}
	result.Narrative = narrative
	return result, nil
}
