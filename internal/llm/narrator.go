// File path: internal/llm/narrator.go
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/mapper"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
)

const narrationSystemPrompt = "You summarize automation plans for operators. " +
	"Given a parsed recipe and its step-to-tool assignments, produce a short " +
	"plain-language summary highlighting any step that needs manual review."

// NarratePlan renders a reviewer-facing summary of a mapping plan. A
// provider failure never fails the plan: the deterministic digest is
// returned instead.
func NarratePlan(ctx context.Context, provider Provider, analysis *recipe.RecipeAnalysis, mappings []mapper.StepMapping) string {
	digest := PlanDigest(analysis, mappings)
	if provider == nil {
		return digest
	}
	response, err := provider.Chat(ctx, []Message{
		{Role: "system", Content: narrationSystemPrompt},
		{Role: "user", Content: digest},
	})
	if err != nil {
		common.Logger().Warn("llm: plan narration failed, using digest", "provider", provider.Name(), "error", err)
		return digest
	}
	return strings.TrimSpace(response)
}

// PlanDigest builds the deterministic plan summary fed to the provider
// and used verbatim when no provider is reachable.
func PlanDigest(analysis *recipe.RecipeAnalysis, mappings []mapper.StepMapping) string {
	var b strings.Builder
	if analysis != nil {
		fmt.Fprintf(&b, "Recipe %q (%s): %d steps, complexity %.2f, estimated %.0f minutes.\n",
			analysis.Name, analysis.RecipeType, analysis.StepCount, analysis.ComplexityScore, analysis.EstimatedDurationMin)
	}
	for _, mapping := range mappings {
		name := mapping.Step.Name
		if name == "" {
			name = mapping.StepID
		}
		switch {
		case mapping.BestMatch == nil:
			fmt.Fprintf(&b, "- %s: unmapped, needs manual review\n", name)
		case mapping.RequiresManualReview:
			fmt.Fprintf(&b, "- %s: %s (confidence %.2f, review required)\n",
				name, mapping.BestMatch.ToolName, mapping.MappingConfidence)
		default:
			fmt.Fprintf(&b, "- %s: %s (confidence %.2f)\n",
				name, mapping.BestMatch.ToolName, mapping.MappingConfidence)
		}
	}
	return strings.TrimSpace(b.String())
}
