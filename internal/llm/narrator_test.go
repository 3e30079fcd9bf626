// File path: internal/llm/narrator_test.go
package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/nicodishanthj/Reciplan_phase1/internal/llm/providers"
	"github.com/nicodishanthj/Reciplan_phase1/internal/mapper"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
)

func samplePlan() (*recipe.RecipeAnalysis, []mapper.StepMapping) {
	analysis := &recipe.RecipeAnalysis{
		Name:                 "daily export",
		RecipeType:           recipe.RecipeWorkflow,
		StepCount:            2,
		ComplexityScore:      0.4,
		EstimatedDurationMin: 6,
	}
	mapped := mapper.StepMapping{
		StepID:            "step_1",
		Step:              recipe.ParsedStep{ID: "step_1", Name: "Fetch records"},
		BestMatch:         &mapper.ToolMatch{ToolID: "tool_db", ToolName: "DB Export"},
		MappingConfidence: 0.91,
	}
	unmapped := mapper.StepMapping{
		StepID:               "step_2",
		Step:                 recipe.ParsedStep{ID: "step_2", Name: "Notify admin"},
		RequiresManualReview: true,
	}
	return analysis, []mapper.StepMapping{mapped, unmapped}
}

func TestPlanDigest(t *testing.T) {
	analysis, mappings := samplePlan()
	digest := PlanDigest(analysis, mappings)
	for _, want := range []string{"daily export", "DB Export", "confidence 0.91", "Notify admin: unmapped"} {
		if !strings.Contains(digest, want) {
			t.Fatalf("digest missing %q:\n%s", want, digest)
		}
	}
	if digest != PlanDigest(analysis, mappings) {
		t.Fatal("digest must be deterministic")
	}
}

func TestNarratePlanFallsBackToDigest(t *testing.T) {
	analysis, mappings := samplePlan()
	if got := NarratePlan(context.Background(), nil, analysis, mappings); got != PlanDigest(analysis, mappings) {
		t.Fatalf("nil provider should return the digest, got:\n%s", got)
	}
}

func TestNarratePlanUsesProvider(t *testing.T) {
	analysis, mappings := samplePlan()
	got := NarratePlan(context.Background(), providers.NewLocalProvider(), analysis, mappings)
	if !strings.HasPrefix(got, "[local narration]") {
		t.Fatalf("expected local provider output, got:\n%s", got)
	}
}
