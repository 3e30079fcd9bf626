// File path: internal/confidence/engine_test.go
package confidence

import (
	"testing"
	"time"

	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
)

func closeTo(got, want float64) bool {
	diff := got - want
	return diff < 1e-9 && diff > -1e-9
}

func wellParsedStep() recipe.ParsedStep {
	return recipe.ParsedStep{
		ID:          "step_1",
		Name:        "Fetch customer records",
		StepType:    recipe.StepIntegration,
		Order:       1,
		ActionVerbs: []string{"fetch"},
		Entities:    []string{"customer records", "database"},
		RawText:     "Fetch all customer records from the database.",
	}
}

func TestAssessStepParsingWellFormedStep(t *testing.T) {
	score := AssessStepParsing(wellParsedStep())
	if score.Overall < highThreshold {
		t.Fatalf("expected high confidence for a well formed step, got %.2f", score.Overall)
	}
	if score.Level != LevelHigh && score.Level != LevelVeryHigh {
		t.Fatalf("unexpected level %q for %.2f", score.Level, score.Overall)
	}
	for _, name := range []string{"text_clarity", "action_identification", "entity_extraction", "type_classification", "parameter_extraction"} {
		if _, ok := score.Components[name]; !ok {
			t.Fatalf("missing component %q", name)
		}
	}
	if score.Components["text_clarity"] != 1.0 {
		t.Fatalf("expected full clarity, got %.2f", score.Components["text_clarity"])
	}
	if score.Reasoning == "" {
		t.Fatal("expected a reasoning string")
	}
}

func TestAssessStepParsingOpaqueStep(t *testing.T) {
	step := recipe.ParsedStep{
		ID:       "step_1",
		Name:     "do the thing quietly now",
		StepType: recipe.StepUnknown,
		Order:    1,
		RawText:  "do the thing quietly now",
	}
	score := AssessStepParsing(step)
	if score.Overall >= ReviewThreshold {
		t.Fatalf("step without verbs or entities should score below %.2f, got %.2f", ReviewThreshold, score.Overall)
	}
	if len(score.Recommendations) == 0 {
		t.Fatal("expected recommendations for a weakly parsed step")
	}
	found := false
	for _, factor := range score.Factors {
		if factor == "no action verbs detected" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected missing-verb factor, got %v", score.Factors)
	}
}

func TestAssessToolCompatibilityStrongPairing(t *testing.T) {
	tested := time.Now().Add(-24 * time.Hour)
	tool := catalog.ToolRecord{
		ID:           "tool_crm",
		Name:         "CRM Record Fetcher",
		ToolType:     "api",
		Capabilities: []string{"fetch records", "database query"},
		HealthStatus: catalog.HealthHealthy,
		UsageCount:   150,
		LastTestedAt: &tested,
	}
	score := AssessToolCompatibility(wellParsedStep(), tool)
	if score.Overall < veryHighThreshold {
		t.Fatalf("expected very high compatibility, got %.2f", score.Overall)
	}
	if score.Components["type_compatibility"] != 0.95 {
		t.Fatalf("integration step on api tool should score 0.95, got %.2f", score.Components["type_compatibility"])
	}
	if score.Components["usage_history"] != 1.0 {
		t.Fatalf("150 invocations should give full usage trust, got %.2f", score.Components["usage_history"])
	}
}

func TestAssessToolCompatibilityWeakPairing(t *testing.T) {
	tool := catalog.ToolRecord{
		ID:           "tool_flow",
		Name:         "Legacy Workflow",
		ToolType:     "workflow",
		HealthStatus: catalog.HealthUnhealthy,
	}
	step := recipe.ParsedStep{
		ID:          "step_1",
		Name:        "Run cleanup",
		StepType:    recipe.StepAction,
		ActionVerbs: []string{"run"},
		RawText:     "Run cleanup",
	}
	score := AssessToolCompatibility(step, tool)
	if score.Overall >= ReviewThreshold {
		t.Fatalf("unhealthy unused tool should score below %.2f, got %.2f", ReviewThreshold, score.Overall)
	}
	neverTested := false
	for _, factor := range score.Factors {
		if factor == "tool has never been tested" {
			neverTested = true
		}
	}
	if !neverTested {
		t.Fatalf("expected never-tested factor, got %v", score.Factors)
	}
}

func TestUsageScoreBands(t *testing.T) {
	cases := []struct {
		count int
		want  float64
	}{
		{0, 0.3},
		{1, 0.4},
		{4, 0.4},
		{5, 0.6},
		{19, 0.6},
		{20, 0.8},
		{99, 0.8},
		{100, 1.0},
		{5000, 1.0},
	}
	for _, tc := range cases {
		if got := usageScore(tc.count); got != tc.want {
			t.Fatalf("usageScore(%d) = %.2f, want %.2f", tc.count, got, tc.want)
		}
	}
}

func TestToolHealthRecency(t *testing.T) {
	recent := time.Now().Add(-48 * time.Hour)
	stale := time.Now().Add(-60 * 24 * time.Hour)

	fresh := catalog.ToolRecord{HealthStatus: catalog.HealthDegraded, LastTestedAt: &recent}
	if got := toolHealth(fresh); !closeTo(got, 0.7) {
		t.Fatalf("recently tested degraded tool should score 0.7, got %.2f", got)
	}
	old := catalog.ToolRecord{HealthStatus: catalog.HealthHealthy, LastTestedAt: &stale}
	if got := toolHealth(old); !closeTo(got, 0.9) {
		t.Fatalf("stale healthy tool should score 0.9, got %.2f", got)
	}
	untested := catalog.ToolRecord{HealthStatus: catalog.HealthUnknown}
	if got := toolHealth(untested); got != 0.5 {
		t.Fatalf("untested unknown tool should score 0.5, got %.2f", got)
	}
}

func TestAssessSemanticSimilarity(t *testing.T) {
	tool := catalog.ToolRecord{
		ID:           "tool_db",
		Name:         "Database Export Service",
		ToolType:     "api",
		Query:        "export records from a database table",
		Capabilities: []string{"database export"},
	}
	score := AssessSemanticSimilarity(wellParsedStep(), tool, 0.9)
	if score.Components["raw_similarity"] != 0.9 {
		t.Fatalf("raw similarity should pass through, got %.2f", score.Components["raw_similarity"])
	}
	if score.Components["embedding_quality"] != embeddingQualityScore {
		t.Fatalf("embedding quality should be fixed at %.2f, got %.2f", embeddingQualityScore, score.Components["embedding_quality"])
	}
	if score.Components["context_relevance"] <= 0.3 {
		t.Fatalf("shared database vocabulary should lift context relevance, got %.2f", score.Components["context_relevance"])
	}

	unrelated := catalog.ToolRecord{ID: "tool_img", Name: "Image Resizer", Query: "resize pictures"}
	weak := AssessSemanticSimilarity(wellParsedStep(), unrelated, 0.05)
	if weak.Overall >= mediumThreshold {
		t.Fatalf("unrelated tool should score below medium, got %.2f", weak.Overall)
	}
}

func TestAssessSemanticSimilarityClampsRaw(t *testing.T) {
	score := AssessSemanticSimilarity(wellParsedStep(), catalog.ToolRecord{ID: "t"}, 1.4)
	if score.Components["raw_similarity"] != 1.0 {
		t.Fatalf("raw similarity should clamp to 1.0, got %.2f", score.Components["raw_similarity"])
	}
}

func TestAssessOverallMappingGates(t *testing.T) {
	strong := AssessOverallMapping(
		Score{Overall: 0.9, Level: LevelVeryHigh},
		Score{Overall: 0.85, Level: LevelHigh},
		Score{Overall: 0.8, Level: LevelHigh},
	)
	if !strong.AutoAccept || strong.RequiresReview {
		t.Fatalf("0.84 overall should auto accept: %+v", strong.OverallMapping)
	}
	wantContextual := 0.4*0.9 + 0.6*0.85
	if !closeTo(strong.ContextualMatch.Overall, wantContextual) {
		t.Fatalf("contextual match = %.4f, want %.4f", strong.ContextualMatch.Overall, wantContextual)
	}

	weak := AssessOverallMapping(
		Score{Overall: 0.4, Level: LevelLow},
		Score{Overall: 0.4, Level: LevelLow},
		Score{Overall: 0.45, Level: LevelLow},
	)
	if weak.AutoAccept || !weak.RequiresReview {
		t.Fatalf("0.42 overall should require review: %+v", weak.OverallMapping)
	}
}

func TestAssessOverallMappingCollectsRationale(t *testing.T) {
	got := AssessOverallMapping(
		Score{Overall: 0.4, Recommendations: []string{"add verbs"}, Factors: []string{"no entities detected"}},
		Score{Overall: 0.4, Recommendations: []string{"re-test tool"}},
		Score{Overall: 0.4},
	)
	if len(got.OverallMapping.Recommendations) != 2 {
		t.Fatalf("expected merged recommendations, got %v", got.OverallMapping.Recommendations)
	}
	if len(got.OverallMapping.Factors) != 1 {
		t.Fatalf("expected merged factors, got %v", got.OverallMapping.Factors)
	}
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{0.95, LevelVeryHigh},
		{0.9, LevelVeryHigh},
		{0.89, LevelHigh},
		{0.7, LevelHigh},
		{0.5, LevelMedium},
		{0.49, LevelLow},
		{0.3, LevelLow},
		{0.29, LevelVeryLow},
	}
	for _, tc := range cases {
		if got := LevelFor(tc.score); got != tc.want {
			t.Fatalf("LevelFor(%.2f) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
