// File path: internal/recipe/analyzer_test.go
package recipe

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

const orderRecipe = "1. Fetch customer records from the database. " +
	"2. Transform the records to JSON format. " +
	"3. Validate the JSON data. " +
	"4. Send an email notification to the admin."

func TestAnalyzeRecipeNumberedList(t *testing.T) {
	analysis, err := AnalyzeRecipe(orderRecipe, "order sync")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.StepCount != 4 || len(analysis.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", analysis.StepCount)
	}
	if got := analysis.Steps[0].StepType; got != StepIntegration {
		t.Errorf("step 1 type = %s, want %s", got, StepIntegration)
	}
	if got := analysis.Steps[1].StepType; got != StepTransform {
		t.Errorf("step 2 type = %s, want %s", got, StepTransform)
	}
	if got := analysis.Steps[2].StepType; got != StepValidation {
		t.Errorf("step 3 type = %s, want %s", got, StepValidation)
	}
	found := false
	for _, verb := range analysis.Steps[3].ActionVerbs {
		if verb == "send" {
			found = true
		}
	}
	if !found {
		t.Errorf("step 4 verbs = %v, want to include send", analysis.Steps[3].ActionVerbs)
	}
	for _, step := range analysis.Steps {
		if step.Confidence < 0.0 || step.Confidence > 1.0 {
			t.Errorf("step %s confidence %f out of range", step.ID, step.Confidence)
		}
	}
}

func TestAnalyzeRecipeQuotedEntity(t *testing.T) {
	analysis, err := AnalyzeRecipe(`Get weather forecast for city "Paris"`, "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Steps) == 0 {
		t.Fatal("expected at least one step")
	}
	found := false
	for _, entity := range analysis.Steps[0].Entities {
		if entity == "paris" {
			found = true
		}
	}
	if !found {
		t.Errorf("entities = %v, want to include paris", analysis.Steps[0].Entities)
	}
}

func TestAnalyzeRecipeDeterministic(t *testing.T) {
	first, err := AnalyzeRecipe(orderRecipe, "repeat")
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	second, err := AnalyzeRecipe(orderRecipe, "repeat")
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different analyses")
	}
}

func TestAnalyzeRecipeEmptyText(t *testing.T) {
	if _, err := AnalyzeRecipe("   \n  ", "blank"); err == nil {
		t.Fatal("expected error for empty recipe text")
	}
}

func TestAnalyzeRecipeBulletedList(t *testing.T) {
	text := "- Load orders.csv into the staging table\n" +
		"- Convert amounts to the reporting format\n" +
		"- Publish a status report to the dashboard"
	analysis, err := AnalyzeRecipe(text, "bullets")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(analysis.Steps))
	}
	found := false
	for _, entity := range analysis.Steps[0].Entities {
		if entity == "orders.csv" {
			found = true
		}
	}
	if !found {
		t.Errorf("entities = %v, want to include orders.csv", analysis.Steps[0].Entities)
	}
}

func TestExtractParameters(t *testing.T) {
	params := extractParameters("Export the report with format: pdf and retries=3")
	if params["format"] != "pdf" {
		t.Errorf("format = %q, want pdf", params["format"])
	}
	if params["retries"] != "3" {
		t.Errorf("retries = %q, want 3", params["retries"])
	}
}

func TestExtractParametersJSONFragment(t *testing.T) {
	params := extractParameters(`Call the endpoint with payload {"region": "eu", "limit": 10}`)
	if params["region"] != "eu" {
		t.Errorf("region = %q, want eu", params["region"])
	}
	if params["limit"] != "10" {
		t.Errorf("limit = %q, want 10", params["limit"])
	}
}

func TestDependencyInference(t *testing.T) {
	text := "1. Fetch customer records from the database. " +
		"2. Then archive the customer records. " +
		"3. Generate a summary report."
	analysis, err := AnalyzeRecipe(text, "deps")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(analysis.Steps))
	}
	deps := analysis.Steps[1].Dependencies
	found := false
	for _, dep := range deps {
		if dep == analysis.Steps[0].ID {
			found = true
		}
	}
	if !found {
		t.Errorf("step 2 dependencies = %v, want to include %s", deps, analysis.Steps[0].ID)
	}
}

func TestRecipeClassificationLoop(t *testing.T) {
	text := "1. Load the invoice list. " +
		"2. For each invoice repeat the posting routine. " +
		"3. Send the completion alert."
	analysis, err := AnalyzeRecipe(text, "loop")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.RecipeType != RecipeAutomation {
		t.Errorf("recipe type = %s, want %s", analysis.RecipeType, RecipeAutomation)
	}
	if analysis.EstimatedDurationMin <= 0 {
		t.Errorf("duration = %f, want positive", analysis.EstimatedDurationMin)
	}
	if analysis.ComplexityScore < 0 || analysis.ComplexityScore > 1 {
		t.Errorf("complexity = %f out of range", analysis.ComplexityScore)
	}
}

func TestRequiredCapabilities(t *testing.T) {
	analysis, err := AnalyzeRecipe(orderRecipe, "caps")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	joined := strings.Join(analysis.RequiredCapabilities, ",")
	if !strings.Contains(joined, "database-access") {
		t.Errorf("capabilities = %v, want database-access", analysis.RequiredCapabilities)
	}
	if !strings.Contains(joined, "system-integration") {
		t.Errorf("capabilities = %v, want system-integration", analysis.RequiredCapabilities)
	}
}

func TestStepNameRuneTruncation(t *testing.T) {
	word := strings.Repeat("é", 9)
	raw := strings.TrimSpace(strings.Repeat(word+" ", 8))
	name := stepName(raw)
	if !utf8.ValidString(name) {
		t.Fatalf("step name %q is not valid utf-8", name)
	}
	if got := utf8.RuneCountInString(name); got > 60 {
		t.Errorf("step name length = %d runes, want at most 60", got)
	}
	if short := stepName("Fetch records"); short != "Fetch records" {
		t.Errorf("short name = %q, want unchanged", short)
	}
}

func TestClassifyStepTypeDefaults(t *testing.T) {
	if got := classifyStepType([]string{"frobnicate", "widget"}, nil); got != StepUnknown {
		t.Errorf("no evidence type = %s, want %s", got, StepUnknown)
	}
	if got := classifyStepType([]string{"copy", "widget"}, []string{"copy"}); got != StepAction {
		t.Errorf("verb-only type = %s, want %s", got, StepAction)
	}
}
