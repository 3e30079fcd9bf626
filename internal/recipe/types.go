// File path: internal/recipe/types.go
package recipe

// StepType classifies the kind of work a parsed step describes.
type StepType string

const (
	StepAction      StepType = "action"
	StepCondition   StepType = "condition"
	StepLoop        StepType = "loop"
	StepTransform   StepType = "transform"
	StepValidation  StepType = "validation"
	StepIntegration StepType = "integration"
	StepUnknown     StepType = "unknown"
)

// RecipeType is the ratio-based classification of a whole recipe.
type RecipeType string

const (
	RecipeWorkflow       RecipeType = "workflow"
	RecipeAutomation     RecipeType = "automation"
	RecipeDataProcessing RecipeType = "data_processing"
	RecipeValidation     RecipeType = "validation"
	RecipeIntegration    RecipeType = "integration"
)

// ParsedStep is one atomic unit of a recipe after analysis.
type ParsedStep struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	StepType     StepType          `json:"step_type"`
	Order        int               `json:"order"`
	ActionVerbs  []string          `json:"action_verbs,omitempty"`
	Entities     []string          `json:"entities,omitempty"`
	Parameters   map[string]string `json:"parameters,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Confidence   float64           `json:"confidence"`
	RawText      string            `json:"raw_text"`
}

// RecipeAnalysis aggregates the parsed steps together with recipe-level
// estimates used by downstream mapping and review surfaces.
type RecipeAnalysis struct {
	Name                 string       `json:"name"`
	RecipeType           RecipeType   `json:"recipe_type"`
	Steps                []ParsedStep `json:"steps"`
	StepCount            int          `json:"step_count"`
	ComplexityScore      float64      `json:"complexity_score"`
	EstimatedDurationMin float64      `json:"estimated_duration_minutes"`
	RequiredCapabilities []string     `json:"required_capabilities,omitempty"`
}
