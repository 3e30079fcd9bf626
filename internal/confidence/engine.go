// File path: internal/confidence/engine.go
package confidence

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
)

// AssessStepParsing scores how well a step was understood by the
// analyzer: clear text, identified actions, extracted entities, a
// confident type classification, and any parameters.
func AssessStepParsing(step recipe.ParsedStep) Score {
	clarity := textClarity(step.RawText)
	action := actionIdentification(step.ActionVerbs)
	entity := entityExtraction(step.Entities)
	classification := typeClassification(step)
	parameter := parameterExtraction(step.Parameters)

	components := []component{
		{"text_clarity", stepClarityWeight, clarity},
		{"action_identification", stepActionWeight, action},
		{"entity_extraction", stepEntityWeight, entity},
		{"type_classification", stepTypeWeight, classification},
		{"parameter_extraction", stepParameterWeight, parameter},
	}

	var recommendations, factors []string
	if action < mediumThreshold {
		recommendations = append(recommendations, "rephrase the step with an explicit action verb")
	}
	if entity < mediumThreshold {
		recommendations = append(recommendations, "name the systems, files, or data the step operates on")
	}
	if classification < mediumThreshold {
		recommendations = append(recommendations, "add wording that signals the kind of operation intended")
	}
	if clarity < mediumThreshold {
		recommendations = append(recommendations, "shorten the step to a single clear instruction")
	}
	if len(step.ActionVerbs) == 0 {
		factors = append(factors, "no action verbs detected")
	}
	if len(step.Entities) == 0 {
		factors = append(factors, "no entities detected")
	}
	if step.StepType == recipe.StepUnknown {
		factors = append(factors, "step type could not be classified")
	}
	if len(step.Parameters) > 0 {
		factors = append(factors, fmt.Sprintf("%d parameters extracted", len(step.Parameters)))
	}

	subject := fmt.Sprintf("step %q parsing", step.Name)
	return buildScore(subject, components, recommendations, factors)
}

// AssessToolCompatibility scores how suitable a concrete cataloged tool
// is for a step, independent of any semantic similarity signal.
func AssessToolCompatibility(step recipe.ParsedStep, tool catalog.ToolRecord) Score {
	typeCompat := TypeCompatibility(step.StepType, tool.ToolType)
	capability := capabilityMatch(step, tool.Capabilities)
	health := toolHealth(tool)
	usage := usageScore(tool.UsageCount)
	alignment := complexityAlignment(step, tool)

	components := []component{
		{"type_compatibility", compatTypeWeight, typeCompat},
		{"capability_match", compatCapabilityWeight, capability},
		{"tool_health", compatHealthWeight, health},
		{"usage_history", compatUsageWeight, usage},
		{"complexity_alignment", compatComplexityWeight, alignment},
	}

	var recommendations, factors []string
	if typeCompat < mediumThreshold {
		recommendations = append(recommendations, fmt.Sprintf("prefer a tool type better suited to %s steps", step.StepType))
	}
	if capability < mediumThreshold {
		recommendations = append(recommendations, "verify the tool exposes the capabilities this step needs")
	}
	if health < mediumThreshold {
		recommendations = append(recommendations, "re-test the tool before relying on it")
	}
	if usage < mediumThreshold {
		factors = append(factors, "little or no recorded usage history")
	}
	if tool.HealthStatus == catalog.HealthUnhealthy {
		factors = append(factors, "tool last reported unhealthy")
	}
	if tool.LastTestedAt == nil {
		factors = append(factors, "tool has never been tested")
	}

	subject := fmt.Sprintf("tool %q compatibility", tool.Name)
	return buildScore(subject, components, recommendations, factors)
}

// AssessSemanticSimilarity scores the linguistic match between a step
// and a tool given the raw similarity reported by the search layer.
func AssessSemanticSimilarity(step recipe.ParsedStep, tool catalog.ToolRecord, rawSimilarity float64) Score {
	raw := clamp(rawSimilarity, 0, 1)
	stepText := strings.ToLower(step.RawText)
	toolText := strings.ToLower(strings.Join(append([]string{tool.Name, tool.Query}, tool.Capabilities...), " "))

	context := contextRelevance(stepText, toolText)
	overlap := keywordOverlap(stepText, toolText)

	components := []component{
		{"raw_similarity", semanticRawWeight, raw},
		{"context_relevance", semanticContextWeight, context},
		{"keyword_overlap", semanticKeywordWeight, overlap},
		{"embedding_quality", semanticQualityWeight, embeddingQualityScore},
	}

	var recommendations, factors []string
	if raw < mediumThreshold {
		recommendations = append(recommendations, "the similarity search ranked this pairing weakly; confirm intent manually")
	}
	if context < mediumThreshold {
		factors = append(factors, "step and tool share no domain vocabulary")
	}
	if overlap < lowThreshold {
		factors = append(factors, "almost no keyword overlap between step and tool")
	}

	subject := fmt.Sprintf("semantic match for %q", tool.Name)
	return buildScore(subject, components, recommendations, factors)
}

// AssessOverallMapping combines the three underlying assessments into
// the contextual and overall mapping scores and applies the acceptance
// gates.
func AssessOverallMapping(stepScore, toolScore, semanticScore Score) MappingAssessment {
	contextual := buildScore("contextual match", []component{
		{"step_confidence", contextualStepWeight, stepScore.Overall},
		{"tool_compatibility", contextualToolWeight, toolScore.Overall},
	}, nil, nil)

	var recommendations []string
	recommendations = append(recommendations, stepScore.Recommendations...)
	recommendations = append(recommendations, toolScore.Recommendations...)
	recommendations = append(recommendations, semanticScore.Recommendations...)

	var factors []string
	factors = append(factors, stepScore.Factors...)
	factors = append(factors, toolScore.Factors...)
	factors = append(factors, semanticScore.Factors...)

	overall := buildScore("overall mapping", []component{
		{"step_confidence", overallStepWeight, stepScore.Overall},
		{"tool_compatibility", overallToolWeight, toolScore.Overall},
		{"semantic_similarity", overallSemanticWeight, semanticScore.Overall},
	}, recommendations, factors)

	return MappingAssessment{
		StepConfidence:     stepScore,
		ToolCompatibility:  toolScore,
		SemanticSimilarity: semanticScore,
		ContextualMatch:    contextual,
		OverallMapping:     overall,
		AutoAccept:         overall.Overall >= AutoAcceptThreshold,
		RequiresReview:     overall.Overall < ReviewThreshold,
	}
}

func textClarity(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0.1
	}
	score := 0.5
	words := len(strings.Fields(trimmed))
	if words >= 5 && words <= 30 {
		score += 0.2
	}
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") {
		score += 0.15
	}
	first := []rune(trimmed)[0]
	if unicode.IsUpper(first) || unicode.IsDigit(first) {
		score += 0.15
	}
	return clamp(score, 0, 1)
}

func actionIdentification(verbs []string) float64 {
	if len(verbs) == 0 {
		return 0.1
	}
	score := 0.6
	if len(verbs) > 1 {
		score += 0.1
	}
	for _, verb := range verbs {
		if _, ok := qualityVerbs[verb]; ok {
			score += 0.2
			break
		}
	}
	return clamp(score, 0, 1)
}

func entityExtraction(entities []string) float64 {
	if len(entities) == 0 {
		return 0.3
	}
	score := 0.5
	if len(entities) > 3 {
		score += 0.1 * 3
	} else {
		score += 0.1 * float64(len(entities))
	}
	for _, entity := range entities {
		if strings.Contains(entity, ".") {
			// Filenames and dotted identifiers pin the step to a
			// concrete artifact.
			score += 0.1
			break
		}
	}
	return clamp(score, 0, 1)
}

func typeClassification(step recipe.ParsedStep) float64 {
	base, ok := stepTypeBaseConfidence[step.StepType]
	if !ok {
		base = stepTypeBaseConfidence[recipe.StepUnknown]
	}
	lowered := strings.ToLower(step.RawText)
	evidence := 0
	for _, keyword := range recipe.TypeKeywords(step.StepType) {
		if strings.Contains(lowered, keyword) {
			evidence++
			if evidence == 3 {
				break
			}
		}
	}
	return clamp(base+0.05*float64(evidence), 0, 0.95)
}

func parameterExtraction(parameters map[string]string) float64 {
	if len(parameters) == 0 {
		// Absent parameters are neutral; many steps need none.
		return 0.5
	}
	score := 0.6
	if len(parameters) > 3 {
		score += 0.1 * 3
	} else {
		score += 0.1 * float64(len(parameters))
	}
	return clamp(score, 0, 1)
}

// TypeCompatibility looks up the static step-type by tool-type matrix.
// Unlisted combinations fall back to the pessimistic default.
func TypeCompatibility(stepType recipe.StepType, toolType string) float64 {
	if row, ok := stepToolCompatibility[stepType]; ok {
		if score, ok := row[toolType]; ok {
			return score
		}
	}
	return defaultTypeCompatibility
}

func capabilityMatch(step recipe.ParsedStep, capabilities []string) float64 {
	if len(capabilities) == 0 {
		return 0.5
	}
	needles := make(map[string]struct{})
	for _, verb := range step.ActionVerbs {
		needles[verb] = struct{}{}
	}
	for _, entity := range step.Entities {
		for _, token := range strings.Fields(entity) {
			needles[token] = struct{}{}
		}
	}
	for _, keyword := range recipe.TypeKeywords(step.StepType) {
		needles[keyword] = struct{}{}
	}

	matched := 0
	for _, capability := range capabilities {
		tokens := strings.FieldsFunc(strings.ToLower(capability), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, token := range tokens {
			if _, ok := needles[token]; ok {
				matched++
				break
			}
		}
	}
	return clamp(0.3+0.7*float64(matched)/float64(len(capabilities)), 0, 1)
}

func toolHealth(tool catalog.ToolRecord) float64 {
	score, ok := healthScores[tool.HealthStatus]
	if !ok {
		score = healthScores[catalog.HealthUnknown]
	}
	if tool.LastTestedAt != nil {
		age := time.Since(*tool.LastTestedAt)
		switch {
		case age <= recentTestWindowDays*24*time.Hour:
			score += healthRecencyBonus
		case age > staleTestWindowDays*24*time.Hour:
			score -= healthRecencyPenalty
		}
	}
	return clamp(score, 0, 1)
}

func complexityAlignment(step recipe.ParsedStep, tool catalog.ToolRecord) float64 {
	stepDemand := clamp(0.1+stepComplexityWeight[step.StepType]+
		0.1*float64(len(step.Dependencies))+
		0.05*float64(len(step.Entities)), 0, 1)
	toolCapacity := clamp(0.2+0.1*float64(len(tool.Capabilities))+
		float64(len(tool.Template))/2000, 0, 1)
	alignment := 1 - abs(stepDemand-toolCapacity)
	if alignment < complexityAlignmentFloor {
		return complexityAlignmentFloor
	}
	return alignment
}

func contextRelevance(stepText, toolText string) float64 {
	matched := 0
	for _, terms := range domainTermGroups {
		stepHit, toolHit := false, false
		for _, term := range terms {
			if !stepHit && strings.Contains(stepText, term) {
				stepHit = true
			}
			if !toolHit && strings.Contains(toolText, term) {
				toolHit = true
			}
			if stepHit && toolHit {
				break
			}
		}
		if stepHit && toolHit {
			matched++
		}
	}
	if matched == 0 {
		return 0.3
	}
	if matched > 3 {
		matched = 3
	}
	return clamp(0.4+0.2*float64(matched), 0, 1)
}

func keywordOverlap(stepText, toolText string) float64 {
	stepTokens := tokenSet(stepText)
	toolTokens := tokenSet(toolText)
	if len(stepTokens) == 0 || len(toolTokens) == 0 {
		return 0
	}
	shared := 0
	for token := range stepTokens {
		if _, ok := toolTokens[token]; ok {
			shared++
		}
	}
	union := len(stepTokens) + len(toolTokens) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if len(token) < 3 {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

func abs(value float64) float64 {
	if value < 0 {
		return -value
	}
	return value
}
