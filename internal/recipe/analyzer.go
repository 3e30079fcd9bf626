// File path: internal/recipe/analyzer.go
package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common/telemetry"
)

var (
	numberedMarker = regexp.MustCompile(`(?m)(?:^|\s)\d+[.)]\s+`)
	bulletMarker   = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

	quotedEntity   = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	fileEntity     = regexp.MustCompile(`(?i)\b[\w-]+\.(?:csv|json|xml|txt|xlsx?|pdf|log|ya?ml|sql|db|zip)\b`)
	camelEntity    = regexp.MustCompile(`\b[a-z]+(?:[A-Z][a-z0-9]+)+\b`)
	storageEntity  = regexp.MustCompile(`(?i)\b(?:table|database|collection|index)\s+([A-Za-z_][\w-]*)`)
	idEntity       = regexp.MustCompile(`(?i)\b(?:\w+[_-]id|uuid|guid)\b`)
	parameterPair  = regexp.MustCompile(`(?i)\b([a-z][a-z0-9_]*)\s*[:=]\s*("[^"]*"|'[^']*'|[\w.@/-]+)`)
	jsonFragment   = regexp.MustCompile(`\{[^{}]+\}`)
	wordToken      = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_-]*`)
	leadingMarker  = regexp.MustCompile(`^(?:\d+[.)]|[-*])\s*`)
	whitespaceRuns = regexp.MustCompile(`[ \t]+`)
)

var verbVocabulary = buildVerbVocabulary()

func buildVerbVocabulary() map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, verbs := range actionVerbCategories {
		for _, verb := range verbs {
			vocab[verb] = struct{}{}
		}
	}
	return vocab
}

// AnalyzeRecipe parses free automation text into ordered steps with typing,
// vocabulary extraction, dependency inference, and recipe-level estimates.
// Parsing problems are absorbed into low-confidence steps rather than
// returned as errors; only empty input fails.
func AnalyzeRecipe(text, name string) (*RecipeAnalysis, error) {
	started := time.Now()
	logger := common.Logger()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.New("recipe text required")
	}
	if strings.TrimSpace(name) == "" {
		name = "recipe"
	}

	normalized := normalizeText(trimmed)
	segments, structured := splitSteps(normalized)
	steps := make([]ParsedStep, 0, len(segments))
	for _, segment := range segments {
		step, ok := parseStep(segment, len(steps)+1, structured)
		if !ok {
			continue
		}
		steps = append(steps, step)
	}
	inferDependencies(steps)

	analysis := &RecipeAnalysis{
		Name:                 name,
		RecipeType:           classifyRecipe(steps),
		Steps:                steps,
		StepCount:            len(steps),
		ComplexityScore:      complexityScore(steps),
		EstimatedDurationMin: estimateDuration(steps),
		RequiredCapabilities: requiredCapabilities(steps),
	}
	telemetry.RecordAnalysis(len(steps), time.Since(started))
	logger.Debug(
		"recipe: analysis complete",
		"name", name,
		"steps", len(steps),
		"type", analysis.RecipeType,
		"complexity", analysis.ComplexityScore,
	)
	return analysis, nil
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		trimmedLine := strings.TrimSpace(line)
		for _, bullet := range []string{"•", "·", "–", "—"} {
			if strings.HasPrefix(trimmedLine, bullet) {
				trimmedLine = "- " + strings.TrimSpace(strings.TrimPrefix(trimmedLine, bullet))
				break
			}
		}
		b.WriteString(whitespaceRuns.ReplaceAllString(trimmedLine, " "))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// splitSteps tries segmentation strategies in priority order and keeps the
// first one that yields more than two segments. The final sentence strategy
// is also the fallback when nothing else qualifies.
func splitSteps(text string) ([]string, bool) {
	if segments := splitOnMarkers(text, numberedMarker); len(segments) > 2 {
		return segments, true
	}
	if segments := splitOnMarkers(text, bulletMarker); len(segments) > 2 {
		return segments, true
	}
	if segments := splitOnVerbLines(text); len(segments) > 2 {
		return segments, false
	}
	segments := splitSentences(text)
	if len(segments) == 0 {
		segments = []string{text}
	}
	return segments, false
}

func splitOnMarkers(text string, marker *regexp.Regexp) []string {
	locs := marker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	var segments []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segment := strings.TrimSpace(text[loc[1]:end])
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func splitOnVerbLines(text string) []string {
	lines := strings.Split(text, "\n")
	var segments []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, strings.Join(current, " "))
			current = nil
		}
	}
	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			flush()
			continue
		}
		first := strings.ToLower(wordToken.FindString(trimmedLine))
		if _, ok := verbVocabulary[first]; ok {
			flush()
		}
		current = append(current, trimmedLine)
	}
	flush()
	return segments
}

func splitSentences(text string) []string {
	flat := strings.ReplaceAll(text, "\n", " ")
	parts := sentenceEnd.Split(flat, -1)
	var segments []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return segments
}

func parseStep(segment string, order int, structured bool) (ParsedStep, bool) {
	raw := strings.TrimSpace(leadingMarker.ReplaceAllString(strings.TrimSpace(segment), ""))
	if raw == "" {
		return ParsedStep{}, false
	}
	words := tokenize(raw)
	verbs := extractActionVerbs(words)
	entities := extractEntities(raw)
	params := extractParameters(raw)
	stepType := classifyStepType(words, verbs)

	step := ParsedStep{
		ID:           fmt.Sprintf("step-%d", order),
		Name:         stepName(raw),
		Description:  raw,
		StepType:     stepType,
		Order:        order,
		ActionVerbs:  verbs,
		Entities:     entities,
		Parameters:   params,
		Confidence:   stepConfidence(words, entities, structured || len(params) > 0),
		RawText:      raw,
	}
	return step, true
}

func tokenize(text string) []string {
	matches := wordToken.FindAllString(text, -1)
	words := make([]string, 0, len(matches))
	for _, match := range matches {
		words = append(words, strings.ToLower(match))
	}
	return words
}

func extractActionVerbs(words []string) []string {
	var verbs []string
	seen := make(map[string]struct{})
	for _, word := range words {
		if _, ok := verbVocabulary[word]; !ok {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		verbs = append(verbs, word)
	}
	return verbs
}

func classifyStepType(words, verbs []string) StepType {
	wordSet := make(map[string]struct{}, len(words))
	for _, word := range words {
		wordSet[word] = struct{}{}
	}
	scores := make(map[StepType]int)
	for _, stepType := range []StepType{StepIntegration, StepTransform, StepCondition, StepLoop} {
		for _, keyword := range stepTypeKeywords[stepType] {
			if _, ok := wordSet[keyword]; ok {
				scores[stepType] += typeKeywordScore
			}
		}
	}
	// Validation wording is frequently incidental in integration steps, so
	// it only scores when no integration evidence exists.
	if scores[StepIntegration] == 0 {
		for _, keyword := range stepTypeKeywords[StepValidation] {
			if _, ok := wordSet[keyword]; ok {
				scores[StepValidation] += validationKeywordScore
			}
		}
	}
	for _, verb := range verbs {
		if _, ok := priorityActionVerbs[verb]; ok {
			scores[StepAction] += actionVerbBonus
			break
		}
	}

	best := StepUnknown
	bestScore := 0
	for _, stepType := range []StepType{StepIntegration, StepTransform, StepCondition, StepLoop, StepValidation, StepAction} {
		if scores[stepType] > bestScore {
			best = stepType
			bestScore = scores[stepType]
		}
	}
	if bestScore == 0 {
		if len(verbs) > 0 {
			return StepAction
		}
		return StepUnknown
	}
	return best
}

func extractEntities(text string) []string {
	lower := strings.ToLower(text)
	var entities []string
	seen := make(map[string]struct{})
	add := func(candidate string) {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if len(candidate) < 2 {
			return
		}
		if _, stop := stopWords[candidate]; stop {
			return
		}
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		entities = append(entities, candidate)
	}

	for _, match := range quotedEntity.FindAllStringSubmatch(text, -1) {
		if match[1] != "" {
			add(match[1])
		} else {
			add(match[2])
		}
	}
	for _, match := range fileEntity.FindAllString(text, -1) {
		add(match)
	}
	for _, match := range camelEntity.FindAllString(text, -1) {
		add(match)
	}
	for _, match := range storageEntity.FindAllStringSubmatch(text, -1) {
		add(match[1])
	}
	for _, phrase := range compoundPhrases {
		if strings.Contains(lower, phrase) {
			add(phrase)
		}
	}
	for _, word := range tokenize(text) {
		if _, ok := technicalNouns[word]; ok {
			add(word)
		}
	}
	for _, match := range idEntity.FindAllString(text, -1) {
		add(match)
	}
	return entities
}

func extractParameters(text string) map[string]string {
	params := make(map[string]string)
	for _, match := range parameterPair.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(match[1])
		switch key {
		case "http", "https", "ftp":
			continue
		}
		value := strings.Trim(match[2], `"'`)
		if value == "" {
			continue
		}
		params[key] = value
	}
	for _, fragment := range jsonFragment.FindAllString(text, -1) {
		var decoded map[string]interface{}
		if err := json.Unmarshal([]byte(fragment), &decoded); err != nil {
			continue
		}
		for key, value := range decoded {
			params[strings.ToLower(key)] = fmt.Sprintf("%v", value)
		}
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

func stepName(raw string) string {
	words := strings.Fields(raw)
	if len(words) > 8 {
		words = words[:8]
	}
	name := strings.Join(words, " ")
	name = strings.TrimRight(name, ".,;:")
	if runes := []rune(name); len(runes) > 60 {
		name = string(runes[:60])
	}
	return name
}

func stepConfidence(words, entities []string, hasStructure bool) float64 {
	confidence := 0.5
	hasVerbs := false
	for _, word := range words {
		if _, ok := verbVocabulary[word]; ok {
			hasVerbs = true
			break
		}
	}
	if hasVerbs {
		confidence += 0.2
	}
	entityCount := len(entities)
	if entityCount > 3 {
		entityCount = 3
	}
	confidence += 0.1 * float64(entityCount)
	if hasStructure {
		confidence += 0.1
	}
	if len(words) < 3 {
		confidence -= 0.2
	}
	if len(words) > 50 {
		confidence -= 0.1
	}
	return clamp(confidence, 0.1, 1.0)
}

// inferDependencies links a step to every earlier step whose entities occur
// in its text, and to its immediate predecessor when sequential wording is
// present. The edges are ordering metadata for downstream execution only.
func inferDependencies(steps []ParsedStep) {
	for i := 1; i < len(steps); i++ {
		lower := strings.ToLower(steps[i].RawText)
		seen := make(map[string]struct{})
		var deps []string
		add := func(id string) {
			if _, dup := seen[id]; dup {
				return
			}
			seen[id] = struct{}{}
			deps = append(deps, id)
		}
		for j := 0; j < i; j++ {
			for _, entity := range steps[j].Entities {
				if containsWord(lower, entity) {
					add(steps[j].ID)
					break
				}
			}
		}
		for _, connective := range sequentialConnectives {
			if containsWord(lower, connective) {
				add(steps[i-1].ID)
				break
			}
		}
		steps[i].Dependencies = deps
	}
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func complexityScore(steps []ParsedStep) float64 {
	if len(steps) == 0 {
		return 0
	}
	total := 0.0
	for _, step := range steps {
		total += 0.1 + typeComplexity[step.StepType] + 0.1*float64(len(step.Dependencies))
	}
	return clamp(total/float64(len(steps)), 0, 1)
}

func estimateDuration(steps []ParsedStep) float64 {
	total := 0.0
	for _, step := range steps {
		minutes := typeBaseMinutes[step.StepType]
		if len(step.Entities) > 3 {
			minutes *= 1.5
		}
		if len(step.Parameters) > 2 {
			minutes *= 1.3
		}
		if len(step.Dependencies) > 1 {
			minutes *= 1.2
		}
		total += minutes
	}
	return total
}

func requiredCapabilities(steps []ParsedStep) []string {
	set := make(map[string]struct{})
	for _, step := range steps {
		if capability, ok := stepTypeCapabilities[step.StepType]; ok {
			set[capability] = struct{}{}
		}
		for _, entity := range step.Entities {
			for _, word := range strings.Fields(entity) {
				if capability, ok := capabilityTriggers[word]; ok {
					set[capability] = struct{}{}
				}
			}
		}
	}
	if len(set) == 0 {
		return nil
	}
	capabilities := make([]string, 0, len(set))
	for capability := range set {
		capabilities = append(capabilities, capability)
	}
	sort.Strings(capabilities)
	return capabilities
}

func classifyRecipe(steps []ParsedStep) RecipeType {
	if len(steps) == 0 {
		return RecipeWorkflow
	}
	counts := make(map[StepType]int)
	for _, step := range steps {
		counts[step.StepType]++
	}
	total := float64(len(steps))
	switch {
	case float64(counts[StepIntegration])/total > 0.5:
		return RecipeIntegration
	case float64(counts[StepTransform])/total > 0.4:
		return RecipeDataProcessing
	case float64(counts[StepValidation])/total > 0.3:
		return RecipeValidation
	case counts[StepLoop] > 0:
		return RecipeAutomation
	default:
		return RecipeWorkflow
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
