// File path: internal/search/engine.go
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common/telemetry"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
	"github.com/nicodishanthj/Reciplan_phase1/internal/vector"
)

// Method tags which phase produced a candidate.
const (
	MethodSemantic = "semantic"
	MethodKeyword  = "keyword"
	MethodCatalog  = "catalog"
)

const (
	semanticThreshold = 0.4
	keywordThreshold  = 0.2
	catalogThreshold  = 0.1

	semanticWeight = 1.0
	keywordWeight  = 0.8
	catalogWeight  = 0.6

	relevantTypeBonus = 0.1
	entityHitBonus    = 0.05
	entityHitCap      = 0.2

	keywordVerbLimit   = 2
	keywordEntityLimit = 3

	// DefaultMaxResults bounds a candidate search when the caller does
	// not care.
	DefaultMaxResults = 10
)

var methodWeights = map[string]float64{
	MethodSemantic: semanticWeight,
	MethodKeyword:  keywordWeight,
	MethodCatalog:  catalogWeight,
}

// baseToolTypes are always worth searching regardless of step shape.
var baseToolTypes = []string{"function", "api", "mcp_tool", "agent"}

// stepTypeToolTypes widens the searched tool types for step types that
// plain functions rarely serve well.
var stepTypeToolTypes = map[recipe.StepType][]string{
	recipe.StepLoop:      {"workflow"},
	recipe.StepCondition: {"workflow"},
}

// entityToolTypes widens the searched tool types when an entity names a
// tool category outright.
var entityToolTypes = map[string]string{
	"workflow": "workflow",
	"pipeline": "workflow",
}

// Candidate is one raw tool record surfaced by a search phase, ranked
// by blended relevance.
type Candidate struct {
	Record     catalog.ToolRecord `json:"tool"`
	Similarity float64            `json:"similarity"`
	Method     string             `json:"method"`
	Relevance  float64            `json:"relevance"`
	EntityHits int                `json:"entity_hits,omitempty"`
}

// Engine runs the phased candidate search over a similarity searcher.
type Engine struct {
	searcher vector.Searcher
}

func NewEngine(searcher vector.Searcher) *Engine {
	return &Engine{searcher: searcher}
}

// phase describes one search strategy: when it fires, how strict it is,
// and how it queries the searcher.
type phase struct {
	name      string
	threshold float64
	trigger   func(found, maxResults int) bool
	run       func(ctx context.Context, e *Engine, step recipe.ParsedStep, maxResults int, filters map[string]string, threshold float64) []vector.SearchResult
}

var phases = []phase{
	{
		name:      MethodSemantic,
		threshold: semanticThreshold,
		trigger:   func(found, maxResults int) bool { return true },
		run:       runSemanticPhase,
	},
	{
		name:      MethodKeyword,
		threshold: keywordThreshold,
		trigger:   func(found, maxResults int) bool { return found < maxResults/2 },
		run:       runKeywordPhase,
	},
	{
		name:      MethodCatalog,
		threshold: catalogThreshold,
		trigger: func(found, maxResults int) bool {
			return found < maxResults/3
		},
		run: runCatalogPhase,
	},
}

// FindCandidates runs the phase chain for one step and returns tool
// candidates ranked by relevance. Phase failures are logged and never
// abort the search; an empty slice is a valid outcome.
func (e *Engine) FindCandidates(ctx context.Context, step recipe.ParsedStep, maxResults int, filters map[string]string) []Candidate {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	relevant := relevantToolTypes(step)

	seen := make(map[string]struct{})
	var candidates []Candidate
	for _, p := range phases {
		if p.name == MethodCatalog && len(filters) == 0 {
			continue
		}
		if !p.trigger(len(candidates), maxResults) {
			continue
		}
		start := time.Now()
		results := p.run(ctx, e, step, maxResults, filters, p.threshold)
		added := 0
		for _, result := range results {
			if result.ID == "" {
				continue
			}
			if _, dup := seen[result.ID]; dup {
				continue
			}
			record, err := catalog.RecordFromPayload(result.Payload)
			if err != nil {
				common.Logger().Warn("search: discarding malformed candidate", "phase", p.name, "id", result.ID, "error", err)
				continue
			}
			if record.ID == "" {
				record.ID = result.ID
			}
			seen[record.ID] = struct{}{}
			hits := entityHits(step.Entities, record)
			candidates = append(candidates, Candidate{
				Record:     record,
				Similarity: result.Similarity,
				Method:     p.name,
				EntityHits: hits,
				Relevance:  relevance(result.Similarity, p.name, record.ToolType, hits, relevant),
			})
			added++
		}
		telemetry.RecordSearchPhase(p.name, added, time.Since(start))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Relevance != candidates[j].Relevance {
			return candidates[i].Relevance > candidates[j].Relevance
		}
		return candidates[i].Record.ID < candidates[j].Record.ID
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates
}

func runSemanticPhase(ctx context.Context, e *Engine, step recipe.ParsedStep, maxResults int, filters map[string]string, threshold float64) []vector.SearchResult {
	var out []vector.SearchResult
	for _, toolType := range relevantToolTypes(step) {
		results, err := e.searcher.Search(ctx, vector.SearchRequest{
			Query:     step.RawText,
			ToolTypes: []string{toolType},
			Method:    vector.MethodVector,
			Threshold: threshold,
			Limit:     maxResults,
			Filters:   filters,
		})
		if err != nil {
			common.Logger().Warn("search: semantic phase attempt failed", "tool_type", toolType, "step", step.ID, "error", err)
			continue
		}
		out = append(out, results...)
	}
	return out
}

func runKeywordPhase(ctx context.Context, e *Engine, step recipe.ParsedStep, maxResults int, filters map[string]string, threshold float64) []vector.SearchResult {
	query := keywordQuery(step)
	if query == "" {
		return nil
	}
	results, err := e.searcher.Search(ctx, vector.SearchRequest{
		Query:     query,
		ToolTypes: relevantToolTypes(step),
		Method:    vector.MethodString,
		Threshold: threshold,
		Limit:     maxResults,
		Filters:   filters,
	})
	if err != nil {
		common.Logger().Warn("search: keyword phase failed", "step", step.ID, "error", err)
		return nil
	}
	return results
}

func runCatalogPhase(ctx context.Context, e *Engine, step recipe.ParsedStep, maxResults int, filters map[string]string, threshold float64) []vector.SearchResult {
	results, err := e.searcher.Search(ctx, vector.SearchRequest{
		Query:     step.RawText,
		Method:    vector.MethodString,
		Threshold: threshold,
		Limit:     maxResults,
		Filters:   filters,
	})
	if err != nil {
		common.Logger().Warn("search: catalog phase failed", "step", step.ID, "error", err)
		return nil
	}
	return results
}

// keywordQuery builds the fallback query from the strongest parsed
// signals: the leading verbs and entities.
func keywordQuery(step recipe.ParsedStep) string {
	var terms []string
	for i, verb := range step.ActionVerbs {
		if i == keywordVerbLimit {
			break
		}
		terms = append(terms, verb)
	}
	for i, entity := range step.Entities {
		if i == keywordEntityLimit {
			break
		}
		terms = append(terms, entity)
	}
	return strings.Join(terms, " ")
}

func relevantToolTypes(step recipe.ParsedStep) []string {
	types := make([]string, 0, len(baseToolTypes)+2)
	seen := make(map[string]struct{}, len(baseToolTypes)+2)
	add := func(toolType string) {
		if _, ok := seen[toolType]; ok {
			return
		}
		seen[toolType] = struct{}{}
		types = append(types, toolType)
	}
	for _, toolType := range baseToolTypes {
		add(toolType)
	}
	for _, toolType := range stepTypeToolTypes[step.StepType] {
		add(toolType)
	}
	triggers := make([]string, 0, len(entityToolTypes))
	for trigger := range entityToolTypes {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)
	for _, entity := range step.Entities {
		for _, trigger := range triggers {
			if strings.Contains(entity, trigger) {
				add(entityToolTypes[trigger])
			}
		}
	}
	return types
}

func relevance(similarity float64, method, toolType string, hits int, relevant []string) float64 {
	score := similarity * methodWeights[method]
	for _, t := range relevant {
		if t == toolType {
			score += relevantTypeBonus
			break
		}
	}
	entityBonus := entityHitBonus * float64(hits)
	if entityBonus > entityHitCap {
		entityBonus = entityHitCap
	}
	return score + entityBonus
}

// entityHits counts step entities that appear anywhere in the tool's
// descriptive text.
func entityHits(entities []string, record catalog.ToolRecord) int {
	if len(entities) == 0 {
		return 0
	}
	haystack := strings.ToLower(strings.Join(append([]string{record.Name, record.Query, record.Template}, record.Capabilities...), " "))
	hits := 0
	for _, entity := range entities {
		if strings.Contains(haystack, strings.ToLower(entity)) {
			hits++
		}
	}
	return hits
}
