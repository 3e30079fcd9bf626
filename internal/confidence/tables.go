// File path: internal/confidence/tables.go
package confidence

import (
	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/recipe"
)

// Component weights per assessment. Each set sums to 1.0 so the blended
// score stays in [0,1] without renormalizing.
const (
	stepClarityWeight   = 0.25
	stepActionWeight    = 0.25
	stepEntityWeight    = 0.2
	stepTypeWeight      = 0.2
	stepParameterWeight = 0.1

	compatTypeWeight       = 0.3
	compatCapabilityWeight = 0.25
	compatHealthWeight     = 0.2
	compatUsageWeight      = 0.15
	compatComplexityWeight = 0.1

	semanticRawWeight     = 0.4
	semanticContextWeight = 0.3
	semanticKeywordWeight = 0.2
	semanticQualityWeight = 0.1

	contextualStepWeight = 0.4
	contextualToolWeight = 0.6

	overallStepWeight     = 0.2
	overallToolWeight     = 0.4
	overallSemanticWeight = 0.4
)

// Embedding quality is a fixed placeholder until per-vector diagnostics
// are available from the similarity service.
const embeddingQualityScore = 0.7

const complexityAlignmentFloor = 0.3

// stepToolCompatibility scores how naturally a tool type serves a step
// type. Values stay inside [0.3, 0.95]: never certain, never hopeless.
var stepToolCompatibility = map[recipe.StepType]map[string]float64{
	recipe.StepAction: {
		"function": 0.9,
		"api":      0.8,
		"mcp_tool": 0.75,
		"agent":    0.6,
		"workflow": 0.55,
	},
	recipe.StepCondition: {
		"function": 0.85,
		"agent":    0.7,
		"workflow": 0.6,
		"mcp_tool": 0.55,
		"api":      0.5,
	},
	recipe.StepLoop: {
		"workflow": 0.9,
		"agent":    0.75,
		"function": 0.7,
		"mcp_tool": 0.5,
		"api":      0.45,
	},
	recipe.StepTransform: {
		"function": 0.95,
		"mcp_tool": 0.7,
		"api":      0.6,
		"workflow": 0.55,
		"agent":    0.5,
	},
	recipe.StepValidation: {
		"function": 0.9,
		"mcp_tool": 0.7,
		"api":      0.65,
		"agent":    0.55,
		"workflow": 0.45,
	},
	recipe.StepIntegration: {
		"api":      0.95,
		"mcp_tool": 0.85,
		"function": 0.7,
		"agent":    0.6,
		"workflow": 0.5,
	},
}

const defaultTypeCompatibility = 0.3

// stepTypeBaseConfidence seeds the type-classification component: how
// much trust a classification of that type deserves before evidence.
var stepTypeBaseConfidence = map[recipe.StepType]float64{
	recipe.StepAction:      0.8,
	recipe.StepIntegration: 0.75,
	recipe.StepTransform:   0.75,
	recipe.StepLoop:        0.7,
	recipe.StepValidation:  0.7,
	recipe.StepCondition:   0.65,
	recipe.StepUnknown:     0.3,
}

// stepComplexityWeight mirrors the per-type contribution used when
// scoring whole recipes, reused here to estimate one step's demand.
var stepComplexityWeight = map[recipe.StepType]float64{
	recipe.StepLoop:        0.4,
	recipe.StepIntegration: 0.3,
	recipe.StepCondition:   0.3,
	recipe.StepTransform:   0.2,
	recipe.StepValidation:  0.2,
	recipe.StepAction:      0.1,
	recipe.StepUnknown:     0.05,
}

var healthScores = map[catalog.HealthStatus]float64{
	catalog.HealthHealthy:   1.0,
	catalog.HealthDegraded:  0.6,
	catalog.HealthUnhealthy: 0.2,
	catalog.HealthUnknown:   0.5,
}

// Recent test runs raise trust in the recorded health status, stale
// ones lower it.
const (
	healthRecencyBonus   = 0.1
	healthRecencyPenalty = 0.1
	recentTestWindowDays = 7
	staleTestWindowDays  = 30
)

// usageBands maps lifetime invocation counts to a trust score.
func usageScore(count int) float64 {
	switch {
	case count <= 0:
		return 0.3
	case count < 5:
		return 0.4
	case count < 20:
		return 0.6
	case count < 100:
		return 0.8
	default:
		return 1.0
	}
}

// qualityVerbs are verbs specific enough to leave little doubt about
// the intended operation.
var qualityVerbs = map[string]struct{}{
	"create":   {},
	"delete":   {},
	"update":   {},
	"send":     {},
	"fetch":    {},
	"validate": {},
	"convert":  {},
	"deploy":   {},
	"generate": {},
	"execute":  {},
}

// domainTermGroups cluster vocabulary so a step and a tool can agree on
// a domain without sharing exact words.
var domainTermGroups = map[string][]string{
	"database":  {"database", "table", "sql", "query", "record", "records", "row"},
	"web":       {"api", "http", "endpoint", "request", "rest", "webhook", "url"},
	"file":      {"file", "csv", "json", "xml", "pdf", "document", "spreadsheet"},
	"messaging": {"email", "message", "notify", "notification", "slack", "sms"},
	"reporting": {"report", "summary", "dashboard", "chart", "export"},
	"auth":      {"auth", "token", "credential", "login", "permission", "user"},
	"schedule":  {"schedule", "cron", "daily", "hourly", "weekly", "interval"},
}
