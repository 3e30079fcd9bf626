// File path: internal/recipe/vocab.go
package recipe

// Curated vocabularies driving verb extraction, step typing, and entity
// recognition. Kept as package data so tuning never touches the analyzer
// control flow.

var actionVerbCategories = map[string][]string{
	"data-ops": {
		"fetch", "retrieve", "get", "read", "load", "extract", "query",
		"insert", "update", "delete", "save", "store", "write", "copy",
		"move", "merge", "filter", "sort", "transform", "convert", "parse",
		"export", "import", "download", "upload",
	},
	"control-flow": {
		"check", "wait", "retry", "skip", "repeat", "iterate", "loop",
		"branch", "stop", "continue", "schedule", "trigger",
	},
	"communication": {
		"send", "notify", "email", "post", "publish", "broadcast", "alert",
		"reply", "forward", "call",
	},
	"management": {
		"create", "generate", "build", "deploy", "configure", "install",
		"start", "restart", "provision", "archive", "backup", "restore",
		"assign", "register", "remove",
	},
	"analysis": {
		"analyze", "validate", "verify", "compare", "calculate", "count",
		"summarize", "classify", "score", "measure", "audit", "review",
	},
}

// priorityActionVerbs earn the action-type classification bonus.
var priorityActionVerbs = map[string]struct{}{
	"create":   {},
	"delete":   {},
	"update":   {},
	"send":     {},
	"run":      {},
	"execute":  {},
	"generate": {},
	"deploy":   {},
	"build":    {},
}

var stepTypeKeywords = map[StepType][]string{
	StepIntegration: {
		"fetch", "retrieve", "database", "api", "endpoint", "service",
		"request", "download", "upload", "sync", "import", "export",
		"webhook", "integrate", "connect", "crm", "erp",
	},
	StepTransform: {
		"transform", "convert", "format", "normalize", "reshape", "encode",
		"decode", "serialize", "deserialize", "map", "aggregate", "enrich",
	},
	StepCondition: {
		"if", "when", "unless", "otherwise", "condition", "depending",
		"case", "whether",
	},
	StepLoop: {
		"each", "every", "loop", "repeat", "iterate", "until", "while",
		"batch",
	},
	StepValidation: {
		"validate", "verify", "check", "ensure", "confirm", "valid",
		"sanity", "consistency",
	},
}

// TypeKeywords returns the vocabulary associated with a step type, so
// downstream scorers can reuse it without duplicating the tables.
func TypeKeywords(stepType StepType) []string {
	keywords := stepTypeKeywords[stepType]
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

// Score contributions for the keyword matrix. Validation hits only count
// when the segment shows no integration evidence.
const (
	typeKeywordScore       = 2
	validationKeywordScore = 1
	actionVerbBonus        = 1
)

var technicalNouns = map[string]struct{}{
	"database": {}, "table": {}, "collection": {}, "index": {},
	"file": {}, "folder": {}, "record": {}, "records": {}, "row": {},
	"report": {}, "spreadsheet": {}, "document": {}, "email": {},
	"notification": {}, "message": {}, "queue": {}, "webhook": {},
	"api": {}, "endpoint": {}, "server": {}, "service": {}, "url": {},
	"token": {}, "credential": {}, "user": {}, "customer": {},
	"order": {}, "invoice": {}, "payment": {}, "account": {},
	"json": {}, "xml": {}, "csv": {}, "pdf": {}, "backup": {},
	"dashboard": {}, "schema": {}, "log": {}, "metric": {},
}

var compoundPhrases = []string{
	"customer records", "customer data", "user account", "user data",
	"email notification", "email address", "error report", "audit log",
	"data pipeline", "file upload", "file download", "status report",
	"weather forecast", "sales report", "order history", "access token",
	"api key", "database backup", "json format", "csv file",
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"to": {}, "in": {}, "on": {}, "for": {}, "from": {}, "with": {},
	"into": {}, "then": {}, "that": {}, "this": {}, "all": {},
	"each": {}, "it": {}, "is": {}, "are": {}, "be": {}, "as": {},
	"at": {}, "by": {}, "new": {},
}

var sequentialConnectives = []string{
	"then", "after", "next", "following", "using",
}

// Per-type contributions to the recipe complexity score.
var typeComplexity = map[StepType]float64{
	StepLoop:        0.4,
	StepIntegration: 0.3,
	StepCondition:   0.3,
	StepTransform:   0.2,
	StepValidation:  0.2,
	StepAction:      0.1,
	StepUnknown:     0.05,
}

// Base duration estimates in minutes per step type.
var typeBaseMinutes = map[StepType]float64{
	StepAction:      2,
	StepCondition:   1,
	StepLoop:        5,
	StepTransform:   3,
	StepValidation:  1,
	StepIntegration: 4,
	StepUnknown:     2,
}

// capabilityTriggers maps entity keywords to the capability a recipe needs
// when the keyword appears.
var capabilityTriggers = map[string]string{
	"file": "file-processing", "folder": "file-processing",
	"csv": "file-processing", "pdf": "file-processing",
	"spreadsheet": "file-processing", "document": "file-processing",
	"database": "database-access", "table": "database-access",
	"collection": "database-access", "index": "database-access",
	"record": "database-access", "records": "database-access",
	"api": "web-requests", "endpoint": "web-requests",
	"url": "web-requests", "webhook": "web-requests",
	"server": "web-requests", "service": "web-requests",
	"email": "notifications", "notification": "notifications",
	"message": "notifications", "queue": "messaging",
	"json": "data-transformation", "xml": "data-transformation",
	"report": "reporting", "dashboard": "reporting",
	"token": "credential-management", "credential": "credential-management",
}

var stepTypeCapabilities = map[StepType]string{
	StepTransform:   "data-transformation",
	StepValidation:  "data-validation",
	StepLoop:        "batch-processing",
	StepIntegration: "system-integration",
}
