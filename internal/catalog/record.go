// File path: internal/catalog/record.go
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HealthStatus reflects the last known operational state of a tool.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// Tool types recognised by the mapper. Records with unlisted types are kept
// as-is; the compatibility matrix treats them conservatively.
const (
	ToolFunction = "function"
	ToolAPI      = "api"
	ToolMCP      = "mcp_tool"
	ToolAgent    = "agent"
	ToolWorkflow = "workflow"
)

// ToolRecord is the typed boundary form of a catalogued tool. Loosely typed
// payloads from the similarity service or the catalog database are converted
// here once so scoring code never inspects raw maps.
type ToolRecord struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	ToolType     string                 `json:"tool_type"`
	Query        string                 `json:"nl_query,omitempty"`
	Template     string                 `json:"template,omitempty"`
	TemplateType string                 `json:"template_type,omitempty"`
	Capabilities []string               `json:"tool_capabilities,omitempty"`
	HealthStatus HealthStatus           `json:"health_status"`
	UsageCount   int                    `json:"usage_count"`
	LastTestedAt *time.Time             `json:"last_tested_at,omitempty"`
	Raw          map[string]interface{} `json:"-"`
}

// RecordFromPayload converts an untyped tool payload into a ToolRecord.
// Missing or oddly typed fields fall back to safe defaults; only a missing
// identifier is an error.
func RecordFromPayload(payload map[string]interface{}) (ToolRecord, error) {
	if payload == nil {
		return ToolRecord{}, errors.New("nil tool payload")
	}
	id := firstString(payload, "id", "tool_id")
	if id == "" {
		return ToolRecord{}, errors.New("tool payload missing id")
	}
	record := ToolRecord{
		ID:           id,
		Name:         firstString(payload, "name", "tool_name"),
		Query:        firstString(payload, "nl_query", "query", "description"),
		Template:     firstString(payload, "template"),
		TemplateType: firstString(payload, "template_type"),
		Capabilities: stringList(payload["tool_capabilities"]),
		HealthStatus: normalizeHealth(firstString(payload, "health_status", "health")),
		UsageCount:   intValue(payload["usage_count"]),
		LastTestedAt: timeValue(payload["last_tested_at"]),
		Raw:          payload,
	}
	if len(record.Capabilities) == 0 {
		record.Capabilities = stringList(payload["capabilities"])
	}
	record.ToolType = normalizeToolType(firstString(payload, "tool_type", "template_type", "type"))
	if record.Name == "" {
		record.Name = fallbackName(record.Query, id)
	}
	return record, nil
}

// RecordsFromPayloads converts a batch, skipping entries that fail
// conversion so one malformed record never poisons a result set.
func RecordsFromPayloads(payloads []map[string]interface{}) []ToolRecord {
	records := make([]ToolRecord, 0, len(payloads))
	for _, payload := range payloads {
		record, err := RecordFromPayload(payload)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

func normalizeToolType(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "function", "func":
		return ToolFunction
	case "api", "rest", "http":
		return ToolAPI
	case "mcp", "mcp_tool", "mcptool":
		return ToolMCP
	case "agent":
		return ToolAgent
	case "workflow", "pipeline":
		return ToolWorkflow
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func normalizeHealth(value string) HealthStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(HealthHealthy), "ok", "up":
		return HealthHealthy
	case string(HealthDegraded):
		return HealthDegraded
	case string(HealthUnhealthy), "down", "failing":
		return HealthUnhealthy
	default:
		return HealthUnknown
	}
}

func fallbackName(query, id string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return id
	}
	words := strings.Fields(trimmed)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}

func firstString(payload map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if value, ok := payload[key]; ok {
			if str := asString(value); str != "" {
				return str
			}
		}
	}
	return ""
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func stringList(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return cleanList(v)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str := asString(item); str != "" {
				out = append(out, str)
			}
		}
		return cleanList(out)
	case string:
		return cleanList(strings.Split(v, ","))
	default:
		return nil
	}
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func intValue(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return 0
}

func timeValue(value interface{}) *time.Time {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		ts := v.UTC()
		return &ts
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		ts := v.UTC()
		return &ts
	case string:
		for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				ts := parsed.UTC()
				return &ts
			}
		}
	}
	return nil
}
