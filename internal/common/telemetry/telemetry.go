// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

type MemoryLimitError struct {
	Component string
	Usage     uint64
	Limit     uint64
}

func (e MemoryLimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded for %s: %d > %d", e.Component, e.Usage, e.Limit)
}

var (
	initOnce sync.Once

	analysisTotal      *expvar.Int
	analysisStepsTotal *expvar.Int
	analysisLatencyMS  *expvar.Int

	searchPhaseTotal     *expvar.Map
	searchPhaseResults   *expvar.Map
	searchPhaseLatencyMS *expvar.Map

	mappingTotal     *expvar.Int
	mappingReviewed  *expvar.Int
	mappingConflicts *expvar.Int

	memoryLimitBytes uint64
	memoryLimitVar   *expvar.Int
	memoryUsageVar   *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		analysisTotal = expvar.NewInt("reciplan_recipe_analysis_total")
		analysisStepsTotal = expvar.NewInt("reciplan_recipe_steps_total")
		analysisLatencyMS = expvar.NewInt("reciplan_recipe_analysis_latency_ms")

		searchPhaseTotal = expvar.NewMap("reciplan_search_phase_total")
		searchPhaseResults = expvar.NewMap("reciplan_search_phase_results")
		searchPhaseLatencyMS = expvar.NewMap("reciplan_search_phase_latency_ms")

		mappingTotal = expvar.NewInt("reciplan_step_mappings_total")
		mappingReviewed = expvar.NewInt("reciplan_step_mappings_review_total")
		mappingConflicts = expvar.NewInt("reciplan_mapping_conflicts_total")

		memoryLimitVar = expvar.NewInt("reciplan_memory_limit_bytes")
		memoryUsageVar = expvar.NewInt("reciplan_memory_usage_bytes")

		memoryLimitBytes = loadMemoryLimit()
		memoryLimitVar.Set(int64(memoryLimitBytes))
	})
}

func loadMemoryLimit() uint64 {
	limit := strings.TrimSpace(os.Getenv("RECIPLAN_MEMORY_LIMIT_BYTES"))
	if limit != "" {
		if value, err := strconv.ParseUint(limit, 10, 64); err == nil {
			return value
		}
	}
	if limitMB := strings.TrimSpace(os.Getenv("RECIPLAN_MEMORY_LIMIT_MB")); limitMB != "" {
		if value, err := strconv.ParseUint(limitMB, 10, 64); err == nil {
			return value * 1024 * 1024
		}
	}
	return 0
}

func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...interface{})) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...interface{}) {
		if sp == nil {
			return
		}
		duration := time.Since(sp.start)
		logger.Debug("trace: end", append([]interface{}{"span", name, "dur", duration}, attrs...)...)
	}
}

// RecordAnalysis tracks one analyzer invocation and the number of parsed
// steps it produced.
func RecordAnalysis(steps int, duration time.Duration) {
	ensureInit()
	analysisTotal.Add(1)
	if steps > 0 {
		analysisStepsTotal.Add(int64(steps))
	}
	if duration > 0 {
		analysisLatencyMS.Add(duration.Milliseconds())
	}
}

// RecordSearchPhase tracks one candidate search phase attempt keyed by its
// method (semantic, keyword, catalog).
func RecordSearchPhase(method string, results int, duration time.Duration) {
	ensureInit()
	key := strings.TrimSpace(strings.ToLower(method))
	if key == "" {
		key = "unknown"
	}
	searchPhaseTotal.Add(key, 1)
	if results > 0 {
		searchPhaseResults.Add(key, int64(results))
	}
	if duration > 0 {
		searchPhaseLatencyMS.Add(key, duration.Milliseconds())
	}
}

// RecordMapping tracks one completed step mapping and whether it was flagged
// for manual review.
func RecordMapping(reviewed bool) {
	ensureInit()
	mappingTotal.Add(1)
	if reviewed {
		mappingReviewed.Add(1)
	}
}

// RecordConflict tracks one tool assignment collision handled by the
// conflict resolution pass.
func RecordConflict() {
	ensureInit()
	mappingConflicts.Add(1)
}

func CheckMemoryBudget(component string) error {
	ensureInit()
	if memoryLimitBytes == 0 {
		updateMemoryUsage()
		return nil
	}
	usage := updateMemoryUsage()
	if usage > memoryLimitBytes {
		err := MemoryLimitError{Component: component, Usage: usage, Limit: memoryLimitBytes}
		common.Logger().Warn("telemetry: memory guard tripped", "component", component, "usage", usage, "limit", memoryLimitBytes)
		return err
	}
	return nil
}

func updateMemoryUsage() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	usage := stats.Alloc
	memoryUsageVar.Set(int64(usage))
	return usage
}

func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}
