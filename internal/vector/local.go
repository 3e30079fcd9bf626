// File path: internal/vector/local.go
package vector

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
)

const localEmbedDim = 64

var localToken = regexp.MustCompile(`[a-z0-9]+`)

// LocalIndex is an in-process Searcher over catalog records. It scores both
// the vector and string methods lexically with tf-idf cosine similarity, so
// the pipeline stays usable without a remote similarity service and tests
// run hermetically.
type LocalIndex struct {
	records []catalog.ToolRecord
	vectors map[string]map[string]float64
	norms   map[string]float64
	df      map[string]int
	total   int
}

func NewLocalIndex(records []catalog.ToolRecord) *LocalIndex {
	idx := &LocalIndex{
		vectors: make(map[string]map[string]float64, len(records)),
		norms:   make(map[string]float64, len(records)),
		df:      make(map[string]int),
	}
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		idx.records = append(idx.records, record)
		terms := termCounts(recordText(record))
		for term := range terms {
			idx.df[term]++
		}
	}
	idx.total = len(idx.records)
	for _, record := range idx.records {
		vector := idx.weigh(termCounts(recordText(record)))
		idx.vectors[record.ID] = vector
		idx.norms[record.ID] = vectorNorm(vector)
	}
	common.Logger().Debug("vector: local index built", "tools", idx.total, "terms", len(idx.df))
	return idx
}

func recordText(record catalog.ToolRecord) string {
	parts := []string{record.Name, record.Query, record.ToolType, record.TemplateType}
	parts = append(parts, record.Capabilities...)
	return strings.Join(parts, " ")
}

func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, term := range localToken.FindAllString(strings.ToLower(text), -1) {
		if len(term) < 2 {
			continue
		}
		counts[term]++
	}
	return counts
}

func (idx *LocalIndex) weigh(counts map[string]int) map[string]float64 {
	vector := make(map[string]float64, len(counts))
	for term, count := range counts {
		df := idx.df[term]
		idf := math.Log(1 + float64(idx.total+1)/float64(df+1))
		vector[term] = float64(count) * idf
	}
	return vector
}

func vectorNorm(vector map[string]float64) float64 {
	sum := 0.0
	for _, weight := range vector {
		sum += weight * weight
	}
	return math.Sqrt(sum)
}

func (idx *LocalIndex) Available() bool { return idx != nil }

// Embed produces a deterministic hashed bag-of-words projection. It is a
// stand-in for a real embedding model with stable output for identical text.
func (idx *LocalIndex) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, localEmbedDim)
	for term, count := range termCounts(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(term))
		slot := int(h.Sum32() % uint32(localEmbedDim))
		vector[slot] += float32(count)
	}
	norm := float32(0)
	for _, v := range vector {
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(float64(norm)))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}

func (idx *LocalIndex) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if idx == nil || idx.total == 0 {
		return nil, nil
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}
	typeFilter := make(map[string]struct{}, len(req.ToolTypes))
	for _, toolType := range req.ToolTypes {
		typeFilter[strings.ToLower(strings.TrimSpace(toolType))] = struct{}{}
	}
	query := idx.weigh(termCounts(req.Query))
	queryNorm := vectorNorm(query)
	if queryNorm == 0 {
		return nil, nil
	}

	results := make([]SearchResult, 0, limit)
	for _, record := range idx.records {
		if len(typeFilter) > 0 {
			if _, ok := typeFilter[record.ToolType]; !ok {
				continue
			}
		}
		score := cosine(query, queryNorm, idx.vectors[record.ID], idx.norms[record.ID])
		if score < req.Threshold {
			continue
		}
		results = append(results, SearchResult{
			ID:         record.ID,
			Similarity: score,
			Payload:    recordPayload(record),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cosine(query map[string]float64, queryNorm float64, doc map[string]float64, docNorm float64) float64 {
	if queryNorm == 0 || docNorm == 0 {
		return 0
	}
	dot := 0.0
	for term, weight := range query {
		if docWeight, ok := doc[term]; ok {
			dot += weight * docWeight
		}
	}
	return dot / (queryNorm * docNorm)
}

func recordPayload(record catalog.ToolRecord) map[string]interface{} {
	payload := map[string]interface{}{
		"id":            record.ID,
		"name":          record.Name,
		"tool_type":     record.ToolType,
		"nl_query":      record.Query,
		"template":      record.Template,
		"template_type": record.TemplateType,
		"health_status": string(record.HealthStatus),
		"usage_count":   record.UsageCount,
	}
	if len(record.Capabilities) > 0 {
		payload["tool_capabilities"] = record.Capabilities
	}
	if record.LastTestedAt != nil {
		payload["last_tested_at"] = *record.LastTestedAt
	}
	return payload
}

var _ Searcher = (*LocalIndex)(nil)
