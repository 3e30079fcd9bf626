// File path: internal/catalog/store.go
package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
)

// ErrToolNotFound is returned when a record id has no catalog entry.
var ErrToolNotFound = errors.New("tool not found")

// Store is the read-only Tool Catalog contract the mapping pipeline
// consumes. Write paths (seeding, usage accounting) live on the concrete
// implementations.
type Store interface {
	GetTool(ctx context.Context, id string) (ToolRecord, error)
	ListTools(ctx context.Context) ([]ToolRecord, error)
	Close() error
}

// MemoryStore keeps tool records in memory. It backs tests and the JSONL
// snapshot path used when no catalog database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ToolRecord
}

func NewMemoryStore(records ...ToolRecord) *MemoryStore {
	store := &MemoryStore{records: make(map[string]ToolRecord, len(records))}
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		store.records[record.ID] = record
	}
	return store
}

// LoadSnapshot constructs a MemoryStore from a JSONL file containing one
// tool payload per line. Malformed lines are logged and skipped.
func LoadSnapshot(path string) (*MemoryStore, error) {
	if path == "" {
		return nil, errors.New("snapshot path required")
	}
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog snapshot: %w", err)
	}
	defer file.Close()

	logger := common.Logger()
	store := NewMemoryStore()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(text, &payload); err != nil {
			logger.Warn("catalog: skipping malformed snapshot line", "line", line, "error", err)
			continue
		}
		record, err := RecordFromPayload(payload)
		if err != nil {
			logger.Warn("catalog: skipping invalid snapshot record", "line", line, "error", err)
			continue
		}
		store.Put(record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog snapshot: %w", err)
	}
	logger.Info("catalog: snapshot loaded", "path", path, "tools", len(store.records))
	return store, nil
}

func (s *MemoryStore) Put(record ToolRecord) {
	if record.ID == "" {
		return
	}
	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()
}

func (s *MemoryStore) GetTool(ctx context.Context, id string) (ToolRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return ToolRecord{}, fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	return record, nil
}

func (s *MemoryStore) ListTools(ctx context.Context) ([]ToolRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]ToolRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (s *MemoryStore) Close() error { return nil }
