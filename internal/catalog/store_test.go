// File path: internal/catalog/store_test.go
package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreGetAndList(t *testing.T) {
	store := NewMemoryStore(
		ToolRecord{ID: "tool_b", Name: "B"},
		ToolRecord{ID: "tool_a", Name: "A"},
		ToolRecord{Name: "no id, dropped"},
	)
	ctx := context.Background()

	record, err := store.GetTool(ctx, "tool_a")
	if err != nil {
		t.Fatalf("get tool_a: %v", err)
	}
	if record.Name != "A" {
		t.Errorf("name = %q, want A", record.Name)
	}

	if _, err := store.GetTool(ctx, "tool_missing"); !errors.Is(err, ErrToolNotFound) {
		t.Errorf("missing tool error = %v, want ErrToolNotFound", err)
	}

	records, err := store.ListTools(ctx)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "tool_a" || records[1].ID != "tool_b" {
		t.Errorf("list order = %s, %s, want tool_a then tool_b", records[0].ID, records[1].ID)
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	store := NewMemoryStore(ToolRecord{ID: "tool_a", UsageCount: 1})
	store.Put(ToolRecord{ID: "tool_a", UsageCount: 7})
	record, err := store.GetTool(context.Background(), "tool_a")
	if err != nil {
		t.Fatalf("get tool_a: %v", err)
	}
	if record.UsageCount != 7 {
		t.Errorf("usage = %d, want 7", record.UsageCount)
	}
}

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.jsonl")
	content := `{"id":"tool_db","name":"Database Query","tool_type":"api","health_status":"healthy"}
not json at all
{"name":"missing id"}

{"id":"tool_mail","nl_query":"send email notifications","tool_type":"function"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	store, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	records, err := store.ListTools(context.Background())
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records after skipping bad lines, got %d", len(records))
	}
	if records[0].ID != "tool_db" || records[1].ID != "tool_mail" {
		t.Errorf("records = %s, %s, want tool_db then tool_mail", records[0].ID, records[1].ID)
	}
	if records[0].HealthStatus != HealthHealthy {
		t.Errorf("tool_db health = %q, want healthy", records[0].HealthStatus)
	}
}

func TestLoadSnapshotErrors(t *testing.T) {
	if _, err := LoadSnapshot(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
