// File path: internal/catalog/sqlite.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
)

// SQLiteStore persists the tool catalog in a SQLite database through sqlx.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite constructs a store backed by the database at path. The schema
// is migrated on first use.
func OpenSQLite(path string) (*SQLiteStore, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		cfg.Path = trimmed
	}
	return OpenSQLiteWithConfig(cfg)
}

func OpenSQLiteWithConfig(cfg Config) (*SQLiteStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("catalog path required")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	busy := int(cfg.BusyTimeout / time.Millisecond)
	if busy <= 0 {
		busy = 5000
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", abs, busy)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BusyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	common.Logger().Info("catalog: sqlite store ready", "path", abs)
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("catalog store not initialised")
	}
	for i, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`PRAGMA journal_mode = WAL;`,
	`PRAGMA foreign_keys = ON;`,
	`CREATE TABLE IF NOT EXISTS tools (
                id TEXT PRIMARY KEY,
                name TEXT NOT NULL,
                tool_type TEXT NOT NULL DEFAULT 'function',
                nl_query TEXT,
                template TEXT,
                template_type TEXT,
                health_status TEXT NOT NULL DEFAULT 'unknown',
                usage_count INTEGER NOT NULL DEFAULT 0,
                last_tested_at TIMESTAMP,
                created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS tool_capabilities (
                tool_id TEXT NOT NULL REFERENCES tools(id) ON DELETE CASCADE,
                capability TEXT NOT NULL,
                PRIMARY KEY (tool_id, capability)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_tools_type ON tools(tool_type);`,
	`CREATE INDEX IF NOT EXISTS idx_tool_capabilities_capability ON tool_capabilities(capability);`,
}

type toolRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	ToolType     string         `db:"tool_type"`
	NLQuery      sql.NullString `db:"nl_query"`
	Template     sql.NullString `db:"template"`
	TemplateType sql.NullString `db:"template_type"`
	HealthStatus sql.NullString `db:"health_status"`
	UsageCount   int64          `db:"usage_count"`
	LastTestedAt sql.NullTime   `db:"last_tested_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r toolRow) toRecord(capabilities []string) ToolRecord {
	record := ToolRecord{
		ID:           r.ID,
		Name:         r.Name,
		ToolType:     normalizeToolType(r.ToolType),
		Query:        r.NLQuery.String,
		Template:     r.Template.String,
		TemplateType: r.TemplateType.String,
		Capabilities: capabilities,
		HealthStatus: normalizeHealth(r.HealthStatus.String),
		UsageCount:   int(r.UsageCount),
	}
	if r.LastTestedAt.Valid {
		ts := r.LastTestedAt.Time.UTC()
		record.LastTestedAt = &ts
	}
	return record
}

// UpsertTool inserts or refreshes a catalog record and its capability rows.
func (s *SQLiteStore) UpsertTool(ctx context.Context, record ToolRecord) error {
	if s == nil || s.db == nil {
		return errors.New("catalog store not initialised")
	}
	if strings.TrimSpace(record.ID) == "" {
		return errors.New("tool id required")
	}
	var lastTested interface{}
	if record.LastTestedAt != nil {
		lastTested = record.LastTestedAt.UTC()
	}
	query := `INSERT INTO tools(id, name, tool_type, nl_query, template, template_type, health_status, usage_count, last_tested_at)
                VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
                ON CONFLICT(id) DO UPDATE SET
                        name = excluded.name,
                        tool_type = excluded.tool_type,
                        nl_query = excluded.nl_query,
                        template = excluded.template,
                        template_type = excluded.template_type,
                        health_status = excluded.health_status,
                        usage_count = excluded.usage_count,
                        last_tested_at = excluded.last_tested_at,
                        updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Name,
		normalizeToolType(record.ToolType),
		record.Query,
		record.Template,
		record.TemplateType,
		string(normalizeHealth(string(record.HealthStatus))),
		record.UsageCount,
		lastTested,
	); err != nil {
		return fmt.Errorf("upsert tool: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tool_capabilities WHERE tool_id = ?`, record.ID); err != nil {
		return fmt.Errorf("clear capabilities: %w", err)
	}
	for _, capability := range record.Capabilities {
		trimmed := strings.ToLower(strings.TrimSpace(capability))
		if trimmed == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO tool_capabilities(tool_id, capability) VALUES(?, ?)`,
			record.ID, trimmed,
		); err != nil {
			return fmt.Errorf("insert capability: %w", err)
		}
	}
	return nil
}

// RecordUsage increments a tool's usage counter after an accepted mapping.
func (s *SQLiteStore) RecordUsage(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("catalog store not initialised")
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE tools SET usage_count = usage_count + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTool(ctx context.Context, id string) (ToolRecord, error) {
	if s == nil || s.db == nil {
		return ToolRecord{}, errors.New("catalog store not initialised")
	}
	var row toolRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM tools WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ToolRecord{}, fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	if err != nil {
		return ToolRecord{}, fmt.Errorf("get tool: %w", err)
	}
	capabilities, err := s.toolCapabilities(ctx, id)
	if err != nil {
		return ToolRecord{}, err
	}
	return row.toRecord(capabilities), nil
}

func (s *SQLiteStore) ListTools(ctx context.Context) ([]ToolRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog store not initialised")
	}
	var rows []toolRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM tools ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	records := make([]ToolRecord, 0, len(rows))
	for _, row := range rows {
		capabilities, err := s.toolCapabilities(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, row.toRecord(capabilities))
	}
	return records, nil
}

func (s *SQLiteStore) toolCapabilities(ctx context.Context, id string) ([]string, error) {
	var capabilities []string
	if err := s.db.SelectContext(ctx, &capabilities,
		`SELECT capability FROM tool_capabilities WHERE tool_id = ? ORDER BY capability`, id,
	); err != nil {
		return nil, fmt.Errorf("tool capabilities: %w", err)
	}
	return capabilities, nil
}
