// audit_backend.go: Storage backends for the audit trail
//
// The audit logger is storage-agnostic: this file defines the backend
// contract and the three implementations selected from the configured
// output path. JSONL files for grep-able local trails, SQLite for a
// queryable single-file database, PostgreSQL for deployments that
// centralize audit across hosts.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver registration
	_ "github.com/mattn/go-sqlite3"    // SQLite driver registration
)

// auditBackend defines the interface for audit storage backends.
//
// The interface is minimal by design: Write, Flush, Close, Maintenance,
// GetStats. Backends can implement complex logic internally while
// keeping the contract simple.
type auditBackend interface {
	// Write persists a batch of audit events to the backend.
	// Implementations must handle concurrent writes safely.
	Write(events []AuditEvent) error

	// Flush ensures all pending writes are committed to storage.
	// This is called during graceful shutdown and periodic flushes.
	Flush() error

	// Close releases all resources and performs final cleanup.
	// After calling Close, the backend must not be used again.
	Close() error

	// Maintenance performs backend-specific maintenance operations,
	// such as cleaning entries beyond the retention window.
	Maintenance() error

	// GetStats returns statistics about the stored trail. File-based
	// backends may return limited data.
	GetStats() (*AuditStats, error)
}

// Retention window applied by database backend maintenance.
const auditRetentionDays = 90

// createAuditBackend selects the storage backend from the output path:
//
//   - postgres:// or postgresql:// DSN selects the PostgreSQL backend
//   - a .db or .sqlite extension selects the SQLite backend
//   - anything else (including the empty default) selects JSONL
//
// An explicitly selected database backend that fails to initialize is a
// hard error, never a silent downgrade to a different storage format.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	out := config.OutputFile
	switch {
	case strings.HasPrefix(out, "postgres://"), strings.HasPrefix(out, "postgresql://"):
		return newPostgresBackend(config)
	case filepath.Ext(out) == ".db", filepath.Ext(out) == ".sqlite":
		return newSQLiteBackend(config)
	case out == "":
		config.OutputFile = filepath.Join(os.TempDir(), "creaper", "command-audit.jsonl")
		return newJSONLBackend(config)
	default:
		return newJSONLBackend(config)
	}
}

// AuditStats represents statistics about a stored audit trail.
type AuditStats struct {
	TotalEvents     int64            `json:"total_events"`
	EventsByLevel   map[string]int64 `json:"events_by_level"`
	EventsByOutcome map[string]int64 `json:"events_by_outcome"`
	OldestEvent     *time.Time       `json:"oldest_event"`
	NewestEvent     *time.Time       `json:"newest_event"`
	StorageSize     int64            `json:"storage_size_bytes"`
	SchemaVersion   int              `json:"schema_version"`
}

// ----------------------------------------------------------------------------
// SQLite backend
// ----------------------------------------------------------------------------

// sqliteAuditBackend implements auditBackend on a single-file SQLite
// database, giving local deployments a queryable trail without an
// external service.
type sqliteAuditBackend struct {
	db         *sql.DB
	dbPath     string
	insertStmt *sql.Stmt
	mu         sync.RWMutex
	closed     bool
}

// newSQLiteBackend opens (or creates) the SQLite trail at the configured
// path, migrates the schema to the current version and prepares the
// batch insert statement.
//
// The connection string pragmas are chosen for an append-mostly audit
// workload:
//
//	_journal_mode=WAL     writers never block readers; ~10x write throughput
//	_busy_timeout=5000    wait out locks from concurrent processes
//	_synchronous=NORMAL   sync at critical moments, not every insert
//	_cache_size=1000      4MB page cache, modest enough for containers
func newSQLiteBackend(config AuditConfig) (*sqliteAuditBackend, error) {
	dbPath := config.OutputFile
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache_size=1000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database (close error: %v): %w", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	backend := &sqliteAuditBackend{db: db, dbPath: dbPath}

	if err := backend.ensureSchemaVersion(); err != nil {
		if closeErr := backend.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema (close error: %v): %w", closeErr, err)
		}
		return nil, fmt.Errorf("failed to initialize audit database schema: %w", err)
	}
	if err := backend.prepareStatements(); err != nil {
		if closeErr := backend.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to prepare statements (close error: %v): %w", closeErr, err)
		}
		return nil, fmt.Errorf("failed to prepare audit database statements: %w", err)
	}

	// Opportunistic cleanup of entries beyond retention; failure here must
	// not prevent startup.
	_ = backend.Maintenance()

	return backend, nil
}

// ensureSchemaVersion checks the current schema version and performs
// migrations if needed.
//
//   - Version 1: audit_events table with basic indexes
//   - Version 2: composite indexes for trail queries (current)
//
// Migration is atomic and safe for concurrent access.
func (s *sqliteAuditBackend) ensureSchemaVersion() error {
	const currentSchemaVersion = 2

	createSchemaInfoSQL := `
	CREATE TABLE IF NOT EXISTS schema_info (
		version INTEGER PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.db.Exec(createSchemaInfoSQL); err != nil {
		return fmt.Errorf("failed to create schema_info table: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT version FROM schema_info ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			version = 0
		} else {
			return fmt.Errorf("failed to check schema version: %w", err)
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateSchema(version, currentSchemaVersion); err != nil {
			return fmt.Errorf("schema migration from v%d to v%d failed: %w", version, currentSchemaVersion, err)
		}

		_, err := s.db.Exec(`
			INSERT OR REPLACE INTO schema_info (version, updated_at)
			VALUES (?, CURRENT_TIMESTAMP)
		`, currentSchemaVersion)
		if err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
	}

	return nil
}

// migrateSchema performs incremental schema migrations from oldVersion
// to newVersion inside one transaction, so a failed migration leaves the
// previous schema intact.
func (s *sqliteAuditBackend) migrateSchema(oldVersion, newVersion int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollErr := tx.Rollback(); rollErr != nil {
				_ = rollErr
			}
		}
	}()

	for version := oldVersion; version < newVersion; version++ {
		switch version {
		case 0:
			if err = s.migrateToV1(tx); err != nil {
				return fmt.Errorf("migration to v1 failed: %w", err)
			}
		case 1:
			if err = s.migrateToV2(tx); err != nil {
				return fmt.Errorf("migration to v2 failed: %w", err)
			}
		default:
			return fmt.Errorf("unknown migration path from version %d", version)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	return nil
}

// migrateToV1 creates the audit_events table (version 1).
func (s *sqliteAuditBackend) migrateToV1(tx *sql.Tx) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		level TEXT NOT NULL,
		event TEXT NOT NULL,

		-- Command application fields
		mode TEXT,
		command TEXT,

		-- Offline transform fields
		edit TEXT,
		generation TEXT,
		document TEXT,

		-- Outcome
		outcome TEXT NOT NULL,
		error TEXT,

		-- Process and correlation tracking
		process_id INTEGER NOT NULL,
		process_name TEXT NOT NULL,

		-- Additional context
		context TEXT, -- JSON blob for flexible metadata
		checksum TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := tx.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create audit_events table: %w", err)
	}

	basicIndexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_audit_event_id ON audit_events(event_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_audit_level ON audit_events(level)",
		"CREATE INDEX IF NOT EXISTS idx_audit_outcome ON audit_events(outcome)",
		"CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_events(created_at)",
	}

	for _, indexSQL := range basicIndexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create basic index: %w", err)
		}
	}

	return nil
}

// migrateToV2 adds composite indexes for the common trail queries
// (failures for a command, activity per mode over time).
func (s *sqliteAuditBackend) migrateToV2(tx *sql.Tx) error {
	compositeIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_mode_time ON audit_events(mode, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_audit_command_outcome ON audit_events(command, outcome)",
		"CREATE INDEX IF NOT EXISTS idx_audit_outcome_time ON audit_events(outcome, created_at)",
	}

	for _, indexSQL := range compositeIndexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create composite index: %w", err)
		}
	}

	return nil
}

// Write persists a batch of audit events inside one transaction.
func (s *sqliteAuditBackend) Write(events []AuditEvent) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("cannot write to closed SQLite audit backend")
	}
	s.mu.RUnlock()

	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				fmt.Fprintf(os.Stderr, "Failed to rollback audit transaction: %v\n", rollbackErr)
			}
		}
	}()

	txStmt := tx.Stmt(s.insertStmt)
	defer func() {
		if closeErr := txStmt.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to close transaction statement: %v\n", closeErr)
		}
	}()

	for _, event := range events {
		contextJSON, cerr := marshalEventContext(event)
		if cerr != nil {
			err = cerr
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
		_, err = txStmt.Exec(
			event.ID,
			event.Timestamp.Format(time.RFC3339Nano),
			event.Level.String(),
			event.Event,
			event.Mode,
			event.Command,
			event.Edit,
			event.Generation,
			event.Document,
			event.Outcome,
			event.Error,
			event.ProcessID,
			event.ProcessName,
			contextJSON,
			event.Checksum,
		)
		if err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit transaction: %w", err)
	}

	return nil
}

// prepareStatements prepares the insert statement used by batch writes.
func (s *sqliteAuditBackend) prepareStatements() error {
	insertSQL := `
	INSERT INTO audit_events (
		event_id, timestamp, level, event,
		mode, command, edit, generation, document,
		outcome, error, process_id, process_name, context, checksum
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := s.db.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	s.insertStmt = stmt
	return nil
}

// Flush forces a WAL checkpoint so recent transactions are durable in
// the main database file.
func (s *sqliteAuditBackend) Flush() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil // No-op for closed backend
	}
	s.mu.RUnlock()

	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	if err != nil {
		return fmt.Errorf("failed to flush SQLite audit backend: %w", err)
	}

	return nil
}

// Maintenance removes events beyond the retention window and refreshes
// query planner statistics.
func (s *sqliteAuditBackend) Maintenance() error {
	cleanupSQL := `
		DELETE FROM audit_events
		WHERE created_at < datetime('now', '-' || ? || ' days')
	`

	if _, err := s.db.Exec(cleanupSQL, auditRetentionDays); err != nil {
		return fmt.Errorf("failed to cleanup old audit events: %w", err)
	}

	optimizationTasks := []string{
		"PRAGMA optimize",
		"PRAGMA wal_checkpoint(FULL)",
	}
	for _, task := range optimizationTasks {
		if _, err := s.db.Exec(task); err != nil {
			continue
		}
	}

	return nil
}

// GetStats returns counts, outcome distribution and time range of the
// stored trail.
func (s *sqliteAuditBackend) GetStats() (*AuditStats, error) {
	stats := &AuditStats{
		EventsByLevel:   make(map[string]int64),
		EventsByOutcome: make(map[string]int64),
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to get total events count: %w", err)
	}

	if err := scanGroupCounts(s.db, "SELECT level, COUNT(*) FROM audit_events GROUP BY level", stats.EventsByLevel); err != nil {
		return nil, err
	}
	if err := scanGroupCounts(s.db, "SELECT outcome, COUNT(*) FROM audit_events GROUP BY outcome", stats.EventsByOutcome); err != nil {
		return nil, err
	}

	var oldestStr, newestStr sql.NullString
	err := s.db.QueryRow("SELECT MIN(created_at), MAX(created_at) FROM audit_events").Scan(&oldestStr, &newestStr)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get event time range: %w", err)
	}
	if oldestStr.Valid {
		if oldest, perr := time.Parse("2006-01-02 15:04:05", oldestStr.String); perr == nil {
			stats.OldestEvent = &oldest
		}
	}
	if newestStr.Valid {
		if newest, perr := time.Parse("2006-01-02 15:04:05", newestStr.String); perr == nil {
			stats.NewestEvent = &newest
		}
	}

	if err := s.db.QueryRow("SELECT version FROM schema_info ORDER BY version DESC LIMIT 1").Scan(&stats.SchemaVersion); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	if info, ferr := os.Stat(s.dbPath); ferr == nil {
		stats.StorageSize = info.Size()
	}

	return stats, nil
}

// Close flushes the WAL, closes the prepared statement and the database.
// It is safe to call multiple times.
func (s *sqliteAuditBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil // Already closed
	}

	var errs []error

	// Final flush so WAL data is committed before the connection closes.
	// Temporarily unlock to let Flush acquire its read lock.
	s.mu.Unlock()
	if err := s.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush audit backend during close: %w", err))
	}
	s.mu.Lock()

	if s.insertStmt != nil {
		if err := s.insertStmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close insert statement: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	s.closed = true

	if len(errs) > 0 {
		return fmt.Errorf("errors closing SQLite audit backend: %v", errs)
	}

	return nil
}

// ----------------------------------------------------------------------------
// PostgreSQL backend
// ----------------------------------------------------------------------------

// postgresAuditBackend implements auditBackend on a PostgreSQL database,
// for deployments that centralize audit trails from many hosts. It uses
// database/sql over the pgx stdlib driver so the surrounding code stays
// identical to the SQLite backend.
//
// The table is prefixed (creaper_audit_events) because the target
// database is typically shared with the application's own schema.
type postgresAuditBackend struct {
	db     *sql.DB
	dsn    string
	mu     sync.RWMutex
	closed bool
}

func newPostgresBackend(config AuditConfig) (*postgresAuditBackend, error) {
	db, err := sql.Open("pgx", config.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database (close error: %v): %w", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	backend := &postgresAuditBackend{db: db, dsn: config.OutputFile}

	if err := backend.ensureSchema(); err != nil {
		if closeErr := backend.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema (close error: %v): %w", closeErr, err)
		}
		return nil, fmt.Errorf("failed to initialize audit database schema: %w", err)
	}

	_ = backend.Maintenance()

	return backend, nil
}

// ensureSchema creates the trail table and its indexes. Everything is
// IF NOT EXISTS so concurrent hosts can race on first write safely.
func (p *postgresAuditBackend) ensureSchema() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS creaper_audit_events (
		id BIGSERIAL PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE,
		timestamp TIMESTAMPTZ NOT NULL,
		level TEXT NOT NULL,
		event TEXT NOT NULL,
		mode TEXT,
		command TEXT,
		edit TEXT,
		generation TEXT,
		document TEXT,
		outcome TEXT NOT NULL,
		error TEXT,
		process_id INTEGER NOT NULL,
		process_name TEXT NOT NULL,
		context TEXT,
		checksum TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

	if _, err := p.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create creaper_audit_events table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_creaper_audit_timestamp ON creaper_audit_events(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_creaper_audit_outcome ON creaper_audit_events(outcome)",
		"CREATE INDEX IF NOT EXISTS idx_creaper_audit_mode_time ON creaper_audit_events(mode, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_creaper_audit_command_outcome ON creaper_audit_events(command, outcome)",
	}
	for _, indexSQL := range indexes {
		if _, err := p.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Write persists a batch of audit events inside one transaction.
func (p *postgresAuditBackend) Write(events []AuditEvent) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("cannot write to closed PostgreSQL audit backend")
	}
	p.mu.RUnlock()

	if len(events) == 0 {
		return nil
	}

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				fmt.Fprintf(os.Stderr, "Failed to rollback audit transaction: %v\n", rollbackErr)
			}
		}
	}()

	insertSQL := `
	INSERT INTO creaper_audit_events (
		event_id, timestamp, level, event,
		mode, command, edit, generation, document,
		outcome, error, process_id, process_name, context, checksum
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (event_id) DO NOTHING`

	for _, event := range events {
		contextJSON, cerr := marshalEventContext(event)
		if cerr != nil {
			err = cerr
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
		_, err = tx.Exec(insertSQL,
			event.ID,
			event.Timestamp,
			event.Level.String(),
			event.Event,
			event.Mode,
			event.Command,
			event.Edit,
			event.Generation,
			event.Document,
			event.Outcome,
			event.Error,
			event.ProcessID,
			event.ProcessName,
			contextJSON,
			event.Checksum,
		)
		if err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit transaction: %w", err)
	}

	return nil
}

// Flush is a no-op: committed transactions are already durable on the
// server.
func (p *postgresAuditBackend) Flush() error {
	return nil
}

// Maintenance removes events beyond the retention window.
func (p *postgresAuditBackend) Maintenance() error {
	cleanupSQL := `
		DELETE FROM creaper_audit_events
		WHERE created_at < now() - ($1 || ' days')::interval
	`
	if _, err := p.db.Exec(cleanupSQL, auditRetentionDays); err != nil {
		return fmt.Errorf("failed to cleanup old audit events: %w", err)
	}
	return nil
}

// GetStats returns counts, outcome distribution and time range of the
// stored trail.
func (p *postgresAuditBackend) GetStats() (*AuditStats, error) {
	stats := &AuditStats{
		EventsByLevel:   make(map[string]int64),
		EventsByOutcome: make(map[string]int64),
		SchemaVersion:   1,
	}

	if err := p.db.QueryRow("SELECT COUNT(*) FROM creaper_audit_events").Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to get total events count: %w", err)
	}

	if err := scanGroupCounts(p.db, "SELECT level, COUNT(*) FROM creaper_audit_events GROUP BY level", stats.EventsByLevel); err != nil {
		return nil, err
	}
	if err := scanGroupCounts(p.db, "SELECT outcome, COUNT(*) FROM creaper_audit_events GROUP BY outcome", stats.EventsByOutcome); err != nil {
		return nil, err
	}

	var oldest, newest sql.NullTime
	err := p.db.QueryRow("SELECT MIN(created_at), MAX(created_at) FROM creaper_audit_events").Scan(&oldest, &newest)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get event time range: %w", err)
	}
	if oldest.Valid {
		t := oldest.Time
		stats.OldestEvent = &t
	}
	if newest.Valid {
		t := newest.Time
		stats.NewestEvent = &t
	}

	return stats, nil
}

// Close closes the database connection. It is safe to call multiple
// times.
func (p *postgresAuditBackend) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// JSONL backend
// ----------------------------------------------------------------------------

// jsonlAuditBackend implements auditBackend as an append-only JSONL
// file: one JSON object per line, human-readable and shippable to any
// log aggregator.
type jsonlAuditBackend struct {
	file       *os.File
	sourceFile string
	mu         sync.Mutex
	closed     bool
}

func newJSONLBackend(config AuditConfig) (*jsonlAuditBackend, error) {
	if config.OutputFile == "" {
		return nil, fmt.Errorf("JSONL backend requires OutputFile to be specified")
	}

	if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0750); err != nil {
		return nil, fmt.Errorf("failed to create JSONL audit log directory: %w", err)
	}

	// Owner read/write only: the trail may carry resource names and
	// failure descriptions.
	file, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit log file: %w", err)
	}

	return &jsonlAuditBackend{
		file:       file,
		sourceFile: config.OutputFile,
	}, nil
}

// Write appends each event as a single JSON line.
func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return fmt.Errorf("cannot write to closed JSONL audit backend")
	}

	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize audit event: %w", err)
		}

		if _, err := j.file.Write(data); err != nil {
			return fmt.Errorf("failed to write audit event to JSONL: %w", err)
		}

		if _, err := j.file.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to write audit event newline: %w", err)
		}
	}

	return nil
}

// Flush forces an fsync to ensure data persistence.
func (j *jsonlAuditBackend) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil // No-op for closed backend
	}

	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync JSONL audit file: %w", err)
	}

	return nil
}

// Maintenance is a no-op for JSONL files; rotation is left to the host's
// log management.
func (j *jsonlAuditBackend) Maintenance() error {
	return nil
}

// GetStats returns basic file statistics. Counting events would require
// parsing the whole file, so only the size is reported.
func (j *jsonlAuditBackend) GetStats() (*AuditStats, error) {
	stats := &AuditStats{
		EventsByLevel:   make(map[string]int64),
		EventsByOutcome: make(map[string]int64),
		SchemaVersion:   1, // JSONL format is version 1
	}

	if info, err := os.Stat(j.sourceFile); err == nil {
		stats.StorageSize = info.Size()
	}

	return stats, nil
}

// Close releases the file handle. It is safe to call multiple times.
func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil // Already closed
	}

	var err error
	if j.file != nil {
		err = j.file.Close()
	}

	j.closed = true
	return err
}

// marshalEventContext serializes the free-form context map for database
// storage. An empty map stores as an empty string, not "null".
func marshalEventContext(event AuditEvent) (string, error) {
	if len(event.Context) == 0 {
		return "", nil
	}
	data, err := json.Marshal(event.Context)
	if err != nil {
		return "", fmt.Errorf("failed to serialize context: %w", err)
	}
	return string(data), nil
}

// scanGroupCounts runs a two-column (key, count) GROUP BY query into the
// given map.
func scanGroupCounts(db *sql.DB, query string, into map[string]int64) error {
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query audit statistics: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan audit statistics: %w", err)
		}
		into[key] = count
	}
	return rows.Err()
}
