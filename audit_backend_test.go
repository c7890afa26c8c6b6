// audit_backend_test.go - Test suite for audit storage backends
//
// Covers backend selection from the output path, the SQLite round-trip
// including schema versioning, and the JSONL file backend. The PostgreSQL
// backend shares the SQLite code shape but needs a live server, so it is
// exercised only through backend selection here.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func testAuditEvent(command, outcome string, level AuditLevel) AuditEvent {
	return AuditEvent{
		ID:          ulid.Make().String(),
		Timestamp:   time.Now(),
		Level:       level,
		Event:       "command_applied",
		Mode:        ModeOnline,
		Command:     command,
		Outcome:     outcome,
		ProcessID:   1234,
		ProcessName: "creaper",
		Checksum:    "test-checksum",
	}
}

func TestCreateAuditBackendSelection(t *testing.T) {
	dir := t.TempDir()

	t.Run("jsonl_by_default", func(t *testing.T) {
		backend, err := createAuditBackend(AuditConfig{
			OutputFile: filepath.Join(dir, "trail.jsonl"),
		})
		if err != nil {
			t.Fatalf("createAuditBackend() error: %v", err)
		}
		defer func() {
			if err := backend.Close(); err != nil {
				t.Errorf("Close() error: %v", err)
			}
		}()
		if _, ok := backend.(*jsonlAuditBackend); !ok {
			t.Errorf("backend type = %T, want JSONL", backend)
		}
	})

	t.Run("jsonl_for_empty_output", func(t *testing.T) {
		backend, err := createAuditBackend(AuditConfig{})
		if err != nil {
			t.Fatalf("createAuditBackend() error: %v", err)
		}
		defer func() {
			if err := backend.Close(); err != nil {
				t.Errorf("Close() error: %v", err)
			}
		}()
		if _, ok := backend.(*jsonlAuditBackend); !ok {
			t.Errorf("backend type = %T, want JSONL", backend)
		}
	})

	t.Run("sqlite_by_db_extension", func(t *testing.T) {
		backend, err := createAuditBackend(AuditConfig{
			OutputFile: filepath.Join(dir, "trail.db"),
		})
		if err != nil {
			t.Fatalf("createAuditBackend() error: %v", err)
		}
		defer func() {
			if err := backend.Close(); err != nil {
				t.Errorf("Close() error: %v", err)
			}
		}()
		if _, ok := backend.(*sqliteAuditBackend); !ok {
			t.Errorf("backend type = %T, want SQLite", backend)
		}
	})

	t.Run("sqlite_by_sqlite_extension", func(t *testing.T) {
		backend, err := createAuditBackend(AuditConfig{
			OutputFile: filepath.Join(dir, "trail.sqlite"),
		})
		if err != nil {
			t.Fatalf("createAuditBackend() error: %v", err)
		}
		defer func() {
			if err := backend.Close(); err != nil {
				t.Errorf("Close() error: %v", err)
			}
		}()
		if _, ok := backend.(*sqliteAuditBackend); !ok {
			t.Errorf("backend type = %T, want SQLite", backend)
		}
	})
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	backend, err := newSQLiteBackend(AuditConfig{OutputFile: dbPath})
	if err != nil {
		t.Fatalf("newSQLiteBackend() error: %v", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	events := []AuditEvent{
		testAuditEvent("*messaging.AddQueue", "success", AuditInfo),
		testAuditEvent("*messaging.AddQueue", "success", AuditInfo),
		testAuditEvent("*infinispan.AddCache", "failed", AuditWarn),
	}
	if err := backend.Write(events); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := backend.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	stats, err := backend.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d, want 3", stats.TotalEvents)
	}
	if stats.EventsByOutcome["success"] != 2 {
		t.Errorf("EventsByOutcome[success] = %d, want 2", stats.EventsByOutcome["success"])
	}
	if stats.EventsByOutcome["failed"] != 1 {
		t.Errorf("EventsByOutcome[failed] = %d, want 1", stats.EventsByOutcome["failed"])
	}
	if stats.EventsByLevel["WARN"] != 1 {
		t.Errorf("EventsByLevel[WARN] = %d, want 1", stats.EventsByLevel["WARN"])
	}
	if stats.SchemaVersion != 2 {
		t.Errorf("SchemaVersion = %d, want 2", stats.SchemaVersion)
	}
	if stats.StorageSize == 0 {
		t.Error("StorageSize = 0 for a populated database")
	}
}

func TestSQLiteBackendReopenKeepsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	first, err := newSQLiteBackend(AuditConfig{OutputFile: dbPath})
	if err != nil {
		t.Fatalf("newSQLiteBackend() error: %v", err)
	}
	if err := first.Write([]AuditEvent{testAuditEvent("cmd", "success", AuditInfo)}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// Reopening migrates nothing and sees the existing rows.
	second, err := newSQLiteBackend(AuditConfig{OutputFile: dbPath})
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer func() {
		if err := second.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	stats, err := second.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.TotalEvents != 1 {
		t.Errorf("TotalEvents after reopen = %d, want 1", stats.TotalEvents)
	}
	if stats.SchemaVersion != 2 {
		t.Errorf("SchemaVersion after reopen = %d, want 2", stats.SchemaVersion)
	}
}

func TestSQLiteBackendMaintenance(t *testing.T) {
	backend, err := newSQLiteBackend(AuditConfig{
		OutputFile: filepath.Join(t.TempDir(), "audit.db"),
	})
	if err != nil {
		t.Fatalf("newSQLiteBackend() error: %v", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	if err := backend.Write([]AuditEvent{testAuditEvent("cmd", "success", AuditInfo)}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := backend.Maintenance(); err != nil {
		t.Fatalf("Maintenance() error: %v", err)
	}

	// Recent events survive the retention sweep.
	stats, err := backend.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.TotalEvents != 1 {
		t.Errorf("TotalEvents after maintenance = %d, want 1", stats.TotalEvents)
	}
}

func TestSQLiteBackendCloseIsIdempotent(t *testing.T) {
	backend, err := newSQLiteBackend(AuditConfig{
		OutputFile: filepath.Join(t.TempDir(), "audit.db"),
	})
	if err != nil {
		t.Fatalf("newSQLiteBackend() error: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if err := backend.Write([]AuditEvent{testAuditEvent("cmd", "success", AuditInfo)}); err == nil {
		t.Error("Write() on a closed backend succeeded")
	}
}

func TestJSONLBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.jsonl")
	backend, err := newJSONLBackend(AuditConfig{OutputFile: path})
	if err != nil {
		t.Fatalf("newJSONLBackend() error: %v", err)
	}

	if err := backend.Write([]AuditEvent{
		testAuditEvent("one", "success", AuditInfo),
		testAuditEvent("two", "failed", AuditWarn),
	}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := backend.Flush(); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if err := backend.Maintenance(); err != nil {
		t.Fatalf("Maintenance() error: %v", err)
	}

	events := readAuditEvents(t, path)
	if len(events) != 2 {
		t.Fatalf("trail has %d events, want 2", len(events))
	}
	if events[0].Command != "one" || events[1].Command != "two" {
		t.Errorf("commands = %q, %q", events[0].Command, events[1].Command)
	}

	stats, err := backend.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.StorageSize == 0 {
		t.Error("StorageSize = 0 for a populated trail")
	}
	// File backends do not count events.
	if stats.TotalEvents != 0 {
		t.Errorf("TotalEvents = %d, want 0 from the file backend", stats.TotalEvents)
	}

	if err := backend.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if err := backend.Write([]AuditEvent{testAuditEvent("three", "success", AuditInfo)}); err == nil {
		t.Error("Write() on a closed backend succeeded")
	}
}

func TestJSONLBackendRequiresOutputFile(t *testing.T) {
	if _, err := newJSONLBackend(AuditConfig{}); err == nil {
		t.Error("newJSONLBackend accepted an empty output path")
	}
}

func TestJSONLBackendCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "trail.jsonl")
	backend, err := newJSONLBackend(AuditConfig{OutputFile: path})
	if err != nil {
		t.Fatalf("newJSONLBackend() error: %v", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	if err := backend.Write([]AuditEvent{testAuditEvent("cmd", "success", AuditInfo)}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if events := readAuditEvents(t, path); len(events) != 1 {
		t.Errorf("trail has %d events, want 1", len(events))
	}
}
