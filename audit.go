// audit.go: Audit trail for command applications and document transforms
//
// Every command a client applies and every offline edit a transform runs
// is recorded here, so a server's configuration history can be
// reconstructed from the trail alone: who changed what, in which mode,
// and whether the change took.
//
// Features:
// - Immutable audit events with tamper-detection checksums
// - ULID event identifiers, sortable by creation time
// - Buffered writes with background flushing
// - Pluggable storage backends (JSONL, SQLite, PostgreSQL)
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/oklog/ulid/v2"
)

// AuditLevel represents the severity of audit events
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
	AuditSecurity
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	case AuditSecurity:
		return "SECURITY"
	default:
		return "UNKNOWN"
	}
}

// Audit event outcomes.
const (
	auditOutcomeSuccess = "success"
	auditOutcomeFailed  = "failed"
	auditOutcomeSkipped = "skipped"
)

// AuditEvent represents a single auditable event
type AuditEvent struct {
	ID          string         `json:"id"` // ULID: unique and time-ordered
	Timestamp   time.Time      `json:"timestamp"`
	Level       AuditLevel     `json:"level"`
	Event       string         `json:"event"`
	Mode        string         `json:"mode,omitempty"` // online or offline
	Command     string         `json:"command,omitempty"`
	Edit        string         `json:"edit,omitempty"`
	Generation  string         `json:"generation,omitempty"`
	Document    string         `json:"document,omitempty"`
	Outcome     string         `json:"outcome"`
	Error       string         `json:"error,omitempty"`
	ProcessID   int            `json:"process_id"`
	ProcessName string         `json:"process_name"`
	Context     map[string]any `json:"context,omitempty"`
	Checksum    string         `json:"checksum"` // For tamper detection
}

// AuditConfig configures the audit system
type AuditConfig struct {
	Enabled       bool          `json:"enabled"`
	OutputFile    string        `json:"output_file"`
	MinLevel      AuditLevel    `json:"min_level"`
	BufferSize    int           `json:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval"`
}

// DefaultAuditConfig returns the default audit configuration: an
// append-only JSONL trail under the user temp directory.
//
// Command application is low-frequency compared to the traffic the
// buffered writer can absorb, so the defaults favor prompt persistence
// over throughput. For a queryable trail, point OutputFile at a .db or
// .sqlite path, or at a postgres:// DSN.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    filepath.Join(os.TempDir(), "creaper", "command-audit.jsonl"),
		MinLevel:      AuditInfo,
		BufferSize:    256,
		FlushInterval: 2 * time.Second,
	}
}

// AuditLogger provides buffered audit logging with pluggable backends.
//
// Events are buffered in memory and flushed either when the buffer
// fills, on the background flush interval, or on Close. The storage
// backend is selected from the configured output path: JSONL files,
// SQLite databases, or a PostgreSQL DSN all implement the same
// auditBackend contract.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	processID   int
	processName string
}

// NewAuditLogger creates an audit logger with backend selection driven
// by config.OutputFile. See createAuditBackend for the selection rules.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit backend: %w", err)
	}

	logger := &AuditLogger{
		config:      config,
		backend:     backend,
		buffer:      make([]AuditEvent, 0, config.BufferSize),
		stopCh:      make(chan struct{}),
		processID:   os.Getpid(),
		processName: getProcessName(),
	}

	// Start background flusher
	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// Log records a fully populated audit event. The logger stamps identity,
// timing and integrity fields; callers fill the domain fields. The
// convenience methods below cover the common cases.
func (al *AuditLogger) Log(level AuditLevel, event AuditEvent) {
	if al == nil || al.backend == nil || !al.config.Enabled || level < al.config.MinLevel {
		return
	}

	event.ID = ulid.Make().String()
	event.Level = level
	// Cached timestamp: audit sits on every apply path and must not pay
	// the time.Now() syscall each time.
	event.Timestamp = timecache.CachedTime()
	event.ProcessID = al.processID
	event.ProcessName = al.processName
	event.Checksum = al.generateChecksum(event)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, event)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe() // Ignore flush errors during buffering to maintain performance
	}
	al.bufferMu.Unlock()
}

// LogCommand records one command application and its outcome. Failed
// applications are recorded at warn level, so a trail filtered to
// warnings reads as the list of rejected changes.
func (al *AuditLogger) LogCommand(mode, command string, err error) {
	level := AuditInfo
	outcome := auditOutcomeSuccess
	errText := ""
	if err != nil {
		level = AuditWarn
		outcome = auditOutcomeFailed
		errText = err.Error()
	}
	al.Log(level, AuditEvent{
		Event:   "command_applied",
		Mode:    mode,
		Command: command,
		Outcome: outcome,
		Error:   errText,
	})
}

// LogTransform records one edit application under one schema generation.
// applied=false with a nil error means the document had no subtree for
// that generation and the edit was skipped.
func (al *AuditLogger) LogTransform(edit string, generation Generation, document string, applied bool, err error) {
	level := AuditInfo
	outcome := auditOutcomeSuccess
	errText := ""
	switch {
	case err != nil:
		level = AuditWarn
		outcome = auditOutcomeFailed
		errText = err.Error()
	case !applied:
		outcome = auditOutcomeSkipped
	}
	al.Log(level, AuditEvent{
		Event:      "transform_applied",
		Mode:       ModeOffline,
		Edit:       edit,
		Generation: string(generation),
		Document:   document,
		Outcome:    outcome,
		Error:      errText,
	})
}

// Flush immediately writes all buffered events
func (al *AuditLogger) Flush() error {
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferUnsafe()
}

// Stats flushes pending events and returns storage statistics from the
// active backend.
func (al *AuditLogger) Stats() (*AuditStats, error) {
	if al == nil || al.backend == nil {
		return nil, fmt.Errorf("audit logger has no backend")
	}
	if err := al.Flush(); err != nil {
		return nil, err
	}
	return al.backend.GetStats()
}

// Close gracefully shuts down the audit logger
func (al *AuditLogger) Close() error {
	close(al.stopCh)
	if al.flushTicker != nil {
		al.flushTicker.Stop()
	}

	// Final flush to ensure all events are persisted
	if err := al.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit logger during close: %w", err)
	}

	if al.backend != nil {
		if err := al.backend.Close(); err != nil {
			return fmt.Errorf("failed to close audit backend: %w", err)
		}
	}

	return nil
}

// flushLoop runs the background flush process
func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush() // Ignore flush errors in background process to maintain performance
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferUnsafe writes the buffer to backend storage (caller must
// hold bufferMu).
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}

	if err := al.backend.Write(al.buffer); err != nil {
		return fmt.Errorf("failed to write audit events to backend: %w", err)
	}

	al.buffer = al.buffer[:0]
	return nil
}

// generateChecksum creates a tamper-detection checksum using SHA-256
func (al *AuditLogger) generateChecksum(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s",
		event.ID, event.Timestamp.Format(time.RFC3339Nano),
		event.Event, event.Mode, event.Command, event.Outcome, event.Error)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

func getProcessName() string {
	return "creaper" // Could read from /proc/self/comm
}
