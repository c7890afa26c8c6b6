// manager_test.go: CLI manager construction and flag-parsing helpers
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/agilira/go-errors"

	"github.com/jmartisk/creaper"
	"github.com/jmartisk/creaper/commands/infinispan"
)

// assertErrorCode fails the test unless err, or an error it wraps,
// carries the given code. Handlers return coded errors; walking the
// chain keeps the assertion independent of framework-level wrapping.
func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	for e := err; e != nil; {
		if coder, ok := e.(errors.ErrorCoder); ok && string(coder.ErrorCode()) == code {
			return
		}
		unwrapper, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = unwrapper.Unwrap()
	}
	t.Fatalf("error carries no %s code: %v", code, err)
}

func TestNewManager(t *testing.T) {
	manager := NewManager()

	if manager == nil {
		t.Fatal("NewManager() returned nil")
	}
	if manager.app == nil {
		t.Fatal("Manager.app not initialized")
	}
	if manager.auditLogger != nil {
		t.Error("Manager.auditLogger should be nil until WithAudit is called")
	}
}

func TestManagerWithAudit(t *testing.T) {
	auditLogger, err := creaper.NewAuditLogger(creaper.AuditConfig{
		Enabled:    true,
		OutputFile: filepath.Join(t.TempDir(), "cli-audit.jsonl"),
		BufferSize: 16,
	})
	if err != nil {
		t.Fatalf("NewAuditLogger() error: %v", err)
	}
	defer func() {
		if err := auditLogger.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()

	baseManager := NewManager()
	manager := baseManager.WithAudit(auditLogger)

	if manager != baseManager {
		t.Error("WithAudit() should return the same manager instance for chaining")
	}
	if manager.auditLogger == nil {
		t.Error("WithAudit() did not set the audit logger")
	}
}

func TestParseCacheType(t *testing.T) {
	tests := []struct {
		input string
		want  infinispan.CacheType
	}{
		{"local", infinispan.LocalCache},
		{"local-cache", infinispan.LocalCache},
		{"replicated", infinispan.ReplicatedCache},
		{"replicated-cache", infinispan.ReplicatedCache},
		{"distributed", infinispan.DistributedCache},
		{"distributed-cache", infinispan.DistributedCache},
		{"invalidation", infinispan.InvalidationCache},
		{"invalidation-cache", infinispan.InvalidationCache},
		{"LOCAL", infinispan.LocalCache},
		{"Distributed", infinispan.DistributedCache},
	}
	for _, tt := range tests {
		got, err := parseCacheType(tt.input)
		if err != nil {
			t.Errorf("parseCacheType(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCacheType(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}

	t.Run("empty_type_is_required", func(t *testing.T) {
		_, err := parseCacheType("")
		assertErrorCode(t, err, creaper.ErrCodeInvalidCommand)
	})

	t.Run("unknown_type_is_rejected", func(t *testing.T) {
		_, err := parseCacheType("scattered")
		assertErrorCode(t, err, creaper.ErrCodeInvalidCommand)
	})
}

func TestDocTemplate(t *testing.T) {
	manager := NewManager()

	subtreeExists := func(tree map[string]any, path ...string) bool {
		current := tree
		for _, segment := range path {
			child, ok := current[segment].(map[string]any)
			if !ok {
				return false
			}
			current = child
		}
		return true
	}

	t.Run("default_seeds_empty_subsystem_map", func(t *testing.T) {
		tree := manager.docTemplate("default")
		subsystem, ok := tree["subsystem"].(map[string]any)
		if !ok {
			t.Fatalf("default template has no subsystem map: %v", tree)
		}
		if len(subsystem) != 0 {
			t.Errorf("default template subsystem should be empty, got %v", subsystem)
		}
	})

	t.Run("messaging_seeds_current_generation", func(t *testing.T) {
		tree := manager.docTemplate("messaging")
		if !subtreeExists(tree, "subsystem", "messaging-activemq", "server", "default") {
			t.Errorf("messaging template missing server subtree: %v", tree)
		}
	})

	t.Run("legacy_messaging_seeds_legacy_generation", func(t *testing.T) {
		tree := manager.docTemplate("legacy-messaging")
		if !subtreeExists(tree, "subsystem", "messaging", "hornetq-server", "default") {
			t.Errorf("legacy-messaging template missing server subtree: %v", tree)
		}
	})

	t.Run("unknown_template_falls_back_to_default", func(t *testing.T) {
		tree := manager.docTemplate("does-not-exist")
		subsystem, ok := tree["subsystem"].(map[string]any)
		if !ok || len(subsystem) != 0 {
			t.Errorf("unknown template should produce the default tree, got %v", tree)
		}
	})
}

// defaultTimeout seeds the --timeout flag default from the environment,
// keeping flag-over-environment precedence intact even though the flag
// always carries a value.
func TestDefaultTimeout(t *testing.T) {
	t.Run("environment_overrides_default", func(t *testing.T) {
		t.Setenv("CREAPER_TIMEOUT", "250ms")
		if got := defaultTimeout(); got != 250*time.Millisecond {
			t.Errorf("defaultTimeout() = %v, want 250ms", got)
		}
	})

	t.Run("falls_back_without_environment", func(t *testing.T) {
		t.Setenv("CREAPER_TIMEOUT", "")
		if got := defaultTimeout(); got != 10*time.Second {
			t.Errorf("defaultTimeout() = %v, want 10s", got)
		}
	})
}
