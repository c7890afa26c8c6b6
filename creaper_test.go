// creaper_test.go: Online client construction and command application
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agilira/go-errors"
)

// recordingCommand counts its applications and optionally fails, so tests
// can observe how the client sequences a command list.
type recordingCommand struct {
	applied int
	fail    bool
}

func (c *recordingCommand) ApplyOnline(ctx context.Context, client *OnlineClient) error {
	c.applied++
	if c.fail {
		return errors.New(ErrCodeOperationFailed, "synthetic failure")
	}
	return nil
}

// staticTransport answers every operation with the same canned result.
type staticTransport struct {
	result Result
}

func (s *staticTransport) Execute(ctx context.Context, op Operation) (Result, error) {
	return s.result, nil
}

func (s *staticTransport) ExecuteBatch(ctx context.Context, steps []Operation) (Result, error) {
	return s.result, nil
}

func (s *staticTransport) Close() error { return nil }

func TestNewOnlineClientDiscoversVersion(t *testing.T) {
	tests := []struct {
		name    string
		version ServerVersion
	}{
		{"legacy_generation", Version1_7_0},
		{"current_generation", Version3_0_0},
		{"future_generation", ServerVersion{Major: 23, Minor: 0, Micro: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.version)
			if got := client.Version(); got != tt.version {
				t.Errorf("Version() = %s, want %s", got, tt.version)
			}
		})
	}
}

func TestNewOnlineClientVersionlessServer(t *testing.T) {
	// A root read that yields no attribute map maps to the zero version,
	// which commands treat as current-generation.
	client, err := NewOnlineClient(context.Background(), Config{
		Transport: &staticTransport{result: successResult(nil)},
		Audit: AuditConfig{
			Enabled:    true,
			OutputFile: filepath.Join(t.TempDir(), "audit.jsonl"),
			BufferSize: 16,
		},
	})
	if err != nil {
		t.Fatalf("NewOnlineClient() error: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}()
	if !client.Version().IsZero() {
		t.Errorf("Version() = %s, want zero", client.Version())
	}
}

func TestNewOnlineClientRequiresController(t *testing.T) {
	_, err := NewOnlineClient(context.Background(), Config{
		Audit: AuditConfig{
			Enabled:    true,
			OutputFile: filepath.Join(t.TempDir(), "audit.jsonl"),
			BufferSize: 16,
		},
	})
	assertErrorCode(t, err, ErrCodeInvalidConfig)
}

func TestApplyRunsCommandsInOrder(t *testing.T) {
	client, _ := newTestClient(t, Version3_0_0)

	first := &recordingCommand{}
	second := &recordingCommand{}
	if err := client.Apply(context.Background(), first, second); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if first.applied != 1 || second.applied != 1 {
		t.Errorf("applied counts = %d, %d, want 1, 1", first.applied, second.applied)
	}
}

func TestApplyStopsAtFirstFailure(t *testing.T) {
	client, _ := newTestClient(t, Version3_0_0)

	first := &recordingCommand{}
	failing := &recordingCommand{fail: true}
	never := &recordingCommand{}

	err := client.Apply(context.Background(), first, failing, never)
	assertErrorCode(t, err, ErrCodeOperationFailed)

	if first.applied != 1 {
		t.Errorf("first command applied %d times, want 1", first.applied)
	}
	if failing.applied != 1 {
		t.Errorf("failing command applied %d times, want 1", failing.applied)
	}
	if never.applied != 0 {
		t.Errorf("command after the failure applied %d times, want 0", never.applied)
	}
}

func TestClientCloseReleasesTransport(t *testing.T) {
	server := NewInMemoryServer(Version3_0_0)
	client, err := NewOnlineClient(context.Background(), Config{
		Transport: server,
		Audit: AuditConfig{
			Enabled:    true,
			OutputFile: filepath.Join(t.TempDir(), "audit.jsonl"),
			BufferSize: 16,
		},
	})
	if err != nil {
		t.Fatalf("NewOnlineClient() error: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	_, err = server.Execute(context.Background(), Operation{Name: OpReadResource, Address: Root()})
	assertErrorCode(t, err, ErrCodeTransportFailed)
}
