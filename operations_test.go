// operations_test.go: Operation facade against the in-memory server
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

// newTestClient connects an online client to a fresh in-memory server
// reporting the given management version. The server is returned too so
// tests can seed fixtures and inspect state behind the client's back.
func newTestClient(t *testing.T, version ServerVersion) (*OnlineClient, *InMemoryServer) {
	t.Helper()
	server := NewInMemoryServer(version)
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
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return client, server
}

// assertErrorCode fails the test unless err carries the given code.
func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	coder, ok := err.(errors.ErrorCoder)
	if !ok {
		t.Fatalf("error does not carry a code: %v", err)
	}
	if string(coder.ErrorCode()) != code {
		t.Fatalf("error code = %s, want %s (error: %v)", coder.ErrorCode(), code, err)
	}
}

func TestOperationsAddAndExists(t *testing.T) {
	client, server := newTestClient(t, Version3_0_0)
	server.Seed(Subsystem("datasources"))
	ops := client.Ops()
	ctx := context.Background()

	address := Subsystem("datasources").And("data-source", "MainDS")

	exists, err := ops.Exists(ctx, address)
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if exists {
		t.Fatal("resource exists before add")
	}

	if err := ops.Add(ctx, address, Values{}.And("jndi-name", "java:/MainDS").And("enabled", true)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	exists, err = ops.Exists(ctx, address)
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if !exists {
		t.Error("resource missing after add")
	}
}

func TestOperationsAddFailures(t *testing.T) {
	client, server := newTestClient(t, Version3_0_0)
	server.Seed(Subsystem("datasources"))
	ops := client.Ops()
	ctx := context.Background()

	address := Subsystem("datasources").And("data-source", "MainDS")
	if err := ops.Add(ctx, address, Values{}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	t.Run("duplicate_resource", func(t *testing.T) {
		err := ops.Add(ctx, address, Values{})
		assertErrorCode(t, err, ErrCodeOperationFailed)
	})

	t.Run("missing_parent", func(t *testing.T) {
		err := ops.Add(ctx, Subsystem("nowhere").And("data-source", "X"), Values{})
		assertErrorCode(t, err, ErrCodeOperationFailed)
	})
}

func TestOperationsRemove(t *testing.T) {
	client, server := newTestClient(t, Version3_0_0)
	server.Seed(Subsystem("datasources"))
	ops := client.Ops()
	ctx := context.Background()

	address := Subsystem("datasources").And("data-source", "MainDS")
	if err := ops.Add(ctx, address, Values{}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := ops.Remove(ctx, address); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	exists, err := ops.Exists(ctx, address)
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if exists {
		t.Error("resource survived remove")
	}

	// Removing again fails: the resource is gone.
	assertErrorCode(t, ops.Remove(ctx, address), ErrCodeOperationFailed)
}

func TestOperationsRemoveIfExists(t *testing.T) {
	client, server := newTestClient(t, Version3_0_0)
	server.Seed(Subsystem("datasources"))
	ops := client.Ops()
	ctx := context.Background()

	address := Subsystem("datasources").And("data-source", "MainDS")
	if err := ops.Add(ctx, address, Values{}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	removed, err := ops.RemoveIfExists(ctx, address)
	if err != nil {
		t.Fatalf("RemoveIfExists() error: %v", err)
	}
	if !removed {
		t.Error("RemoveIfExists() = false for an existing resource")
	}

	removed, err = ops.RemoveIfExists(ctx, address)
	if err != nil {
		t.Fatalf("RemoveIfExists() on absent resource error: %v", err)
	}
	if removed {
		t.Error("RemoveIfExists() = true for an absent resource")
	}
}

func TestOperationsReadResource(t *testing.T) {
	client, server := newTestClient(t, Version3_0_0)
	server.Seed(Subsystem("undertow"))
	ops := client.Ops()
	ctx := context.Background()

	address := Subsystem("undertow").And("server", "default-server")
	if err := ops.Add(ctx, address, Values{}.And("default-host", "default-host")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	t.Run("present", func(t *testing.T) {
		res, err := ops.ReadResource(ctx, address)
		if err != nil {
			t.Fatalf("ReadResource() error: %v", err)
		}
		attrs, err := res.MapValue()
		if err != nil {
			t.Fatalf("MapValue() error: %v", err)
		}
		if attrs["default-host"] != "default-host" {
			t.Errorf("default-host = %v, want %q", attrs["default-host"], "default-host")
		}
	})

	t.Run("missing_is_failed_result_not_error", func(t *testing.T) {
		res, err := ops.ReadResource(ctx, Subsystem("undertow").And("server", "nope"))
		if err != nil {
			t.Fatalf("ReadResource() error: %v", err)
		}
		if res.IsSuccess() {
			t.Error("read of a missing resource succeeded")
		}
		if res.FailureDescription == "" {
			t.Error("failed result carries no failure description")
		}
	})
}

func TestOperationsReadAttribute(t *testing.T) {
	client, server := newTestClient(t, Version3_0_0)
	server.Seed(Subsystem("undertow"))
	ops := client.Ops()
	ctx := context.Background()

	address := Subsystem("undertow").And("server", "default-server")
	if err := ops.Add(ctx, address, Values{}.And("default-host", "default-host")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	t.Run("defined", func(t *testing.T) {
		res, err := ops.ReadAttribute(ctx, address, "default-host")
		if err != nil {
			t.Fatalf("ReadAttribute() error: %v", err)
		}
		got, err := res.StringValue()
		if err != nil {
			t.Fatalf("StringValue() error: %v", err)
		}
		if got != "default-host" {
			t.Errorf("value = %q, want %q", got, "default-host")
		}
	})

	t.Run("undefined_attribute_succeeds", func(t *testing.T) {
		res, err := ops.ReadAttribute(ctx, address, "no-such-attribute")
		if err != nil {
			t.Fatalf("ReadAttribute() error: %v", err)
		}
		if !res.IsSuccess() {
			t.Fatalf("read of an absent attribute failed: %s", res.FailureDescription)
		}
		if res.Defined() {
			t.Errorf("absent attribute has defined value %v", res.Value)
		}
	})

	t.Run("missing_resource_fails", func(t *testing.T) {
		res, err := ops.ReadAttribute(ctx, Subsystem("undertow").And("server", "nope"), "default-host")
		if err != nil {
			t.Fatalf("ReadAttribute() error: %v", err)
		}
		if res.IsSuccess() {
			t.Error("read-attribute on a missing resource succeeded")
		}
	})
}

func TestOperationsWriteAttribute(t *testing.T) {
	client, server := newTestClient(t, Version3_0_0)
	server.Seed(Subsystem("undertow"))
	ops := client.Ops()
	ctx := context.Background()

	address := Subsystem("undertow").And("server", "default-server")
	if err := ops.Add(ctx, address, Values{}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := ops.WriteAttribute(ctx, address, "default-host", "other-host"); err != nil {
		t.Fatalf("WriteAttribute() error: %v", err)
	}
	res, err := ops.ReadAttribute(ctx, address, "default-host")
	if err != nil {
		t.Fatalf("ReadAttribute() error: %v", err)
	}
	got, err := res.StringValue()
	if err != nil {
		t.Fatalf("StringValue() error: %v", err)
	}
	if got != "other-host" {
		t.Errorf("value after write = %q, want %q", got, "other-host")
	}

	err = ops.WriteAttribute(ctx, Subsystem("undertow").And("server", "nope"), "a", 1)
	assertErrorCode(t, err, ErrCodeOperationFailed)
}

func TestOperationsBatchAtomic(t *testing.T) {
	client, server := newTestClient(t, Version3_0_0)
	server.Seed(Subsystem("messaging-activemq").And("server", "default"))
	ops := client.Ops()
	ctx := context.Background()

	serverAddr := Subsystem("messaging-activemq").And("server", "default")
	first := serverAddr.And("jms-queue", "first")
	second := serverAddr.And("jms-queue", "second")

	t.Run("all_steps_apply", func(t *testing.T) {
		batch := NewBatch().
			Add(first, Values{}.And("durable", true)).
			Add(second, Values{})
		if err := ops.Batch(ctx, batch); err != nil {
			t.Fatalf("Batch() error: %v", err)
		}
		for _, addr := range []Address{first, second} {
			exists, err := ops.Exists(ctx, addr)
			if err != nil {
				t.Fatalf("Exists(%s) error: %v", addr, err)
			}
			if !exists {
				t.Errorf("batch step at %s not applied", addr)
			}
		}
	})

	t.Run("failed_step_rolls_back_earlier_steps", func(t *testing.T) {
		good := serverAddr.And("jms-queue", "third")
		bad := Subsystem("nowhere").And("jms-queue", "q")
		batch := NewBatch().
			Add(good, Values{}).
			Add(bad, Values{})

		assertErrorCode(t, ops.Batch(ctx, batch), ErrCodeOperationFailed)

		exists, err := ops.Exists(ctx, good)
		if err != nil {
			t.Fatalf("Exists() error: %v", err)
		}
		if exists {
			t.Error("step before the failing one survived the rollback")
		}
	})

	t.Run("empty_batch_is_noop", func(t *testing.T) {
		if err := ops.Batch(ctx, nil); err != nil {
			t.Errorf("Batch(nil) error: %v", err)
		}
		if err := ops.Batch(ctx, NewBatch()); err != nil {
			t.Errorf("Batch(empty) error: %v", err)
		}
	})
}

func TestOperationsInvokeRaw(t *testing.T) {
	client, _ := newTestClient(t, Version3_0_0)
	ctx := context.Background()

	res, err := client.Ops().Invoke(ctx, Operation{Name: "no-such-operation", Address: Root()})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if res.IsSuccess() {
		t.Error("unknown operation succeeded")
	}
	if res.FailureDescription == "" {
		t.Error("failed result carries no failure description")
	}
}
