// creaper: command-based configuration automation for management-tree servers
//
// Philosophy:
// - One construction API, two execution substrates (live server, offline document)
// - Immutable data model (Address, Values, commands) - thread-safe by construction
// - Coded errors end to end (AGILira ecosystem: go-errors)
// - Idempotency is explicit policy, never an accident
//
// Example Usage:
//   client, err := creaper.NewOnlineClient(ctx, creaper.Config{
//       Controller: "http://127.0.0.1:9990",
//   })
//   if err != nil {
//       log.Fatal(err)
//   }
//   defer client.Close()
//
//   queue, err := messaging.NewAddQueue("jobs").
//       Entries("java:/jms/queue/jobs").
//       Durable(true).
//       ReplaceExisting().
//       Build()
//   if err != nil {
//       log.Fatal(err)
//   }
//   if err := client.Apply(ctx, queue); err != nil {
//       log.Fatal(err)
//   }
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"context"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for Creaper operations
const (
	ErrCodeInvalidConfig   = "CREAPER_INVALID_CONFIG"
	ErrCodeInvalidCommand  = "CREAPER_INVALID_COMMAND"
	ErrCodeInvalidAddress  = "CREAPER_INVALID_ADDRESS"
	ErrCodeUnsupportedMode = "CREAPER_UNSUPPORTED_MODE"
	ErrCodeOperationFailed = "CREAPER_OPERATION_FAILED"
	ErrCodeTransportFailed = "CREAPER_TRANSPORT_FAILED"
	ErrCodeTransformFailed = "CREAPER_TRANSFORM_FAILED"
	ErrCodeInvalidDocument = "CREAPER_INVALID_DOCUMENT"
	ErrCodeTypeMismatch    = "CREAPER_TYPE_MISMATCH"
	ErrCodeAuditFailed     = "CREAPER_AUDIT_FAILED"
)

// Management version attributes exposed on the resource tree root.
const (
	attrManagementMajorVersion = "management-major-version"
	attrManagementMinorVersion = "management-minor-version"
	attrManagementMicroVersion = "management-micro-version"
)

// ManagementTransport is the live-server protocol connection the client
// drives. Execute submits a single operation, ExecuteBatch submits steps
// that the server applies atomically (all or none). Both return an error
// only for transport-level trouble; a server-side rejection comes back as
// a failed Result so callers can read the structured cause.
type ManagementTransport interface {
	Execute(ctx context.Context, op Operation) (Result, error)
	ExecuteBatch(ctx context.Context, steps []Operation) (Result, error)
	Close() error
}

// OnlineCommand is a built, immutable command that can express itself as
// management operations against a live server.
type OnlineCommand interface {
	ApplyOnline(ctx context.Context, client *OnlineClient) error
}

// OfflineCommand is a built, immutable command that can express itself as
// a structural edit of a persisted configuration document. Commands with
// no offline equivalent simply do not implement this interface; commands
// whose offline support depends on a parameter combination implement it
// and fail with ErrCodeUnsupportedMode before touching the document.
type OfflineCommand interface {
	ApplyOffline(ctx context.Context, client *OfflineClient) error
}

// OnlineClient executes commands against a live server through a
// management transport. It discovers the server's management schema
// version at construction so commands can make structural decisions
// (subsystem renames across generations) without extra round-trips.
//
// The client holds exactly one transport and performs no pooling or
// internal concurrency; callers may share it across goroutines for
// independent addresses but must serialize dependent commands themselves.
type OnlineClient struct {
	transport ManagementTransport
	ops       *Operations
	version   ServerVersion
	audit     *AuditLogger
	ownsAudit bool
}

// NewOnlineClient connects a client using the given configuration. When
// cfg.Transport is nil an HTTP management transport is built from
// cfg.Controller. Construction performs one read on the tree root to
// discover the management version and fails fast if the server is
// unreachable.
func NewOnlineClient(ctx context.Context, cfg Config) (*OnlineClient, error) {
	config := cfg.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport := config.Transport
	if transport == nil {
		t, err := newHTTPTransport(config)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	client := &OnlineClient{transport: transport}
	client.ops = NewOperations(client)

	auditLogger, err := NewAuditLogger(config.Audit)
	if err != nil {
		_ = transport.Close()
		return nil, errors.Wrap(err, ErrCodeAuditFailed, "failed to initialize audit logger")
	}
	client.audit = auditLogger
	client.ownsAudit = true

	version, err := client.discoverVersion(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	client.version = version

	return client, nil
}

// Version returns the management schema version discovered at connect.
func (c *OnlineClient) Version() ServerVersion {
	return c.version
}

// Ops returns the operation facade bound to this client.
func (c *OnlineClient) Ops() *Operations {
	return c.ops
}

// Transport exposes the underlying transport for advanced callers; most
// code goes through Ops or Apply.
func (c *OnlineClient) Transport() ManagementTransport {
	return c.transport
}

// Apply executes the given commands in order against the live server,
// stopping at the first failure. Each application is audited with its
// outcome. Commands are independent units: a failure leaves earlier
// commands applied, so callers needing all-or-nothing semantics across
// resources build a single command that submits one batch.
func (c *OnlineClient) Apply(ctx context.Context, commands ...OnlineCommand) error {
	for _, cmd := range commands {
		name := commandName(cmd)
		err := cmd.ApplyOnline(ctx, c)
		c.audit.LogCommand(ModeOnline, name, err)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases the transport and flushes the audit trail.
func (c *OnlineClient) Close() error {
	var firstErr error
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			firstErr = err
		}
	}
	if c.ownsAudit && c.audit != nil {
		if err := c.audit.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// discoverVersion reads the management version attributes off the tree
// root. Servers that do not expose them yield the zero version rather
// than an error; commands treat an unknown version as current-generation.
func (c *OnlineClient) discoverVersion(ctx context.Context) (ServerVersion, error) {
	res, err := c.ops.ReadResource(ctx, Root())
	if err != nil {
		return ServerVersion{}, err
	}
	attrs, err := res.MapValue()
	if err != nil {
		return ServerVersion{}, nil
	}
	return ServerVersion{
		Major: intAttr(attrs, attrManagementMajorVersion),
		Minor: intAttr(attrs, attrManagementMinorVersion),
		Micro: intAttr(attrs, attrManagementMicroVersion),
	}, nil
}

func intAttr(attrs map[string]any, name string) int {
	switch n := attrs[name].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// commandName derives the audit identity of a command from its Go type.
func commandName(cmd any) string {
	return fmt.Sprintf("%T", cmd)
}
