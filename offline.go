// offline.go: Offline client - command application without a server
//
// The offline client gives commands the second execution substrate: a
// persisted configuration document instead of a live management endpoint.
// One Apply call is one read-transform-write cycle; the document is
// written back atomically only after every command in the call succeeded,
// so a failing command leaves the file exactly as it was.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"context"

	"github.com/agilira/go-errors"
)

// Command application modes recorded in the audit trail.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// OfflineClient applies commands to a persisted configuration document.
// It is single-owner like the rest of the offline path: one goroutine
// loads, applies and saves.
type OfflineClient struct {
	doc       *ConfigDocument
	audit     *AuditLogger
	ownsAudit bool
}

// NewOfflineClient loads the configuration document named by
// cfg.DocumentPath. A malformed or unreadable document fails here, not
// at first apply.
func NewOfflineClient(cfg Config) (*OfflineClient, error) {
	config := cfg.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.DocumentPath == "" {
		return nil, ErrMissingDocument
	}

	doc, err := LoadDocument(config.DocumentPath)
	if err != nil {
		return nil, err
	}

	auditLogger, err := NewAuditLogger(config.Audit)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeAuditFailed, "failed to initialize audit logger")
	}

	return &OfflineClient{doc: doc, audit: auditLogger, ownsAudit: true}, nil
}

// Document exposes the loaded document. Edits normally flow through
// transforms; direct access serves inspection and template tooling.
func (c *OfflineClient) Document() *ConfigDocument {
	return c.doc
}

// Apply runs the given commands against the in-memory document and, when
// all of them succeeded, writes the document back atomically. On the
// first failure the file is left untouched.
func (c *OfflineClient) Apply(ctx context.Context, commands ...OfflineCommand) error {
	for _, cmd := range commands {
		name := commandName(cmd)
		err := cmd.ApplyOffline(ctx, c)
		c.audit.LogCommand(ModeOffline, name, err)
		if err != nil {
			return err
		}
	}
	return c.doc.Save()
}

// ApplyTransform dispatches one named edit across the transform's schema
// generations. Every declared generation must have a registered edit -
// a missing implementation is a wiring error surfaced even when the
// document does not contain that generation's subtree. Subtrees absent
// from the document are documented no-ops.
func (c *OfflineClient) ApplyTransform(ctx context.Context, t *ConfigTransform) error {
	if err := t.validate(); err != nil {
		return err
	}

	// Resolve all edit implementations before touching the document, so a
	// partially registered transform can never half-apply.
	subtrees := t.Subtrees()
	edits := make([]EditFunc, len(subtrees))
	for i, sub := range subtrees {
		fn, ok := lookupEdit(t.Name(), sub.Generation)
		if !ok {
			return errors.New(ErrCodeTransformFailed, "no edit registered for schema generation").
				WithContext("edit", t.Name()).
				WithContext("generation", string(sub.Generation))
		}
		edits[i] = fn
	}

	params := t.Parameters()
	for i, sub := range subtrees {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, ErrCodeTransformFailed, "transform canceled").
				WithContext("edit", t.Name())
		}
		if !c.doc.Has(sub.Path...) {
			c.audit.LogTransform(t.Name(), sub.Generation, c.doc.Path(), false, nil)
			continue
		}
		err := edits[i](c.doc, sub.Path, params)
		c.audit.LogTransform(t.Name(), sub.Generation, c.doc.Path(), err == nil, err)
		if err != nil {
			return errors.Wrap(err, ErrCodeTransformFailed, "edit failed").
				WithContext("edit", t.Name()).
				WithContext("generation", string(sub.Generation)).
				WithContext("document", c.doc.Path())
		}
	}
	return nil
}

// Close flushes the audit trail. The document is persisted by Apply, not
// here; closing without a successful Apply changes nothing on disk.
func (c *OfflineClient) Close() error {
	if c.ownsAudit && c.audit != nil {
		return c.audit.Close()
	}
	return nil
}
