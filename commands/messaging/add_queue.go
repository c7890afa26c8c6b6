// add_queue.go: Command ensuring a JMS queue exists
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package messaging

import (
	"context"
	"strings"

	"github.com/agilira/go-errors"

	"github.com/jmartisk/creaper"
)

// AddQueue creates a JMS queue with its JNDI bindings. Built instances
// are immutable and reusable across clients and modes.
//
// By default the command fails when the queue already exists; with
// ReplaceExisting it removes the old queue first, so the result is
// exactly the requested configuration either way.
type AddQueue struct {
	name            string
	entries         []string
	durable         *bool
	selector        *string
	server          string
	replaceExisting bool
}

// AddQueueBuilder assembles an AddQueue command. Zero or one call per
// optional attribute; Build validates and freezes the command.
type AddQueueBuilder struct {
	cmd AddQueue
}

// NewAddQueue starts building an add-queue command for the given queue
// name.
func NewAddQueue(name string) *AddQueueBuilder {
	b := &AddQueueBuilder{}
	b.cmd.name = name
	b.cmd.server = DefaultServer
	return b
}

// Entries adds JNDI bindings for the queue. At least one is required.
func (b *AddQueueBuilder) Entries(entries ...string) *AddQueueBuilder {
	b.cmd.entries = append(b.cmd.entries, entries...)
	return b
}

// Durable sets whether messages survive broker restart. Unset means the
// server default.
func (b *AddQueueBuilder) Durable(durable bool) *AddQueueBuilder {
	b.cmd.durable = &durable
	return b
}

// Selector restricts the queue to messages matching a JMS selector
// expression. Unset means no filtering.
func (b *AddQueueBuilder) Selector(selector string) *AddQueueBuilder {
	b.cmd.selector = &selector
	return b
}

// Server targets a non-default messaging server. Online only: offline
// documents carry a single default server.
func (b *AddQueueBuilder) Server(server string) *AddQueueBuilder {
	b.cmd.server = server
	return b
}

// ReplaceExisting makes the command remove an existing queue of the same
// name before adding, instead of failing on it.
func (b *AddQueueBuilder) ReplaceExisting() *AddQueueBuilder {
	b.cmd.replaceExisting = true
	return b
}

// Build validates the assembled command and returns the immutable
// result. Validation failures never reach a server or a document.
func (b *AddQueueBuilder) Build() (*AddQueue, error) {
	if strings.TrimSpace(b.cmd.name) == "" {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "queue name must not be empty")
	}
	if len(b.cmd.entries) == 0 {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "queue requires at least one JNDI binding").
			WithContext("queue", b.cmd.name)
	}
	for _, entry := range b.cmd.entries {
		if strings.TrimSpace(entry) == "" {
			return nil, errors.New(creaper.ErrCodeInvalidCommand, "JNDI binding must not be blank").
				WithContext("queue", b.cmd.name)
		}
	}
	if b.cmd.server == "" {
		b.cmd.server = DefaultServer
	}

	cmd := b.cmd
	cmd.entries = append([]string(nil), b.cmd.entries...)
	return &cmd, nil
}

// Name returns the queue name the command targets.
func (c *AddQueue) Name() string {
	return c.name
}

// ApplyOnline ensures the queue on a live server. The subsystem address
// is resolved from the server's management version.
func (c *AddQueue) ApplyOnline(ctx context.Context, client *creaper.OnlineClient) error {
	ops := client.Ops()
	address := queueAddress(client.Version(), c.server, c.name)

	if c.replaceExisting {
		if _, err := ops.RemoveIfExists(ctx, address); err != nil {
			return err
		}
	}

	values := creaper.EmptyValues().
		AndList("entries", c.entries...).
		AndOptional("durable", c.durable).
		AndOptional("selector", c.selector)

	return ops.Add(ctx, address, values)
}

// ApplyOffline ensures the queue in a configuration document via the
// add-jms-queue transform. Only the default server exists in documents;
// targeting any other server is unsupported offline.
func (c *AddQueue) ApplyOffline(ctx context.Context, client *creaper.OfflineClient) error {
	if c.server != DefaultServer {
		return errors.New(creaper.ErrCodeUnsupportedMode, "offline documents carry only the default messaging server").
			WithContext("queue", c.name).
			WithContext("server", c.server)
	}

	t := creaper.NewTransform("add-jms-queue").
		Subtree(creaper.SubsystemSubtree(GenerationHornetQ, subsystemHornetQ)).
		Subtree(creaper.SubsystemSubtree(GenerationActiveMQ, subsystemActiveMQ)).
		Parameter("name", c.name).
		Parameter("server", c.server).
		Parameter("entries", append([]string(nil), c.entries...)).
		Parameter("entriesString", strings.Join(c.entries, " ")).
		Parameter("replaceExisting", c.replaceExisting)
	if c.durable != nil {
		t.Parameter("durable", *c.durable)
	}
	if c.selector != nil {
		t.Parameter("selector", *c.selector)
	}

	return client.ApplyTransform(ctx, t)
}

func init() {
	mustRegister("add-jms-queue", GenerationHornetQ, addQueueHornetQ)
	mustRegister("add-jms-queue", GenerationActiveMQ, addQueueActiveMQ)
}

// mustRegister wires an edit into the dispatch registry at package load.
// Registration only fails on programming errors (duplicates, empty
// names), so failure is fatal.
func mustRegister(name string, generation creaper.Generation, fn creaper.EditFunc) {
	if err := creaper.RegisterEdit(name, generation, fn); err != nil {
		panic(err)
	}
}

// addQueueHornetQ writes a queue into the legacy document shape. Entries
// are rendered as one space-delimited string, the way that generation
// persists list attributes.
func addQueueHornetQ(doc *creaper.ConfigDocument, subtreePath []string, params map[string]any) error {
	p, err := queueEditParams(params)
	if err != nil {
		return err
	}

	queuePath := hornetqQueuePath(subtreePath, p.server, p.name)
	if err := checkQueueSlot(doc, queuePath, p); err != nil {
		return err
	}

	entry := map[string]any{"entries": p.entriesString}
	if p.durable != nil {
		entry["durable"] = *p.durable
	}
	if p.selector != nil {
		entry["selector"] = *p.selector
	}
	return doc.Set(queuePath, entry)
}

// addQueueActiveMQ writes a queue into the current document shape with
// a native entries list.
func addQueueActiveMQ(doc *creaper.ConfigDocument, subtreePath []string, params map[string]any) error {
	p, err := queueEditParams(params)
	if err != nil {
		return err
	}

	queuePath := activemqQueuePath(subtreePath, p.server, p.name)
	if err := checkQueueSlot(doc, queuePath, p); err != nil {
		return err
	}

	entry := map[string]any{"entries": append([]string(nil), p.entries...)}
	if p.durable != nil {
		entry["durable"] = *p.durable
	}
	if p.selector != nil {
		entry["selector"] = *p.selector
	}
	return doc.Set(queuePath, entry)
}

// checkQueueSlot enforces the duplicate policy for an add edit: an
// occupied slot fails unless replacement was requested, in which case
// the old queue is dropped wholesale so stale attributes cannot leak
// into the new one.
func checkQueueSlot(doc *creaper.ConfigDocument, queuePath []string, p queueParams) error {
	if !doc.Has(queuePath...) {
		return nil
	}
	if !p.replaceExisting {
		return errors.New(creaper.ErrCodeOperationFailed, "jms-queue already exists").
			WithContext("queue", p.name)
	}
	doc.Delete(queuePath...)
	return nil
}

// queueParams is the decoded parameter set shared by the queue edits.
type queueParams struct {
	name            string
	server          string
	entries         []string
	entriesString   string
	replaceExisting bool
	durable         *bool
	selector        *string
}

// queueEditParams decodes and validates transform parameters. Transforms
// are usually produced by commands in this package, but the edits are
// reachable through the public registry, so malformed parameter sets get
// errors rather than panics.
func queueEditParams(params map[string]any) (queueParams, error) {
	var p queueParams

	name, ok := params["name"].(string)
	if !ok || name == "" {
		return p, errors.New(creaper.ErrCodeInvalidCommand, "edit requires a queue name parameter")
	}
	p.name = name

	p.server, _ = params["server"].(string)
	if p.server == "" {
		p.server = DefaultServer
	}

	entries, ok := params["entries"].([]string)
	if !ok || len(entries) == 0 {
		return p, errors.New(creaper.ErrCodeInvalidCommand, "edit requires a non-empty entries parameter").
			WithContext("queue", p.name)
	}
	p.entries = entries

	p.entriesString, ok = params["entriesString"].(string)
	if !ok {
		p.entriesString = strings.Join(entries, " ")
	}

	p.replaceExisting, _ = params["replaceExisting"].(bool)

	if v, present := params["durable"]; present {
		durable, ok := v.(bool)
		if !ok {
			return p, errors.New(creaper.ErrCodeInvalidCommand, "durable parameter must be a bool").
				WithContext("queue", p.name)
		}
		p.durable = &durable
	}
	if v, present := params["selector"]; present {
		selector, ok := v.(string)
		if !ok {
			return p, errors.New(creaper.ErrCodeInvalidCommand, "selector parameter must be a string").
				WithContext("queue", p.name)
		}
		p.selector = &selector
	}

	return p, nil
}
