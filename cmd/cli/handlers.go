// Command handlers for the Creaper CLI
//
// One handler per subcommand. Handlers build library commands from
// flags, resolve the execution mode, and apply through the same client
// APIs embedding callers use.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"

	"github.com/jmartisk/creaper"
	"github.com/jmartisk/creaper/commands/infinispan"
	"github.com/jmartisk/creaper/commands/messaging"
	cliutil "github.com/jmartisk/creaper/internal/cli"
)

// handleQueueAdd creates a JMS queue online or offline.
func (m *Manager) handleQueueAdd(ctx *orpheus.Context) error {
	name := ctx.GetArg(0)
	if name == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "queue name argument is required")
	}

	builder := messaging.NewAddQueue(name).
		Entries(cliutil.SplitEntries(ctx.GetFlagString("entries"))...)
	durable, err := cliutil.ParseOptionalBool(ctx.GetFlagString("durable"))
	if err != nil {
		return err
	}
	if durable != nil {
		builder.Durable(*durable)
	}
	if selector := ctx.GetFlagString("selector"); selector != "" {
		builder.Selector(selector)
	}
	if server := ctx.GetFlagString("server"); server != "" {
		builder.Server(server)
	}
	if ctx.GetFlagBool("replace") {
		builder.ReplaceExisting()
	}

	cmd, err := builder.Build()
	if err != nil {
		return err
	}

	cfg, mode, err := m.resolveInvocation(ctx)
	if err != nil {
		return err
	}
	m.auditInvocation(mode, "queue add "+name)

	if mode == creaper.ModeOffline {
		return creaper.ApplyToDocumentWithConfig(context.Background(), cfg, cmd)
	}
	return creaper.ApplyToServerWithConfig(context.Background(), cfg, cmd)
}

// handleQueueRemove removes a JMS queue online or offline.
func (m *Manager) handleQueueRemove(ctx *orpheus.Context) error {
	name := ctx.GetArg(0)
	if name == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "queue name argument is required")
	}

	builder := messaging.NewRemoveQueue(name)
	if server := ctx.GetFlagString("server"); server != "" {
		builder.Server(server)
	}
	cmd, err := builder.Build()
	if err != nil {
		return err
	}

	cfg, mode, err := m.resolveInvocation(ctx)
	if err != nil {
		return err
	}
	m.auditInvocation(mode, "queue remove "+name)

	if mode == creaper.ModeOffline {
		return creaper.ApplyToDocumentWithConfig(context.Background(), cfg, cmd)
	}
	return creaper.ApplyToServerWithConfig(context.Background(), cfg, cmd)
}

// handleCacheAdd creates an Infinispan cache on a live server.
func (m *Manager) handleCacheAdd(ctx *orpheus.Context) error {
	cmd, err := buildCacheCommand(ctx)
	if err != nil {
		return err
	}

	cfg, mode, err := m.resolveInvocation(ctx)
	if err != nil {
		return err
	}
	if mode == creaper.ModeOffline {
		return errors.New(creaper.ErrCodeUnsupportedMode, "cache commands require a live server").
			WithContext("config", cfg.DocumentPath)
	}
	m.auditInvocation(mode, "cache add "+cmd.Name())

	return creaper.ApplyToServerWithConfig(context.Background(), cfg, cmd)
}

// handleCacheRemove removes an Infinispan cache from a live server.
func (m *Manager) handleCacheRemove(ctx *orpheus.Context) error {
	name := ctx.GetArg(0)
	if name == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "cache name argument is required")
	}
	cacheType, err := parseCacheType(ctx.GetFlagString("type"))
	if err != nil {
		return err
	}
	cmd, err := infinispan.NewRemoveCache(ctx.GetFlagString("container"), cacheType, name)
	if err != nil {
		return err
	}

	cfg, mode, err := m.resolveInvocation(ctx)
	if err != nil {
		return err
	}
	if mode == creaper.ModeOffline {
		return errors.New(creaper.ErrCodeUnsupportedMode, "cache commands require a live server").
			WithContext("config", cfg.DocumentPath)
	}
	m.auditInvocation(mode, "cache remove "+name)

	return creaper.ApplyToServerWithConfig(context.Background(), cfg, cmd)
}

// handleReadResource prints a resource's attributes.
func (m *Manager) handleReadResource(ctx *orpheus.Context) error {
	addressArg := ctx.GetArg(0)
	if addressArg == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "address argument is required (like /subsystem=infinispan)")
	}
	address, err := creaper.ParseAddress(addressArg)
	if err != nil {
		return err
	}

	cfg, mode, err := m.resolveInvocation(ctx)
	if err != nil {
		return err
	}
	if mode == creaper.ModeOffline {
		return errors.New(creaper.ErrCodeUnsupportedMode, "reading the resource tree requires a live server").
			WithContext("config", cfg.DocumentPath)
	}
	m.auditInvocation(mode, "read resource "+address.String())

	client, err := creaper.NewOnlineClient(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	res, err := client.Ops().ReadResource(context.Background(), address)
	if err != nil {
		return err
	}
	if !res.IsSuccess() {
		return errors.New(creaper.ErrCodeOperationFailed, "read-resource failed").
			WithContext("address", address.String()).
			WithContext("cause", res.FailureDescription)
	}

	attrs, err := res.MapValue()
	if err != nil {
		return err
	}
	fmt.Printf("%s:\n", address)
	for _, line := range cliutil.FormatResource(attrs) {
		fmt.Printf("  %s\n", line)
	}
	return nil
}

// handleReadAttribute prints a single attribute of a resource.
func (m *Manager) handleReadAttribute(ctx *orpheus.Context) error {
	addressArg := ctx.GetArg(0)
	attrName := ctx.GetArg(1)
	if addressArg == "" || attrName == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "address and attribute name arguments are required")
	}
	address, err := creaper.ParseAddress(addressArg)
	if err != nil {
		return err
	}

	cfg, mode, err := m.resolveInvocation(ctx)
	if err != nil {
		return err
	}
	if mode == creaper.ModeOffline {
		return errors.New(creaper.ErrCodeUnsupportedMode, "reading the resource tree requires a live server").
			WithContext("config", cfg.DocumentPath)
	}
	m.auditInvocation(mode, "read attribute "+attrName)

	client, err := creaper.NewOnlineClient(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	res, err := client.Ops().ReadAttribute(context.Background(), address, attrName)
	if err != nil {
		return err
	}
	if !res.IsSuccess() {
		return errors.New(creaper.ErrCodeOperationFailed, "read-attribute failed").
			WithContext("address", address.String()).
			WithContext("attribute", attrName).
			WithContext("cause", res.FailureDescription)
	}

	fmt.Println(cliutil.FormatValue(res.Value))
	return nil
}

// handleDocInit creates a new configuration document from a template.
func (m *Manager) handleDocInit(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	if path == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "document path argument is required")
	}
	if _, err := os.Stat(path); err == nil {
		return errors.New(creaper.ErrCodeInvalidDocument, "document already exists").
			WithContext("path", path)
	}
	if err := cliutil.CheckFileWriteable(path); err != nil {
		return errors.Wrap(err, creaper.ErrCodeInvalidDocument, "document path is not writable").
			WithContext("path", path)
	}

	doc, err := creaper.NewDocument(path)
	if err != nil {
		return err
	}
	for key, value := range m.docTemplate(ctx.GetFlagString("template")) {
		if err := doc.Set([]string{key}, value); err != nil {
			return err
		}
	}
	if err := doc.Save(); err != nil {
		return err
	}

	m.auditInvocation(creaper.ModeOffline, "doc init "+path)
	fmt.Printf("Created %s document: %s\n", doc.Format(), path)
	return nil
}

// handleDocValidate parses a configuration document and reports the
// outcome.
func (m *Manager) handleDocValidate(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	if path == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "document path argument is required")
	}

	doc, err := creaper.LoadDocument(path)
	if err != nil {
		fmt.Printf("Invalid document: %v\n", err)
		return err
	}

	m.auditInvocation(creaper.ModeOffline, "doc validate "+path)
	fmt.Printf("Valid %s document: %s\n", doc.Format(), path)
	return nil
}

// handleDocGet prints one document value addressed by dot notation.
func (m *Manager) handleDocGet(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	key := ctx.GetArg(1)
	if path == "" || key == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "document path and key arguments are required")
	}

	doc, err := creaper.LoadDocument(path)
	if err != nil {
		return err
	}

	value, ok := doc.Get(cliutil.SplitPath(key)...)
	if !ok {
		return errors.New(creaper.ErrCodeInvalidDocument, "key not found").
			WithContext("path", path).
			WithContext("key", key)
	}

	m.auditInvocation(creaper.ModeOffline, "doc get "+key)
	fmt.Println(cliutil.FormatValue(value))
	return nil
}

// handleDocSet writes one typed document value addressed by dot
// notation, creating the document when it does not exist yet.
func (m *Manager) handleDocSet(ctx *orpheus.Context) error {
	path := ctx.GetArg(0)
	key := ctx.GetArg(1)
	rawValue := ctx.GetArg(2)
	if path == "" || key == "" || rawValue == "" {
		return errors.New(creaper.ErrCodeInvalidCommand, "document path, key, and value arguments are required")
	}
	if err := cliutil.CheckFileWriteable(path); err != nil {
		return errors.Wrap(err, creaper.ErrCodeInvalidDocument, "document path is not writable").
			WithContext("path", path)
	}

	doc, err := creaper.LoadDocument(path)
	if err != nil {
		doc, err = creaper.NewDocument(path)
		if err != nil {
			return err
		}
	}

	value := cliutil.ParseValue(rawValue)
	if err := doc.Set(cliutil.SplitPath(key), value); err != nil {
		return err
	}
	if err := doc.Save(); err != nil {
		return err
	}

	m.auditInvocation(creaper.ModeOffline, "doc set "+key)
	fmt.Printf("Set %s = %v in %s\n", key, value, path)
	return nil
}

// handleVersion prints the connected server's management version.
func (m *Manager) handleVersion(ctx *orpheus.Context) error {
	cfg, mode, err := m.resolveInvocation(ctx)
	if err != nil {
		return err
	}
	if mode == creaper.ModeOffline {
		return errors.New(creaper.ErrCodeUnsupportedMode, "version discovery requires a live server").
			WithContext("config", cfg.DocumentPath)
	}
	m.auditInvocation(mode, "version")

	client, err := creaper.NewOnlineClient(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	fmt.Printf("Server management version: %s\n", client.Version())
	return nil
}
