// Package cli provides the command-line interface for Creaper server
// configuration management.
//
// Built on the Orpheus framework: git-style subcommands, one Manager
// routing invocations to handlers, flags registered per subcommand.
// Mutating commands work against a live server (--controller) or a
// persisted configuration document (--config); read commands and the
// cache family need a live server.
//
// Architecture:
// - Manager: command tree setup and routing
// - Handlers: one handler per subcommand in handlers.go
// - Utils: invocation plumbing shared by the handlers
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package cli

import (
	"time"

	"github.com/agilira/orpheus/pkg/orpheus"

	"github.com/jmartisk/creaper"
	"github.com/jmartisk/creaper/commands/messaging"
)

// Manager routes CLI invocations to command handlers.
type Manager struct {
	app         *orpheus.App
	auditLogger *creaper.AuditLogger
}

// NewManager creates the CLI manager with the full command tree
// registered.
func NewManager() *Manager {
	app := orpheus.New("creaper").
		SetDescription("Server configuration management, online and offline").
		SetVersion("1.0.0")

	manager := &Manager{
		app: app,
	}

	manager.setupQueueCommands()
	manager.setupCacheCommands()
	manager.setupReadCommands()
	manager.setupDocCommands()
	manager.setupVersionCommand()

	return manager
}

// WithAudit records every CLI invocation through the given logger. The
// clients still audit the commands they apply on their own; this adds
// the invocation-level trail.
func (m *Manager) WithAudit(auditLogger *creaper.AuditLogger) *Manager {
	m.auditLogger = auditLogger
	return m
}

// Run executes the CLI with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// Command Setup Methods

// setupQueueCommands configures the 'queue' command group for JMS
// destinations. Both subcommands work online and offline.
func (m *Manager) setupQueueCommands() {
	queueCmd := orpheus.NewCommand("queue", "JMS queue management")

	// queue add <name> --entries a,b [--durable=true] [--selector S] [--server S] [--replace]
	addCmd := queueCmd.Subcommand("add", "Create a JMS queue", m.handleQueueAdd)
	addCmd.AddFlag("entries", "e", "", "Comma-separated JNDI bindings (required)")
	addCmd.AddFlag("durable", "", "", "Queue durability (true|false, omitted when unset)")
	addCmd.AddFlag("selector", "s", "", "JMS selector expression")
	addCmd.AddFlag("server", "", messaging.DefaultServer, "Messaging server name")
	addCmd.AddBoolFlag("replace", "r", false, "Replace an existing queue of the same name")
	addConnectionFlags(addCmd)

	// queue remove <name> [--server S]
	removeCmd := queueCmd.Subcommand("remove", "Remove a JMS queue", m.handleQueueRemove)
	removeCmd.AddFlag("server", "", messaging.DefaultServer, "Messaging server name")
	addConnectionFlags(removeCmd)

	m.app.AddCommand(queueCmd)
}

// setupCacheCommands configures the 'cache' command group for
// Infinispan caches. Cache commands are online only.
func (m *Manager) setupCacheCommands() {
	cacheCmd := orpheus.NewCommand("cache", "Infinispan cache management")

	// cache add <name> --container C --type T [attribute flags]
	addCmd := cacheCmd.Subcommand("add", "Create a cache", m.handleCacheAdd)
	addCmd.AddFlag("container", "", "", "Cache container (required)")
	addCmd.AddFlag("type", "", "", "Cache type (local|replicated|distributed|invalidation)")
	addCmd.AddFlag("jndi-name", "", "", "JNDI binding for the cache")
	addCmd.AddFlag("module", "", "", "Module resolving cache entry types")
	addCmd.AddFlag("start", "", "", "Startup mode (EAGER|LAZY)")
	addCmd.AddFlag("statistics-enabled", "", "", "Statistics collection (true|false)")
	addCmd.AddFlag("mode", "m", "", "Cluster communication mode (SYNC|ASYNC, clustered types)")
	addCmd.AddFlag("async-marshalling", "", "", "Marshal off-thread in async mode (true|false)")
	addCmd.AddFlag("queue-flush-interval", "", "", "Replication queue flush interval in ms")
	addCmd.AddFlag("queue-size", "", "", "Replication queue size forcing a flush")
	addCmd.AddFlag("remote-timeout", "", "", "Remote call timeout in ms")
	addCmd.AddFlag("capacity-factor", "", "", "Segment share weight (distributed type)")
	addCmd.AddFlag("consistent-hash-strategy", "", "", "Segment ownership spread (INTER_CACHE|INTRA_CACHE)")
	addCmd.AddFlag("l1-lifespan", "", "", "Near-cache entry lifespan in ms (distributed type)")
	addCmd.AddFlag("owners", "", "", "Cluster nodes holding each entry (distributed type)")
	addCmd.AddFlag("segments", "", "", "Hash segment count (distributed type)")
	addConnectionFlags(addCmd)

	// cache remove <name> --container C --type T
	removeCmd := cacheCmd.Subcommand("remove", "Remove a cache", m.handleCacheRemove)
	removeCmd.AddFlag("container", "", "", "Cache container (required)")
	removeCmd.AddFlag("type", "", "", "Cache type (local|replicated|distributed|invalidation)")
	addConnectionFlags(removeCmd)

	m.app.AddCommand(cacheCmd)
}

// setupReadCommands configures the 'read' command group for inspecting
// a live server's resource tree.
func (m *Manager) setupReadCommands() {
	readCmd := orpheus.NewCommand("read", "Read the management resource tree")

	// read resource /subsystem=X/...
	resourceCmd := readCmd.Subcommand("resource", "Read a resource's attributes", m.handleReadResource)
	addConnectionFlags(resourceCmd)

	// read attribute /subsystem=X/... <name>
	attributeCmd := readCmd.Subcommand("attribute", "Read a single attribute", m.handleReadAttribute)
	addConnectionFlags(attributeCmd)

	m.app.AddCommand(readCmd)
}

// setupDocCommands configures the 'doc' command group for working with
// configuration documents directly, without a server.
func (m *Manager) setupDocCommands() {
	docCmd := orpheus.NewCommand("doc", "Configuration document operations")

	// doc init <path> [--template=default]
	initCmd := docCmd.Subcommand("init", "Create a new configuration document", m.handleDocInit)
	initCmd.AddFlag("template", "t", "default", "Template (default|messaging|legacy-messaging)")

	// doc validate <path>
	docCmd.Subcommand("validate", "Validate a configuration document", m.handleDocValidate)

	// doc get <path> <key>
	docCmd.Subcommand("get", "Get a document value by dot-notation key", m.handleDocGet)

	// doc set <path> <key> <value>
	docCmd.Subcommand("set", "Set a document value by dot-notation key", m.handleDocSet)

	m.app.AddCommand(docCmd)
}

// setupVersionCommand configures the 'version' command reporting the
// connected server's management schema version.
func (m *Manager) setupVersionCommand() {
	versionCmd := orpheus.NewCommand("version", "Show the server's management version")
	versionCmd.SetHandler(m.handleVersion)
	addConnectionFlags(versionCmd)
	m.app.AddCommand(versionCmd)
}

// addConnectionFlags registers the execution-mode flags every
// server-facing command carries: a controller URL selects online mode,
// a document path selects offline mode.
func addConnectionFlags(cmd *orpheus.Command) {
	cmd.AddFlag("controller", "c", "", "Management endpoint of a live server (online mode)")
	cmd.AddFlag("config", "", "", "Configuration document path (offline mode)")
	cmd.AddFlag("username", "u", "", "Management username")
	cmd.AddFlag("password", "p", "", "Management password")
	cmd.AddFlag("timeout", "", defaultTimeout().String(), "Management operation timeout")
}

// defaultTimeout resolves the CLI-wide timeout default. Seeding the
// flag default from the environment keeps flag-over-environment
// precedence intact: the flag always carries a value, so its default
// must already reflect CREAPER_TIMEOUT.
func defaultTimeout() time.Duration {
	return creaper.GetEnvDurationWithDefault("CREAPER_TIMEOUT", 10*time.Second)
}
