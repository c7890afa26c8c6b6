// Package creaper provides command-based configuration automation for
// servers that expose their configuration as a hierarchical management
// tree, combining a typed operations API, reusable idempotent commands,
// and offline editing of persisted configuration documents in a single,
// cohesive system.
//
// # Philosophy: One Command, Two Substrates
//
// Creaper is built on the principle that a configuration change should be
// described once and executed anywhere. A command captures intent ("a
// durable JMS queue named jobs must exist"); the client decides how that
// intent becomes reality - as management operations against a live
// server, or as structural edits to a configuration file on disk.
//
// # Architecture Overview
//
// Creaper consists of five integrated subsystems:
//  1. **Typed Data Model**: Immutable Address paths and ordered Values
//     attribute sets, safe to share and compose
//  2. **Operations Layer**: The low-level management verbs (add, remove,
//     read-resource, read-attribute, write-attribute, batch)
//  3. **Command Layer**: Validated builders producing idempotent commands
//     that run online, offline or both
//  4. **Transform Engine**: Named document edits dispatched across schema
//     generations for offline editing
//  5. **Audit Trail**: Buffered, tamper-evident logging of every applied
//     command with pluggable storage backends
//
// # Addresses and Values
//
// An Address names a node in the management tree as ordered (type, name)
// segments; Values carries the attributes of an operation in insertion
// order. Both are immutable - composition always returns a new value:
//
//	address := creaper.Subsystem("messaging-activemq").
//		And("server", "default").
//		And("jms-queue", "jobs")
//
//	values := creaper.EmptyValues().
//		And("durable", true).
//		AndList("entries", "java:/jms/queue/jobs")
//
// # Online Usage
//
// The online client speaks the HTTP management protocol, discovers the
// server's management schema version at connect time, and applies
// commands transactionally:
//
//	client, err := creaper.NewOnlineClient(ctx, creaper.Config{
//		Controller: "http://127.0.0.1:9990",
//		Username:   "admin",
//		Password:   "secret",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	queue, err := messaging.NewAddQueue("jobs").
//		Entries("java:/jms/queue/jobs").
//		Durable(true).
//		ReplaceExisting().
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := client.Apply(ctx, queue); err != nil {
//		log.Fatal(err)
//	}
//
// Low-level operations are available on client.Ops() when no command
// fits: Exists, ReadAttribute, WriteAttribute, Batch and friends return
// typed results with structured failure descriptions.
//
// # Offline Usage and Schema Generations
//
// The offline client edits a persisted configuration document (YAML or
// JSON) with no server involved. Because the same logical subsystem can
// live under different names across schema generations, offline commands
// are expressed as transforms: one named edit plus a subtree selector
// per known generation. The client applies the edit under every selector
// whose subtree the document actually contains; absent subtrees are
// documented no-ops, so one command works against any supported document
// vintage:
//
//	offline, err := creaper.NewOfflineClient(creaper.Config{
//		DocumentPath: "standalone.yml",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer offline.Close()
//
//	if err := offline.Apply(ctx, queue); err != nil {
//		log.Fatal(err)
//	}
//
// The document is written back atomically (temp file + rename) only
// after every command in the Apply call succeeded.
//
// # Batches
//
// A Batch groups operations into one atomic composite: the server
// applies all steps or rolls all of them back, and a failure reports
// which step caused it:
//
//	batch := creaper.NewBatch().
//		Add(serverAddr.And("jms-queue", "q1"), q1Values).
//		Add(serverAddr.And("jms-queue", "q2"), q2Values)
//	err := client.Ops().Batch(ctx, batch)
//
// # Idempotency as Policy
//
// Add-style commands fail on an existing resource unless ReplaceExisting
// was requested, in which case the command removes the old resource
// first. Remove-style commands fail on a missing resource; RemoveIfExists
// treats that as a no-op and reports whether anything was removed. Every
// such decision is in the command's construction, never guessed at
// execution time.
//
// # Audit Trail
//
// Every command application and every offline transform outcome is
// recorded with ULID event identifiers and SHA-256 tamper checksums.
// Storage is selected from the output path: JSONL files, SQLite
// databases (.db/.sqlite) or PostgreSQL (postgres:// DSN):
//
//	auditConfig := creaper.AuditConfig{
//		Enabled:       true,
//		OutputFile:    "/var/log/creaper/audit.db",
//		MinLevel:      creaper.AuditInfo,
//		BufferSize:    256,
//		FlushInterval: 2 * time.Second,
//	}
//
// # Configuration Sources
//
// Client configuration loads from code, CREAPER_* environment variables
// (LoadConfigFromEnv) or command-line flags (ClientFlags), with
// explicit > environment > defaults precedence via LoadConfigMultiSource.
//
// # Error Handling
//
// Every failure carries a structured code (CREAPER_INVALID_COMMAND,
// CREAPER_OPERATION_FAILED, CREAPER_TRANSPORT_FAILED, ...) plus context
// fields naming the operation, address and server failure description,
// so callers can branch on cause rather than message text.
//
// # Thread Safety
//
// Addresses, Values and built commands are immutable and safe to share.
// Online clients are safe for concurrent Apply calls; offline clients
// and documents are single-owner by design, matching their
// read-transform-write lifecycle.
//
// # Getting Started
//
// The commands/messaging package covers JMS queue management, the
// commands/infinispan package covers cache container management, and
// cmd/creaper is the command-line front end built on the same public
// API.
//
// Repository: https://github.com/jmartisk/creaper
package creaper
