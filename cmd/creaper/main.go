// Creaper: server configuration management, online and offline
//
// Usage:
//
//	creaper queue add jobs --entries java:/jms/jobs --controller http://localhost:9990
//	creaper queue add jobs --entries java:/jms/jobs --config standalone.yml
//	creaper cache add web --container default --type local --controller http://localhost:9990
//	creaper read resource /subsystem=infinispan --controller http://localhost:9990
//	creaper doc init standalone.yml --template messaging
//	creaper version --controller http://localhost:9990
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"os"

	"github.com/jmartisk/creaper"
	"github.com/jmartisk/creaper/cmd/cli"
)

func main() {
	os.Exit(run())
}

// run wraps the CLI so deferred cleanup survives the exit path.
func run() int {
	manager := cli.NewManager()

	// Invocation-level auditing is opt-in through the environment; the
	// clients audit the commands they apply regardless.
	if output := creaper.GetEnvWithDefault("CREAPER_AUDIT_OUTPUT_FILE", ""); output != "" {
		auditConfig := creaper.DefaultAuditConfig()
		auditConfig.OutputFile = output
		if logger, err := creaper.NewAuditLogger(auditConfig); err == nil {
			manager.WithAudit(logger)
			defer func() { _ = logger.Close() }()
		}
	}

	if err := manager.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
