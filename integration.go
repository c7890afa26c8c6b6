// integration.go: FlashFlags Binding for Embedding Programs
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// This file binds client configuration to command-line flags so that
// programs embedding Creaper - provisioning tools, migration scripts,
// test harnesses - expose the same knobs with the same names:
// flags, CREAPER_* environment variables and defaults, in that order.

package creaper

import (
	"fmt"
	"os"
	"strings"
	"time"

	flashflags "github.com/agilira/flash-flags"
)

// ClientFlags exposes client configuration as a pre-registered flag set.
// Construct with NewClientFlags, Parse, then ToConfig.
type ClientFlags struct {
	flags   *flashflags.FlagSet
	appName string
}

// NewClientFlags creates a flag set carrying the standard client knobs:
//
//	--controller       management endpoint URL (online mode)
//	--username         basic auth username
//	--password         basic auth password
//	--timeout          request round-trip bound
//	--connect-retries  connection failure retry count
//	--retry-interval   base delay between connection retries
//	--config           configuration document path (offline mode)
//	--audit-enabled    record applied commands in the audit trail
//	--audit-output     audit destination (.jsonl/.db/.sqlite path or postgres DSN)
//	--audit-level      minimum audit level (info/warn/critical/security)
//
// Each flag also binds to its CREAPER_* environment variable.
func NewClientFlags(appName string) *ClientFlags {
	fs := flashflags.New(appName)
	fs.String("controller", "", "management endpoint URL, e.g. http://127.0.0.1:9990")
	fs.String("username", "", "management user for basic authentication")
	fs.String("password", "", "management password for basic authentication")
	fs.Duration("timeout", 10*time.Second, "management request timeout")
	fs.Int("connect-retries", 3, "connection failure retries before giving up")
	fs.Duration("retry-interval", 500*time.Millisecond, "base delay between connection retries")
	fs.String("config", "", "configuration document path for offline mode")
	fs.Bool("audit-enabled", true, "record applied commands in the audit trail")
	fs.String("audit-output", "", "audit trail destination path or DSN")
	fs.String("audit-level", "info", "minimum audit level: info, warn, critical, security")

	return &ClientFlags{flags: fs, appName: appName}
}

// SetDescription sets the application description for help text
func (cf *ClientFlags) SetDescription(description string) *ClientFlags {
	cf.flags.SetDescription(description)
	return cf
}

// SetVersion sets the application version for help text
func (cf *ClientFlags) SetVersion(version string) *ClientFlags {
	cf.flags.SetVersion(version)
	return cf
}

// FlagSet returns the underlying flag set so embedding programs can
// register their own flags alongside the client knobs.
func (cf *ClientFlags) FlagSet() *flashflags.FlagSet {
	return cf.flags
}

// Parse parses command-line arguments and binds environment variables
func (cf *ClientFlags) Parse(args []string) error {
	// Check for help flags first to prevent double output
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return fmt.Errorf("help requested")
		}
	}

	if err := cf.flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse command-line flags: %w", err)
	}

	// Flags not set on the command line fall back to CREAPER_* variables
	cf.flags.SetEnvPrefix("CREAPER")

	return nil
}

// ParseArgs is a convenience method that parses os.Args[1:]
func (cf *ClientFlags) ParseArgs() error {
	return cf.Parse(os.Args[1:])
}

// ParseArgsOrExit parses command-line arguments and exits gracefully on help/error
func (cf *ClientFlags) ParseArgsOrExit() {
	if err := cf.ParseArgs(); err != nil {
		if err.Error() == "help requested" {
			cf.PrintUsage()
			os.Exit(0)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			cf.PrintUsage()
			os.Exit(1)
		}
	}
}

// ToConfig materializes the parsed flags into a validated Config.
func (cf *ClientFlags) ToConfig() (*Config, error) {
	config := &Config{
		Controller:     cf.flags.GetString("controller"),
		Username:       cf.flags.GetString("username"),
		Password:       cf.flags.GetString("password"),
		Timeout:        cf.flags.GetDuration("timeout"),
		ConnectRetries: cf.flags.GetInt("connect-retries"),
		RetryInterval:  cf.flags.GetDuration("retry-interval"),
		DocumentPath:   cf.flags.GetString("config"),
	}

	audit := DefaultAuditConfig()
	audit.Enabled = cf.flags.GetBool("audit-enabled")
	if out := cf.flags.GetString("audit-output"); out != "" {
		audit.OutputFile = out
	}
	if levelStr := cf.flags.GetString("audit-level"); levelStr != "" {
		level, err := parseAuditLevel(levelStr)
		if err != nil {
			return nil, err
		}
		audit.MinLevel = level
	}
	config.Audit = audit

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Offline reports whether the parsed flags select offline mode: a
// document path with no controller. A command line naming both is
// ambiguous and left to the caller to reject.
func (cf *ClientFlags) Offline() bool {
	return cf.flags.GetString("config") != "" && cf.flags.GetString("controller") == ""
}

// PrintUsage prints help information for all flags
func (cf *ClientFlags) PrintUsage() {
	cf.flags.PrintHelp()
}

// BoundFlags returns a map of flag names to the environment variables
// they bind to, for help text and diagnostics.
func (cf *ClientFlags) BoundFlags() map[string]string {
	result := make(map[string]string)
	cf.flags.VisitAll(func(flag *flashflags.Flag) {
		result[flag.Name()] = flagToEnvKey(flag.Name())
	})
	return result
}

// flagToEnvKey converts a flag name to its environment variable key,
// e.g. "connect-retries" to "CREAPER_CONNECT_RETRIES".
func flagToEnvKey(flagName string) string {
	return "CREAPER_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
