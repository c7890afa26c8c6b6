// utilities.go: One-Call Creaper Utilities
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"context"
)

// ApplyToServer connects to the controller, applies the commands in
// order and closes the client. The one-call form for scripts.
//
// Example:
//
//	err := creaper.ApplyToServer(ctx, "http://127.0.0.1:9990",
//	    messaging.NewAddQueue("jobs").Entries("java:/jms/queue/jobs").Build())
func ApplyToServer(ctx context.Context, controller string, commands ...OnlineCommand) error {
	return ApplyToServerWithConfig(ctx, Config{Controller: controller}, commands...)
}

// ApplyToServerWithConfig is ApplyToServer with full control over the
// client configuration (credentials, timeouts, audit, injected
// transport).
func ApplyToServerWithConfig(ctx context.Context, cfg Config, commands ...OnlineCommand) error {
	client, err := NewOnlineClient(ctx, cfg)
	if err != nil {
		return err
	}

	applyErr := client.Apply(ctx, commands...)
	if closeErr := client.Close(); applyErr == nil {
		applyErr = closeErr
	}
	return applyErr
}

// ApplyToDocument loads the configuration document, applies the commands
// and writes it back. The file is untouched when any command fails.
func ApplyToDocument(ctx context.Context, documentPath string, commands ...OfflineCommand) error {
	return ApplyToDocumentWithConfig(ctx, Config{DocumentPath: documentPath}, commands...)
}

// ApplyToDocumentWithConfig is ApplyToDocument with full control over
// the client configuration.
func ApplyToDocumentWithConfig(ctx context.Context, cfg Config, commands ...OfflineCommand) error {
	client, err := NewOfflineClient(cfg)
	if err != nil {
		return err
	}

	applyErr := client.Apply(ctx, commands...)
	if closeErr := client.Close(); applyErr == nil {
		applyErr = closeErr
	}
	return applyErr
}

// LookupServerVersion connects to the controller just long enough to
// read its management schema version.
func LookupServerVersion(ctx context.Context, controller string) (ServerVersion, error) {
	client, err := NewOnlineClient(ctx, Config{Controller: controller})
	if err != nil {
		return ServerVersion{}, err
	}

	version := client.Version()
	if err := client.Close(); err != nil {
		return version, err
	}
	return version, nil
}
