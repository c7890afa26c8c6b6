// messaging.go: Shared messaging subsystem plumbing
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package messaging provides commands for managing JMS destinations.
//
// The messaging subsystem moved between schema generations: older
// servers carry it as subsystem "messaging" with "hornetq-server"
// children, newer ones as "messaging-activemq" with "server" children.
// Commands in this package absorb that split - online they resolve the
// address from the server's management version, offline they carry one
// document edit per generation and let the transform dispatcher pick
// whichever subtree the document contains.
package messaging

import (
	"github.com/jmartisk/creaper"
)

// DefaultServer is the messaging server child commands target when no
// explicit server name is given.
const DefaultServer = "default"

// Schema generations of the messaging subsystem.
const (
	// GenerationHornetQ is the legacy shape: subsystem "messaging",
	// "hornetq-server" children, list attributes rendered as
	// space-delimited strings.
	GenerationHornetQ creaper.Generation = "hornetq"

	// GenerationActiveMQ is the current shape: subsystem
	// "messaging-activemq", "server" children, native list attributes.
	GenerationActiveMQ creaper.Generation = "activemq"
)

// Subsystem names per generation.
const (
	subsystemHornetQ  = "messaging"
	subsystemActiveMQ = "messaging-activemq"
)

// queueAddress resolves the management address of a JMS queue for the
// given server version. An unknown (zero) version is treated as current.
func queueAddress(version creaper.ServerVersion, server, name string) creaper.Address {
	return serverAddress(version, server).And("jms-queue", name)
}

// serverAddress resolves the management address of a messaging server.
func serverAddress(version creaper.ServerVersion, server string) creaper.Address {
	if legacyMessaging(version) {
		return creaper.Subsystem(subsystemHornetQ).And("hornetq-server", server)
	}
	return creaper.Subsystem(subsystemActiveMQ).And("server", server)
}

// legacyMessaging reports whether the version predates the
// messaging-activemq rename.
func legacyMessaging(version creaper.ServerVersion) bool {
	return !version.IsZero() && version.LessThan(creaper.Version3_0_0)
}

// hornetqQueuePath is the document path of a queue in the legacy shape,
// relative to the subtree selector.
func hornetqQueuePath(subtreePath []string, server, name string) []string {
	path := append([]string(nil), subtreePath...)
	return append(path, "hornetq-server", server, "jms-queue", name)
}

// activemqQueuePath is the document path of a queue in the current
// shape, relative to the subtree selector.
func activemqQueuePath(subtreePath []string, server, name string) []string {
	path := append([]string(nil), subtreePath...)
	return append(path, "server", server, "jms-queue", name)
}
