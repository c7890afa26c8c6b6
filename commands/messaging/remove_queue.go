// remove_queue.go: Command removing a JMS queue
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

// RemoveQueue removes a JMS queue. Removing a queue that does not exist
// fails, matching the server's own remove semantics; callers that want
// remove-if-present idempotency use the low-level RemoveIfExists
// operation instead.
type RemoveQueue struct {
	name   string
	server string
}

// RemoveQueueBuilder assembles a RemoveQueue command.
type RemoveQueueBuilder struct {
	cmd RemoveQueue
}

// NewRemoveQueue starts building a remove-queue command.
func NewRemoveQueue(name string) *RemoveQueueBuilder {
	b := &RemoveQueueBuilder{}
	b.cmd.name = name
	b.cmd.server = DefaultServer
	return b
}

// Server targets a non-default messaging server. Online only.
func (b *RemoveQueueBuilder) Server(server string) *RemoveQueueBuilder {
	b.cmd.server = server
	return b
}

// Build validates the assembled command and returns the immutable
// result.
func (b *RemoveQueueBuilder) Build() (*RemoveQueue, error) {
	if strings.TrimSpace(b.cmd.name) == "" {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "queue name must not be empty")
	}
	if b.cmd.server == "" {
		b.cmd.server = DefaultServer
	}
	cmd := b.cmd
	return &cmd, nil
}

// Name returns the queue name the command targets.
func (c *RemoveQueue) Name() string {
	return c.name
}

// ApplyOnline removes the queue from a live server.
func (c *RemoveQueue) ApplyOnline(ctx context.Context, client *creaper.OnlineClient) error {
	address := queueAddress(client.Version(), c.server, c.name)
	return client.Ops().Remove(ctx, address)
}

// ApplyOffline removes the queue from a configuration document via the
// remove-jms-queue transform.
func (c *RemoveQueue) ApplyOffline(ctx context.Context, client *creaper.OfflineClient) error {
	if c.server != DefaultServer {
		return errors.New(creaper.ErrCodeUnsupportedMode, "offline documents carry only the default messaging server").
			WithContext("queue", c.name).
			WithContext("server", c.server)
	}

	t := creaper.NewTransform("remove-jms-queue").
		Subtree(creaper.SubsystemSubtree(GenerationHornetQ, subsystemHornetQ)).
		Subtree(creaper.SubsystemSubtree(GenerationActiveMQ, subsystemActiveMQ)).
		Parameter("name", c.name).
		Parameter("server", c.server)

	return client.ApplyTransform(ctx, t)
}

func init() {
	mustRegister("remove-jms-queue", GenerationHornetQ, removeQueueHornetQ)
	mustRegister("remove-jms-queue", GenerationActiveMQ, removeQueueActiveMQ)
}

func removeQueueHornetQ(doc *creaper.ConfigDocument, subtreePath []string, params map[string]any) error {
	name, server, err := removeQueueParams(params)
	if err != nil {
		return err
	}
	return deleteQueueAt(doc, hornetqQueuePath(subtreePath, server, name), name)
}

func removeQueueActiveMQ(doc *creaper.ConfigDocument, subtreePath []string, params map[string]any) error {
	name, server, err := removeQueueParams(params)
	if err != nil {
		return err
	}
	return deleteQueueAt(doc, activemqQueuePath(subtreePath, server, name), name)
}

func removeQueueParams(params map[string]any) (name, server string, err error) {
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return "", "", errors.New(creaper.ErrCodeInvalidCommand, "edit requires a queue name parameter")
	}
	server, _ = params["server"].(string)
	if server == "" {
		server = DefaultServer
	}
	return name, server, nil
}

func deleteQueueAt(doc *creaper.ConfigDocument, queuePath []string, name string) error {
	if !doc.Delete(queuePath...) {
		return errors.New(creaper.ErrCodeOperationFailed, "jms-queue does not exist").
			WithContext("queue", name)
	}
	return nil
}
