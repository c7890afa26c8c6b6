// add_cache.go: Commands creating caches of every kind
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package infinispan

import (
	"context"
	"strings"

	"github.com/agilira/go-errors"

	"github.com/jmartisk/creaper"
)

// AddCache is a built cache-creation command. One struct serves all
// four cache kinds; the kind decides the address segment and which
// attribute groups get encoded. Built instances are immutable and
// reusable across clients.
//
// Attribute values are passed through untouched: whether a mode suits a
// strategy, or an attribute suits the connected server's generation, is
// the server's call and surfaces as an operation failure.
type AddCache struct {
	cacheType CacheType
	container string
	name      string

	// recognized by every cache kind
	jndiName          *string
	module            *string
	start             *string
	statisticsEnabled *bool

	// clustered kinds only (replicated, invalidation, distributed)
	mode               *CacheMode
	asyncMarshalling   *bool
	queueFlushInterval *int64
	queueSize          *int
	remoteTimeout      *int64

	// distributed kind only
	capacityFactor         *float64
	consistentHashStrategy *ConsistentHashStrategy
	l1Lifespan             *int64
	owners                 *int
	segments               *int
}

// Name returns the cache name the command targets.
func (c *AddCache) Name() string {
	return c.name
}

// Type returns the cache kind the command creates.
func (c *AddCache) Type() CacheType {
	return c.cacheType
}

// ApplyOnline creates the cache on a live server. Kinds the server
// rejects (duplicate name, unknown attribute for its generation) come
// back as operation failures carrying the server's cause.
func (c *AddCache) ApplyOnline(ctx context.Context, client *creaper.OnlineClient) error {
	values := encodeCommonValues(c)
	switch c.cacheType {
	case ReplicatedCache, InvalidationCache:
		values = encodeClusteredValues(c, values)
	case DistributedCache:
		values = encodeDistributedValues(c, encodeClusteredValues(c, values))
	}
	return client.Ops().Add(ctx, cacheAddress(c.container, c.cacheType, c.name), values)
}

// encodeCommonValues renders the attributes every cache kind
// recognizes. Unset attributes stay absent so the server applies its
// documented defaults.
func encodeCommonValues(c *AddCache) creaper.Values {
	return creaper.EmptyValues().
		AndOptional("jndi-name", c.jndiName).
		AndOptional("module", c.module).
		AndOptional("start", c.start).
		AndOptional("statistics-enabled", c.statisticsEnabled)
}

// encodeClusteredValues adds the attributes shared by the clustered
// cache kinds.
func encodeClusteredValues(c *AddCache, values creaper.Values) creaper.Values {
	if c.mode != nil {
		values = values.And("mode", string(*c.mode))
	}
	return values.
		AndOptional("async-marshalling", c.asyncMarshalling).
		AndOptional("queue-flush-interval", c.queueFlushInterval).
		AndOptional("queue-size", c.queueSize).
		AndOptional("remote-timeout", c.remoteTimeout)
}

// encodeDistributedValues adds the distributed-cache-only attributes.
func encodeDistributedValues(c *AddCache, values creaper.Values) creaper.Values {
	if c.consistentHashStrategy != nil {
		values = values.And("consistent-hash-strategy", string(*c.consistentHashStrategy))
	}
	return values.
		AndOptional("capacity-factor", c.capacityFactor).
		AndOptional("l1-lifespan", c.l1Lifespan).
		AndOptional("owners", c.owners).
		AndOptional("segments", c.segments)
}

// buildCache validates the assembled configuration and freezes it.
// Validation is structural only; attribute semantics belong to the
// server.
func buildCache(cmd AddCache) (*AddCache, error) {
	if strings.TrimSpace(cmd.name) == "" {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "cache name must not be empty")
	}
	if strings.TrimSpace(cmd.container) == "" {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "cache container is required").
			WithContext("cache", cmd.name)
	}
	return &cmd, nil
}

// LocalCacheBuilder assembles an AddCache command for a local cache,
// the kind with no clustering attributes.
type LocalCacheBuilder struct {
	cmd AddCache
}

// NewAddLocalCache starts building a local cache with the given name.
func NewAddLocalCache(name string) *LocalCacheBuilder {
	b := &LocalCacheBuilder{}
	b.cmd.cacheType = LocalCache
	b.cmd.name = name
	return b
}

// CacheContainer sets the container the cache lives in. Required.
func (b *LocalCacheBuilder) CacheContainer(container string) *LocalCacheBuilder {
	b.cmd.container = container
	return b
}

// JNDIName binds the cache into JNDI under the given name.
func (b *LocalCacheBuilder) JNDIName(jndiName string) *LocalCacheBuilder {
	b.cmd.jndiName = &jndiName
	return b
}

// Module sets the module whose classloader resolves cache entry types.
func (b *LocalCacheBuilder) Module(module string) *LocalCacheBuilder {
	b.cmd.module = &module
	return b
}

// Start sets the cache startup mode (for example "EAGER" or "LAZY").
func (b *LocalCacheBuilder) Start(start string) *LocalCacheBuilder {
	b.cmd.start = &start
	return b
}

// StatisticsEnabled toggles statistics collection for the cache.
func (b *LocalCacheBuilder) StatisticsEnabled(enabled bool) *LocalCacheBuilder {
	b.cmd.statisticsEnabled = &enabled
	return b
}

// Build validates the assembled command and returns the immutable
// result.
func (b *LocalCacheBuilder) Build() (*AddCache, error) {
	return buildCache(b.cmd)
}

// ClusteredCacheBuilder assembles an AddCache command for a replicated
// or invalidation cache; the two kinds recognize the same attributes
// and differ only in the created resource type.
type ClusteredCacheBuilder struct {
	cmd AddCache
}

// NewAddReplicatedCache starts building a replicated cache with the
// given name.
func NewAddReplicatedCache(name string) *ClusteredCacheBuilder {
	b := &ClusteredCacheBuilder{}
	b.cmd.cacheType = ReplicatedCache
	b.cmd.name = name
	return b
}

// NewAddInvalidationCache starts building an invalidation cache with
// the given name.
func NewAddInvalidationCache(name string) *ClusteredCacheBuilder {
	b := &ClusteredCacheBuilder{}
	b.cmd.cacheType = InvalidationCache
	b.cmd.name = name
	return b
}

// CacheContainer sets the container the cache lives in. Required.
func (b *ClusteredCacheBuilder) CacheContainer(container string) *ClusteredCacheBuilder {
	b.cmd.container = container
	return b
}

// JNDIName binds the cache into JNDI under the given name.
func (b *ClusteredCacheBuilder) JNDIName(jndiName string) *ClusteredCacheBuilder {
	b.cmd.jndiName = &jndiName
	return b
}

// Module sets the module whose classloader resolves cache entry types.
func (b *ClusteredCacheBuilder) Module(module string) *ClusteredCacheBuilder {
	b.cmd.module = &module
	return b
}

// Start sets the cache startup mode (for example "EAGER" or "LAZY").
func (b *ClusteredCacheBuilder) Start(start string) *ClusteredCacheBuilder {
	b.cmd.start = &start
	return b
}

// StatisticsEnabled toggles statistics collection for the cache.
func (b *ClusteredCacheBuilder) StatisticsEnabled(enabled bool) *ClusteredCacheBuilder {
	b.cmd.statisticsEnabled = &enabled
	return b
}

// Mode sets the cluster communication mode.
func (b *ClusteredCacheBuilder) Mode(mode CacheMode) *ClusteredCacheBuilder {
	b.cmd.mode = &mode
	return b
}

// AsyncMarshalling toggles marshalling off the caller's thread in
// async mode.
func (b *ClusteredCacheBuilder) AsyncMarshalling(async bool) *ClusteredCacheBuilder {
	b.cmd.asyncMarshalling = &async
	return b
}

// QueueFlushInterval sets how often, in milliseconds, the replication
// queue is flushed.
func (b *ClusteredCacheBuilder) QueueFlushInterval(interval int64) *ClusteredCacheBuilder {
	b.cmd.queueFlushInterval = &interval
	return b
}

// QueueSize sets the replication queue size that forces a flush when
// reached.
func (b *ClusteredCacheBuilder) QueueSize(size int) *ClusteredCacheBuilder {
	b.cmd.queueSize = &size
	return b
}

// RemoteTimeout sets how long, in milliseconds, to wait for remote
// calls in sync mode.
func (b *ClusteredCacheBuilder) RemoteTimeout(timeout int64) *ClusteredCacheBuilder {
	b.cmd.remoteTimeout = &timeout
	return b
}

// Build validates the assembled command and returns the immutable
// result.
func (b *ClusteredCacheBuilder) Build() (*AddCache, error) {
	return buildCache(b.cmd)
}

// DistributedCacheBuilder assembles an AddCache command for a
// distributed cache, the kind with the full attribute surface.
type DistributedCacheBuilder struct {
	cmd AddCache
}

// NewAddDistributedCache starts building a distributed cache with the
// given name.
func NewAddDistributedCache(name string) *DistributedCacheBuilder {
	b := &DistributedCacheBuilder{}
	b.cmd.cacheType = DistributedCache
	b.cmd.name = name
	return b
}

// CacheContainer sets the container the cache lives in. Required.
func (b *DistributedCacheBuilder) CacheContainer(container string) *DistributedCacheBuilder {
	b.cmd.container = container
	return b
}

// JNDIName binds the cache into JNDI under the given name.
func (b *DistributedCacheBuilder) JNDIName(jndiName string) *DistributedCacheBuilder {
	b.cmd.jndiName = &jndiName
	return b
}

// Module sets the module whose classloader resolves cache entry types.
func (b *DistributedCacheBuilder) Module(module string) *DistributedCacheBuilder {
	b.cmd.module = &module
	return b
}

// Start sets the cache startup mode (for example "EAGER" or "LAZY").
func (b *DistributedCacheBuilder) Start(start string) *DistributedCacheBuilder {
	b.cmd.start = &start
	return b
}

// StatisticsEnabled toggles statistics collection for the cache.
func (b *DistributedCacheBuilder) StatisticsEnabled(enabled bool) *DistributedCacheBuilder {
	b.cmd.statisticsEnabled = &enabled
	return b
}

// Mode sets the cluster communication mode.
func (b *DistributedCacheBuilder) Mode(mode CacheMode) *DistributedCacheBuilder {
	b.cmd.mode = &mode
	return b
}

// AsyncMarshalling toggles marshalling off the caller's thread in
// async mode.
func (b *DistributedCacheBuilder) AsyncMarshalling(async bool) *DistributedCacheBuilder {
	b.cmd.asyncMarshalling = &async
	return b
}

// QueueFlushInterval sets how often, in milliseconds, the replication
// queue is flushed.
func (b *DistributedCacheBuilder) QueueFlushInterval(interval int64) *DistributedCacheBuilder {
	b.cmd.queueFlushInterval = &interval
	return b
}

// QueueSize sets the replication queue size that forces a flush when
// reached.
func (b *DistributedCacheBuilder) QueueSize(size int) *DistributedCacheBuilder {
	b.cmd.queueSize = &size
	return b
}

// RemoteTimeout sets how long, in milliseconds, to wait for remote
// calls in sync mode.
func (b *DistributedCacheBuilder) RemoteTimeout(timeout int64) *DistributedCacheBuilder {
	b.cmd.remoteTimeout = &timeout
	return b
}

// CapacityFactor weights this node's share of the cache's segments.
// Recognized by newer server generations only.
func (b *DistributedCacheBuilder) CapacityFactor(factor float64) *DistributedCacheBuilder {
	b.cmd.capacityFactor = &factor
	return b
}

// ConsistentHashStrategy sets how segment ownership is spread across
// the cluster. Recognized by newer server generations only.
func (b *DistributedCacheBuilder) ConsistentHashStrategy(strategy ConsistentHashStrategy) *DistributedCacheBuilder {
	b.cmd.consistentHashStrategy = &strategy
	return b
}

// L1Lifespan sets, in milliseconds, how long near-cache entries live;
// zero disables the L1 cache.
func (b *DistributedCacheBuilder) L1Lifespan(lifespan int64) *DistributedCacheBuilder {
	b.cmd.l1Lifespan = &lifespan
	return b
}

// Owners sets how many cluster nodes hold each cache entry.
func (b *DistributedCacheBuilder) Owners(owners int) *DistributedCacheBuilder {
	b.cmd.owners = &owners
	return b
}

// Segments sets the number of hash segments the cache is split into.
func (b *DistributedCacheBuilder) Segments(segments int) *DistributedCacheBuilder {
	b.cmd.segments = &segments
	return b
}

// Build validates the assembled command and returns the immutable
// result.
func (b *DistributedCacheBuilder) Build() (*AddCache, error) {
	return buildCache(b.cmd)
}
