// infinispan.go: Shared cache subsystem plumbing
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package infinispan provides commands for managing Infinispan caches.
//
// The four cache kinds share one command value (AddCache): a kind tag
// plus the union of their attribute groups, of which each builder
// exposes only the groups its kind recognizes. Value encoding follows
// the kind, so a local cache never carries clustering attributes. The
// family defines no document edits; its commands apply online only.
package infinispan

import (
	"github.com/jmartisk/creaper"
)

// CacheType names the management resource type of a cache and selects
// which attribute groups its creation command encodes.
type CacheType string

// The four cache kinds of the infinispan subsystem.
const (
	LocalCache        CacheType = "local-cache"
	ReplicatedCache   CacheType = "replicated-cache"
	DistributedCache  CacheType = "distributed-cache"
	InvalidationCache CacheType = "invalidation-cache"
)

// CacheMode selects synchronous or asynchronous cluster communication
// for the clustered cache kinds.
type CacheMode string

// Cluster communication modes.
const (
	Sync  CacheMode = "SYNC"
	Async CacheMode = "ASYNC"
)

// ConsistentHashStrategy controls how a distributed cache spreads
// segment ownership across the cluster.
type ConsistentHashStrategy string

// Consistent hash strategies of a distributed cache.
const (
	InterCache ConsistentHashStrategy = "INTER_CACHE"
	IntraCache ConsistentHashStrategy = "INTRA_CACHE"
)

// knownCacheType reports whether t is one of the four cache kinds.
func knownCacheType(t CacheType) bool {
	switch t {
	case LocalCache, ReplicatedCache, DistributedCache, InvalidationCache:
		return true
	}
	return false
}

// cacheAddress resolves the management address of one cache. Cache
// addresses kept the same shape across schema generations, so no
// version lookup is involved.
func cacheAddress(container string, cacheType CacheType, name string) creaper.Address {
	return creaper.Subsystem("infinispan").
		And("cache-container", container).
		And(string(cacheType), name)
}
