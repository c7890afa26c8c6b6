// remove_cache.go: Command removing a cache
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

// RemoveCache removes one cache of a known kind from a container. The
// remove fails when the cache does not exist, matching the server's own
// remove semantics.
type RemoveCache struct {
	container string
	cacheType CacheType
	name      string
}

// NewRemoveCache builds a remove command for the given cache. All three
// coordinates are required and the kind must be one of the four cache
// kinds.
func NewRemoveCache(container string, cacheType CacheType, name string) (*RemoveCache, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "cache name must not be empty")
	}
	if strings.TrimSpace(container) == "" {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "cache container is required").
			WithContext("cache", name)
	}
	if !knownCacheType(cacheType) {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "unknown cache type").
			WithContext("cache", name).
			WithContext("cacheType", string(cacheType))
	}
	return &RemoveCache{container: container, cacheType: cacheType, name: name}, nil
}

// Name returns the cache name the command targets.
func (c *RemoveCache) Name() string {
	return c.name
}

// ApplyOnline removes the cache from a live server.
func (c *RemoveCache) ApplyOnline(ctx context.Context, client *creaper.OnlineClient) error {
	return client.Ops().Remove(ctx, cacheAddress(c.container, c.cacheType, c.name))
}
