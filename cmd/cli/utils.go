// Invocation plumbing for the Creaper CLI
//
// Mode and configuration resolution shared by the handlers, plus the
// cache flag parsing that maps the CLI surface onto the builders.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"

	"github.com/jmartisk/creaper"
	"github.com/jmartisk/creaper/commands/infinispan"
	cliutil "github.com/jmartisk/creaper/internal/cli"
)

// resolveInvocation builds the client configuration for one invocation
// and decides the execution mode. Precedence: command flags, then the
// CREAPER_* environment, then defaults. Passing both --controller and
// --config is a conflict; an environment-supplied document path only
// selects offline mode when no controller is known at all.
func (m *Manager) resolveInvocation(ctx *orpheus.Context) (creaper.Config, string, error) {
	controllerFlag := ctx.GetFlagString("controller")
	configFlag := ctx.GetFlagString("config")
	if controllerFlag != "" && configFlag != "" {
		return creaper.Config{}, "", errors.New(creaper.ErrCodeInvalidConfig,
			"controller and config select conflicting modes; pass exactly one")
	}

	explicit := &creaper.Config{
		Controller:   controllerFlag,
		Username:     ctx.GetFlagString("username"),
		Password:     ctx.GetFlagString("password"),
		DocumentPath: configFlag,
	}
	if timeoutFlag := ctx.GetFlagString("timeout"); timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return creaper.Config{}, "", errors.Wrap(err, creaper.ErrCodeInvalidConfig, "invalid timeout flag").
				WithContext("timeout", timeoutFlag)
		}
		explicit.Timeout = timeout
	}

	cfg, err := creaper.LoadConfigMultiSource(explicit)
	if err != nil {
		return creaper.Config{}, "", err
	}

	mode := creaper.ModeOnline
	switch {
	case configFlag != "":
		mode = creaper.ModeOffline
	case controllerFlag != "":
		mode = creaper.ModeOnline
	case cfg.DocumentPath != "" && cfg.Controller == "":
		mode = creaper.ModeOffline
	}
	return *cfg, mode, nil
}

// auditInvocation records one CLI invocation when CLI auditing is on.
func (m *Manager) auditInvocation(mode, invocation string) {
	if m.auditLogger == nil {
		return
	}
	m.auditLogger.LogCommand(mode, invocation, nil)
}

// parseCacheType maps the --type flag onto a cache kind. Both the short
// form ("local") and the resource type ("local-cache") are accepted.
func parseCacheType(s string) (infinispan.CacheType, error) {
	switch strings.ToLower(s) {
	case "local", string(infinispan.LocalCache):
		return infinispan.LocalCache, nil
	case "replicated", string(infinispan.ReplicatedCache):
		return infinispan.ReplicatedCache, nil
	case "distributed", string(infinispan.DistributedCache):
		return infinispan.DistributedCache, nil
	case "invalidation", string(infinispan.InvalidationCache):
		return infinispan.InvalidationCache, nil
	case "":
		return "", errors.New(creaper.ErrCodeInvalidCommand, "cache type flag is required")
	default:
		return "", errors.New(creaper.ErrCodeInvalidCommand,
			"cache type must be local, replicated, distributed, or invalidation").
			WithContext("type", s)
	}
}

// cacheFlags carries the parsed optional attribute flags of cache add.
// Pointer fields distinguish "never passed" from any real value, so
// unset attributes stay out of the encoded operation.
type cacheFlags struct {
	jndiName   string
	module     string
	start      string
	statistics *bool

	mode               string
	asyncMarshalling   *bool
	queueFlushInterval *int64
	queueSize          *int
	remoteTimeout      *int64

	capacityFactor *float64
	hashStrategy   string
	l1Lifespan     *int64
	owners         *int
	segments       *int
}

// parseCacheFlags reads every optional cache attribute flag. Flags for
// groups the chosen kind does not recognize are simply never applied to
// its builder.
func parseCacheFlags(ctx *orpheus.Context) (cacheFlags, error) {
	var f cacheFlags
	var err error

	f.jndiName = ctx.GetFlagString("jndi-name")
	f.module = ctx.GetFlagString("module")
	f.start = ctx.GetFlagString("start")
	if f.statistics, err = cliutil.ParseOptionalBool(ctx.GetFlagString("statistics-enabled")); err != nil {
		return cacheFlags{}, err
	}

	f.mode = strings.ToUpper(ctx.GetFlagString("mode"))
	if f.asyncMarshalling, err = cliutil.ParseOptionalBool(ctx.GetFlagString("async-marshalling")); err != nil {
		return cacheFlags{}, err
	}
	if f.queueFlushInterval, err = cliutil.ParseOptionalInt64(ctx.GetFlagString("queue-flush-interval")); err != nil {
		return cacheFlags{}, err
	}
	if f.queueSize, err = cliutil.ParseOptionalInt(ctx.GetFlagString("queue-size")); err != nil {
		return cacheFlags{}, err
	}
	if f.remoteTimeout, err = cliutil.ParseOptionalInt64(ctx.GetFlagString("remote-timeout")); err != nil {
		return cacheFlags{}, err
	}

	if f.capacityFactor, err = cliutil.ParseOptionalFloat(ctx.GetFlagString("capacity-factor")); err != nil {
		return cacheFlags{}, err
	}
	f.hashStrategy = strings.ToUpper(ctx.GetFlagString("consistent-hash-strategy"))
	if f.l1Lifespan, err = cliutil.ParseOptionalInt64(ctx.GetFlagString("l1-lifespan")); err != nil {
		return cacheFlags{}, err
	}
	if f.owners, err = cliutil.ParseOptionalInt(ctx.GetFlagString("owners")); err != nil {
		return cacheFlags{}, err
	}
	if f.segments, err = cliutil.ParseOptionalInt(ctx.GetFlagString("segments")); err != nil {
		return cacheFlags{}, err
	}
	return f, nil
}

// buildCacheCommand assembles the cache-creation command matching the
// --type flag.
func buildCacheCommand(ctx *orpheus.Context) (*infinispan.AddCache, error) {
	name := ctx.GetArg(0)
	if name == "" {
		return nil, errors.New(creaper.ErrCodeInvalidCommand, "cache name argument is required")
	}
	cacheType, err := parseCacheType(ctx.GetFlagString("type"))
	if err != nil {
		return nil, err
	}
	container := ctx.GetFlagString("container")
	flags, err := parseCacheFlags(ctx)
	if err != nil {
		return nil, err
	}

	switch cacheType {
	case infinispan.LocalCache:
		b := infinispan.NewAddLocalCache(name).CacheContainer(container)
		if flags.jndiName != "" {
			b.JNDIName(flags.jndiName)
		}
		if flags.module != "" {
			b.Module(flags.module)
		}
		if flags.start != "" {
			b.Start(flags.start)
		}
		if flags.statistics != nil {
			b.StatisticsEnabled(*flags.statistics)
		}
		return b.Build()

	case infinispan.DistributedCache:
		b := infinispan.NewAddDistributedCache(name).CacheContainer(container)
		if flags.jndiName != "" {
			b.JNDIName(flags.jndiName)
		}
		if flags.module != "" {
			b.Module(flags.module)
		}
		if flags.start != "" {
			b.Start(flags.start)
		}
		if flags.statistics != nil {
			b.StatisticsEnabled(*flags.statistics)
		}
		if flags.mode != "" {
			b.Mode(infinispan.CacheMode(flags.mode))
		}
		if flags.asyncMarshalling != nil {
			b.AsyncMarshalling(*flags.asyncMarshalling)
		}
		if flags.queueFlushInterval != nil {
			b.QueueFlushInterval(*flags.queueFlushInterval)
		}
		if flags.queueSize != nil {
			b.QueueSize(*flags.queueSize)
		}
		if flags.remoteTimeout != nil {
			b.RemoteTimeout(*flags.remoteTimeout)
		}
		if flags.capacityFactor != nil {
			b.CapacityFactor(*flags.capacityFactor)
		}
		if flags.hashStrategy != "" {
			b.ConsistentHashStrategy(infinispan.ConsistentHashStrategy(flags.hashStrategy))
		}
		if flags.l1Lifespan != nil {
			b.L1Lifespan(*flags.l1Lifespan)
		}
		if flags.owners != nil {
			b.Owners(*flags.owners)
		}
		if flags.segments != nil {
			b.Segments(*flags.segments)
		}
		return b.Build()

	default: // replicated and invalidation share one builder
		var b *infinispan.ClusteredCacheBuilder
		if cacheType == infinispan.ReplicatedCache {
			b = infinispan.NewAddReplicatedCache(name)
		} else {
			b = infinispan.NewAddInvalidationCache(name)
		}
		b.CacheContainer(container)
		if flags.jndiName != "" {
			b.JNDIName(flags.jndiName)
		}
		if flags.module != "" {
			b.Module(flags.module)
		}
		if flags.start != "" {
			b.Start(flags.start)
		}
		if flags.statistics != nil {
			b.StatisticsEnabled(*flags.statistics)
		}
		if flags.mode != "" {
			b.Mode(infinispan.CacheMode(flags.mode))
		}
		if flags.asyncMarshalling != nil {
			b.AsyncMarshalling(*flags.asyncMarshalling)
		}
		if flags.queueFlushInterval != nil {
			b.QueueFlushInterval(*flags.queueFlushInterval)
		}
		if flags.queueSize != nil {
			b.QueueSize(*flags.queueSize)
		}
		if flags.remoteTimeout != nil {
			b.RemoteTimeout(*flags.remoteTimeout)
		}
		return b.Build()
	}
}

// docTemplate returns the starting tree for a new configuration
// document. The messaging templates seed the subtree offline queue
// commands edit, one per schema generation.
func (m *Manager) docTemplate(template string) map[string]any {
	switch template {
	case "messaging":
		return map[string]any{
			"subsystem": map[string]any{
				"messaging-activemq": map[string]any{
					"server": map[string]any{
						"default": map[string]any{},
					},
				},
			},
		}
	case "legacy-messaging":
		return map[string]any{
			"subsystem": map[string]any{
				"messaging": map[string]any{
					"hornetq-server": map[string]any{
						"default": map[string]any{},
					},
				},
			},
		}
	default: // "default"
		return map[string]any{
			"subsystem": map[string]any{},
		}
	}
}
