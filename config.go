// config.go: Configuration management for Creaper clients
//
// Copyright (c) 2025 AGILira
// Series: AGILira System Libraries
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"net/url"
	"time"

	"github.com/agilira/go-errors"
)

// Validation errors shared by the programmatic, environment and flag
// configuration surfaces.
var (
	ErrInvalidTimeout       = errors.New(ErrCodeInvalidConfig, "timeout must not be negative")
	ErrInvalidRetries       = errors.New(ErrCodeInvalidConfig, "connect retries must not be negative")
	ErrInvalidRetryInterval = errors.New(ErrCodeInvalidConfig, "retry interval must not be negative")
	ErrMissingController    = errors.New(ErrCodeInvalidConfig, "controller URL is required when no transport is injected")
	ErrMissingDocument      = errors.New(ErrCodeInvalidConfig, "document path is required for offline use")
)

// Config configures Creaper clients, online and offline.
type Config struct {
	// Controller is the base URL of the server's HTTP management endpoint,
	// e.g. "http://127.0.0.1:9990". Ignored when Transport is injected.
	Controller string

	// Username and Password enable basic authentication on the management
	// endpoint. Both empty means unauthenticated.
	Username string
	Password string

	// Timeout bounds each management request round-trip.
	// Default: 10 seconds.
	Timeout time.Duration

	// ConnectRetries is how many times a connection-level failure is
	// retried before giving up. Server-side operation failures are never
	// retried. Default: 3.
	ConnectRetries int

	// RetryInterval is the base delay between connection retries; the
	// delay doubles per attempt and is capped at 5 seconds.
	// Default: 500 milliseconds.
	RetryInterval time.Duration

	// DocumentPath is the persisted configuration document the offline
	// client edits. Online clients ignore it.
	DocumentPath string

	// Transport overrides the HTTP transport with a caller-supplied one
	// (in-memory server, custom protocol). When set, Controller,
	// Username, Password and the retry knobs are unused.
	Transport ManagementTransport

	// Audit configures the command audit trail.
	Audit AuditConfig
}

// WithDefaults applies sensible defaults to the configuration
func (c *Config) WithDefaults() *Config {
	config := *c

	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	if config.ConnectRetries <= 0 {
		config.ConnectRetries = 3
	}

	if config.RetryInterval <= 0 {
		config.RetryInterval = 500 * time.Millisecond
	}

	// Set audit defaults if not configured
	if config.Audit == (AuditConfig{}) {
		config.Audit = DefaultAuditConfig()
	}

	return &config
}

// Validate checks the mode-independent parts of the configuration.
// Mode-specific requirements (controller for online, document path for
// offline) are enforced by the respective client constructors.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.ConnectRetries < 0 {
		return ErrInvalidRetries
	}
	if c.RetryInterval < 0 {
		return ErrInvalidRetryInterval
	}
	return nil
}

// validateControllerURL checks that the controller is an absolute http or
// https URL with a host. Returns the parsed URL for transport setup.
func validateControllerURL(controller string) (*url.URL, error) {
	if controller == "" {
		return nil, ErrMissingController
	}
	u, err := url.Parse(controller)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidConfig, "controller URL is malformed").
			WithContext("controller", controller)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(ErrCodeInvalidConfig, "controller URL must use http or https").
			WithContext("controller", controller)
	}
	if u.Host == "" {
		return nil, errors.New(ErrCodeInvalidConfig, "controller URL is missing a host").
			WithContext("controller", controller)
	}
	return u, nil
}
