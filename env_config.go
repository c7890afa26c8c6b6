// env_config.go: Environment Variables Support for Creaper Clients
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// This file implements environment-based configuration loading for
// container deployments, where controller coordinates and credentials
// arrive through the process environment rather than code.

package creaper

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-errors"
)

// EnvConfig represents configuration loaded from environment variables.
// The env tags document which variable each field binds to.
type EnvConfig struct {
	// Connection Configuration
	Controller string `env:"CREAPER_CONTROLLER"`
	Username   string `env:"CREAPER_USERNAME"`
	Password   string `env:"CREAPER_PASSWORD"`

	// Timing Configuration
	Timeout        time.Duration `env:"CREAPER_TIMEOUT"`
	ConnectRetries int           `env:"CREAPER_CONNECT_RETRIES"`
	RetryInterval  time.Duration `env:"CREAPER_RETRY_INTERVAL"`

	// Offline Configuration
	DocumentPath string `env:"CREAPER_CONFIG_PATH"`

	// Audit Configuration
	AuditEnabled       bool          `env:"CREAPER_AUDIT_ENABLED"`
	AuditOutputFile    string        `env:"CREAPER_AUDIT_OUTPUT_FILE"`
	AuditMinLevel      string        `env:"CREAPER_AUDIT_MIN_LEVEL"`
	AuditBufferSize    int           `env:"CREAPER_AUDIT_BUFFER_SIZE"`
	AuditFlushInterval time.Duration `env:"CREAPER_AUDIT_FLUSH_INTERVAL"`
}

// LoadConfigFromEnv loads client configuration from CREAPER_* environment
// variables and applies defaults for anything unset.
func LoadConfigFromEnv() (*Config, error) {
	config := &Config{}
	envConfig := &EnvConfig{}

	if err := loadEnvVars(envConfig); err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidConfig, "failed to load environment configuration")
	}

	if err := convertEnvToConfig(envConfig, config); err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidConfig, "failed to convert environment configuration")
	}

	return config.WithDefaults(), nil
}

// LoadConfigMultiSource loads configuration with precedence:
//  1. Explicitly set fields on the given config (highest priority)
//  2. Environment variables
//  3. Default values (lowest priority)
//
// A nil explicit config is treated as empty. The explicit config is not
// modified.
func LoadConfigMultiSource(explicit *Config) (*Config, error) {
	config, err := LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	if explicit != nil {
		mergeConfigs(config, explicit)
	}

	return config, nil
}

// loadEnvVars loads environment variables into the EnvConfig struct
func loadEnvVars(envConfig *EnvConfig) error {
	loadConnectionEnv(envConfig)
	if err := loadTimingEnv(envConfig); err != nil {
		return err
	}
	return loadAuditEnv(envConfig)
}

// loadConnectionEnv loads controller coordinates from environment variables
func loadConnectionEnv(envConfig *EnvConfig) {
	envConfig.Controller = os.Getenv("CREAPER_CONTROLLER")
	envConfig.Username = os.Getenv("CREAPER_USERNAME")
	envConfig.Password = os.Getenv("CREAPER_PASSWORD")
	envConfig.DocumentPath = os.Getenv("CREAPER_CONFIG_PATH")
}

// loadTimingEnv loads timeout and retry settings from environment variables
func loadTimingEnv(envConfig *EnvConfig) error {
	if timeoutStr := os.Getenv("CREAPER_TIMEOUT"); timeoutStr != "" {
		if duration, err := time.ParseDuration(timeoutStr); err == nil {
			envConfig.Timeout = duration
		} else {
			return errors.New(ErrCodeInvalidConfig, "invalid CREAPER_TIMEOUT format")
		}
	}

	if retriesStr := os.Getenv("CREAPER_CONNECT_RETRIES"); retriesStr != "" {
		if retries, err := strconv.Atoi(retriesStr); err == nil && retries >= 0 {
			envConfig.ConnectRetries = retries
		} else {
			return errors.New(ErrCodeInvalidConfig, "invalid CREAPER_CONNECT_RETRIES value")
		}
	}

	if intervalStr := os.Getenv("CREAPER_RETRY_INTERVAL"); intervalStr != "" {
		if duration, err := time.ParseDuration(intervalStr); err == nil {
			envConfig.RetryInterval = duration
		} else {
			return errors.New(ErrCodeInvalidConfig, "invalid CREAPER_RETRY_INTERVAL format")
		}
	}
	return nil
}

// loadAuditEnv loads audit configuration from environment variables
func loadAuditEnv(envConfig *EnvConfig) error {
	if auditStr := os.Getenv("CREAPER_AUDIT_ENABLED"); auditStr != "" {
		envConfig.AuditEnabled = parseBool(auditStr)
	}

	envConfig.AuditOutputFile = os.Getenv("CREAPER_AUDIT_OUTPUT_FILE")
	envConfig.AuditMinLevel = os.Getenv("CREAPER_AUDIT_MIN_LEVEL")

	if bufferStr := os.Getenv("CREAPER_AUDIT_BUFFER_SIZE"); bufferStr != "" {
		if buffer, err := strconv.Atoi(bufferStr); err == nil && buffer > 0 {
			envConfig.AuditBufferSize = buffer
		}
	}

	if flushStr := os.Getenv("CREAPER_AUDIT_FLUSH_INTERVAL"); flushStr != "" {
		if duration, err := time.ParseDuration(flushStr); err == nil {
			envConfig.AuditFlushInterval = duration
		}
	}
	return nil
}

// convertEnvToConfig converts EnvConfig to standard Config
func convertEnvToConfig(envConfig *EnvConfig, config *Config) error {
	config.Controller = envConfig.Controller
	config.Username = envConfig.Username
	config.Password = envConfig.Password
	config.DocumentPath = envConfig.DocumentPath
	config.Timeout = envConfig.Timeout
	config.ConnectRetries = envConfig.ConnectRetries
	config.RetryInterval = envConfig.RetryInterval
	return convertAuditConfig(envConfig, config)
}

// convertAuditConfig converts audit configuration from EnvConfig to Config
func convertAuditConfig(envConfig *EnvConfig, config *Config) error {
	if !envConfig.AuditEnabled && envConfig.AuditOutputFile == "" {
		return nil
	}

	config.Audit = DefaultAuditConfig()
	config.Audit.Enabled = envConfig.AuditEnabled

	if envConfig.AuditOutputFile != "" {
		config.Audit.OutputFile = envConfig.AuditOutputFile
	}

	if envConfig.AuditMinLevel != "" {
		level, err := parseAuditLevel(envConfig.AuditMinLevel)
		if err != nil {
			return err
		}
		config.Audit.MinLevel = level
	}

	if envConfig.AuditBufferSize > 0 {
		config.Audit.BufferSize = envConfig.AuditBufferSize
	}

	if envConfig.AuditFlushInterval > 0 {
		config.Audit.FlushInterval = envConfig.AuditFlushInterval
	}
	return nil
}

// parseAuditLevel parses audit level string to AuditLevel type
func parseAuditLevel(levelStr string) (AuditLevel, error) {
	switch strings.ToLower(levelStr) {
	case "info":
		return AuditInfo, nil
	case "warn", "warning":
		return AuditWarn, nil
	case "critical", "error":
		return AuditCritical, nil
	case "security":
		return AuditSecurity, nil
	default:
		return AuditInfo, errors.New(ErrCodeInvalidConfig, "invalid audit level")
	}
}

// mergeConfigs overlays explicitly set fields onto the base configuration
func mergeConfigs(base, explicit *Config) {
	if explicit.Controller != "" {
		base.Controller = explicit.Controller
	}
	if explicit.Username != "" {
		base.Username = explicit.Username
	}
	if explicit.Password != "" {
		base.Password = explicit.Password
	}
	if explicit.Timeout > 0 {
		base.Timeout = explicit.Timeout
	}
	if explicit.ConnectRetries > 0 {
		base.ConnectRetries = explicit.ConnectRetries
	}
	if explicit.RetryInterval > 0 {
		base.RetryInterval = explicit.RetryInterval
	}
	if explicit.DocumentPath != "" {
		base.DocumentPath = explicit.DocumentPath
	}
	if explicit.Transport != nil {
		base.Transport = explicit.Transport
	}
	if explicit.Audit != (AuditConfig{}) {
		base.Audit = explicit.Audit
	}
}

// parseBool parses boolean values from environment variables
// Supports: true/false, 1/0, yes/no, on/off, enabled/disabled
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on", "enabled":
		return true
	default:
		return false
	}
}

// GetEnvWithDefault returns environment variable value or default if not set
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvDurationWithDefault returns environment variable as duration or default
func GetEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
