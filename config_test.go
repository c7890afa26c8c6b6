// config_test.go: Client configuration defaults and validation
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"errors"
	"testing"
	"time"
)

func TestConfigWithDefaults(t *testing.T) {
	t.Run("fills_zero_values", func(t *testing.T) {
		cfg := Config{}
		got := cfg.WithDefaults()

		if got.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want 10s", got.Timeout)
		}
		if got.ConnectRetries != 3 {
			t.Errorf("ConnectRetries = %d, want 3", got.ConnectRetries)
		}
		if got.RetryInterval != 500*time.Millisecond {
			t.Errorf("RetryInterval = %v, want 500ms", got.RetryInterval)
		}
		if got.Audit != DefaultAuditConfig() {
			t.Errorf("Audit = %+v, want defaults", got.Audit)
		}
		// The receiver is left alone.
		if cfg.Timeout != 0 || cfg.ConnectRetries != 0 {
			t.Error("WithDefaults mutated the receiver")
		}
	})

	t.Run("keeps_explicit_values", func(t *testing.T) {
		audit := AuditConfig{Enabled: false, OutputFile: "/tmp/x.jsonl", BufferSize: 8}
		cfg := Config{
			Timeout:        time.Minute,
			ConnectRetries: 7,
			RetryInterval:  time.Second,
			Audit:          audit,
		}
		got := cfg.WithDefaults()

		if got.Timeout != time.Minute {
			t.Errorf("Timeout = %v, want 1m", got.Timeout)
		}
		if got.ConnectRetries != 7 {
			t.Errorf("ConnectRetries = %d, want 7", got.ConnectRetries)
		}
		if got.RetryInterval != time.Second {
			t.Errorf("RetryInterval = %v, want 1s", got.RetryInterval)
		}
		if got.Audit != audit {
			t.Errorf("Audit = %+v, want the explicit config", got.Audit)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"valid_zero", Config{}, nil},
		{"negative_timeout", Config{Timeout: -time.Second}, ErrInvalidTimeout},
		{"negative_retries", Config{ConnectRetries: -1}, ErrInvalidRetries},
		{"negative_retry_interval", Config{RetryInterval: -time.Millisecond}, ErrInvalidRetryInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateControllerURL(t *testing.T) {
	t.Run("accepts_http_and_https", func(t *testing.T) {
		for _, controller := range []string{
			"http://127.0.0.1:9990",
			"https://management.example.com",
			"http://localhost:9990/",
		} {
			u, err := validateControllerURL(controller)
			if err != nil {
				t.Errorf("validateControllerURL(%q) error: %v", controller, err)
				continue
			}
			if u.Host == "" {
				t.Errorf("validateControllerURL(%q) lost the host", controller)
			}
		}
	})

	t.Run("rejects_bad_input", func(t *testing.T) {
		for _, controller := range []string{
			"",
			"ftp://host:21",
			"http://",
			"127.0.0.1:9990",
			"://missing-scheme",
		} {
			if _, err := validateControllerURL(controller); err == nil {
				t.Errorf("validateControllerURL(%q) accepted", controller)
			}
		}
	})

	t.Run("missing_controller_sentinel", func(t *testing.T) {
		_, err := validateControllerURL("")
		if !errors.Is(err, ErrMissingController) {
			t.Errorf("error = %v, want ErrMissingController", err)
		}
	})
}
