// Shared helpers for the Creaper CLI
//
// Flag-value parsing, document path splitting, and terminal rendering
// used by the command handlers.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"

	"github.com/jmartisk/creaper"
)

// SplitEntries splits a comma-separated flag value into trimmed,
// non-empty items.
func SplitEntries(s string) []string {
	var entries []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	return entries
}

// SplitPath splits a dot-notation document key into path segments.
func SplitPath(key string) []string {
	var path []string
	for _, part := range strings.Split(key, ".") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			path = append(path, trimmed)
		}
	}
	return path
}

// ParseValue parses a string flag into the matching Go type. Explicit
// "true"/"false" become bools; numeric strings become int64 or float64;
// everything else stays a string. ParseBool is not used directly because
// it would turn "0"/"1" into bools where integers read more naturally.
func ParseValue(value string) any {
	lowerValue := strings.ToLower(value)
	if lowerValue == "true" || lowerValue == "false" {
		return lowerValue == "true"
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// Optional flag parsers: an empty string means the caller never passed
// the flag, which must stay distinguishable from any real value so the
// attribute can be omitted entirely.

// ParseOptionalBool parses "true"/"false" into a bool pointer, or nil
// for an empty value.
func ParseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	switch strings.ToLower(s) {
	case "true":
		value := true
		return &value, nil
	case "false":
		value := false
		return &value, nil
	}
	return nil, errors.New(creaper.ErrCodeInvalidCommand, "flag value must be true or false").
		WithContext("value", s)
}

// ParseOptionalInt parses a decimal flag into an int pointer, or nil
// for an empty value.
func ParseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.Wrap(err, creaper.ErrCodeInvalidCommand, "flag value must be an integer").
			WithContext("value", s)
	}
	return &value, nil
}

// ParseOptionalInt64 parses a decimal flag into an int64 pointer, or
// nil for an empty value.
func ParseOptionalInt64(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, creaper.ErrCodeInvalidCommand, "flag value must be an integer").
			WithContext("value", s)
	}
	return &value, nil
}

// ParseOptionalFloat parses a decimal flag into a float64 pointer, or
// nil for an empty value.
func ParseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Wrap(err, creaper.ErrCodeInvalidCommand, "flag value must be a number").
			WithContext("value", s)
	}
	return &value, nil
}

// FormatResource renders a resource attribute map as sorted
// "name = value" lines for terminal output.
func FormatResource(attrs map[string]any) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s = %s", name, FormatValue(attrs[name])))
	}
	return lines
}

// FormatValue renders one attribute value for terminal output. Lists
// and nested maps get a compact bracketed form; nil renders as the
// management model's "undefined".
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "undefined"
	case []string:
		return "[" + strings.Join(value, ", ") + "]"
	case []any:
		parts := make([]string, len(value))
		for i, item := range value {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		names := make([]string, 0, len(value))
		for name := range value {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+"="+FormatValue(value[name]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", value)
	}
}

// CheckFileWriteable verifies that a file can be written to. For a file
// that does not exist yet, the containing directory must be writable.
func CheckFileWriteable(filePath string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return checkDirectoryWriteable(filepath.Dir(filePath))
	}
	if err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}

	mode := info.Mode()
	if mode&0200 == 0 {
		return fmt.Errorf("file is read-only (mode: %v)", mode)
	}

	return nil
}

// checkDirectoryWriteable verifies that a directory can be written to.
func checkDirectoryWriteable(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		return fmt.Errorf("cannot access directory %s: %w", dirPath, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dirPath)
	}

	mode := info.Mode()
	if mode&0200 == 0 {
		return fmt.Errorf("directory is not writable (mode: %v)", mode)
	}

	return nil
}
