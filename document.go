// document.go: Persisted configuration document model for offline editing
//
// A ConfigDocument is the parsed form of a server's persisted
// configuration: a nested map mirroring the resource tree, loaded from
// YAML or JSON, edited in place by transforms and written back atomically
// (temp file + rename). A content hash taken at load time prevents
// rewriting documents no edit actually changed.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"encoding/json"
	"fmt"
	"hash"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// DocumentFormat identifies the serialization of a configuration document.
type DocumentFormat int

const (
	DocumentYAML DocumentFormat = iota
	DocumentJSON
)

func (f DocumentFormat) String() string {
	switch f {
	case DocumentYAML:
		return "yaml"
	case DocumentJSON:
		return "json"
	default:
		return "unknown"
	}
}

// DetectDocumentFormat maps a file extension to a document format.
func DetectDocumentFormat(path string) (DocumentFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return DocumentYAML, nil
	case ".json":
		return DocumentJSON, nil
	default:
		return DocumentYAML, errors.New(ErrCodeInvalidDocument, "unsupported document extension").
			WithContext("path", path)
	}
}

// ConfigDocument is a loaded configuration document. It is not safe for
// concurrent mutation; the offline client serializes access.
type ConfigDocument struct {
	path       string
	format     DocumentFormat
	tree       map[string]any
	loadedHash uint64
}

// LoadDocument reads and parses the document at path. A malformed
// document is a fatal configuration error, never silently repaired.
func LoadDocument(path string) (*ConfigDocument, error) {
	if err := validateDocumentPath(path); err != nil {
		return nil, err
	}
	format, err := DetectDocumentFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidDocument, "failed to read configuration document").
			WithContext("path", path)
	}

	tree := make(map[string]any)
	switch format {
	case DocumentJSON:
		err = json.Unmarshal(data, &tree)
	default:
		err = yaml.Unmarshal(data, &tree)
	}
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidDocument, "failed to parse configuration document").
			WithContext("path", path).
			WithContext("format", format.String())
	}

	return &ConfigDocument{
		path:       path,
		format:     format,
		tree:       tree,
		loadedHash: hashTree(tree),
	}, nil
}

// NewDocument creates an empty document that will be written to path on
// Save. Used by template generation; the file itself is not created yet.
func NewDocument(path string) (*ConfigDocument, error) {
	if err := validateDocumentPath(path); err != nil {
		return nil, err
	}
	format, err := DetectDocumentFormat(path)
	if err != nil {
		return nil, err
	}
	return &ConfigDocument{
		path:   path,
		format: format,
		tree:   make(map[string]any),
		// loadedHash deliberately differs from the empty-tree hash so a
		// fresh document is always written once.
		loadedHash: 0,
	}, nil
}

// Path returns the backing file path.
func (d *ConfigDocument) Path() string {
	return d.path
}

// Format returns the document serialization format.
func (d *ConfigDocument) Format() DocumentFormat {
	return d.format
}

// Has reports whether a value exists at the given path.
func (d *ConfigDocument) Has(path ...string) bool {
	_, ok := d.Get(path...)
	return ok
}

// Get returns the value at the given path and whether it exists.
func (d *ConfigDocument) Get(path ...string) (any, bool) {
	var current any = d.tree
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetMap returns the map at the given path. Missing paths and non-map
// values report false.
func (d *ConfigDocument) GetMap(path ...string) (map[string]any, bool) {
	v, ok := d.Get(path...)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Set places value at the given path, creating intermediate maps as
// needed. Setting through an existing non-map value is an error: edits
// must not silently destroy unrelated structure.
func (d *ConfigDocument) Set(path []string, value any) error {
	if len(path) == 0 {
		return errors.New(ErrCodeInvalidDocument, "document path must not be empty")
	}
	parent, err := d.EnsureMap(path[:len(path)-1]...)
	if err != nil {
		return err
	}
	parent[path[len(path)-1]] = value
	return nil
}

// EnsureMap returns the map at the given path, creating it and any
// missing intermediates. Fails if an intermediate exists as a non-map.
func (d *ConfigDocument) EnsureMap(path ...string) (map[string]any, error) {
	current := d.tree
	for i, key := range path {
		next, ok := current[key]
		if !ok {
			created := make(map[string]any)
			current[key] = created
			current = created
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return nil, errors.New(ErrCodeInvalidDocument, "document path collides with a scalar value").
				WithContext("path", strings.Join(path[:i+1], ".")).
				WithContext("document", d.path)
		}
		current = m
	}
	return current, nil
}

// Delete removes the value at the given path and reports whether
// something was removed.
func (d *ConfigDocument) Delete(path ...string) bool {
	if len(path) == 0 {
		return false
	}
	parent, ok := d.GetMap(path[:len(path)-1]...)
	if !ok {
		return false
	}
	if _, present := parent[path[len(path)-1]]; !present {
		return false
	}
	delete(parent, path[len(path)-1])
	return true
}

// Tree returns a deep copy of the document tree for inspection. Edits go
// through Set/EnsureMap/Delete, never through the copy.
func (d *ConfigDocument) Tree() map[string]any {
	return deepCopyTree(d.tree)
}

// HasChanges reports whether the tree differs from what was loaded.
func (d *ConfigDocument) HasChanges() bool {
	return hashTree(d.tree) != d.loadedHash
}

// Save serializes the document and writes it atomically. Documents
// without changes are left untouched, preserving mtime and any external
// formatting.
func (d *ConfigDocument) Save() error {
	if !d.HasChanges() {
		return nil
	}

	var data []byte
	var err error
	switch d.format {
	case DocumentJSON:
		data, err = json.MarshalIndent(d.tree, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		data, err = yaml.Marshal(d.tree)
	}
	if err != nil {
		return errors.Wrap(err, ErrCodeInvalidDocument, "failed to serialize configuration document").
			WithContext("path", d.path)
	}

	if err := atomicWriteFile(d.path, data); err != nil {
		return errors.Wrap(err, ErrCodeInvalidDocument, "failed to write configuration document").
			WithContext("path", d.path)
	}
	d.loadedHash = hashTree(d.tree)
	return nil
}

// atomicWriteFile performs atomic file write using temporary file + rename.
// This prevents corruption if the process is interrupted during writing.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	// Temporary file in the same directory (ensures same filesystem)
	tempPath := filepath.Join(dir, "."+base+".tmp."+fmt.Sprintf("%d", time.Now().UnixNano()))

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to cleanup temp file %s: %v\n", tempPath, removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// validateDocumentPath rejects paths an edit must never follow: empty,
// traversal sequences, null bytes. Deliberately narrower than a full
// filesystem sandbox; the offline client edits documents the caller
// already owns.
func validateDocumentPath(path string) error {
	if path == "" {
		return errors.New(ErrCodeInvalidDocument, "document path must not be empty")
	}
	if strings.ContainsRune(path, 0) {
		return errors.New(ErrCodeInvalidDocument, "document path contains a null byte")
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return errors.New(ErrCodeInvalidDocument, "document path contains a traversal segment").
				WithContext("path", path)
		}
	}
	return nil
}

// deepCopyTree creates a deep copy of a document tree.
func deepCopyTree(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		switch val := v.(type) {
		case map[string]any:
			dst[k] = deepCopyTree(val)
		case []any:
			dst[k] = deepCopyTreeSlice(val)
		case []string:
			dst[k] = append([]string(nil), val...)
		default:
			dst[k] = val
		}
	}
	return dst
}

func deepCopyTreeSlice(src []any) []any {
	if src == nil {
		return nil
	}
	dst := make([]any, len(src))
	for i, v := range src {
		switch val := v.(type) {
		case map[string]any:
			dst[i] = deepCopyTree(val)
		case []any:
			dst[i] = deepCopyTreeSlice(val)
		case []string:
			dst[i] = append([]string(nil), val...)
		default:
			dst[i] = val
		}
	}
	return dst
}

// hashTree computes an FNV-1a hash of the tree for change detection.
// Keys are visited in sorted order so the hash is stable across runs.
func hashTree(tree map[string]any) uint64 {
	h := fnv.New64a()
	hashTreeValue(h, tree)
	return h.Sum64()
}

func hashTreeValue(h hash.Hash64, v any) {
	switch val := v.(type) {
	case nil:
		h.Write([]byte("nil"))
	case bool:
		if val {
			h.Write([]byte("true"))
		} else {
			h.Write([]byte("false"))
		}
	case int:
		fmt.Fprintf(h, "%d", val)
	case int64:
		fmt.Fprintf(h, "%d", val)
	case float64:
		fmt.Fprintf(h, "%g", val)
	case string:
		h.Write([]byte(val))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			hashTreeValue(h, val[k])
		}
	case []any:
		for _, item := range val {
			hashTreeValue(h, item)
		}
	case []string:
		for _, item := range val {
			h.Write([]byte(item))
		}
	default:
		fmt.Fprintf(h, "%v", val)
	}
}
