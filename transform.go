// transform.go: Named document edits with schema-generation dispatch
//
// The offline path cannot ask the server how its configuration is shaped:
// the same logical subsystem may appear under different names across
// schema generations (renames, restructures). A ConfigTransform therefore
// carries one subtree selector per known generation, and the dispatcher
// applies the registered edit under every selector whose subtree the
// document actually contains. A document holds at most one generation,
// but the code never assumes which; absent subtrees are documented
// no-ops, missing edit implementations are fatal.
//
// Edits register globally per (name, generation), mirroring the provider
// registry pattern: command packages register in init(), duplicates are
// rejected.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"fmt"
	"sync"

	"github.com/agilira/go-errors"
)

// Generation tags one schema generation of a managed subsystem.
type Generation string

// EditFunc is a registered structural edit. It mutates the document
// beneath subtreePath (the generation's subsystem root, which is known to
// exist when the edit runs) using the transform parameters.
type EditFunc func(doc *ConfigDocument, subtreePath []string, params map[string]any) error

// Subtree selects where one generation's subsystem lives in the document.
type Subtree struct {
	Generation Generation
	Path       []string
}

// SubsystemSubtree selects /subsystem=<name> for the given generation.
func SubsystemSubtree(generation Generation, subsystem string) Subtree {
	return Subtree{Generation: generation, Path: []string{"subsystem", subsystem}}
}

// ConfigTransform is a named, parameterized structural edit request built
// by a command and dispatched by the offline client. Like a Batch it is a
// mutable single-owner accumulator, handed over once.
type ConfigTransform struct {
	name     string
	subtrees []Subtree
	params   map[string]any
}

// NewTransform starts a transform for the named edit.
func NewTransform(name string) *ConfigTransform {
	return &ConfigTransform{
		name:   name,
		params: make(map[string]any),
	}
}

// Subtree adds a generation selector. Selectors are tried in insertion
// order.
func (t *ConfigTransform) Subtree(s Subtree) *ConfigTransform {
	t.subtrees = append(t.subtrees, s)
	return t
}

// Parameter adds a named parameter passed to the edit. Transforms carry
// every attribute the live path would encode, plus derived renderings a
// document format needs (e.g. a delimited-string form of a list).
func (t *ConfigTransform) Parameter(name string, value any) *ConfigTransform {
	t.params[name] = value
	return t
}

// Name returns the edit name.
func (t *ConfigTransform) Name() string {
	return t.name
}

// Subtrees returns the generation selectors in insertion order.
func (t *ConfigTransform) Subtrees() []Subtree {
	out := make([]Subtree, len(t.subtrees))
	copy(out, t.subtrees)
	return out
}

// Parameters returns a copy of the parameter map.
func (t *ConfigTransform) Parameters() map[string]any {
	out := make(map[string]any, len(t.params))
	for k, v := range t.params {
		out[k] = v
	}
	return out
}

// validate checks the transform is dispatchable.
func (t *ConfigTransform) validate() error {
	if t.name == "" {
		return errors.New(ErrCodeTransformFailed, "transform has no edit name")
	}
	if len(t.subtrees) == 0 {
		return errors.New(ErrCodeTransformFailed, "transform has no subtree selectors").
			WithContext("edit", t.name)
	}
	return nil
}

// --- Edit registry ---

type editKey struct {
	name       string
	generation Generation
}

var (
	editRegistry = make(map[editKey]EditFunc)
	editMutex    sync.RWMutex
)

// RegisterEdit registers the implementation of a named edit for one
// schema generation. Command packages register their edits in init();
// duplicate registrations are rejected.
func RegisterEdit(name string, generation Generation, fn EditFunc) error {
	if name == "" {
		return errors.New(ErrCodeInvalidConfig, "edit name cannot be empty")
	}
	if generation == "" {
		return errors.New(ErrCodeInvalidConfig, "edit generation cannot be empty")
	}
	if fn == nil {
		return errors.New(ErrCodeInvalidConfig, "edit function cannot be nil")
	}

	editMutex.Lock()
	defer editMutex.Unlock()

	key := editKey{name: name, generation: generation}
	if _, exists := editRegistry[key]; exists {
		return errors.New(ErrCodeInvalidConfig,
			fmt.Sprintf("edit '%s' for generation '%s' already registered", name, generation))
	}

	editRegistry[key] = fn
	return nil
}

// lookupEdit returns the registered implementation, if any.
func lookupEdit(name string, generation Generation) (EditFunc, bool) {
	editMutex.RLock()
	defer editMutex.RUnlock()
	fn, ok := editRegistry[editKey{name: name, generation: generation}]
	return fn, ok
}
