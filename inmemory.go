// inmemory.go: In-memory management server
//
// InMemoryServer is a complete ManagementTransport backed by an in-process
// resource tree. It enforces the same structural rules a live server does
// (parents before children, no duplicate adds, remove only what exists)
// and applies composite operations atomically against a cloned tree, so
// batch rollback is observable. Tests and embedders use it in place of a
// network transport; the wire format never comes into play.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"context"
	"fmt"
	"sync"

	"github.com/agilira/go-errors"
)

// InMemoryServer implements ManagementTransport over an in-process tree.
// All operations are serialized by an internal mutex, mirroring the
// per-connection serialization of a real management endpoint.
type InMemoryServer struct {
	mu     sync.Mutex
	root   *resourceNode
	closed bool
}

type resourceNode struct {
	attributes map[string]any
	children   map[Segment]*resourceNode
}

func newResourceNode() *resourceNode {
	return &resourceNode{
		attributes: make(map[string]any),
		children:   make(map[Segment]*resourceNode),
	}
}

// NewInMemoryServer creates an empty server reporting the given management
// schema version on its root resource.
func NewInMemoryServer(version ServerVersion) *InMemoryServer {
	root := newResourceNode()
	root.attributes[attrManagementMajorVersion] = version.Major
	root.attributes[attrManagementMinorVersion] = version.Minor
	root.attributes[attrManagementMicroVersion] = version.Micro
	return &InMemoryServer{root: root}
}

// Seed creates the resource at address together with any missing ancestor
// resources, all without attributes. Test fixtures use it to stand up the
// containers commands expect (subsystems, servers, cache containers).
// Seeding an existing resource is a no-op.
func (s *InMemoryServer) Seed(addresses ...Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, address := range addresses {
		node := s.root
		for _, seg := range address.Segments() {
			child, ok := node.children[seg]
			if !ok {
				child = newResourceNode()
				node.children[seg] = child
			}
			node = child
		}
	}
}

// Execute applies a single operation to the live tree.
func (s *InMemoryServer) Execute(ctx context.Context, op Operation) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, errors.Wrap(err, ErrCodeTransportFailed, "operation canceled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, errors.New(ErrCodeTransportFailed, "in-memory server is closed")
	}
	if op.Name == OpComposite {
		return failedResult("composite operations must be submitted as a batch"), nil
	}
	return applyToTree(s.root, op), nil
}

// ExecuteBatch applies all steps atomically: they run against a clone of
// the tree, and the clone replaces the live tree only if every step
// succeeded. A failed batch therefore leaves no observable effect.
func (s *InMemoryServer) ExecuteBatch(ctx context.Context, steps []Operation) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, errors.Wrap(err, ErrCodeTransportFailed, "batch canceled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Result{}, errors.New(ErrCodeTransportFailed, "in-memory server is closed")
	}
	if len(steps) == 0 {
		return successResult(nil), nil
	}

	staged := s.root.clone()
	for i, op := range steps {
		if op.Name == OpComposite {
			return failedStepResult(i, "nested composite operations are not supported"), nil
		}
		res := applyToTree(staged, op)
		if !res.IsSuccess() {
			return failedStepResult(i, res.FailureDescription), nil
		}
	}
	s.root = staged
	return successResult(nil), nil
}

// Close marks the server closed; later operations fail with a transport
// error. Safe to call multiple times.
func (s *InMemoryServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// applyToTree executes one operation against the given tree root. Callers
// hold the server mutex or operate on a private clone.
func applyToTree(root *resourceNode, op Operation) Result {
	switch op.Name {
	case OpAdd:
		return treeAdd(root, op)
	case OpRemove:
		return treeRemove(root, op)
	case OpReadResource:
		return treeReadResource(root, op)
	case OpReadAttribute:
		return treeReadAttribute(root, op)
	case OpWriteAttribute:
		return treeWriteAttribute(root, op)
	default:
		return failedResult(fmt.Sprintf("unknown operation %q", op.Name))
	}
}

func treeAdd(root *resourceNode, op Operation) Result {
	if op.Address.IsRoot() {
		return failedResult("cannot add the root resource")
	}
	segments := op.Address.Segments()
	parent, ok := lookupNode(root, segments[:len(segments)-1])
	if !ok {
		return failedResult(fmt.Sprintf("parent of %s does not exist", op.Address))
	}
	last := segments[len(segments)-1]
	if _, exists := parent.children[last]; exists {
		return failedResult(fmt.Sprintf("duplicate resource %s", op.Address))
	}
	node := newResourceNode()
	for _, a := range op.Values.Pairs() {
		node.attributes[a.Name] = a.Value
	}
	parent.children[last] = node
	return successResult(nil)
}

func treeRemove(root *resourceNode, op Operation) Result {
	if op.Address.IsRoot() {
		return failedResult("cannot remove the root resource")
	}
	segments := op.Address.Segments()
	parent, ok := lookupNode(root, segments[:len(segments)-1])
	if !ok {
		return failedResult(fmt.Sprintf("resource %s not found", op.Address))
	}
	last := segments[len(segments)-1]
	if _, exists := parent.children[last]; !exists {
		return failedResult(fmt.Sprintf("resource %s not found", op.Address))
	}
	delete(parent.children, last)
	return successResult(nil)
}

func treeReadResource(root *resourceNode, op Operation) Result {
	node, ok := lookupNode(root, op.Address.Segments())
	if !ok {
		return failedResult(fmt.Sprintf("resource %s not found", op.Address))
	}
	attrs := make(map[string]any, len(node.attributes))
	for k, v := range node.attributes {
		attrs[k] = v
	}
	return successResult(attrs)
}

func treeReadAttribute(root *resourceNode, op Operation) Result {
	name, ok := op.Values.Get("name")
	if !ok {
		return failedResult("read-attribute requires a name parameter")
	}
	node, found := lookupNode(root, op.Address.Segments())
	if !found {
		return failedResult(fmt.Sprintf("resource %s not found", op.Address))
	}
	value, present := node.attributes[name.(string)]
	if !present {
		// Undefined attribute: successful read with no payload.
		return successResult(nil)
	}
	return successResult(value)
}

func treeWriteAttribute(root *resourceNode, op Operation) Result {
	name, ok := op.Values.Get("name")
	if !ok {
		return failedResult("write-attribute requires a name parameter")
	}
	value, ok := op.Values.Get("value")
	if !ok {
		return failedResult("write-attribute requires a value parameter")
	}
	node, found := lookupNode(root, op.Address.Segments())
	if !found {
		return failedResult(fmt.Sprintf("resource %s not found", op.Address))
	}
	node.attributes[name.(string)] = value
	return successResult(nil)
}

func lookupNode(root *resourceNode, segments []Segment) (*resourceNode, bool) {
	node := root
	for _, seg := range segments {
		child, ok := node.children[seg]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

func (n *resourceNode) clone() *resourceNode {
	out := newResourceNode()
	for k, v := range n.attributes {
		out.attributes[k] = v
	}
	for seg, child := range n.children {
		out.children[seg] = child.clone()
	}
	return out
}
