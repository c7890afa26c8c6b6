// batch.go: Atomic multi-step operation batches
//
// A Batch accumulates ordered management operations that must be applied
// as one unit: the server either applies every step or none. Commands use
// batches when a single logical change touches several tree nodes, e.g. a
// container that has to exist before its members.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

// Batch is a mutable, single-owner accumulator of operations submitted
// together as one composite request. Like a command builder it is meant to
// be filled by one goroutine and handed to Operations.Batch once; after
// submission the contained steps are not reused.
type Batch struct {
	steps []Operation
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Add appends a create step for the resource at address with the given
// attributes.
func (b *Batch) Add(address Address, values Values) *Batch {
	b.steps = append(b.steps, Operation{Name: OpAdd, Address: address, Values: values})
	return b
}

// Remove appends a delete step for the resource at address.
func (b *Batch) Remove(address Address) *Batch {
	b.steps = append(b.steps, Operation{Name: OpRemove, Address: address})
	return b
}

// WriteAttribute appends an attribute update step.
func (b *Batch) WriteAttribute(address Address, name string, value any) *Batch {
	b.steps = append(b.steps, Operation{
		Name:    OpWriteAttribute,
		Address: address,
		Values:  Values{}.And("name", name).And("value", value),
	})
	return b
}

// Operation appends an arbitrary pre-built step. Commands that need an
// operation outside the convenience set above use this directly.
func (b *Batch) Operation(op Operation) *Batch {
	b.steps = append(b.steps, op)
	return b
}

// Size returns the number of accumulated steps.
func (b *Batch) Size() int {
	return len(b.steps)
}

// IsEmpty reports whether the batch has no steps. Submitting an empty
// batch is a documented no-op.
func (b *Batch) IsEmpty() bool {
	return len(b.steps) == 0
}

// Steps returns the accumulated operations in insertion order. The
// returned slice is a copy; the batch can keep accumulating afterwards.
func (b *Batch) Steps() []Operation {
	out := make([]Operation, len(b.steps))
	copy(out, b.steps)
	return out
}
