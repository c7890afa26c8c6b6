// batch_test.go: Batch accumulator behavior
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"reflect"
	"testing"
)

func TestBatchAccumulatesInOrder(t *testing.T) {
	addr := Subsystem("infinispan").And("cache-container", "web")

	b := NewBatch().
		Add(addr, Values{}.And("statistics-enabled", true)).
		WriteAttribute(addr, "default-cache", "local").
		Remove(addr.And("local-cache", "old"))

	if b.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", b.Size())
	}
	if b.IsEmpty() {
		t.Error("IsEmpty() = true for a populated batch")
	}

	steps := b.Steps()
	wantNames := []string{OpAdd, OpWriteAttribute, OpRemove}
	for i, want := range wantNames {
		if steps[i].Name != want {
			t.Errorf("step %d name = %q, want %q", i, steps[i].Name, want)
		}
	}
	if !steps[0].Address.Equal(addr) {
		t.Errorf("step 0 address = %s, want %s", steps[0].Address, addr)
	}
	if !steps[2].Address.Equal(addr.And("local-cache", "old")) {
		t.Errorf("step 2 address = %s", steps[2].Address)
	}
}

func TestBatchWriteAttributeShape(t *testing.T) {
	addr := Subsystem("undertow")
	b := NewBatch().WriteAttribute(addr, "default-server", "main")

	step := b.Steps()[0]
	got := step.Values.Map()
	want := map[string]any{"name": "default-server", "value": "main"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("write-attribute values = %v, want %v", got, want)
	}
}

func TestBatchCustomOperation(t *testing.T) {
	op := Operation{
		Name:    "list-add",
		Address: Subsystem("elytron"),
		Values:  Values{}.And("name", "providers").And("value", "combined"),
	}
	b := NewBatch().Operation(op)

	steps := b.Steps()
	if len(steps) != 1 {
		t.Fatalf("len(Steps()) = %d, want 1", len(steps))
	}
	if steps[0].Name != "list-add" {
		t.Errorf("step name = %q, want %q", steps[0].Name, "list-add")
	}
}

func TestBatchEmpty(t *testing.T) {
	b := NewBatch()
	if !b.IsEmpty() {
		t.Error("IsEmpty() = false for a fresh batch")
	}
	if b.Size() != 0 {
		t.Errorf("Size() = %d, want 0", b.Size())
	}
	if got := b.Steps(); len(got) != 0 {
		t.Errorf("Steps() = %v, want empty", got)
	}
}

func TestBatchStepsReturnsCopy(t *testing.T) {
	b := NewBatch().Add(Subsystem("datasources"), Values{})

	steps := b.Steps()
	steps[0].Name = "mutated"

	if got := b.Steps()[0].Name; got != OpAdd {
		t.Errorf("batch step name after caller mutation = %q, want %q", got, OpAdd)
	}

	// The batch keeps accumulating after Steps is taken.
	b.Remove(Subsystem("datasources"))
	if b.Size() != 2 {
		t.Errorf("Size() after further append = %d, want 2", b.Size())
	}
	if len(steps) != 1 {
		t.Errorf("earlier snapshot grew to %d steps", len(steps))
	}
}
