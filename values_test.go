// values_test.go: Attribute set model tests
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"reflect"
	"testing"
)

func TestValuesEmpty(t *testing.T) {
	empty := EmptyValues()
	if !empty.IsEmpty() {
		t.Error("EmptyValues() must report empty")
	}
	if empty.Size() != 0 {
		t.Errorf("Size() = %d, want 0", empty.Size())
	}
	if _, ok := empty.Get("anything"); ok {
		t.Error("Get on empty set must report absent")
	}

	// The zero value is usable directly.
	zero := Values{}.And("durable", true)
	if zero.Size() != 1 {
		t.Errorf("Zero-value Values unusable, Size() = %d", zero.Size())
	}
}

func TestValuesAndPreservesOrder(t *testing.T) {
	values := EmptyValues().
		And("entries", []string{"java:/a"}).
		And("durable", true).
		And("selector", "priority > 3")

	pairs := values.Pairs()
	wantOrder := []string{"entries", "durable", "selector"}
	if len(pairs) != len(wantOrder) {
		t.Fatalf("Pairs() length = %d, want %d", len(pairs), len(wantOrder))
	}
	for i, name := range wantOrder {
		if pairs[i].Name != name {
			t.Errorf("Pairs()[%d].Name = %s, want %s", i, pairs[i].Name, name)
		}
	}
}

// TestValuesAndReplacesInPlace sets the same attribute twice; the second
// value must win while the attribute keeps its original position.
func TestValuesAndReplacesInPlace(t *testing.T) {
	values := EmptyValues().
		And("durable", true).
		And("selector", "a").
		And("durable", false)

	if values.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", values.Size())
	}
	got, _ := values.Get("durable")
	if got != false {
		t.Errorf("durable = %v, want false", got)
	}
	if values.Pairs()[0].Name != "durable" {
		t.Error("Replaced attribute lost its position")
	}
}

func TestValuesImmutability(t *testing.T) {
	base := EmptyValues().And("durable", true)
	extended := base.And("selector", "x")

	if base.Size() != 1 {
		t.Errorf("Base set was modified by And, Size() = %d", base.Size())
	}
	if extended.Size() != 2 {
		t.Errorf("Extended set Size() = %d, want 2", extended.Size())
	}

	// Mutating the slice handed to AndList must not reach the stored copy.
	input := []string{"java:/a", "java:/b"}
	listed := EmptyValues().AndList("entries", input...)
	input[0] = "mutated"
	stored, _ := listed.Get("entries")
	if !reflect.DeepEqual(stored, []string{"java:/a", "java:/b"}) {
		t.Errorf("AndList shared the caller's backing array: %v", stored)
	}
}

func TestValuesAndOptional(t *testing.T) {
	t.Run("nil_pointers_are_omitted", func(t *testing.T) {
		values := EmptyValues().
			AndOptional("durable", (*bool)(nil)).
			AndOptional("selector", (*string)(nil)).
			AndOptional("queue-size", (*int)(nil)).
			AndOptional("remote-timeout", (*int64)(nil)).
			AndOptional("capacity-factor", (*float64)(nil)).
			AndOptional("untyped", nil)
		if !values.IsEmpty() {
			t.Errorf("Unset optionals must be omitted entirely, got %v", values.Pairs())
		}
	})

	t.Run("set_pointers_are_dereferenced", func(t *testing.T) {
		durable := true
		selector := "priority > 3"
		size := 1000
		timeout := int64(17500)
		factor := 1.5

		values := EmptyValues().
			AndOptional("durable", &durable).
			AndOptional("selector", &selector).
			AndOptional("queue-size", &size).
			AndOptional("remote-timeout", &timeout).
			AndOptional("capacity-factor", &factor)

		expected := map[string]any{
			"durable":         true,
			"selector":        "priority > 3",
			"queue-size":      1000,
			"remote-timeout":  int64(17500),
			"capacity-factor": 1.5,
		}
		for name, want := range expected {
			got, ok := values.Get(name)
			if !ok {
				t.Errorf("Attribute %s missing", name)
				continue
			}
			if got != want {
				t.Errorf("Attribute %s = %v (%T), want %v (%T)", name, got, got, want, want)
			}
		}
	})

	t.Run("non_pointer_panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("AndOptional with a non-pointer value must panic")
			}
		}()
		EmptyValues().AndOptional("durable", true)
	})
}

func TestValuesAndList(t *testing.T) {
	if !EmptyValues().AndList("entries").IsEmpty() {
		t.Error("Empty list must be omitted like an unset optional")
	}

	values := EmptyValues().AndList("entries", "java:/a", "java:/b")
	got, ok := values.Get("entries")
	if !ok {
		t.Fatal("entries attribute missing")
	}
	if !reflect.DeepEqual(got, []string{"java:/a", "java:/b"}) {
		t.Errorf("entries = %v", got)
	}
}

func TestValuesAndRejectsUnsupportedTypes(t *testing.T) {
	t.Run("unsupported_value_type", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("And with an unsupported value type must panic")
			}
		}()
		EmptyValues().And("attrs", map[string]any{})
	})

	t.Run("empty_name", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("And with an empty name must panic")
			}
		}()
		EmptyValues().And("", true)
	})
}

func TestValuesMerge(t *testing.T) {
	base := EmptyValues().And("durable", true).And("selector", "a")
	overlay := EmptyValues().And("selector", "b").And("queue-size", 10)

	merged := base.Merge(overlay)
	if merged.Size() != 3 {
		t.Fatalf("Merged Size() = %d, want 3", merged.Size())
	}
	if got, _ := merged.Get("selector"); got != "b" {
		t.Errorf("selector = %v, overlay must win", got)
	}
	if got, _ := merged.Get("durable"); got != true {
		t.Errorf("durable = %v, receiver attribute lost", got)
	}
	// Merge must not touch either input.
	if got, _ := base.Get("selector"); got != "a" {
		t.Error("Merge modified the receiver")
	}
}

func TestValuesMap(t *testing.T) {
	values := EmptyValues().And("durable", true).AndList("entries", "java:/a")
	m := values.Map()
	if len(m) != 2 {
		t.Fatalf("Map() length = %d, want 2", len(m))
	}
	if m["durable"] != true {
		t.Errorf("Map durable = %v", m["durable"])
	}
}
