// version_test.go: Management schema version tests
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"testing"
)

func TestServerVersionOrdering(t *testing.T) {
	if !Version1_7_0.LessThan(Version3_0_0) {
		t.Error("1.7.0 must order before 3.0.0")
	}
	if !Version3_0_0.AtLeast(Version3_0_0) {
		t.Error("AtLeast must include equality")
	}
	if Version3_0_0.LessThan(Version1_7_0) {
		t.Error("3.0.0 must not order before 1.7.0")
	}

	tests := []struct {
		a, b ServerVersion
		want int
	}{
		{ServerVersion{1, 7, 0}, ServerVersion{1, 7, 0}, 0},
		{ServerVersion{1, 7, 0}, ServerVersion{1, 7, 1}, -1},
		{ServerVersion{2, 0, 0}, ServerVersion{1, 9, 9}, 1},
		{ServerVersion{1, 10, 0}, ServerVersion{1, 9, 0}, 1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestServerVersionZero(t *testing.T) {
	var zero ServerVersion
	if !zero.IsZero() {
		t.Error("Zero value must report IsZero")
	}
	if Version1_7_0.IsZero() {
		t.Error("Non-zero version must not report IsZero")
	}
	if zero.String() != "0.0.0" {
		t.Errorf("Zero String() = %q", zero.String())
	}
}

func TestParseServerVersion(t *testing.T) {
	t.Run("full_triple", func(t *testing.T) {
		v, err := ParseServerVersion("3.0.0")
		if err != nil {
			t.Fatalf("Failed to parse version: %v", err)
		}
		if v != Version3_0_0 {
			t.Errorf("Parsed %s, want %s", v, Version3_0_0)
		}
	})

	t.Run("short_forms", func(t *testing.T) {
		v, err := ParseServerVersion("2")
		if err != nil || v != (ServerVersion{Major: 2}) {
			t.Errorf("ParseServerVersion(\"2\") = %s, %v", v, err)
		}
		v, err = ParseServerVersion("1.7")
		if err != nil || v != (ServerVersion{Major: 1, Minor: 7}) {
			t.Errorf("ParseServerVersion(\"1.7\") = %s, %v", v, err)
		}
	})

	t.Run("whitespace_tolerated", func(t *testing.T) {
		v, err := ParseServerVersion("  3.0.0 ")
		if err != nil || v != Version3_0_0 {
			t.Errorf("ParseServerVersion with whitespace = %s, %v", v, err)
		}
	})

	t.Run("rejects_malformed_input", func(t *testing.T) {
		for _, input := range []string{"", "x.y.z", "1.2.3.4", "-1.0.0", "1..3"} {
			if _, err := ParseServerVersion(input); err == nil {
				t.Errorf("ParseServerVersion(%q) should fail", input)
			}
		}
	})
}
