// version.go: Management schema versions of the target server
//
// Servers report a management schema version (major.minor.micro) that
// commands use for structural decisions: which subsystem name a generation
// carries, whether an attribute exists yet. Only structure is derived from
// the version; semantic validation of attribute values stays with the
// server.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// ServerVersion is a management schema version triple.
type ServerVersion struct {
	Major int
	Minor int
	Micro int
}

// Known management schema versions commands branch on.
var (
	// Version1_7_0 is the last generation carrying the legacy messaging
	// subsystem ("messaging" with hornetq-server resources).
	Version1_7_0 = ServerVersion{Major: 1, Minor: 7, Micro: 0}

	// Version3_0_0 introduced the renamed messaging subsystem
	// ("messaging-activemq" with server resources) and the distributed
	// cache capacity-factor / consistent-hash-strategy attributes.
	Version3_0_0 = ServerVersion{Major: 3, Minor: 0, Micro: 0}
)

// String renders "major.minor.micro".
func (v ServerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

// IsZero reports whether the version is unset (no discovery performed).
func (v ServerVersion) IsZero() bool {
	return v == ServerVersion{}
}

// Compare returns -1, 0 or 1 as v is ordered before, equal to or after
// other.
func (v ServerVersion) Compare(other ServerVersion) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	return compareInt(v.Micro, other.Micro)
}

// AtLeast reports whether v >= other.
func (v ServerVersion) AtLeast(other ServerVersion) bool {
	return v.Compare(other) >= 0
}

// LessThan reports whether v < other.
func (v ServerVersion) LessThan(other ServerVersion) bool {
	return v.Compare(other) < 0
}

// ParseServerVersion parses "major", "major.minor" or "major.minor.micro".
func ParseServerVersion(s string) (ServerVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 3 {
		return ServerVersion{}, errors.New(ErrCodeInvalidConfig, "malformed server version").
			WithContext("version", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return ServerVersion{}, errors.New(ErrCodeInvalidConfig, "malformed server version").
				WithContext("version", s)
		}
		nums[i] = n
	}
	return ServerVersion{Major: nums[0], Minor: nums[1], Micro: nums[2]}, nil
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
