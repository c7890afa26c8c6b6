// address.go: Resource addressing for the Creaper management tree
//
// An Address identifies a single node in a server's hierarchical configuration
// tree as an ordered list of (type, name) segments, e.g.
// /subsystem=messaging-activemq/server=default/jms-queue=myQueue.
// Addresses are immutable: every composition operation returns a new value,
// so a partially built address can be shared and extended safely.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"strings"

	"github.com/agilira/go-errors"
)

// Segment is one (type, name) pair of a resource address.
type Segment struct {
	Type string
	Name string
}

// Address identifies a node in the management resource tree as an ordered,
// immutable sequence of segments. The zero value is the tree root.
type Address struct {
	segments []Segment
}

// Root returns the address of the resource tree root ("/").
func Root() Address {
	return Address{}
}

// Subsystem returns an address rooted at /subsystem=<name>.
// It panics if name is empty; subsystem names are compile-time constants
// in command code, never unchecked user input.
func Subsystem(name string) Address {
	return Root().And("subsystem", name)
}

// And appends a (type, name) segment and returns the extended address.
// The receiver is never modified. It panics on an empty type or name:
// segment structure is supplied by command implementations, and a hole
// there is a programming error that must not travel to the server.
func (a Address) And(segmentType, segmentName string) Address {
	if segmentType == "" {
		panic("creaper: address segment type must not be empty")
	}
	if segmentName == "" {
		panic("creaper: address segment name must not be empty")
	}
	segments := make([]Segment, len(a.segments), len(a.segments)+1)
	copy(segments, a.segments)
	return Address{segments: append(segments, Segment{Type: segmentType, Name: segmentName})}
}

// IsRoot reports whether the address points at the resource tree root.
func (a Address) IsRoot() bool {
	return len(a.segments) == 0
}

// Size returns the number of segments.
func (a Address) Size() int {
	return len(a.segments)
}

// Segments returns a copy of the segment list. Mutating the returned slice
// does not affect the address.
func (a Address) Segments() []Segment {
	out := make([]Segment, len(a.segments))
	copy(out, a.segments)
	return out
}

// Last returns the final segment and true, or a zero segment and false for
// the root address. Useful for error context ("which resource failed").
func (a Address) Last() (Segment, bool) {
	if len(a.segments) == 0 {
		return Segment{}, false
	}
	return a.segments[len(a.segments)-1], true
}

// String renders the address in CLI form: /type=name/type=name.
// The root address renders as "/".
func (a Address) String() string {
	if len(a.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range a.segments {
		b.WriteByte('/')
		b.WriteString(s.Type)
		b.WriteByte('=')
		b.WriteString(s.Name)
	}
	return b.String()
}

// Equal reports whether two addresses have identical segment sequences.
func (a Address) Equal(other Address) bool {
	if len(a.segments) != len(other.segments) {
		return false
	}
	for i, s := range a.segments {
		if other.segments[i] != s {
			return false
		}
	}
	return true
}

// ParseAddress parses the /type=name/type=name form produced by String.
// "/" and "" parse to the root address. Unlike And, this path handles
// user-supplied input and therefore returns an error instead of panicking.
func ParseAddress(s string) (Address, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "/" {
		return Root(), nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Address{}, errors.New(ErrCodeInvalidAddress, "address must start with '/'").
			WithContext("address", s)
	}
	addr := Root()
	for _, part := range strings.Split(trimmed[1:], "/") {
		segType, segName, ok := strings.Cut(part, "=")
		if !ok || segType == "" || segName == "" {
			return Address{}, errors.New(ErrCodeInvalidAddress, "address segment must have the form type=name").
				WithContext("address", s).
				WithContext("segment", part)
		}
		addr = addr.And(segType, segName)
	}
	return addr, nil
}
