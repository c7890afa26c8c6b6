// values.go: Attribute-value encoding for management operations
//
// Values collects the attribute set attached to a management operation.
// It preserves insertion order for reproducible wire encoding, replaces
// duplicates in place, and implements the optional-omission contract:
// unset optional attributes and empty lists never reach the server, so a
// freshly created resource carries only what the caller actually chose.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

// Attribute is a single named operation parameter.
type Attribute struct {
	Name  string
	Value any
}

// Values is an immutable, ordered attribute set. The zero value is the
// empty set and is ready to use:
//
//	v := creaper.Values{}.
//		And("durable", true).
//		AndOptional("selector", cmd.Selector).
//		AndList("entries", cmd.Entries...)
//
// Every method returns a new Values; the receiver is never modified.
type Values struct {
	attrs []Attribute
}

// EmptyValues returns the empty attribute set. Equivalent to Values{};
// provided for call sites that read better with an explicit constructor.
func EmptyValues() Values {
	return Values{}
}

// And adds an attribute, replacing any previous attribute of the same name
// while keeping its original position. Supported value types are bool,
// string, int, int64, float64 and []string; anything else panics, as does
// an empty name. Attribute names and shapes come from command code, so a
// violation here is a programming error caught at the call site.
func (v Values) And(name string, value any) Values {
	if name == "" {
		panic("creaper: attribute name must not be empty")
	}
	switch value.(type) {
	case bool, string, int, int64, float64:
	case []string:
		value = copyStrings(value.([]string))
	default:
		panic("creaper: unsupported attribute value type for " + name)
	}
	return v.put(name, value)
}

// AndOptional adds an attribute only when the given pointer is non-nil,
// dereferencing it. A nil pointer means "caller left this unset" and the
// attribute is omitted entirely, letting the server apply its documented
// default. Accepted pointer types: *bool, *string, *int, *int64, *float64.
func (v Values) AndOptional(name string, value any) Values {
	if name == "" {
		panic("creaper: attribute name must not be empty")
	}
	switch p := value.(type) {
	case nil:
		return v
	case *bool:
		if p == nil {
			return v
		}
		return v.put(name, *p)
	case *string:
		if p == nil {
			return v
		}
		return v.put(name, *p)
	case *int:
		if p == nil {
			return v
		}
		return v.put(name, *p)
	case *int64:
		if p == nil {
			return v
		}
		return v.put(name, *p)
	case *float64:
		if p == nil {
			return v
		}
		return v.put(name, *p)
	default:
		panic("creaper: AndOptional requires a pointer value for " + name)
	}
}

// AndList adds a string-list attribute only when the list is non-empty.
// An empty list is treated like an unset optional and omitted.
func (v Values) AndList(name string, items ...string) Values {
	if name == "" {
		panic("creaper: attribute name must not be empty")
	}
	if len(items) == 0 {
		return v
	}
	return v.put(name, copyStrings(items))
}

// Merge returns the union of both sets; attributes from other replace
// same-named attributes of the receiver, keeping the receiver's order.
func (v Values) Merge(other Values) Values {
	out := v
	for _, a := range other.attrs {
		out = out.put(a.Name, a.Value)
	}
	return out
}

// Size returns the number of attributes.
func (v Values) Size() int {
	return len(v.attrs)
}

// IsEmpty reports whether no attributes are set.
func (v Values) IsEmpty() bool {
	return len(v.attrs) == 0
}

// Has reports whether an attribute of the given name is present.
func (v Values) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

// Get returns the attribute value and whether it is present.
func (v Values) Get(name string) (any, bool) {
	for _, a := range v.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Pairs returns the attributes in insertion order. The returned slice is a
// copy; list values are shared but never mutated by this package.
func (v Values) Pairs() []Attribute {
	out := make([]Attribute, len(v.attrs))
	copy(out, v.attrs)
	return out
}

// Map returns the attributes as a plain map for wire encoding. Insertion
// order is not represented; use Pairs where order matters.
func (v Values) Map() map[string]any {
	out := make(map[string]any, len(v.attrs))
	for _, a := range v.attrs {
		out[a.Name] = a.Value
	}
	return out
}

// put implements copy-on-write add-or-replace.
func (v Values) put(name string, value any) Values {
	attrs := make([]Attribute, len(v.attrs), len(v.attrs)+1)
	copy(attrs, v.attrs)
	for i, a := range attrs {
		if a.Name == name {
			attrs[i].Value = value
			return Values{attrs: attrs}
		}
	}
	return Values{attrs: append(attrs, Attribute{Name: name, Value: value})}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
