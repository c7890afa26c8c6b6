// operation.go: Wire-level operation and result model
//
// Operation is the unit the management protocol understands: an operation
// name, a target address and an attribute set. Result is the server's
// answer, a loosely typed outcome/value/failure triple with typed accessors
// that convert the untyped payload back into Go values, tolerating the
// numeric widening JSON and YAML decoding introduce.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"fmt"
	"math"

	"github.com/agilira/go-errors"
)

// Management operation names understood by the protocol.
const (
	OpAdd            = "add"
	OpRemove         = "remove"
	OpReadResource   = "read-resource"
	OpReadAttribute  = "read-attribute"
	OpWriteAttribute = "write-attribute"
	OpComposite      = "composite"
)

// Result outcomes as reported by the server.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Operation is a single management-protocol request.
type Operation struct {
	Name    string
	Address Address
	Values  Values
}

// String renders the operation for error context and audit entries,
// e.g. "add at /subsystem=infinispan/cache-container=default".
func (op Operation) String() string {
	return op.Name + " at " + op.Address.String()
}

// Result is the server's answer to one operation. Value holds the decoded
// "result" payload: scalars, []any lists or map[string]any resource views,
// depending on the operation. A nil Value on success means "undefined".
// FailedStep is the zero-based index of the rejected step of a composite
// operation, or -1 when not applicable.
type Result struct {
	Outcome            string
	Value              any
	FailureDescription string
	FailedStep         int
}

// IsSuccess reports whether the server applied the operation.
func (r Result) IsSuccess() bool {
	return r.Outcome == OutcomeSuccess
}

// Defined reports whether the result carries a payload. Reading an
// attribute the resource does not carry yields a successful, undefined
// result rather than a failure.
func (r Result) Defined() bool {
	return r.Value != nil
}

// StringValue returns the payload as a string.
func (r Result) StringValue() (string, error) {
	if err := r.accessible("string"); err != nil {
		return "", err
	}
	s, ok := r.Value.(string)
	if !ok {
		return "", r.mismatch("string")
	}
	return s, nil
}

// BoolValue returns the payload as a bool.
func (r Result) BoolValue() (bool, error) {
	if err := r.accessible("bool"); err != nil {
		return false, err
	}
	b, ok := r.Value.(bool)
	if !ok {
		return false, r.mismatch("bool")
	}
	return b, nil
}

// IntValue returns the payload as an int.
func (r Result) IntValue() (int, error) {
	i, err := r.Int64Value()
	return int(i), err
}

// Int64Value returns the payload as an int64. Integral float64 payloads
// (the shape JSON decoding produces) are accepted.
func (r Result) Int64Value() (int64, error) {
	if err := r.accessible("int64"); err != nil {
		return 0, err
	}
	switch n := r.Value.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n == math.Trunc(n) {
			return int64(n), nil
		}
	}
	return 0, r.mismatch("int64")
}

// Float64Value returns the payload as a float64, widening integer payloads.
func (r Result) Float64Value() (float64, error) {
	if err := r.accessible("float64"); err != nil {
		return 0, err
	}
	switch n := r.Value.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, r.mismatch("float64")
}

// ListValue returns the payload as a string list. Both []string and the
// []any shape decoders produce are accepted; non-string elements fail.
func (r Result) ListValue() ([]string, error) {
	if err := r.accessible("list"); err != nil {
		return nil, err
	}
	switch l := r.Value.(type) {
	case []string:
		return copyStrings(l), nil
	case []any:
		out := make([]string, len(l))
		for i, e := range l {
			s, ok := e.(string)
			if !ok {
				return nil, r.mismatch("string list")
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, r.mismatch("string list")
}

// MapValue returns the payload as a resource attribute map, the shape
// read-resource produces.
func (r Result) MapValue() (map[string]any, error) {
	if err := r.accessible("map"); err != nil {
		return nil, err
	}
	m, ok := r.Value.(map[string]any)
	if !ok {
		return nil, r.mismatch("map")
	}
	return m, nil
}

func (r Result) accessible(want string) error {
	if !r.IsSuccess() {
		return errors.New(ErrCodeOperationFailed, "cannot read value of a failed result").
			WithContext("failure", r.FailureDescription)
	}
	if r.Value == nil {
		return errors.New(ErrCodeTypeMismatch, "result value is undefined").
			WithContext("want", want)
	}
	return nil
}

func (r Result) mismatch(want string) error {
	return errors.New(ErrCodeTypeMismatch, "result value has unexpected type").
		WithContext("want", want).
		WithContext("have", fmt.Sprintf("%T", r.Value))
}

// successResult builds a successful Result carrying value.
func successResult(value any) Result {
	return Result{Outcome: OutcomeSuccess, Value: value, FailedStep: -1}
}

// failedResult builds a failed Result carrying the server-side cause.
func failedResult(description string) Result {
	return Result{Outcome: OutcomeFailed, FailureDescription: description, FailedStep: -1}
}

// failedStepResult builds a failed composite Result pointing at the
// rejected step.
func failedStepResult(step int, description string) Result {
	return Result{Outcome: OutcomeFailed, FailureDescription: description, FailedStep: step}
}
