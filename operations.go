// operations.go: Single-operation facade over the management transport
//
// Operations is the working surface commands build on: point reads for
// precondition checks, add/remove mutations with structured failure
// context, the remove-if-exists idempotency primitive and atomic batch
// submission. Every method is one blocking round-trip (two for
// RemoveIfExists) and returns coded errors carrying the resource address.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"context"

	"github.com/agilira/go-errors"
)

// Operations issues management operations through an online client's
// transport. Obtain one via OnlineClient.Ops.
type Operations struct {
	client *OnlineClient
}

// NewOperations binds an operation facade to a client.
func NewOperations(client *OnlineClient) *Operations {
	return &Operations{client: client}
}

// Add creates the resource at address with the given attributes. The
// server rejects an add on an existing resource; see RemoveIfExists for
// the replace idiom.
func (o *Operations) Add(ctx context.Context, address Address, values Values) error {
	res, err := o.Invoke(ctx, Operation{Name: OpAdd, Address: address, Values: values})
	if err != nil {
		return err
	}
	return failureToError(OpAdd, address, res)
}

// Remove deletes the resource at address, failing if it does not exist.
func (o *Operations) Remove(ctx context.Context, address Address) error {
	res, err := o.Invoke(ctx, Operation{Name: OpRemove, Address: address})
	if err != nil {
		return err
	}
	return failureToError(OpRemove, address, res)
}

// RemoveIfExists deletes the resource at address if present and reports
// whether a removal happened. Absence is the documented no-op of the
// replace-existing policy, not an error. The existence check and the
// removal are two round-trips; the server serializes operations per
// address but this sequence is not atomic against concurrent external
// mutation.
func (o *Operations) RemoveIfExists(ctx context.Context, address Address) (bool, error) {
	exists, err := o.Exists(ctx, address)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := o.Remove(ctx, address); err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports whether a resource is present at address.
func (o *Operations) Exists(ctx context.Context, address Address) (bool, error) {
	res, err := o.Invoke(ctx, Operation{Name: OpReadResource, Address: address})
	if err != nil {
		return false, err
	}
	return res.IsSuccess(), nil
}

// ReadResource returns the resource at address as a result whose payload
// is the attribute map. A missing resource yields a failed result, not an
// error; errors are reserved for transport trouble.
func (o *Operations) ReadResource(ctx context.Context, address Address) (Result, error) {
	return o.Invoke(ctx, Operation{Name: OpReadResource, Address: address})
}

// ReadAttribute returns a single attribute of the resource at address.
// An attribute the resource does not carry yields a successful undefined
// result.
func (o *Operations) ReadAttribute(ctx context.Context, address Address, name string) (Result, error) {
	op := Operation{
		Name:    OpReadAttribute,
		Address: address,
		Values:  Values{}.And("name", name),
	}
	return o.Invoke(ctx, op)
}

// WriteAttribute updates a single attribute of the resource at address.
func (o *Operations) WriteAttribute(ctx context.Context, address Address, name string, value any) error {
	op := Operation{
		Name:    OpWriteAttribute,
		Address: address,
		Values:  Values{}.And("name", name).And("value", value),
	}
	res, err := o.Invoke(ctx, op)
	if err != nil {
		return err
	}
	return failureToError(OpWriteAttribute, address, res)
}

// Batch submits the batch as one composite operation: the server applies
// every step or none. An empty batch is a no-op. On rejection the error
// reports the zero-based failing step so callers can map it back to the
// contributing command.
func (o *Operations) Batch(ctx context.Context, batch *Batch) error {
	if batch == nil || batch.IsEmpty() {
		return nil
	}
	steps := batch.Steps()
	res, err := o.client.transport.ExecuteBatch(ctx, steps)
	if err != nil {
		return err
	}
	if res.IsSuccess() {
		return nil
	}
	e := errors.New(ErrCodeOperationFailed, "server rolled back composite operation").
		WithContext("steps", len(steps)).
		WithContext("failure", res.FailureDescription)
	if res.FailedStep >= 0 && res.FailedStep < len(steps) {
		e = e.WithContext("failed_step", res.FailedStep).
			WithContext("failed_step_operation", steps[res.FailedStep].String())
	}
	return e
}

// Invoke executes a raw operation, bypassing the per-operation helpers.
// Commands with operations outside the convenience surface use this.
func (o *Operations) Invoke(ctx context.Context, op Operation) (Result, error) {
	return o.client.transport.Execute(ctx, op)
}

// failureToError turns a failed result into a coded error carrying the
// operation and resource identity; successful results map to nil.
func failureToError(operation string, address Address, res Result) error {
	if res.IsSuccess() {
		return nil
	}
	return errors.New(ErrCodeOperationFailed, "server rejected operation").
		WithContext("operation", operation).
		WithContext("address", address.String()).
		WithContext("failure", res.FailureDescription)
}
