/*
 * Copyright 2025 The tablegate Authors.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package access

import (
	"context"

	"tablegate/types"
)

// Transform rewrites a record mapping, e.g. hashing a password field before
// it is written. Returning an error aborts the operation before any
// statement is issued.
type Transform func(types.Record) (types.Record, error)

// Hooks is the customization seam of the contract: per-operation transforms
// applied around the fixed Perform* algorithms, so a specialization never
// reimplements validation or query construction. Nil hooks pass through.
type Hooks struct {
	// BeforeCreate rewrites the input data before validation and insert.
	BeforeCreate Transform
	// AfterCreate rewrites the echoed mapping before result construction.
	AfterCreate Transform
	// BeforeRetrieve rewrites the filter mapping before validation.
	BeforeRetrieve Transform
	// BeforeUpdate rewrites the input data before validation and update.
	BeforeUpdate Transform
	// AfterUpdate rewrites the echoed mapping returned from an update.
	AfterUpdate Transform
}

func (h Hooks) apply(t Transform, rec types.Record) (types.Record, error) {
	if t == nil {
		return rec, nil
	}
	return t(rec)
}

// Contract is the public two-layer entry point: thin pass-through operations
// that apply the configured hooks and delegate to the fixed Executor.
type Contract[T any] struct {
	exec  *Executor[T]
	hooks Hooks
}

// NewContract binds an executor and its hook set.
func NewContract[T any](cur Cursor, ph Placeholders, schema Schema, from func(types.Record) (T, error), hooks Hooks) *Contract[T] {
	return &Contract[T]{exec: NewExecutor(cur, ph, schema, from), hooks: hooks}
}

// NewRecordContract binds a contract that yields raw record mappings.
func NewRecordContract(cur Cursor, ph Placeholders, schema Schema, hooks Hooks) *Contract[types.Record] {
	return NewContract(cur, ph, schema, RecordIdentity, hooks)
}

// Executor exposes the fixed algorithm layer for callers that need to skip
// the hooks.
func (c *Contract[T]) Executor() *Executor[T] { return c.exec }

// Create inserts data after the BeforeCreate transform and constructs the
// result after AfterCreate.
func (c *Contract[T]) Create(ctx context.Context, data types.Record) (T, error) {
	var zero T
	data, err := c.hooks.apply(c.hooks.BeforeCreate, data)
	if err != nil {
		return zero, err
	}
	rec, err := c.exec.createRecord(ctx, data)
	if err != nil {
		return zero, err
	}
	rec, err = c.hooks.apply(c.hooks.AfterCreate, rec)
	if err != nil {
		return zero, err
	}
	return c.exec.from(rec)
}

// Retrieve queries after the BeforeRetrieve transform of the filters.
func (c *Contract[T]) Retrieve(ctx context.Context, project []string, filters types.Record) (*Results[T], error) {
	filters, err := c.hooks.apply(c.hooks.BeforeRetrieve, filters)
	if err != nil {
		return nil, err
	}
	return c.exec.PerformRetrieve(ctx, project, filters)
}

// RetrievePage is Retrieve with pagination and ordering.
func (c *Contract[T]) RetrievePage(ctx context.Context, project []string, filters types.Record, page *types.PageRequest) (*types.Pagination[T], error) {
	filters, err := c.hooks.apply(c.hooks.BeforeRetrieve, filters)
	if err != nil {
		return nil, err
	}
	return c.exec.PerformRetrievePage(ctx, project, filters, page)
}

// Update writes data after the BeforeUpdate transform; the echoed mapping
// passes through AfterUpdate. A no-op update returns (nil, nil) and skips
// both AfterUpdate and the store.
func (c *Contract[T]) Update(ctx context.Context, id interface{}, data types.Record) (types.Record, error) {
	data, err := c.hooks.apply(c.hooks.BeforeUpdate, data)
	if err != nil {
		return nil, err
	}
	echo, err := c.exec.PerformUpdate(ctx, id, data)
	if err != nil || echo == nil {
		return echo, err
	}
	return c.hooks.apply(c.hooks.AfterUpdate, echo)
}

// Delete removes the row matching id.
func (c *Contract[T]) Delete(ctx context.Context, id interface{}) error {
	return c.exec.PerformDelete(ctx, id)
}
