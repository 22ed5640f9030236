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

// Package tablegate exposes Store, a high-level binding of the schema-driven
// data access contract to the globally initialized database connection.
package tablegate

import (
	"context"
	"sync"

	"tablegate/access"
	"tablegate/database"
	"tablegate/types"
)

// Store is the per-table service surface over the data access contract.
type Store[T any] interface {
	// Create inserts whitelisted fields and returns the constructed result.
	Create(ctx context.Context, data types.Record) (T, error)

	// Retrieve returns a lazy sequence of rows for the projection and
	// equality filters; empty projection means all retrieve fields.
	Retrieve(ctx context.Context, project []string, filters types.Record) (*access.Results[T], error)

	// RetrieveAll collects every row with the full projection.
	RetrieveAll(ctx context.Context) ([]T, error)

	// Page returns one page of filtered, ordered results.
	Page(ctx context.Context, project []string, filters types.Record, page *types.PageRequest) (*types.Pagination[T], error)

	// Update writes whitelisted fields for one id; nil result means nothing
	// to update.
	Update(ctx context.Context, id any, data types.Record) (types.Record, error)

	// Delete removes the row matching id.
	Delete(ctx context.Context, id any) error

	// Contract exposes the underlying access contract.
	Contract() *access.Contract[T]
}

type baseStoreImpl[T any] struct {
	schema access.Schema
	from   func(types.Record) (T, error)
	hooks  access.Hooks
	once   sync.Once
	c      *access.Contract[T]
}

// NewStore returns a Store bound lazily to the global database connection,
// constructing results with from.
func NewStore[T any](schema access.Schema, from func(types.Record) (T, error), hooks access.Hooks) Store[T] {
	return &baseStoreImpl[T]{schema: schema, from: from, hooks: hooks}
}

// NewRecordStore returns a Store yielding raw record mappings.
func NewRecordStore(schema access.Schema, hooks access.Hooks) Store[types.Record] {
	return NewStore(schema, access.RecordIdentity, hooks)
}

func (s *baseStoreImpl[T]) Contract() *access.Contract[T] {
	s.once.Do(func() {
		db := database.GetDB()
		ph := access.ForDialect(db.Dialect().Name())
		s.c = access.NewContract(database.GetSQLDB(), ph, s.schema, s.from, s.hooks)
	})
	return s.c
}

func (s *baseStoreImpl[T]) Create(ctx context.Context, data types.Record) (T, error) {
	return s.Contract().Create(ctx, data)
}

func (s *baseStoreImpl[T]) Retrieve(ctx context.Context, project []string, filters types.Record) (*access.Results[T], error) {
	return s.Contract().Retrieve(ctx, project, filters)
}

func (s *baseStoreImpl[T]) RetrieveAll(ctx context.Context) ([]T, error) {
	results, err := s.Contract().Retrieve(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return results.Collect()
}

func (s *baseStoreImpl[T]) Page(ctx context.Context, project []string, filters types.Record, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.Contract().RetrievePage(ctx, project, filters, page)
}

func (s *baseStoreImpl[T]) Update(ctx context.Context, id any, data types.Record) (types.Record, error) {
	return s.Contract().Update(ctx, id, data)
}

func (s *baseStoreImpl[T]) Delete(ctx context.Context, id any) error {
	return s.Contract().Delete(ctx, id)
}
