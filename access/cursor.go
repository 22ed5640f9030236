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
	"database/sql"

	"tablegate/types"
)

// Cursor is the external statement execution handle consumed by the
// contract. *sql.DB, *sql.Tx, and *sql.Conn satisfy it directly. The
// placeholder style must match the binding convention of the driver behind
// it; ForDialect pairs the two. Transactions, pooling, and timeouts are the
// Cursor's concern, not this layer's.
type Cursor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Results is a lazily consumed, one-pass sequence of constructed rows.
// Rows arrive in store iteration order; there is no implicit sort and no
// restart.
type Results[T any] struct {
	rows *sql.Rows
	cols []string
	from func(types.Record) (T, error)
	cur  T
	err  error
	done bool
}

func newResults[T any](rows *sql.Rows, from func(types.Record) (T, error)) (*Results[T], error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return &Results[T]{rows: rows, cols: cols, from: from}, nil
}

// Next advances to the next row, constructing it. It returns false when the
// sequence is exhausted or a scan or construction error occurred; check Err
// after the loop.
func (r *Results[T]) Next() bool {
	if r.done || r.err != nil {
		return false
	}
	if !r.rows.Next() {
		r.done = true
		r.err = r.rows.Err()
		_ = r.rows.Close()
		return false
	}
	rec, err := scanRecord(r.rows, r.cols)
	if err != nil {
		r.fail(err)
		return false
	}
	v, err := r.from(rec)
	if err != nil {
		r.fail(err)
		return false
	}
	r.cur = v
	return true
}

// Value returns the row constructed by the last successful Next.
func (r *Results[T]) Value() T { return r.cur }

// Err returns the first error encountered while iterating.
func (r *Results[T]) Err() error { return r.err }

// Close releases the underlying rows. Safe to call more than once.
func (r *Results[T]) Close() error {
	r.done = true
	return r.rows.Close()
}

// Collect drains the remaining sequence into a slice and closes it.
func (r *Results[T]) Collect() ([]T, error) {
	defer func() { _ = r.Close() }()
	out := make([]T, 0)
	for r.Next() {
		out = append(out, r.Value())
	}
	if r.err != nil {
		return nil, r.err
	}
	return out, nil
}

func (r *Results[T]) fail(err error) {
	r.err = err
	r.done = true
	_ = r.rows.Close()
}

// scanRecord reads the current row into a field→value mapping. Byte slices
// are copied to strings so records stay valid after the cursor advances.
func scanRecord(rows *sql.Rows, cols []string) (types.Record, error) {
	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	rec := make(types.Record, len(cols))
	for i, c := range cols {
		v := vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		rec[c] = v
	}
	return rec, nil
}
