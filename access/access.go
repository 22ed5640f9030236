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
	"fmt"

	"tablegate/types"
	"tablegate/utils"
)

var log = utils.NewLogger("ACCESS")

// RecordIdentity is the default result constructor: the raw mapping itself.
func RecordIdentity(r types.Record) (types.Record, error) { return r, nil }

// Executor implements the fixed, validated CRUD algorithms for one table.
// It binds one Cursor, one Schema, one placeholder style, and one result
// constructor, and holds no other state; it issues exactly one statement per
// operation and blocks until the Cursor completes it.
type Executor[T any] struct {
	cur    Cursor
	ph     Placeholders
	schema Schema
	from   func(types.Record) (T, error)
}

// NewExecutor binds a cursor, placeholder style, schema descriptor, and
// result constructor. Schema completeness is checked lazily per operation so
// a descriptor missing update_fields can still serve reads.
func NewExecutor[T any](cur Cursor, ph Placeholders, schema Schema, from func(types.Record) (T, error)) *Executor[T] {
	return &Executor[T]{cur: cur, ph: ph, schema: schema, from: from}
}

// NewRecordExecutor binds an executor that yields raw record mappings.
func NewRecordExecutor(cur Cursor, ph Placeholders, schema Schema) *Executor[types.Record] {
	return NewExecutor(cur, ph, schema, RecordIdentity)
}

// Schema returns the bound schema descriptor.
func (e *Executor[T]) Schema() Schema { return e.schema }

// PerformCreate validates data against create_fields, inserts the present
// fields in declared order, and returns the constructed result.
func (e *Executor[T]) PerformCreate(ctx context.Context, data types.Record) (T, error) {
	var zero T
	rec, err := e.createRecord(ctx, data)
	if err != nil {
		return zero, err
	}
	return e.from(rec)
}

// createRecord is PerformCreate up to, but not including, result
// construction. The returned mapping holds every retrieve field echoed from
// the input (absent fields are nil) plus the store-assigned id.
func (e *Executor[T]) createRecord(ctx context.Context, data types.Record) (types.Record, error) {
	if err := e.schema.check(opCreate); err != nil {
		return nil, err
	}
	if err := Validate(sortedKeys(data), e.schema.CreateFields); err != nil {
		return nil, err
	}

	fields := presentFields(e.schema.CreateFields, data)
	if len(fields) == 0 {
		// Deliberately permissive: the statement still runs and the store
		// decides whether an all-defaults row is acceptable.
		log.Warnf("insert into %s carries no whitelisted columns", e.schema.Table)
	}
	stmt := buildInsert(e.ph, e.schema.Table, fields, data)

	id, err := e.execInsert(ctx, stmt)
	if err != nil {
		return nil, err
	}

	out := make(types.Record, len(e.schema.RetrieveFields)+1)
	for _, f := range e.schema.RetrieveFields {
		out[f] = data[f]
	}
	out["id"] = id
	return out, nil
}

// execInsert runs the insert and reads the store-assigned identifier, via
// RETURNING where the dialect supports it and last-insert-id elsewhere.
func (e *Executor[T]) execInsert(ctx context.Context, stmt statement) (int64, error) {
	log.Debugf("exec: %s %v", stmt.query, stmt.args)
	if e.ph.SupportsReturning() {
		rows, err := e.cur.QueryContext(ctx, stmt.query+" RETURNING id", stmt.args...)
		if err != nil {
			return 0, err
		}
		defer func() { _ = rows.Close() }()
		var id int64
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("insert into %s returned no id", e.schema.Table)
		}
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		return id, rows.Err()
	}
	res, err := e.cur.ExecContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// PerformRetrieve validates the projection and equality filters against
// retrieve_fields and returns the lazy result sequence. An empty projection
// defaults to all retrieve fields in declared order. Filters conjoin with
// AND; predicate and argument order is lexicographic by field name.
func (e *Executor[T]) PerformRetrieve(ctx context.Context, project []string, filters types.Record) (*Results[T], error) {
	if err := e.schema.check(opRetrieve); err != nil {
		return nil, err
	}
	if err := Validate(project, e.schema.RetrieveFields); err != nil {
		return nil, err
	}
	if len(project) == 0 {
		project = e.schema.RetrieveFields
	}
	filterFields := sortedKeys(filters)
	if err := Validate(filterFields, e.schema.RetrieveFields); err != nil {
		return nil, err
	}

	stmt := buildSelect(e.ph, e.schema.Table, project, filterFields, filters)
	log.Debugf("exec: %s %v", stmt.query, stmt.args)
	rows, err := e.cur.QueryContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return nil, err
	}
	return newResults(rows, e.from)
}

// PerformRetrievePage runs a filtered, ordered, paginated retrieve. Each
// order expression is exactly one retrieve field with an optional ASC/DESC
// direction; the rendered clause is built from the parsed parts, never from
// the caller's string.
func (e *Executor[T]) PerformRetrievePage(ctx context.Context, project []string, filters types.Record, page *types.PageRequest) (*types.Pagination[T], error) {
	if err := e.schema.check(opRetrieve); err != nil {
		return nil, err
	}
	if page == nil {
		page = types.NewDefaultPageRequest(1, 10)
	}
	if err := Validate(project, e.schema.RetrieveFields); err != nil {
		return nil, err
	}
	if len(project) == 0 {
		project = e.schema.RetrieveFields
	}
	filterFields := sortedKeys(filters)
	if err := Validate(filterFields, e.schema.RetrieveFields); err != nil {
		return nil, err
	}
	orderBy, err := orderClause(page.GetOrders(), e.schema.RetrieveFields)
	if err != nil {
		return nil, err
	}

	pagination := types.NewDefaultPagination[T](page.GetPage(), page.GetPageSize())

	count := buildCount(e.ph, e.schema.Table, filterFields, filters)
	log.Debugf("exec: %s %v", count.query, count.args)
	row, err := e.cur.QueryContext(ctx, count.query, count.args...)
	if err != nil {
		return nil, err
	}
	total, err := scanCount(row)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return pagination, nil
	}

	stmt := buildSelect(e.ph, e.schema.Table, project, filterFields, filters)
	query := stmt.query
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	// Limit and offset are validated integers, safe to inline.
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", page.GetPageSize(), page.GetOffset())

	log.Debugf("exec: %s %v", query, stmt.args)
	rows, err := e.cur.QueryContext(ctx, query, stmt.args...)
	if err != nil {
		return nil, err
	}
	results, err := newResults(rows, e.from)
	if err != nil {
		return nil, err
	}
	items, err := results.Collect()
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = items
	return pagination, nil
}

// PerformUpdate validates data against update_fields and sets the present
// fields in declared order with a terminal id predicate. When no whitelisted
// field survives it is a no-op: nil result, nil error, no statement issued.
// The returned mapping echoes the written values restricted to
// retrieve_fields; it is not re-fetched from the store.
func (e *Executor[T]) PerformUpdate(ctx context.Context, id interface{}, data types.Record) (types.Record, error) {
	if err := e.schema.check(opUpdate); err != nil {
		return nil, err
	}
	if err := Validate(sortedKeys(data), e.schema.UpdateFields); err != nil {
		return nil, err
	}

	fields := presentFields(e.schema.UpdateFields, data)
	if len(fields) == 0 {
		return nil, nil
	}

	stmt := buildUpdate(e.ph, e.schema.Table, fields, data, id)
	log.Debugf("exec: %s %v", stmt.query, stmt.args)
	if _, err := e.cur.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
		return nil, err
	}

	return data.Project(e.schema.RetrieveFields), nil
}

// PerformDelete removes the row matching id. No field validation applies, no
// existence check runs, and the affected-row count is not inspected:
// deleting an absent id is silently a no-op.
func (e *Executor[T]) PerformDelete(ctx context.Context, id interface{}) error {
	if err := e.schema.check(opDelete); err != nil {
		return err
	}
	stmt := buildDelete(e.ph, e.schema.Table, id)
	log.Debugf("exec: %s %v", stmt.query, stmt.args)
	_, err := e.cur.ExecContext(ctx, stmt.query, stmt.args...)
	return err
}

func scanCount(rows *sql.Rows) (int, error) {
	defer func() { _ = rows.Close() }()
	var total int
	if !rows.Next() {
		return 0, rows.Err()
	}
	if err := rows.Scan(&total); err != nil {
		return 0, err
	}
	return total, rows.Err()
}
