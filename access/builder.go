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
	"fmt"
	"sort"
	"strings"

	"tablegate/types"
)

// statement is a built query with its positional arguments in binding order.
type statement struct {
	query string
	args  []interface{}
}

// presentFields returns, in declared order, the allowed fields that appear
// in the data mapping.
func presentFields(allowed []string, data types.Record) []string {
	fields := make([]string, 0, len(allowed))
	for _, f := range allowed {
		if _, ok := data[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// sortedKeys returns the record's keys in lexicographic order. Go maps are
// unordered, so predicate order and argument order are pinned this way.
func sortedKeys(data types.Record) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func valuesOf(data types.Record, fields []string) []interface{} {
	args := make([]interface{}, len(fields))
	for i, f := range fields {
		args[i] = data[f]
	}
	return args
}

func buildInsert(ph Placeholders, table string, fields []string, data types.Record) statement {
	if len(fields) == 0 {
		return statement{query: fmt.Sprintf("INSERT INTO %s %s", table, ph.DefaultValues())}
	}
	return statement{
		query: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table, strings.Join(fields, ", "), ph.Values(len(fields))),
		args: valuesOf(data, fields),
	}
}

func buildSelect(ph Placeholders, table string, projection []string, filterFields []string, filters types.Record) statement {
	query := fmt.Sprintf("SELECT %s FROM %s", ph.Projection(projection), table)
	if len(filterFields) == 0 {
		return statement{query: query}
	}
	return statement{
		query: query + " WHERE " + ph.Conjunction(filterFields, 1),
		args:  valuesOf(filters, filterFields),
	}
}

func buildCount(ph Placeholders, table string, filterFields []string, filters types.Record) statement {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if len(filterFields) == 0 {
		return statement{query: query}
	}
	return statement{
		query: query + " WHERE " + ph.Conjunction(filterFields, 1),
		args:  valuesOf(filters, filterFields),
	}
}

func buildUpdate(ph Placeholders, table string, fields []string, data types.Record, id interface{}) statement {
	args := valuesOf(data, fields)
	return statement{
		query: fmt.Sprintf("UPDATE %s SET %s WHERE %s",
			table, ph.Assignments(fields), ph.Predicate("id", len(fields)+1)),
		args: append(args, id),
	}
}

func buildDelete(ph Placeholders, table string, id interface{}) statement {
	return statement{
		query: fmt.Sprintf("DELETE FROM %s WHERE %s", table, ph.Predicate("id", 1)),
		args:  []interface{}{id},
	}
}

// orderClause validates and renders ORDER BY terms. Each expression must be
// exactly one allowed field with an optional ASC/DESC direction; anything
// else is rejected, so caller strings never reach the statement verbatim.
func orderClause(orders []string, allowed []string) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	terms := make([]string, 0, len(orders))
	fields := make([]string, 0, len(orders))
	for _, o := range orders {
		parts := strings.Fields(o)
		switch len(parts) {
		case 1:
			terms = append(terms, parts[0])
		case 2:
			dir := strings.ToUpper(parts[1])
			if dir != "ASC" && dir != "DESC" {
				return "", &FieldNotAllowedError{Fields: []string{o}}
			}
			terms = append(terms, parts[0]+" "+dir)
		default:
			return "", &FieldNotAllowedError{Fields: []string{o}}
		}
		fields = append(fields, parts[0])
	}
	if err := Validate(fields, allowed); err != nil {
		return "", err
	}
	return strings.Join(terms, ", "), nil
}
