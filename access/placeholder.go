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
	"strings"

	"github.com/uptrace/bun/dialect"
)

// Placeholders renders the dialect-specific parameter syntax for the four
// statement fragments the builder needs. Implementations are pure string
// renderers with no side effects; the style must match the binding
// convention of the driver behind the Cursor.
type Placeholders interface {
	// Values renders the VALUES list for n positional insert parameters.
	Values(n int) string
	// Assignments renders a SET clause for the given columns, numbering
	// placeholders from 1.
	Assignments(fields []string) string
	// Conjunction renders equality predicates joined with AND, numbering
	// placeholders from start.
	Conjunction(fields []string, start int) string
	// Predicate renders a single equality predicate at placeholder position pos.
	Predicate(field string, pos int) string
	// Projection renders the SELECT column list.
	Projection(fields []string) string
	// DefaultValues renders the insert tail used when no columns survived
	// whitelist filtering.
	DefaultValues() string
	// SupportsReturning reports whether inserts should read the new id via a
	// RETURNING clause instead of the driver's last-insert-id.
	SupportsReturning() bool
}

// ForDialect selects the placeholder style matching a bun dialect name.
// Unrecognized dialects fall back to question-mark binding.
func ForDialect(name dialect.Name) Placeholders {
	switch name {
	case dialect.PG:
		return dollarPlaceholders{}
	case dialect.SQLite:
		return questionPlaceholders{defaultValues: "DEFAULT VALUES"}
	default:
		return questionPlaceholders{defaultValues: "() VALUES ()"}
	}
}

// questionPlaceholders renders "?" binding as used by MySQL and SQLite.
// The two engines disagree only on the empty-column insert form.
type questionPlaceholders struct {
	defaultValues string
}

func (questionPlaceholders) Values(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (questionPlaceholders) Assignments(fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + " = ?"
	}
	return strings.Join(parts, ", ")
}

func (questionPlaceholders) Conjunction(fields []string, _ int) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + " = ?"
	}
	return strings.Join(parts, " AND ")
}

func (questionPlaceholders) Predicate(field string, _ int) string {
	return field + " = ?"
}

func (questionPlaceholders) Projection(fields []string) string {
	return strings.Join(fields, ", ")
}

func (p questionPlaceholders) DefaultValues() string { return p.defaultValues }

func (questionPlaceholders) SupportsReturning() bool { return false }

// dollarPlaceholders renders "$N" binding as used by PostgreSQL.
type dollarPlaceholders struct{}

func (dollarPlaceholders) Values(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func (dollarPlaceholders) Assignments(fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s = $%d", f, i+1)
	}
	return strings.Join(parts, ", ")
}

func (dollarPlaceholders) Conjunction(fields []string, start int) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s = $%d", f, start+i)
	}
	return strings.Join(parts, " AND ")
}

func (dollarPlaceholders) Predicate(field string, pos int) string {
	return fmt.Sprintf("%s = $%d", field, pos)
}

func (dollarPlaceholders) Projection(fields []string) string {
	return strings.Join(fields, ", ")
}

func (dollarPlaceholders) DefaultValues() string { return "DEFAULT VALUES" }

func (dollarPlaceholders) SupportsReturning() bool { return true }
