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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun/dialect"
)

func TestQuestionPlaceholders(t *testing.T) {
	ph := ForDialect(dialect.MySQL)

	assert.Equal(t, "?", ph.Values(1))
	assert.Equal(t, "?, ?, ?", ph.Values(3))
	assert.Equal(t, "name = ?, email = ?", ph.Assignments([]string{"name", "email"}))
	assert.Equal(t, "email = ? AND status = ?", ph.Conjunction([]string{"email", "status"}, 1))
	assert.Equal(t, "id = ?", ph.Predicate("id", 3))
	assert.Equal(t, "name, email", ph.Projection([]string{"name", "email"}))
	assert.Equal(t, "() VALUES ()", ph.DefaultValues())
	assert.False(t, ph.SupportsReturning())
}

func TestDollarPlaceholders(t *testing.T) {
	ph := ForDialect(dialect.PG)

	assert.Equal(t, "$1, $2, $3", ph.Values(3))
	assert.Equal(t, "name = $1, email = $2", ph.Assignments([]string{"name", "email"}))
	assert.Equal(t, "email = $3 AND status = $4", ph.Conjunction([]string{"email", "status"}, 3))
	assert.Equal(t, "id = $3", ph.Predicate("id", 3))
	assert.Equal(t, "DEFAULT VALUES", ph.DefaultValues())
	assert.True(t, ph.SupportsReturning())
}

func TestForDialectSQLite(t *testing.T) {
	ph := ForDialect(dialect.SQLite)

	assert.Equal(t, "?, ?", ph.Values(2))
	assert.Equal(t, "DEFAULT VALUES", ph.DefaultValues())
	assert.False(t, ph.SupportsReturning())
}

func TestForDialectFallback(t *testing.T) {
	ph := ForDialect(dialect.Invalid)

	assert.Equal(t, "?", ph.Values(1))
	assert.Equal(t, "() VALUES ()", ph.DefaultValues())
}
