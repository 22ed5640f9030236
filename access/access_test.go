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

package access_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"tablegate/access"
	"tablegate/database"
	"tablegate/types"
)

const usersDDL = `CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	email TEXT,
	password TEXT,
	status TEXT
)`

func userSchema() access.Schema {
	return access.Schema{
		Table:          "users",
		CreateFields:   []string{"name", "email", "password", "status"},
		RetrieveFields: []string{"id", "name", "email", "status"},
		UpdateFields:   []string{"email", "status"},
	}
}

func openTestDB(t *testing.T, ddl ...string) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range ddl {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
	return db
}

func userExecutor(t *testing.T) *access.Executor[types.Record] {
	t.Helper()
	db := openTestDB(t, usersDDL)
	return access.NewRecordExecutor(db, access.ForDialect(dialect.SQLite), userSchema())
}

func mustCreate(t *testing.T, e *access.Executor[types.Record], data types.Record) types.Record {
	t.Helper()
	rec, err := e.PerformCreate(context.Background(), data)
	require.NoError(t, err)
	return rec
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	e := userExecutor(t)

	_, err := e.PerformCreate(context.Background(), types.Record{
		"name": "alice",
		"role": "admin",
	})

	var notAllowed *access.FieldNotAllowedError
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, []string{"role"}, notAllowed.Fields)
}

func TestCreateReturnsRetrieveFieldsPlusID(t *testing.T) {
	e := userExecutor(t)

	rec := mustCreate(t, e, types.Record{"name": "alice", "email": "a@b.c"})

	// keys are exactly retrieve_fields plus id, values echo the input.
	assert.Len(t, rec, 4)
	assert.Equal(t, "alice", rec["name"])
	assert.Equal(t, "a@b.c", rec["email"])
	assert.Nil(t, rec["status"])
	assert.Equal(t, int64(1), rec["id"])

	rec = mustCreate(t, e, types.Record{"name": "bob"})
	assert.Equal(t, int64(2), rec["id"])
}

func TestCreateWithNoWhitelistedColumns(t *testing.T) {
	// the statement still executes; the store decides if defaults suffice.
	e := userExecutor(t)

	rec := mustCreate(t, e, types.Record{})

	assert.Equal(t, int64(1), rec["id"])
	assert.Nil(t, rec["name"])
}

func TestRetrieveDefaultsToAllFields(t *testing.T) {
	e := userExecutor(t)
	mustCreate(t, e, types.Record{"name": "alice", "status": "open"})
	mustCreate(t, e, types.Record{"name": "bob", "status": "closed"})

	results, err := e.PerformRetrieve(context.Background(), nil, nil)
	require.NoError(t, err)
	rows, err := results.Collect()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	// store iteration order, full projection.
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, "bob", rows[1]["name"])
	for _, row := range rows {
		assert.Len(t, row, 4)
		assert.Contains(t, row, "id")
		assert.Contains(t, row, "email")
		assert.Contains(t, row, "status")
	}
}

func TestRetrieveProjection(t *testing.T) {
	e := userExecutor(t)
	mustCreate(t, e, types.Record{"name": "alice", "email": "a@b.c"})

	results, err := e.PerformRetrieve(context.Background(), []string{"name"}, nil)
	require.NoError(t, err)
	rows, err := results.Collect()
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, types.Record{"name": "alice"}, rows[0])
}

func TestRetrieveRejectsUnknownProjection(t *testing.T) {
	e := userExecutor(t)

	_, err := e.PerformRetrieve(context.Background(), []string{"name", "password"}, nil)

	var notAllowed *access.FieldNotAllowedError
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, []string{"password"}, notAllowed.Fields)
}

func TestRetrieveEqualityFilters(t *testing.T) {
	e := userExecutor(t)
	mustCreate(t, e, types.Record{"name": "alice", "status": "open"})
	mustCreate(t, e, types.Record{"name": "bob", "status": "closed"})
	mustCreate(t, e, types.Record{"name": "carol", "status": "open"})

	results, err := e.PerformRetrieve(context.Background(), []string{"name"}, types.Record{"status": "open"})
	require.NoError(t, err)
	rows, err := results.Collect()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, "carol", rows[1]["name"])
}

func TestRetrieveRejectsUnknownFilter(t *testing.T) {
	e := userExecutor(t)

	_, err := e.PerformRetrieve(context.Background(), nil, types.Record{"password": "x"})

	var notAllowed *access.FieldNotAllowedError
	require.True(t, errors.As(err, &notAllowed))
}

func TestRetrieveLazyIteration(t *testing.T) {
	e := userExecutor(t)
	mustCreate(t, e, types.Record{"name": "alice"})
	mustCreate(t, e, types.Record{"name": "bob"})

	results, err := e.PerformRetrieve(context.Background(), []string{"name"}, nil)
	require.NoError(t, err)

	var names []string
	for results.Next() {
		names = append(names, results.Value()["name"].(string))
	}
	require.NoError(t, results.Err())
	require.NoError(t, results.Close())
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestUpdateNothingToUpdate(t *testing.T) {
	e := userExecutor(t)
	rec := mustCreate(t, e, types.Record{"name": "alice", "email": "a@b.c"})

	echo, err := e.PerformUpdate(context.Background(), rec["id"], types.Record{})
	require.NoError(t, err)
	assert.Nil(t, echo)

	// nothing was written.
	rows, err := e.PerformRetrieve(context.Background(), nil, types.Record{"id": rec["id"]})
	require.NoError(t, err)
	got, err := rows.Collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a@b.c", got[0]["email"])
}

func TestUpdateRejectsUnknownFields(t *testing.T) {
	e := userExecutor(t)
	rec := mustCreate(t, e, types.Record{"name": "alice"})

	_, err := e.PerformUpdate(context.Background(), rec["id"], types.Record{"password": "x"})

	var notAllowed *access.FieldNotAllowedError
	require.True(t, errors.As(err, &notAllowed))
}

func TestUpdateEchoesWrittenValues(t *testing.T) {
	e := userExecutor(t)
	rec := mustCreate(t, e, types.Record{"name": "alice", "email": "a@b.c", "status": "open"})

	echo, err := e.PerformUpdate(context.Background(), rec["id"], types.Record{"email": "z@b.c", "status": "closed"})
	require.NoError(t, err)
	assert.Equal(t, types.Record{"email": "z@b.c", "status": "closed"}, echo)

	rows, err := e.PerformRetrieve(context.Background(), nil, types.Record{"id": rec["id"]})
	require.NoError(t, err)
	got, err := rows.Collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "z@b.c", got[0]["email"])
	assert.Equal(t, "closed", got[0]["status"])
	// untouched fields stay.
	assert.Equal(t, "alice", got[0]["name"])
}

func TestDeleteNonexistentIsNoOp(t *testing.T) {
	e := userExecutor(t)

	assert.NoError(t, e.PerformDelete(context.Background(), int64(12345)))
}

func TestDeleteRemovesRow(t *testing.T) {
	e := userExecutor(t)
	rec := mustCreate(t, e, types.Record{"name": "alice"})
	mustCreate(t, e, types.Record{"name": "bob"})

	require.NoError(t, e.PerformDelete(context.Background(), rec["id"]))

	rows, err := e.PerformRetrieve(context.Background(), []string{"name"}, nil)
	require.NoError(t, err)
	got, err := rows.Collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0]["name"])
}

func TestCreateRetrieveRoundTrip(t *testing.T) {
	e := userExecutor(t)
	rec := mustCreate(t, e, types.Record{"name": "alice", "email": "a@b.c", "status": "open"})

	rows, err := e.PerformRetrieve(context.Background(), nil, types.Record{"id": rec["id"]})
	require.NoError(t, err)
	got, err := rows.Collect()
	require.NoError(t, err)

	require.Len(t, got, 1)
	for _, f := range []string{"name", "email", "status"} {
		assert.Equal(t, rec[f], got[0][f], "field %s", f)
	}
}

type user struct {
	ID     int64
	Name   string
	Email  string
	Status string
}

func userFromRecord(r types.Record) (user, error) {
	u := user{}
	if v, ok := r["id"].(int64); ok {
		u.ID = v
	}
	if v, ok := r["name"].(string); ok {
		u.Name = v
	}
	if v, ok := r["email"].(string); ok {
		u.Email = v
	}
	if v, ok := r["status"].(string); ok {
		u.Status = v
	}
	return u, nil
}

func TestResultConstructor(t *testing.T) {
	db := openTestDB(t, usersDDL)
	e := access.NewExecutor(db, access.ForDialect(dialect.SQLite), userSchema(), userFromRecord)

	created, err := e.PerformCreate(context.Background(), types.Record{"name": "alice", "email": "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, user{ID: 1, Name: "alice", Email: "a@b.c"}, created)

	results, err := e.PerformRetrieve(context.Background(), nil, nil)
	require.NoError(t, err)
	users, err := results.Collect()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Name)
}

func TestContractHooks(t *testing.T) {
	db := openTestDB(t, usersDDL)
	hooks := access.Hooks{
		BeforeCreate: func(r types.Record) (types.Record, error) {
			out := r.Clone()
			if pw, ok := out["password"].(string); ok {
				out["password"] = "hashed:" + pw
			}
			return out, nil
		},
	}
	c := access.NewRecordContract(db, access.ForDialect(dialect.SQLite), userSchema(), hooks)

	rec, err := c.Create(context.Background(), types.Record{"name": "alice", "password": "secret"})
	require.NoError(t, err)

	var stored string
	require.NoError(t, db.QueryRow("SELECT password FROM users WHERE id = ?", rec["id"]).Scan(&stored))
	assert.Equal(t, "hashed:secret", stored)
}

func TestContractHookAborts(t *testing.T) {
	db := openTestDB(t, usersDDL)
	boom := errors.New("boom")
	c := access.NewRecordContract(db, access.ForDialect(dialect.SQLite), userSchema(), access.Hooks{
		BeforeUpdate: func(types.Record) (types.Record, error) { return nil, boom },
	})

	_, err := c.Update(context.Background(), int64(1), types.Record{"status": "x"})
	assert.ErrorIs(t, err, boom)
}

func TestStoreErrorsPropagateUnmodified(t *testing.T) {
	ddl := `CREATE TABLE widgets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL
	)`
	db := openTestDB(t, ddl)
	schema := access.Schema{
		Table:          "widgets",
		CreateFields:   []string{"label"},
		RetrieveFields: []string{"id", "label"},
		UpdateFields:   []string{"label"},
	}
	e := access.NewRecordExecutor(db, access.ForDialect(dialect.SQLite), schema)

	_, err := e.PerformCreate(context.Background(), types.Record{})
	require.Error(t, err)

	var notAllowed *access.FieldNotAllowedError
	assert.False(t, errors.As(err, &notAllowed))

	isSQL, kind := database.IsSqlError(err)
	assert.True(t, isSQL)
	assert.Equal(t, database.NotNullViolationErr, kind)
}

func TestSchemaIncompleteSurfacesOnUse(t *testing.T) {
	db := openTestDB(t, usersDDL)
	e := access.NewRecordExecutor(db, access.ForDialect(dialect.SQLite), access.Schema{Table: "users"})

	_, err := e.PerformCreate(context.Background(), types.Record{"name": "a"})
	var schemaErr *access.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "create_fields", schemaErr.Missing)
}

func TestRetrievePage(t *testing.T) {
	e := userExecutor(t)
	for _, name := range []string{"carol", "alice", "dave", "bob", "erin"} {
		mustCreate(t, e, types.Record{"name": name, "status": "open"})
	}
	mustCreate(t, e, types.Record{"name": "zed", "status": "closed"})

	page, err := e.PerformRetrievePage(context.Background(),
		[]string{"name"}, types.Record{"status": "open"},
		types.NewPageRequest(2, 2, "name ASC"))
	require.NoError(t, err)

	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "carol", page.Items[0]["name"])
	assert.Equal(t, "dave", page.Items[1]["name"])
}

func TestRetrievePageRejectsUnknownOrderField(t *testing.T) {
	e := userExecutor(t)

	_, err := e.PerformRetrievePage(context.Background(), nil, nil,
		types.NewPageRequest(1, 10, "password DESC"))

	var notAllowed *access.FieldNotAllowedError
	require.True(t, errors.As(err, &notAllowed))
}

func TestRetrievePageRejectsCompoundOrderExpressions(t *testing.T) {
	e := userExecutor(t)
	mustCreate(t, e, types.Record{"name": "alice"})

	// a second column smuggled after a valid field must not reach the
	// statement.
	for _, order := range []string{
		"name ASC, password ASC",
		"name ASC; DELETE FROM users",
		"name ASCENDING",
	} {
		_, err := e.PerformRetrievePage(context.Background(), nil, nil,
			types.NewPageRequest(1, 10, order))

		var notAllowed *access.FieldNotAllowedError
		require.True(t, errors.As(err, &notAllowed), order)
	}
}
