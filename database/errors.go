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

package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// SQLError classifies store-level failures across the supported engines.
// The access layer never translates store errors; this helper lets callers
// branch on the cause after the fact.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

var mysqlErrCodes = map[uint16]SQLError{
	1054: NoColumnErr,
	1046: NoTableErr,
	1049: NoTableErr,
	1050: ExistTableErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
}

// matched in order; each entry requires every substring to appear.
var sqlErrPatterns = []struct {
	kind SQLError
	all  []string
}{
	{NoColumnErr, []string{"sqlstate 42703"}},
	{NoColumnErr, []string{"undefined column"}},
	{NoColumnErr, []string{"no such column"}},
	{NoTableErr, []string{"sqlstate 42p01"}},
	{NoTableErr, []string{"undefined table"}},
	{NoTableErr, []string{"no such table"}},
	{ExistTableErr, []string{"already exists", "table"}},
	{ExistTableErr, []string{"already exists", "relation"}},
	{DuplicateKeyErr, []string{"duplicate key value"}},
	{DuplicateKeyErr, []string{"unique constraint failed"}},
	{DuplicateKeyErr, []string{"sqlstate 23505"}},
	{NotNullViolationErr, []string{"not-null constraint"}},
	{NotNullViolationErr, []string{"not null constraint failed"}},
	{NotNullViolationErr, []string{"sqlstate 23502"}},
	{ForeignKeyViolationErr, []string{"foreign key violation"}},
	{ForeignKeyViolationErr, []string{"foreign key constraint failed"}},
	{ForeignKeyViolationErr, []string{"sqlstate 23503"}},
	{CheckConstraintViolationErr, []string{"check constraint"}},
	{CheckConstraintViolationErr, []string{"sqlstate 23514"}},
	{DataTruncatedErr, []string{"string data right truncation"}},
	{DataTruncatedErr, []string{"data truncated"}},
	{DataTruncatedErr, []string{"sqlstate 22001"}},
	{InvalidTypeCastErr, []string{"datatype mismatch"}},
	{InvalidTypeCastErr, []string{"sqlstate 42804"}},
}

// IsSqlError reports whether err originates from the store and, if so, its
// classification. MySQL errors carry numeric codes; Postgres and SQLite are
// matched on their message text.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, ok := mysqlErrCodes[mysqlErr.Number]; ok {
			return true, kind
		}
		return true, UnknownErr
	}
	s := strings.ToLower(err.Error())
	for _, p := range sqlErrPatterns {
		matched := true
		for _, sub := range p.all {
			if !strings.Contains(s, sub) {
				matched = false
				break
			}
		}
		if matched {
			return true, p.kind
		}
	}
	return false, UnknownErr
}
