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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAccepted(t *testing.T) {
	allowed := []string{"name", "email", "status"}

	assert.NoError(t, Validate(nil, allowed))
	assert.NoError(t, Validate([]string{}, allowed))
	assert.NoError(t, Validate([]string{"email"}, allowed))
	assert.NoError(t, Validate([]string{"status", "name", "email"}, allowed))
}

func TestValidateRejected(t *testing.T) {
	allowed := []string{"name", "email"}

	err := Validate([]string{"name", "role", "avatar"}, allowed)
	require.Error(t, err)

	var notAllowed *FieldNotAllowedError
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, []string{"avatar", "role"}, notAllowed.Fields)
	assert.Equal(t, "field(s) not allowed: avatar, role", err.Error())
}

func TestValidateEmptyWhitelist(t *testing.T) {
	err := Validate([]string{"name"}, nil)

	var notAllowed *FieldNotAllowedError
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, []string{"name"}, notAllowed.Fields)
}

func TestSchemaErrorMessage(t *testing.T) {
	assert.Equal(t, "schema descriptor incomplete: missing table name",
		(&SchemaError{Missing: "table name"}).Error())
	assert.Equal(t, `schema descriptor for "users" incomplete: missing update_fields`,
		(&SchemaError{Table: "users", Missing: "update_fields"}).Error())
}
