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
	"os"

	"gopkg.in/yaml.v3"
)

// Schema is the per-table descriptor: the table name and the three ordered
// field whitelists. Field names are stable identifiers matching the
// underlying column names; the three sequences need not be disjoint or equal.
type Schema struct {
	Table          string   `yaml:"table" json:"table"`
	CreateFields   []string `yaml:"create_fields" json:"create_fields"`
	RetrieveFields []string `yaml:"retrieve_fields" json:"retrieve_fields"`
	UpdateFields   []string `yaml:"update_fields" json:"update_fields"`
}

type operation int

const (
	opCreate operation = iota
	opRetrieve
	opUpdate
	opDelete
)

// check verifies the attributes the given operation depends on are declared.
// Create shapes its result from RetrieveFields, so it needs both sequences.
func (s Schema) check(op operation) error {
	if s.Table == "" {
		return &SchemaError{Missing: "table name"}
	}
	switch op {
	case opCreate:
		if len(s.CreateFields) == 0 {
			return &SchemaError{Table: s.Table, Missing: "create_fields"}
		}
		if len(s.RetrieveFields) == 0 {
			return &SchemaError{Table: s.Table, Missing: "retrieve_fields"}
		}
	case opRetrieve:
		if len(s.RetrieveFields) == 0 {
			return &SchemaError{Table: s.Table, Missing: "retrieve_fields"}
		}
	case opUpdate:
		if len(s.UpdateFields) == 0 {
			return &SchemaError{Table: s.Table, Missing: "update_fields"}
		}
	}
	return nil
}

type schemaFile struct {
	Tables map[string]Schema `yaml:"tables"`
}

// LoadSchemaFile reads a YAML map of table name to schema descriptor, so
// specializations can be supplied by configuration instead of code. The map
// key becomes the table name unless the entry sets one explicitly.
func LoadSchemaFile(path string) (map[string]Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	if len(file.Tables) == 0 {
		return nil, fmt.Errorf("schema file %s declares no tables", path)
	}
	schemas := make(map[string]Schema, len(file.Tables))
	for name, s := range file.Tables {
		if s.Table == "" {
			s.Table = name
		}
		schemas[name] = s
	}
	return schemas, nil
}
