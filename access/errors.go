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
)

// FieldNotAllowedError reports field names referenced by a caller that are
// outside the declared whitelist for the attempted operation. It is the only
// validation failure this layer produces; store-level errors propagate
// unmodified.
type FieldNotAllowedError struct {
	Fields []string
}

func (e *FieldNotAllowedError) Error() string {
	return fmt.Sprintf("field(s) not allowed: %s", strings.Join(e.Fields, ", "))
}

// SchemaError reports an incomplete schema descriptor, surfaced on first use
// of the operation that needs the missing attribute.
type SchemaError struct {
	Table   string
	Missing string
}

func (e *SchemaError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("schema descriptor incomplete: missing %s", e.Missing)
	}
	return fmt.Sprintf("schema descriptor for %q incomplete: missing %s", e.Table, e.Missing)
}

// Validate checks every requested field against the allowed whitelist and
// returns a FieldNotAllowedError naming the offenders, sorted for stable
// messages. It is a pure function with no other effect.
func Validate(requested []string, allowed []string) error {
	if len(requested) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		set[f] = struct{}{}
	}
	var unknown []string
	for _, f := range requested {
		if _, ok := set[f]; !ok {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &FieldNotAllowedError{Fields: unknown}
}
