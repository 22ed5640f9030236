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

// Package access implements a generic, schema-driven data access contract:
// CRUD operations whose column lists, placeholders, and parameter ordering
// are derived from declared per-table field whitelists instead of
// hand-written queries. Statements execute through a minimal Cursor
// abstraction satisfied by *sql.DB, *sql.Tx, and *sql.Conn.
package access
