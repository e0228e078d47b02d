// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package streamxlsx reads XLSX (Office Open XML spreadsheet) archives
// under a bounded memory budget. It never loads the whole archive or
// worksheet into memory: the ZIP container is decoded with a
// forward-only local-file-header scanner and the worksheet XML is
// pull-parsed into rows one at a time.
//
// A Reader is opened over a source.Source, which must support being
// opened more than once: streamxlsx makes one pass to resolve
// worksheet metadata (the shared-string table and the target sheet's
// archive path) and a second pass to emit rows.
//
// Unless otherwise informed clients should not assume implementations in this
// package are safe for parallel execution.
package streamxlsx
