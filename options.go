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

package streamxlsx

// Option configures a Reader at Open time.
type Option func(*config)

type config struct {
	sheetName      string
	chunkSize      int
	spillThreshold int64
}

// WithSheetName selects a worksheet by its display name. If omitted,
// Open targets the archive's default worksheet part
// ("xl/worksheets/sheet1.xml") without consulting the workbook part.
func WithSheetName(name string) Option {
	return func(c *config) { c.sheetName = name }
}

// WithChunkSize overrides the byte-chunk size a source.Source reads in.
// It only has an effect when src, passed to Open, implements
// source.ChunkSizer (source.File and source.HTTP both do); Open calls
// SetChunkSize on src before opening its first stream. Non-positive
// values are ignored.
func WithChunkSize(n int) Option {
	return func(c *config) { c.chunkSize = n }
}

// WithPoolSpillThreshold sets the in-memory byte budget for the
// shared-string pool before it spills to a temporary file. Zero (the
// default) disables spilling.
func WithPoolSpillThreshold(bytes int64) Option {
	return func(c *config) { c.spillThreshold = bytes }
}
