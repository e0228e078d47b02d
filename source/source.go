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

// Package source defines the re-openable byte source contract that
// streamxlsx reads XLSX archives from, along with local file, HTTP, and
// in-memory implementations.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/ianlewis/streamxlsx/internal/ioadapt"
)

var errSource = errors.New("source")

// ErrUnavailable indicates a source could not be opened or re-opened.
var ErrUnavailable = fmt.Errorf("%w: unavailable", errSource)

// Description reports static facts about a Source without reading its
// body.
type Description struct {
	// Kind names the source implementation: "local", "http", "bytes".
	Kind string
	// ByteSize is the source's total size, or -1 if unknown.
	ByteSize int64
	// ContentType is the source's declared content type, if any.
	ContentType string
	// Origin is a human-readable identifier: a file path or URL.
	Origin string
}

// Source is a re-openable byte source. OpenStream must be safe to call
// more than once; streamxlsx opens a source twice, once for the
// metadata pass and once for row emission, and never holds two open
// streams from the same Source concurrently.
type Source interface {
	OpenStream(ctx context.Context) (ioadapt.ChunkStream, error)
	Describe(ctx context.Context) (Description, error)
}

// ChunkSizer is implemented by Sources whose read-chunk size a caller
// may override, independently of whatever default the Source itself
// falls back to. File and HTTP both implement it.
type ChunkSizer interface {
	SetChunkSize(n int)
}
