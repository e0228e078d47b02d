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

package source

import (
	"context"
	"io"

	"github.com/ianlewis/streamxlsx/internal/ioadapt"
)

// Bytes is an in-memory Source, trivially re-openable since it never
// consumes its backing slice. Useful for tests and small embedded
// archives.
type Bytes struct {
	Data      []byte
	ChunkSize int
}

// OpenStream returns a ChunkStream over a fresh view of Data.
func (b *Bytes) OpenStream(ctx context.Context) (ioadapt.ChunkStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := b.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &bytesChunkStream{data: b.Data, chunkSize: size}, nil
}

// Describe reports the length of Data.
func (b *Bytes) Describe(ctx context.Context) (Description, error) {
	if err := ctx.Err(); err != nil {
		return Description{}, err
	}
	return Description{Kind: "bytes", ByteSize: int64(len(b.Data)), Origin: "memory"}, nil
}

type bytesChunkStream struct {
	data      []byte
	pos       int
	chunkSize int
}

func (s *bytesChunkStream) Next() ([]byte, error) {
	if s.pos >= len(s.data) {
		return nil, io.EOF
	}
	end := s.pos + s.chunkSize
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := s.data[s.pos:end]
	s.pos = end
	return chunk, nil
}

// Close is a no-op: a bytesChunkStream holds no resources beyond the
// backing slice it was given.
func (s *bytesChunkStream) Close() error {
	return nil
}
