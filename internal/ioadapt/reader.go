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

// Package ioadapt presents a lazily-produced sequence of byte chunks as a
// pull-style [io.Reader], so that engines built around Read (flate,
// encoding/xml) can consume a source that only knows how to hand back its
// next chunk.
package ioadapt

import (
	"io"
)

// ChunkStream yields non-empty byte buffers until exhausted, at which point
// Next returns io.EOF. A ChunkStream is single-pass; it is not safe for
// concurrent use.
type ChunkStream interface {
	Next() ([]byte, error)

	// Close releases any resources the stream holds (file handles, HTTP
	// connections). It is safe to call more than once, and safe to call
	// after Next has already returned io.EOF.
	Close() error
}

// Reader adapts a ChunkStream into an io.Reader, buffering whatever part of
// a chunk the caller didn't consume. It never reads ahead further than one
// chunk, so peak memory is bounded by the largest chunk the stream hands
// back plus whatever the caller's read size requires.
type Reader struct {
	stream ChunkStream
	buf    []byte
	err    error
}

// New returns a Reader pulling from stream.
func New(stream ChunkStream) *Reader {
	return &Reader{stream: stream}
}

// Read implements io.Reader. It returns fewer than len(p) bytes only when
// the underlying stream is exhausted.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	n := 0
	for n < len(p) {
		for len(r.buf) == 0 {
			if r.err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, r.err
			}
			chunk, err := r.stream.Next()
			if len(chunk) > 0 {
				r.buf = chunk
			}
			if err != nil {
				r.err = err
			}
		}
		c := copy(p[n:], r.buf)
		r.buf = r.buf[c:]
		n += c
	}
	return n, nil
}

// ReadAll drains the stream and returns everything that remains, including
// whatever is already buffered. Callers should only use this for parts
// known to be small (workbook.xml, the rels part); it defeats the memory
// bound for anything else.
func (r *Reader) ReadAll() ([]byte, error) {
	return io.ReadAll(r)
}

// Close releases the underlying stream. Callers that stop reading before
// exhausting it must call Close to release whatever it holds open.
func (r *Reader) Close() error {
	return r.stream.Close()
}
