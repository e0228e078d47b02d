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
	"fmt"
	"io"
	"net/http"

	"github.com/ianlewis/streamxlsx/internal/ioadapt"
)

// HTTP is a Source backed by a URL, re-opened with a fresh GET request
// on every OpenStream call so repeated passes see a consistent byte
// sequence even against non-seekable origins.
type HTTP struct {
	URL       string
	Client    *http.Client
	ChunkSize int
}

func (h *HTTP) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}

// OpenStream issues a fresh GET and returns a ChunkStream over the
// response body.
func (h *HTTP) OpenStream(ctx context.Context) (ioadapt.ChunkStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %w", ErrUnavailable, h.URL, err)
	}
	resp, err := h.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrUnavailable, h.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: status %s", ErrUnavailable, h.URL, resp.Status)
	}

	size := h.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &httpChunkStream{body: resp.Body, chunkSize: size}, nil
}

// Describe issues a HEAD request to learn the resource's size and
// content type without downloading its body.
func (h *HTTP) Describe(ctx context.Context) (Description, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.URL, nil)
	if err != nil {
		return Description{}, fmt.Errorf("%w: building HEAD request for %s: %w", ErrUnavailable, h.URL, err)
	}
	resp, err := h.client().Do(req)
	if err != nil {
		return Description{}, fmt.Errorf("%w: HEAD %s: %w", ErrUnavailable, h.URL, err)
	}
	defer resp.Body.Close()

	return Description{
		Kind:        "http",
		ByteSize:    resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
		Origin:      h.URL,
	}, nil
}

// SetChunkSize implements ChunkSizer.
func (h *HTTP) SetChunkSize(n int) {
	h.ChunkSize = n
}

type httpChunkStream struct {
	body      io.ReadCloser
	chunkSize int
	closed    bool
}

func (s *httpChunkStream) Next() ([]byte, error) {
	buf := make([]byte, s.chunkSize)
	n, err := s.body.Read(buf)
	if n == 0 && err != nil {
		_ = s.Close()
		return nil, err
	}
	return buf[:n], nil
}

// Close closes the response body, releasing its connection. Safe to
// call more than once.
func (s *httpChunkStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
