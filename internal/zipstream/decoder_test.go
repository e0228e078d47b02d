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

package zipstream

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// buildZip constructs an in-memory archive using the standard library's
// writer, which always emits a central directory and, for entries made
// with Create, sets general-purpose bit 3 and records the sizes in a
// trailing data descriptor. Entries are written in sorted name order.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		content := files[name]
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip.Create(%q): %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}
	return buf.Bytes()
}

func TestDecoderReadsPartsInOrder(t *testing.T) {
	t.Parallel()

	data := buildZip(t, map[string]string{
		"a.txt": "hello",
		"b.txt": "world, this is a longer string to exercise deflate",
	})

	dec := NewDecoder(bytes.NewReader(data))

	var names []string
	var bodies []string
	for {
		part, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		b, err := io.ReadAll(part.Body)
		if err != nil {
			t.Fatalf("ReadAll(%s): %v", part.Name, err)
		}
		names = append(names, part.Name)
		bodies = append(bodies, string(b))
	}

	if diff := cmp.Diff([]string{"a.txt", "b.txt"}, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"hello", "world, this is a longer string to exercise deflate"}, bodies); diff != "" {
		t.Errorf("bodies (-want +got):\n%s", diff)
	}
}

func TestDecoderDrainsUnreadParts(t *testing.T) {
	t.Parallel()

	data := buildZip(t, map[string]string{
		"a.txt": "unread",
		"b.txt": "second",
	})

	dec := NewDecoder(bytes.NewReader(data))

	part, err := dec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if part.Name != "a.txt" {
		t.Fatalf("Name = %q, want a.txt", part.Name)
	}
	// Deliberately don't read part.Body.

	part2, err := dec.Next()
	if err != nil {
		t.Fatalf("Next (second): %v", err)
	}
	b, err := io.ReadAll(part2.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if diff := cmp.Diff("second", string(b)); diff != "" {
		t.Errorf("body (-want +got):\n%s", diff)
	}

	if _, err := dec.Next(); err != io.EOF {
		t.Fatalf("Next (third) = %v, want io.EOF", err)
	}
}

func TestDecoderEmptyArchive(t *testing.T) {
	t.Parallel()

	data := buildZip(t, nil)
	dec := NewDecoder(bytes.NewReader(data))

	_, err := dec.Next()
	if diff := cmp.Diff(error(io.EOF), err, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("Next (-want +got):\n%s", diff)
	}
}

func TestDecoderUnsupportedCompression(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(bytes.NewReader(buildRawUnsupportedMethodEntry()))
	_, err := dec.Next()
	if !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("Next error = %v, want wrapping ErrUnsupportedCompression", err)
	}
}

// closeTrackingReader wraps an io.Reader with a Close that records
// whether it was called, so tests can assert a Decoder released its
// underlying stream.
type closeTrackingReader struct {
	io.Reader
	closed bool
}

func (c *closeTrackingReader) Close() error {
	c.closed = true
	return nil
}

func TestDecoderCloseReleasesOrigin(t *testing.T) {
	t.Parallel()

	data := buildZip(t, map[string]string{
		"a.txt": "hello",
		"b.txt": "world, this is a longer string to exercise deflate",
	})
	tracked := &closeTrackingReader{Reader: bytes.NewReader(data)}
	dec := NewDecoder(tracked)

	part, err := dec.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if part.Name != "a.txt" {
		t.Fatalf("Name = %q, want a.txt", part.Name)
	}
	// Deliberately abandon iteration without reading part.Body or
	// calling Next again.

	if err := dec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !tracked.closed {
		t.Error("Close did not close the underlying reader")
	}
	// Close must tolerate being called more than once.
	if err := dec.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDecoderClosesOriginOnNormalEnd(t *testing.T) {
	t.Parallel()

	data := buildZip(t, map[string]string{"a.txt": "hello"})
	tracked := &closeTrackingReader{Reader: bytes.NewReader(data)}
	dec := NewDecoder(tracked)

	for {
		_, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
	}

	if !tracked.closed {
		t.Error("reaching the end of the archive did not close the underlying reader")
	}
}

// buildRawUnsupportedMethodEntry hand-assembles a minimal local file
// header advertising compression method 99, which no real ZIP writer
// emits but which the decoder must still reject cleanly.
func buildRawUnsupportedMethodEntry() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x50, 0x4b, 0x03, 0x04}) // local file header sig
	buf.Write([]byte{0x14, 0x00})             // version needed
	buf.Write([]byte{0x00, 0x00})             // flags
	buf.Write([]byte{0x63, 0x00})             // method = 99
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})  // mod time+date
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})  // crc32
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00})  // compressed size = 1
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00})  // uncompressed size = 1
	buf.Write([]byte{0x01, 0x00})              // name len = 1
	buf.Write([]byte{0x00, 0x00})              // extra len = 0
	buf.Write([]byte("a"))                     // name
	buf.Write([]byte{0x00})                    // 1 byte of "compressed" data
	return buf.Bytes()
}
