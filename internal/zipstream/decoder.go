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

// Package zipstream implements a forward-only decoder for the ZIP
// container format. Unlike [archive/zip], it never seeks to the central
// directory: it scans local file headers (signature PK\x03\x04) in
// archive order, inflating each entry's body on demand, which lets a
// caller process an archive that arrives as a single forward byte
// stream (an HTTP response body, a pipe) without buffering it.
//
// Only the store (0) and deflate (8) compression methods are supported.
package zipstream

import (
	"bufio"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	localFileHeaderSig = 0x04034b50
	dataDescriptorSig  = 0x08074b50
	// Any of these signatures mark the end of the local-file-header
	// section; once seen, no more parts follow.
	centralDirHeaderSig  = 0x02014b50
	digitalSignatureSig  = 0x05054b50
	endCentralDir64Sig   = 0x06064b50
	endCentralDir64LocSig = 0x07064b50
	endCentralDirSig     = 0x06054b50
)

const (
	methodStore   = 0
	methodDeflate = 8
)

const (
	flagDataDescriptor = 1 << 3
	flagUTF8            = 1 << 11
)

// Part is one entry of the archive, yielded in the order it appears in
// the stream. Body must be fully read (or explicitly drained) before the
// next call to Decoder.Next; failing to do so is a protocol error.
type Part struct {
	// Name is the entry's path within the archive, e.g. "xl/workbook.xml".
	Name string

	// SizeHint is the declared uncompressed size, or -1 if the archive
	// does not know it up front (general-purpose bit 3 set).
	SizeHint int64

	// Body is the entry's decompressed data.
	Body io.Reader
}

// Decoder scans a ZIP archive's local file headers from r, yielding parts
// in archive order.
type Decoder struct {
	r      *bufio.Reader
	origin io.Reader
	cur    io.Reader
	end    bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 32*1024), origin: r}
}

// Next drains the previous part's body (if the caller didn't) and
// advances to the next local file header, returning io.EOF once the
// central directory (or any other end-of-archive marker) is reached.
func (d *Decoder) Next() (*Part, error) {
	if d.end {
		return nil, io.EOF
	}

	if d.cur != nil {
		if _, err := io.Copy(io.Discard, d.cur); err != nil {
			return nil, fmt.Errorf("%w: draining previous part: %w", ErrFormat, err)
		}
		d.cur = nil
	}

	sig, err := readUint32(d.r)
	if err != nil {
		if err == io.EOF {
			d.finish()
			return nil, io.EOF
		}
		return nil, formatErr("reading signature", err)
	}

	switch sig {
	case localFileHeaderSig:
		// fall through below
	case centralDirHeaderSig, digitalSignatureSig, endCentralDir64Sig,
		endCentralDir64LocSig, endCentralDirSig:
		d.finish()
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("%w: unexpected signature %#08x", ErrFormat, sig)
	}

	hdr, err := readLocalFileHeader(d.r)
	if err != nil {
		return nil, err
	}

	name := hdr.name
	body, err := d.openBody(hdr)
	if err != nil {
		return nil, err
	}
	d.cur = body

	sizeHint := int64(-1)
	if hdr.flags&flagDataDescriptor == 0 {
		sizeHint = int64(hdr.uncompressedSize)
	}

	return &Part{Name: name, SizeHint: sizeHint, Body: body}, nil
}

// finish marks the archive exhausted. The decoder stops at the first
// end-of-archive marker without reading the rest of the stream (the
// central directory, typically), so the underlying reader is closed
// here rather than left for its own Read calls to reach io.EOF.
func (d *Decoder) finish() {
	d.end = true
	if c, ok := d.origin.(io.Closer); ok {
		_ = c.Close()
	}
}

// Close abandons the decoder before the archive is exhausted: it
// releases the current part's inflate state and closes the underlying
// stream. Safe to call after Next has already returned io.EOF.
func (d *Decoder) Close() error {
	if d.end {
		return nil
	}
	var err error
	if c, ok := d.cur.(io.Closer); ok {
		err = c.Close()
	}
	d.cur = nil
	d.finish()
	return err
}

type localFileHeader struct {
	flags            uint16
	method           uint16
	compressedSize   uint32
	uncompressedSize uint32
	name             string
}

func readLocalFileHeader(r io.Reader) (*localFileHeader, error) {
	fixed := make([]byte, 26)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, formatErr("reading local file header", err)
	}

	flags := binary.LittleEndian.Uint16(fixed[2:4])
	method := binary.LittleEndian.Uint16(fixed[4:6])
	compressedSize := binary.LittleEndian.Uint32(fixed[14:18])
	uncompressedSize := binary.LittleEndian.Uint32(fixed[18:22])
	nameLen := binary.LittleEndian.Uint16(fixed[22:24])
	extraLen := binary.LittleEndian.Uint16(fixed[24:26])

	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return nil, formatErr("reading file name", err)
	}

	extra := make([]byte, extraLen)
	if _, err := io.ReadFull(r, extra); err != nil {
		return nil, formatErr("reading extra field", err)
	}

	var name string
	if flags&flagUTF8 != 0 {
		name = string(nameBytes)
	} else {
		name = decodeCP437(nameBytes)
	}

	return &localFileHeader{
		flags:            flags,
		method:           method,
		compressedSize:   compressedSize,
		uncompressedSize: uncompressedSize,
		name:             name,
	}, nil
}

// openBody returns a reader for the entry's decompressed data, positioned
// to consume exactly this entry's bytes (plus any trailing data
// descriptor) from d.r.
func (d *Decoder) openBody(hdr *localFileHeader) (io.Reader, error) {
	unknownSize := hdr.flags&flagDataDescriptor != 0

	switch hdr.method {
	case methodStore:
		if unknownSize {
			// The stored-entry, unknown-size case has no self-terminating
			// marker in the byte stream itself; scan for the data
			// descriptor signature. This assumes the writer always emits
			// the optional signature before the descriptor, which every
			// XLSX producer observed in the wild does.
			return newDescriptorScanReader(d.r), nil
		}
		return io.LimitReader(d.r, int64(hdr.compressedSize)), nil

	case methodDeflate:
		if unknownSize {
			// A DEFLATE stream is self-terminating (the final block sets
			// BFINAL); read it directly off the underlying stream, then
			// consume the trailing data descriptor once it's exhausted.
			fr := flate.NewReader(d.r)
			return &deflateThenDescriptor{fr: fr, r: d.r}, nil
		}
		limited := io.LimitReader(d.r, int64(hdr.compressedSize))
		return flate.NewReader(limited), nil

	default:
		return nil, fmt.Errorf("%w: method %d", ErrUnsupportedCompression, hdr.method)
	}
}

// deflateThenDescriptor reads a self-terminating DEFLATE stream and, once
// it ends, drains the trailing data descriptor so the underlying stream is
// left positioned at the next local file header. It also releases the
// flate.Reader's inflate state once exhausted.
type deflateThenDescriptor struct {
	fr   io.ReadCloser
	r    io.Reader
	done bool
}

func (d *deflateThenDescriptor) Read(p []byte) (int, error) {
	if d.done {
		return 0, io.EOF
	}
	n, err := d.fr.Read(p)
	if err == io.EOF {
		if closeErr := d.fr.Close(); closeErr != nil {
			return n, closeErr
		}
		if descErr := readDataDescriptor(d.r); descErr != nil {
			return n, descErr
		}
		d.done = true
	}
	return n, err
}

// Close releases the flate.Reader's inflate state. It does not attempt
// to read the trailing data descriptor, since a caller calling Close
// is abandoning the stream rather than continuing to the next part.
func (d *deflateThenDescriptor) Close() error {
	if d.done {
		return nil
	}
	d.done = true
	return d.fr.Close()
}

// readDataDescriptor consumes a data descriptor record, with or without
// its optional signature.
func readDataDescriptor(r io.Reader) error {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return formatErr("reading data descriptor", err)
	}
	if binary.LittleEndian.Uint32(buf) == dataDescriptorSig {
		// buf held the signature; crc32, compressed and uncompressed
		// sizes (4 bytes each) remain.
		rest := make([]byte, 12)
		if _, err := io.ReadFull(r, rest); err != nil {
			return formatErr("reading data descriptor", err)
		}
		return nil
	}
	// buf held the crc32; compressed and uncompressed sizes remain.
	rest := make([]byte, 8)
	if _, err := io.ReadFull(r, rest); err != nil {
		return formatErr("reading data descriptor", err)
	}
	return nil
}

func readUint32(r io.Reader) (uint32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}
