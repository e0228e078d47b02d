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

import "io"

// descriptorSig is the data descriptor signature as four raw bytes,
// little-endian, i.e. "PK\x07\x08".
var descriptorSig = [4]byte{0x50, 0x4b, 0x07, 0x08}

// descriptorScanReader reads a stored (uncompressed) entry whose size was
// not known up front, locating the end of entry data by scanning for the
// data descriptor signature. Once found, it consumes the descriptor (12
// bytes following the signature) and returns io.EOF.
type descriptorScanReader struct {
	r        io.Reader
	window   [4]byte
	filled   int
	pending  []byte
	finished bool
}

func newDescriptorScanReader(r io.Reader) *descriptorScanReader {
	return &descriptorScanReader{r: r}
}

func (s *descriptorScanReader) Read(p []byte) (int, error) {
	if s.finished {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if len(s.pending) > 0 {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]
		return n, nil
	}

	out := 0
	one := make([]byte, 1)
	for out < len(p) {
		if _, err := io.ReadFull(s.r, one); err != nil {
			return out, formatErr("scanning for data descriptor", err)
		}

		if s.filled < 4 {
			s.window[s.filled] = one[0]
			s.filled++
			if s.filled < 4 {
				continue
			}
			if s.window == descriptorSig {
				if err := s.finishDescriptor(); err != nil {
					return out, err
				}
				return out, io.EOF
			}
			// Not a match: keep the four bytes in the window; each is
			// emitted below as it slides out.
			continue
		}

		// Slide the window by one, emitting the byte that falls off.
		emit := s.window[0]
		s.window[0] = s.window[1]
		s.window[1] = s.window[2]
		s.window[2] = s.window[3]
		s.window[3] = one[0]
		if s.window == descriptorSig {
			if err := s.finishDescriptor(); err != nil {
				return out, err
			}
			p[out] = emit
			out++
			return out, io.EOF
		}
		p[out] = emit
		out++
	}

	return out, nil
}

func (s *descriptorScanReader) finishDescriptor() error {
	rest := make([]byte, 12)
	if _, err := io.ReadFull(s.r, rest); err != nil {
		return formatErr("reading data descriptor", err)
	}
	s.finished = true
	return nil
}
