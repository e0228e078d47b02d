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

package xlsxmeta

import (
	"fmt"
	"io"
	"os"
)

// Pool is an ordered, 0-indexed, immutable sequence of shared string
// values. Lookup of an out-of-range index returns ("", false); per spec
// this is a policy decision (the caller downgrades to Empty), not an
// error.
type Pool interface {
	Lookup(idx int) (string, bool)
	Len() int
	Close() error
}

// memPool is the default, fully in-memory Pool.
type memPool struct {
	entries []string
}

func (p *memPool) Lookup(idx int) (string, bool) {
	if idx < 0 || idx >= len(p.entries) {
		return "", false
	}
	return p.entries[idx], true
}

func (p *memPool) Len() int    { return len(p.entries) }
func (p *memPool) Close() error { return nil }

// spillPool backs the shared-string table with a temporary file, so a
// worksheet with a very large shared-string table does not keep the
// whole table resident. Once PoolBuilder crosses its threshold it moves
// every entry, including those appended earlier, to the file, so a built
// spillPool holds nothing in mem; Lookup consults mem before the file.
type spillPool struct {
	mem  []string
	file *os.File
	locs []fileLoc
}

type fileLoc struct {
	offset int64
	length int64
}

func (p *spillPool) Lookup(idx int) (string, bool) {
	if idx < 0 {
		return "", false
	}
	if idx < len(p.mem) {
		return p.mem[idx], true
	}
	spillIdx := idx - len(p.mem)
	if spillIdx >= len(p.locs) {
		return "", false
	}
	loc := p.locs[spillIdx]
	buf := make([]byte, loc.length)
	if _, err := p.file.ReadAt(buf, loc.offset); err != nil {
		return "", false
	}
	return string(buf), true
}

func (p *spillPool) Len() int { return len(p.mem) + len(p.locs) }

func (p *spillPool) Close() error {
	if p.file == nil {
		return nil
	}
	name := p.file.Name()
	if err := p.file.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}

// PoolBuilder accumulates shared-string pool entries during the metadata
// pass, spilling to a temporary file once the in-memory byte total
// crosses threshold. A threshold of 0 disables spilling.
type PoolBuilder struct {
	threshold int64
	memBytes  int64
	mem       []string

	file *os.File
	locs []fileLoc
}

// NewPoolBuilder returns a builder that spills to disk once the
// in-memory pool exceeds threshold bytes. threshold <= 0 means never
// spill.
func NewPoolBuilder(threshold int64) *PoolBuilder {
	return &PoolBuilder{threshold: threshold}
}

// Append adds the next pool entry (index = number of prior Append calls).
func (b *PoolBuilder) Append(s string) error {
	if b.file != nil {
		return b.appendToFile(s)
	}

	b.mem = append(b.mem, s)
	b.memBytes += int64(len(s))

	if b.threshold > 0 && b.memBytes > b.threshold {
		if err := b.spillExisting(); err != nil {
			return err
		}
	}
	return nil
}

func (b *PoolBuilder) spillExisting() error {
	f, err := os.CreateTemp("", "streamxlsx-sharedstrings-*.tmp")
	if err != nil {
		return fmt.Errorf("creating spill file: %w", err)
	}
	b.file = f

	spilled := b.mem
	b.mem = nil
	b.memBytes = 0

	var offset int64
	for _, s := range spilled {
		n, err := f.WriteString(s)
		if err != nil {
			return fmt.Errorf("writing spill file: %w", err)
		}
		b.locs = append(b.locs, fileLoc{offset: offset, length: int64(n)})
		offset += int64(n)
	}
	return nil
}

func (b *PoolBuilder) appendToFile(s string) error {
	info, err := b.file.Stat()
	if err != nil {
		return fmt.Errorf("stat spill file: %w", err)
	}
	offset := info.Size()
	n, err := b.file.WriteString(s)
	if err != nil {
		return fmt.Errorf("writing spill file: %w", err)
	}
	b.locs = append(b.locs, fileLoc{offset: offset, length: int64(n)})
	return nil
}

// Build finalizes the pool. After Build, the PoolBuilder must not be
// reused.
func (b *PoolBuilder) Build() (Pool, error) {
	if b.file == nil {
		return &memPool{entries: b.mem}, nil
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking spill file: %w", err)
	}
	return &spillPool{mem: b.mem, file: b.file, locs: b.locs}, nil
}
