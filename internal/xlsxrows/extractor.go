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

// Package xlsxrows implements the second streaming pass over an XLSX
// archive: pull-parsing the resolved worksheet part's XML into dense,
// ordered rows of typed cell values.
package xlsxrows

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/ianlewis/streamxlsx/internal/xlsxtypes"
)

// SharedStringLookup resolves a shared-string pool index to its text, the
// way [xlsxmeta.Pool] does. It is expressed as a function here so this
// package doesn't need to depend on xlsxmeta's concrete pool types.
type SharedStringLookup func(idx int) (string, bool)

// Warning is a non-fatal cell-decode problem: an out-of-range
// shared-string index or an unparsable numeric. The cell's value is
// downgraded per §4.5 rather than aborting the row stream.
type Warning struct {
	RowNumber   int
	ColumnIndex int
	CellAddress string
	Reason      string
}

// Extractor pull-parses a worksheet XML body into rows.
type Extractor struct {
	dec      *xml.Decoder
	src      io.Reader
	strings  SharedStringLookup
	warnings []Warning

	currentRow      map[int]xlsxtypes.CellValue
	rowSeen         int
	cellAddress     string
	cellType        string
	collectingValue bool
	collectingIS    bool
	valueParts      []string
}

// NewExtractor returns an Extractor reading worksheet XML from r, using
// lookup to resolve shared-string cell references.
func NewExtractor(r io.Reader, lookup SharedStringLookup) *Extractor {
	return &Extractor{
		dec:     xml.NewDecoder(r),
		src:     r,
		strings: lookup,
	}
}

// Warnings returns the non-fatal cell-decode problems observed so far.
func (e *Extractor) Warnings() []Warning {
	return e.warnings
}

// Close releases the worksheet reader Extractor was given, if it
// implements io.Closer. Only necessary when a caller abandons iteration
// before Next returns io.EOF.
func (e *Extractor) Close() error {
	if c, ok := e.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Next returns the next dense row, or io.EOF once the worksheet is
// exhausted. Rows with no cells are never returned (they are skipped
// internally); row gaps implied by the <row r="…"> attribute are not
// filled.
func (e *Extractor) Next() (xlsxtypes.Row, error) {
	for {
		tok, err := e.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrXMLFormat, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			e.handleStart(t)
		case xml.EndElement:
			if row, ok := e.handleEnd(t); ok {
				return row, nil
			}
		case xml.CharData:
			if e.collectingValue || e.collectingIS {
				e.valueParts = append(e.valueParts, string(t))
			}
		}
	}
}

func localName(n xml.Name) string {
	return n.Local
}

func (e *Extractor) handleStart(t xml.StartElement) {
	switch localName(t.Name) {
	case "row":
		e.currentRow = map[int]xlsxtypes.CellValue{}
		e.rowSeen++
		for _, a := range t.Attr {
			if localName(a.Name) == "r" {
				if n, err := strconv.Atoi(a.Value); err == nil {
					e.rowSeen = n
				}
			}
		}
	case "c":
		e.cellAddress = ""
		e.cellType = ""
		for _, a := range t.Attr {
			switch localName(a.Name) {
			case "r":
				e.cellAddress = a.Value
			case "t":
				e.cellType = a.Value
			}
		}
	case "v":
		if e.cellAddress != "" {
			e.collectingValue = true
			e.valueParts = nil
		}
	case "is":
		if e.cellType == "inlineStr" && e.cellAddress != "" {
			e.collectingIS = true
			e.valueParts = nil
		}
	}
}

// handleEnd processes an end element. It returns (row, true) when a
// <row> element has just closed with at least one cell in it.
func (e *Extractor) handleEnd(t xml.EndElement) (xlsxtypes.Row, bool) {
	switch localName(t.Name) {
	case "v":
		if e.collectingValue {
			e.finalizeValueCell()
			e.collectingValue = false
			e.valueParts = nil
		}
	case "is":
		if e.collectingIS {
			e.finalizeInlineCell()
			e.collectingIS = false
			e.valueParts = nil
		}
	case "row":
		row := e.currentRow
		e.currentRow = nil
		if len(row) == 0 {
			return nil, false
		}
		return sparseToDense(row), true
	}
	return nil, false
}

func (e *Extractor) joinedValue() string {
	total := 0
	for _, p := range e.valueParts {
		total += len(p)
	}
	buf := make([]byte, 0, total)
	for _, p := range e.valueParts {
		buf = append(buf, p...)
	}
	return string(buf)
}

func (e *Extractor) finalizeValueCell() {
	if e.cellAddress == "" {
		return
	}
	raw := e.joinedValue()
	col := columnIndex(e.cellAddress)

	var value xlsxtypes.CellValue
	switch e.cellType {
	case "s":
		value = e.resolveSharedString(raw, col)
	case "b":
		switch raw {
		case "1":
			value = xlsxtypes.CellValue{Kind: xlsxtypes.Boolean, Bool: true}
		case "0":
			value = xlsxtypes.CellValue{Kind: xlsxtypes.Boolean, Bool: false}
		default:
			value = xlsxtypes.CellValue{Kind: xlsxtypes.Text, Text: raw}
		}
	case "str", "e":
		value = xlsxtypes.CellValue{Kind: xlsxtypes.Text, Text: raw}
	case "", "n":
		value = inferNumeric(raw)
		if value.Kind == xlsxtypes.Text {
			e.warn(col, "unparsable numeric %q", raw)
		}
	default:
		value = xlsxtypes.CellValue{Kind: xlsxtypes.Text, Text: raw}
	}

	e.currentRow[col] = value
}

func (e *Extractor) resolveSharedString(raw string, col int) xlsxtypes.CellValue {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		e.warn(col, "invalid shared string index %q", raw)
		return xlsxtypes.CellValue{Kind: xlsxtypes.Empty}
	}
	s, ok := e.strings(idx)
	if !ok {
		e.warn(col, "shared string index %d out of range", idx)
		return xlsxtypes.CellValue{Kind: xlsxtypes.Empty}
	}
	return xlsxtypes.CellValue{Kind: xlsxtypes.Text, Text: s}
}

func (e *Extractor) finalizeInlineCell() {
	if e.cellAddress == "" {
		return
	}
	col := columnIndex(e.cellAddress)
	e.currentRow[col] = xlsxtypes.CellValue{Kind: xlsxtypes.Text, Text: e.joinedValue()}
}

func (e *Extractor) warn(col int, format string, args ...any) {
	e.warnings = append(e.warnings, Warning{
		RowNumber:   e.rowSeen,
		ColumnIndex: col,
		CellAddress: e.cellAddress,
		Reason:      fmt.Sprintf(format, args...),
	})
}

// inferNumeric implements the numeric-inference rule: a cell whose type
// is absent or "n" is parsed as Integer if its text lacks '.', 'e', 'E';
// otherwise as Float. On parse failure the original text is retained as
// Text; empty text yields Empty.
func inferNumeric(raw string) xlsxtypes.CellValue {
	if raw == "" {
		return xlsxtypes.CellValue{Kind: xlsxtypes.Empty}
	}

	looksFloat := false
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '.', 'e', 'E':
			looksFloat = true
		}
	}

	if !looksFloat {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return xlsxtypes.CellValue{Kind: xlsxtypes.Integer, Int: n}
		}
		return xlsxtypes.CellValue{Kind: xlsxtypes.Text, Text: raw}
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return xlsxtypes.CellValue{Kind: xlsxtypes.Float, Float: f}
	}

	return xlsxtypes.CellValue{Kind: xlsxtypes.Text, Text: raw}
}

// sparseToDense expands a sparse column→value map into a dense row,
// padding unpopulated lower indices with Empty.
func sparseToDense(sparse map[int]xlsxtypes.CellValue) xlsxtypes.Row {
	maxCol := 0
	for col := range sparse {
		if col > maxCol {
			maxCol = col
		}
	}

	row := make(xlsxtypes.Row, maxCol+1)
	for i := range row {
		row[i] = xlsxtypes.CellValue{Kind: xlsxtypes.Empty}
	}
	for col, v := range sparse {
		row[col] = v
	}
	return row
}
