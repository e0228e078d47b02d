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

// Package csvrow serializes rows of typed cell values into minimal-quoting
// RFC 4180 CSV records.
package csvrow

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ianlewis/streamxlsx/internal/xlsxtypes"
)

// Writer serializes rows as CSV records terminated by "\r\n", quoting a
// field only when it contains a comma, a double quote, a carriage
// return, or a line feed.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter returns a Writer that writes CSV records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteRow serializes row as a single CSV record.
func (cw *Writer) WriteRow(row xlsxtypes.Row) error {
	if cw.err != nil {
		return cw.err
	}
	for i, cell := range row {
		if i > 0 {
			if _, err := cw.w.WriteString(","); err != nil {
				cw.err = err
				return err
			}
		}
		if err := cw.writeField(formatCell(cell)); err != nil {
			cw.err = err
			return err
		}
	}
	_, err := cw.w.WriteString("\r\n")
	if err != nil {
		cw.err = err
	}
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (cw *Writer) Flush() error {
	if cw.err != nil {
		return cw.err
	}
	return cw.w.Flush()
}

func (cw *Writer) writeField(field string) error {
	if !needsQuoting(field) {
		_, err := cw.w.WriteString(field)
		return err
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(field); i++ {
		if field[i] == '"' {
			b.WriteByte('"')
		}
		b.WriteByte(field[i])
	}
	b.WriteByte('"')
	_, err := cw.w.WriteString(b.String())
	return err
}

func needsQuoting(field string) bool {
	return strings.ContainsAny(field, ",\"\r\n")
}

// formatCell renders a cell's value using the shortest round-trip
// representation for numerics, matching the source spreadsheet's text
// as closely as a typed value allows.
func formatCell(cell xlsxtypes.CellValue) string {
	switch cell.Kind {
	case xlsxtypes.Empty:
		return ""
	case xlsxtypes.Text:
		return cell.Text
	case xlsxtypes.Integer:
		return strconv.FormatInt(cell.Int, 10)
	case xlsxtypes.Float:
		return strconv.FormatFloat(cell.Float, 'g', -1, 64)
	case xlsxtypes.Boolean:
		if cell.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
