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

package xlsxrows

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/streamxlsx/internal/xlsxtypes"
)

func lookupFrom(strs []string) SharedStringLookup {
	return func(idx int) (string, bool) {
		if idx < 0 || idx >= len(strs) {
			return "", false
		}
		return strs[idx], true
	}
}

func TestExtractorBasicRows(t *testing.T) {
	sheet := `<?xml version="1.0"?>
<worksheet>
  <sheetData>
    <row r="1">
      <c r="A1" t="s"><v>0</v></c>
      <c r="B1"><v>42</v></c>
      <c r="C1"><v>3.14</v></c>
    </row>
    <row r="2">
      <c r="B2" t="b"><v>1</v></c>
      <c r="C2" t="str"><v>hello</v></c>
    </row>
  </sheetData>
</worksheet>`

	ex := NewExtractor(strings.NewReader(sheet), lookupFrom([]string{"greeting"}))

	row1, err := ex.Next()
	if err != nil {
		t.Fatalf("Next() row1: %v", err)
	}
	want1 := xlsxtypes.Row{
		{Kind: xlsxtypes.Text, Text: "greeting"},
		{Kind: xlsxtypes.Integer, Int: 42},
		{Kind: xlsxtypes.Float, Float: 3.14},
	}
	if diff := cmp.Diff(want1, row1); diff != "" {
		t.Errorf("row1 mismatch (-want +got):\n%s", diff)
	}

	row2, err := ex.Next()
	if err != nil {
		t.Fatalf("Next() row2: %v", err)
	}
	want2 := xlsxtypes.Row{
		{Kind: xlsxtypes.Empty},
		{Kind: xlsxtypes.Boolean, Bool: true},
		{Kind: xlsxtypes.Text, Text: "hello"},
	}
	if diff := cmp.Diff(want2, row2); diff != "" {
		t.Errorf("row2 mismatch (-want +got):\n%s", diff)
	}

	if _, err := ex.Next(); err != io.EOF {
		t.Fatalf("Next() after last row = %v, want io.EOF", err)
	}
}

func TestExtractorSkipsEmptyRows(t *testing.T) {
	sheet := `<worksheet><sheetData>
    <row r="1"></row>
    <row r="2"><c r="A2"><v>1</v></c></row>
  </sheetData></worksheet>`

	ex := NewExtractor(strings.NewReader(sheet), lookupFrom(nil))

	row, err := ex.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	if diff := cmp.Diff(xlsxtypes.Row{{Kind: xlsxtypes.Integer, Int: 1}}, row); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := ex.Next(); err != io.EOF {
		t.Fatalf("Next() = %v, want io.EOF", err)
	}
}

func TestExtractorInlineString(t *testing.T) {
	sheet := `<worksheet><sheetData>
    <row r="1"><c r="A1" t="inlineStr"><is><t>inline text</t></is></c></row>
  </sheetData></worksheet>`

	ex := NewExtractor(strings.NewReader(sheet), lookupFrom(nil))
	row, err := ex.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	want := xlsxtypes.Row{{Kind: xlsxtypes.Text, Text: "inline text"}}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractorSharedStringOutOfRangeWarns(t *testing.T) {
	sheet := `<worksheet><sheetData>
    <row r="1"><c r="A1" t="s"><v>99</v></c></row>
  </sheetData></worksheet>`

	ex := NewExtractor(strings.NewReader(sheet), func(idx int) (string, bool) { return "", false })
	row, err := ex.Next()
	if err != nil {
		t.Fatalf("Next(): %v", err)
	}
	if row[0].Kind != xlsxtypes.Empty {
		t.Errorf("cell kind = %v, want Empty", row[0].Kind)
	}
	if len(ex.Warnings()) != 1 {
		t.Fatalf("len(Warnings()) = %d, want 1", len(ex.Warnings()))
	}
}

func TestColumnIndex(t *testing.T) {
	cases := map[string]int{
		"A1":   0,
		"Z1":   25,
		"AA1":  26,
		"AZ1":  51,
		"BA1":  52,
		"ZZ1":  701,
		"AAA1": 702,
	}
	for addr, want := range cases {
		if got := columnIndex(addr); got != want {
			t.Errorf("columnIndex(%q) = %d, want %d", addr, got, want)
		}
	}
}

func TestInferNumeric(t *testing.T) {
	cases := []struct {
		raw  string
		kind xlsxtypes.CellKind
	}{
		{"42", xlsxtypes.Integer},
		{"3.14", xlsxtypes.Float},
		{"1e3", xlsxtypes.Float},
		{"#N/A", xlsxtypes.Text},
		{"", xlsxtypes.Empty},
	}
	for _, c := range cases {
		got := inferNumeric(c.raw)
		if got.Kind != c.kind {
			t.Errorf("inferNumeric(%q).Kind = %v, want %v", c.raw, got.Kind, c.kind)
		}
	}
}
