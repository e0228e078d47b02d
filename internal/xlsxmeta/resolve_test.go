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
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

const sharedStringsXML = `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="3" uniqueCount="3">
  <si><t>apple</t></si>
  <si><r><t>bo</t></r><r><t>ld</t></r></si>
  <si><t>cherry</t></si>
</sst>`

const workbookXML = `<?xml version="1.0"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"
          xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="Sheet1" sheetId="1" r:id="rId1"/>
    <sheet name="Totals" sheetId="2" r:id="rId2"/>
  </sheets>
</workbook>`

const workbookRelsXML = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId2" Type="worksheet" Target="worksheets/sheet2.xml"/>
</Relationships>`

func buildWorkbookZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"xl/sharedStrings.xml":        sharedStringsXML,
		"xl/workbook.xml":             workbookXML,
		"xl/_rels/workbook.xml.rels":  workbookRelsXML,
		"xl/worksheets/sheet1.xml":    "<worksheet/>",
		"xl/worksheets/sheet2.xml":    "<worksheet/>",
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Create(%q): %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestResolveDefaultSheet(t *testing.T) {
	t.Parallel()

	data := buildWorkbookZip(t)
	res, err := Resolve(bytes.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer res.Pool.Close()

	if res.WorksheetPath != pathDefaultSheet {
		t.Errorf("WorksheetPath = %q, want %q", res.WorksheetPath, pathDefaultSheet)
	}
	if res.Pool.Len() != 3 {
		t.Errorf("Pool.Len() = %d, want 3", res.Pool.Len())
	}

	s, ok := res.Pool.Lookup(1)
	if !ok || s != "bold" {
		t.Errorf("Pool.Lookup(1) = %q, %v, want \"bold\", true", s, ok)
	}
}

func TestResolveNamedSheet(t *testing.T) {
	t.Parallel()

	data := buildWorkbookZip(t)
	res, err := Resolve(bytes.NewReader(data), Options{SheetName: "Totals"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer res.Pool.Close()

	if res.WorksheetPath != "xl/worksheets/sheet2.xml" {
		t.Errorf("WorksheetPath = %q, want xl/worksheets/sheet2.xml", res.WorksheetPath)
	}
}

func TestResolveSheetNotFound(t *testing.T) {
	t.Parallel()

	data := buildWorkbookZip(t)
	_, err := Resolve(bytes.NewReader(data), Options{SheetName: "DoesNotExist"})
	if !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("Resolve error = %v, want wrapping ErrSheetNotFound", err)
	}
}

func TestListSheets(t *testing.T) {
	t.Parallel()

	data := buildWorkbookZip(t)
	refs, err := ListSheets(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ListSheets: %v", err)
	}

	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}
	if refs[0].DisplayName != "Sheet1" || refs[0].PartPath != "xl/worksheets/sheet1.xml" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].DisplayName != "Totals" || refs[1].PartPath != "xl/worksheets/sheet2.xml" {
		t.Errorf("refs[1] = %+v", refs[1])
	}
}

func TestPoolBuilderSpillsOverThreshold(t *testing.T) {
	t.Parallel()

	b := NewPoolBuilder(4)
	for _, s := range []string{"aaaaa", "bbbbb", "ccccc"} {
		if err := b.Append(s); err != nil {
			t.Fatalf("Append(%q): %v", s, err)
		}
	}
	pool, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer pool.Close()

	if pool.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", pool.Len())
	}
	for i, want := range []string{"aaaaa", "bbbbb", "ccccc"} {
		got, ok := pool.Lookup(i)
		if !ok || got != want {
			t.Errorf("Lookup(%d) = %q, %v, want %q, true", i, got, ok, want)
		}
	}
	if _, ok := pool.Lookup(3); ok {
		t.Error("Lookup(3) ok = true, want false")
	}
}
