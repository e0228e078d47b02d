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

// Package xlsxmeta implements the first of the two streaming passes over
// an XLSX archive: it locates the shared-string pool and resolves a
// caller-supplied sheet name to the archive path of its worksheet part.
package xlsxmeta

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ianlewis/streamxlsx/internal/xlsxtypes"
	"github.com/ianlewis/streamxlsx/internal/zipstream"
)

const (
	pathSharedStrings = "xl/sharedStrings.xml"
	pathWorkbook      = "xl/workbook.xml"
	pathWorkbookRels  = "xl/_rels/workbook.xml.rels"
	pathDefaultSheet  = "xl/worksheets/sheet1.xml"

	relationshipsNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Options configures a metadata resolution pass.
type Options struct {
	// SheetName is the human-readable sheet to target. Empty selects the
	// default first worksheet without consulting the workbook part.
	SheetName string

	// SpillThreshold is the in-memory byte budget for the shared-string
	// pool before it spills to a temporary file. 0 disables spilling.
	SpillThreshold int64
}

// Result is the output of a metadata pass: the shared-string pool and the
// archive path of the resolved worksheet. Callers must Close the pool
// once the row-emission pass is complete.
type Result struct {
	Pool          Pool
	WorksheetPath string
}

// Resolve drives one streaming pass of the ZIP decoder over r, collecting
// the shared-string pool and resolving opts.SheetName to a worksheet
// part path.
func Resolve(r io.Reader, opts Options) (*Result, error) {
	dec := zipstream.NewDecoder(r)
	defer dec.Close()
	pool := NewPoolBuilder(opts.SpillThreshold)

	var workbookXML, relsXML []byte
	needWorkbook := opts.SheetName != ""

	for {
		part, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch part.Name {
		case pathSharedStrings:
			if err := parseSharedStrings(part.Body, pool); err != nil {
				return nil, err
			}
		case pathWorkbook:
			if needWorkbook {
				b, err := io.ReadAll(part.Body)
				if err != nil {
					return nil, fmt.Errorf("%w: reading %s: %w", ErrXMLFormat, pathWorkbook, err)
				}
				workbookXML = b
			}
		case pathWorkbookRels:
			if needWorkbook {
				b, err := io.ReadAll(part.Body)
				if err != nil {
					return nil, fmt.Errorf("%w: reading %s: %w", ErrXMLFormat, pathWorkbookRels, err)
				}
				relsXML = b
			}
		}
		// Any other part is left undrained here; Decoder.Next drains it
		// automatically on the following call.
	}

	builtPool, err := pool.Build()
	if err != nil {
		return nil, err
	}

	if !needWorkbook {
		return &Result{Pool: builtPool, WorksheetPath: pathDefaultSheet}, nil
	}

	worksheetPath, err := resolveSheetPath(workbookXML, relsXML, opts.SheetName)
	if err != nil {
		_ = builtPool.Close()
		return nil, err
	}

	return &Result{Pool: builtPool, WorksheetPath: worksheetPath}, nil
}

// siNode unmarshals a <si> shared-string item, covering both the plain
// <si><t>…</t></si> form and the rich-text <si><r><t>…</t></r>…</si> form.
type siNode struct {
	T *string `xml:"t"`
	R []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (n siNode) text() string {
	if n.T != nil {
		return *n.T
	}
	var b strings.Builder
	for _, run := range n.R {
		b.WriteString(run.T)
	}
	return b.String()
}

func parseSharedStrings(r io.Reader, pool *PoolBuilder) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrXMLFormat, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "si" {
			continue
		}

		var node siNode
		if err := dec.DecodeElement(&node, &start); err != nil {
			return fmt.Errorf("%w: decoding si element: %w", ErrXMLFormat, err)
		}
		if err := pool.Append(node.text()); err != nil {
			return err
		}
	}
}

type workbookDoc struct {
	Sheets []sheetEntry `xml:"sheets>sheet"`
}

type sheetEntry struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type relsDoc struct {
	Relationships []relationshipEntry `xml:"Relationship"`
}

type relationshipEntry struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
}

func resolveSheetPath(workbookXML, relsXML []byte, sheetName string) (string, error) {
	refs, err := parseSheetRefs(workbookXML, relsXML)
	if err != nil {
		return "", err
	}
	for _, ref := range refs {
		if ref.DisplayName == sheetName {
			return ref.PartPath, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
}

// parseSheetRefs resolves every sheet the workbook declares to its
// worksheet part path.
func parseSheetRefs(workbookXML, relsXML []byte) ([]xlsxtypes.SheetRef, error) {
	if len(workbookXML) == 0 || len(relsXML) == 0 {
		return nil, fmt.Errorf("%w: workbook or relationships part missing", ErrSheetNotFound)
	}

	var wb workbookDoc
	if err := xml.Unmarshal(workbookXML, &wb); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrXMLFormat, pathWorkbook, err)
	}

	var rels relsDoc
	if err := xml.Unmarshal(relsXML, &rels); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrXMLFormat, pathWorkbookRels, err)
	}

	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		targets[rel.ID] = rel.Target
	}

	refs := make([]xlsxtypes.SheetRef, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		target, ok := targets[s.RID]
		if !ok {
			continue
		}
		refs = append(refs, xlsxtypes.SheetRef{
			DisplayName:    s.Name,
			RelationshipID: s.RID,
			PartPath:       normalizeWorksheetPath(target),
		})
	}
	return refs, nil
}

// ListSheets drives a streaming pass over r just far enough to collect
// the workbook and relationships parts, then returns every sheet the
// workbook declares. It does not build the shared-string pool, so it is
// cheaper than Resolve when a caller only wants the sheet list.
func ListSheets(r io.Reader) ([]xlsxtypes.SheetRef, error) {
	dec := zipstream.NewDecoder(r)
	defer dec.Close()

	var workbookXML, relsXML []byte
	for {
		part, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch part.Name {
		case pathWorkbook:
			b, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("%w: reading %s: %w", ErrXMLFormat, pathWorkbook, err)
			}
			workbookXML = b
		case pathWorkbookRels:
			b, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("%w: reading %s: %w", ErrXMLFormat, pathWorkbookRels, err)
			}
			relsXML = b
		}
		if workbookXML != nil && relsXML != nil {
			break
		}
	}

	return parseSheetRefs(workbookXML, relsXML)
}

// normalizeWorksheetPath strips a leading slash and a duplicated leading
// "xl/" before prepending "xl/", per spec's target path normalization
// rule.
func normalizeWorksheetPath(target string) string {
	cleaned := strings.TrimPrefix(target, "/")
	cleaned = strings.TrimPrefix(cleaned, "xl/")
	return "xl/" + cleaned
}
