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

// Package xlsxtypes holds the cell-value and row types shared between the
// worksheet row extractor, the CSV serializer, and the public reader
// façade, so none of them need to import one another just for a type
// definition.
package xlsxtypes

// CellKind tags the union of value representations a worksheet cell can
// hold after type inference.
type CellKind int

const (
	// Empty is an absent or blank cell.
	Empty CellKind = iota
	// Text is a string value (shared string, inline string, formula
	// string result, or an error literal).
	Text
	// Integer is a signed 64-bit whole number.
	Integer
	// Float is a binary64 number.
	Float
	// Boolean is a true/false value.
	Boolean
)

// CellValue is a tagged union over the value kinds a worksheet cell can
// carry. Only the field matching Kind is meaningful.
type CellValue struct {
	Kind  CellKind
	Text  string
	Int   int64
	Float float64
	Bool  bool
}

// Row is a dense, ordered sequence of cell values: index i holds column
// i's value, with Empty standing in for any column not present in the
// sparse worksheet record.
type Row []CellValue

// SheetRef identifies one worksheet within a workbook: its
// human-readable name, the relationship id the workbook part uses to
// reference it, and the archive path of its worksheet XML part.
type SheetRef struct {
	DisplayName    string
	RelationshipID string
	PartPath       string
}
