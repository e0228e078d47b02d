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

package streamxlsx

import "github.com/ianlewis/streamxlsx/internal/xlsxtypes"

// CellKind tags the union of value representations a worksheet cell can
// hold after type inference.
type CellKind = xlsxtypes.CellKind

// The possible kinds of a CellValue.
const (
	Empty   = xlsxtypes.Empty
	Text    = xlsxtypes.Text
	Integer = xlsxtypes.Integer
	Float   = xlsxtypes.Float
	Boolean = xlsxtypes.Boolean
)

// CellValue is a tagged union over the value kinds a worksheet cell can
// carry. Only the field matching Kind is meaningful.
type CellValue = xlsxtypes.CellValue

// Row is a dense, ordered sequence of cell values: index i holds column
// i's value, with Empty standing in for any column not present in the
// sparse worksheet record.
type Row = xlsxtypes.Row

// SheetRef identifies one worksheet within a workbook.
type SheetRef = xlsxtypes.SheetRef
