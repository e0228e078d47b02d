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

package csvrow

import (
	"bytes"
	"testing"

	"github.com/ianlewis/streamxlsx/internal/xlsxtypes"
)

func TestWriteRow(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	rows := []xlsxtypes.Row{
		{
			{Kind: xlsxtypes.Text, Text: "name"},
			{Kind: xlsxtypes.Text, Text: "count"},
		},
		{
			{Kind: xlsxtypes.Text, Text: "widgets, large"},
			{Kind: xlsxtypes.Integer, Int: 42},
		},
		{
			{Kind: xlsxtypes.Text, Text: `has "quotes"`},
			{Kind: xlsxtypes.Float, Float: 3.14},
		},
		{
			{Kind: xlsxtypes.Empty},
			{Kind: xlsxtypes.Boolean, Bool: true},
		},
	}

	for _, r := range rows {
		if err := w.WriteRow(r); err != nil {
			t.Fatalf("WriteRow: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := "name,count\r\n" +
		"\"widgets, large\",42\r\n" +
		"\"has \"\"quotes\"\"\",3.14\r\n" +
		",true\r\n"

	if got := buf.String(); got != want {
		t.Errorf("CSV output = %q, want %q", got, want)
	}
}
