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

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rodaine/table"

	"github.com/ianlewis/streamxlsx"
)

func printSheets(ctx context.Context, r *streamxlsx.Reader, w io.Writer) error {
	refs, err := r.Sheets(ctx)
	if err != nil {
		return fmt.Errorf("listing sheets: %w", err)
	}

	tbl := table.New("name", "relationship id", "part")
	tbl.WithWriter(w)
	for _, ref := range refs {
		tbl.AddRow(ref.DisplayName, ref.RelationshipID, ref.PartPath)
	}
	tbl.Print()

	return nil
}
