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
	"os"
	"strings"

	"github.com/ianlewis/streamxlsx"
	"github.com/ianlewis/streamxlsx/source"
)

type run struct {
	source     string
	sheetName  string
	output     string
	verbose    bool
	listSheets bool

	stdout io.Writer
	stderr io.Writer
}

func (r *run) openSource() (source.Source, error) {
	if strings.HasPrefix(r.source, "http://") || strings.HasPrefix(r.source, "https://") {
		return &source.HTTP{URL: r.source}, nil
	}
	if strings.Contains(r.source, "://") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, r.source)
	}
	return &source.File{Path: r.source}, nil
}

func (r *run) Run(ctx context.Context) error {
	src, err := r.openSource()
	if err != nil {
		return err
	}

	var opts []streamxlsx.Option
	if r.sheetName != "" {
		opts = append(opts, streamxlsx.WithSheetName(r.sheetName))
	}

	reader, err := streamxlsx.Open(ctx, src, opts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	if r.listSheets {
		return printSheets(ctx, reader, r.stdout)
	}

	out := r.stdout
	if r.output != "" {
		f, err := os.Create(r.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := reader.ToCSV(ctx, out); err != nil {
		return err
	}

	if r.verbose {
		warnings := reader.Warnings()
		for _, w := range warnings {
			fmt.Fprintf(r.stderr, "warning: %s\n", w)
		}
		fmt.Fprintf(r.stderr, "%d cell warnings\n", len(warnings))
	}

	return nil
}
