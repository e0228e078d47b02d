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

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ianlewis/streamxlsx/internal/csvrow"
	"github.com/ianlewis/streamxlsx/internal/ioadapt"
	"github.com/ianlewis/streamxlsx/internal/xlsxmeta"
	"github.com/ianlewis/streamxlsx/internal/xlsxrows"
	"github.com/ianlewis/streamxlsx/internal/zipstream"
	"github.com/ianlewis/streamxlsx/source"
)

// Reader pulls rows out of a single worksheet of an XLSX archive under
// a bounded memory budget. Open drives one streaming pass to resolve
// the shared-string pool and the target worksheet's archive path;
// StreamRows and ToCSV each drive a second, independent pass over a
// freshly re-opened source.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src           source.Source
	cfg           config
	pool          xlsxmeta.Pool
	worksheetPath string
	rowWarnings   []xlsxrows.Warning
}

// Open resolves worksheet metadata from src and returns a Reader ready
// to stream rows. The returned Reader must be closed with Close once
// the caller is done with it.
func Open(ctx context.Context, src source.Source, opts ...Option) (*Reader, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.chunkSize > 0 {
		if cs, ok := src.(source.ChunkSizer); ok {
			cs.SetChunkSize(cfg.chunkSize)
		}
	}

	stream, err := src.OpenStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	res, err := xlsxmeta.Resolve(ioadapt.New(stream), xlsxmeta.Options{
		SheetName:      cfg.sheetName,
		SpillThreshold: cfg.spillThreshold,
	})
	if err != nil {
		return nil, translateMetaErr(err)
	}

	return &Reader{
		src:           src,
		cfg:           cfg,
		pool:          res.Pool,
		worksheetPath: res.WorksheetPath,
	}, nil
}

// Close releases resources held by the Reader itself, including any
// temporary file the shared-string pool spilled to. It does not close
// any RowIterator returned by StreamRows; callers that stop iterating
// early must close those separately (ToCSV does this for its own
// iterator automatically).
func (r *Reader) Close() error {
	return r.pool.Close()
}

// Metadata reports static facts about the underlying source.
func (r *Reader) Metadata(ctx context.Context) (source.Description, error) {
	desc, err := r.src.Describe(ctx)
	if err != nil {
		return source.Description{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return desc, nil
}

// Sheets drives a fresh pass over the source and returns every sheet
// the workbook declares, in workbook order.
func (r *Reader) Sheets(ctx context.Context) ([]SheetRef, error) {
	stream, err := r.src.OpenStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	refs, err := xlsxmeta.ListSheets(ioadapt.New(stream))
	if err != nil {
		return nil, translateMetaErr(err)
	}
	return refs, nil
}

// Warnings returns the non-fatal cell-decode problems observed so far by
// the most recent StreamRows or ToCSV pass; it is updated on every call
// to RowIterator.Next.
func (r *Reader) Warnings() []CellDecodeWarning {
	out := make([]CellDecodeWarning, len(r.rowWarnings))
	for i, w := range r.rowWarnings {
		out[i] = CellDecodeWarning{RowIndex: w.RowNumber, ColumnIndex: w.ColumnIndex, Reason: w.Reason}
	}
	return out
}

// RowIterator yields the rows of one worksheet pass.
type RowIterator struct {
	owner     *Reader
	dec       *zipstream.Decoder
	extractor *xlsxrows.Extractor
}

// Next returns the next row, or io.EOF once the worksheet is exhausted.
func (it *RowIterator) Next(ctx context.Context) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row, err := it.extractor.Next()
	it.owner.rowWarnings = it.extractor.Warnings()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, translateRowsErr(err)
	}
	return row, nil
}

// Close releases the inflate state and source stream this iterator was
// reading from. Callers must call Close to avoid leaking the underlying
// stream (an open file handle, or an HTTP response body and its
// connection), including after Next has returned io.EOF: that marks the
// end of the worksheet part, not of the archive, so the stream is still
// open until Close.
func (it *RowIterator) Close() error {
	err := it.extractor.Close()
	if cerr := it.dec.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// StreamRows opens a fresh pass over the source and returns an iterator
// over the resolved worksheet's rows. The caller must call the
// returned iterator's Close once done with it, whether or not Next ran
// to io.EOF.
func (r *Reader) StreamRows(ctx context.Context) (*RowIterator, error) {
	stream, err := r.src.OpenStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	dec := zipstream.NewDecoder(ioadapt.New(stream))
	for {
		if err := ctx.Err(); err != nil {
			_ = dec.Close()
			return nil, err
		}

		part, err := dec.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: worksheet part %q not found", ErrZipFormat, r.worksheetPath)
		}
		if err != nil {
			_ = dec.Close()
			return nil, translateZipErr(err)
		}
		if part.Name != r.worksheetPath {
			continue
		}

		return &RowIterator{
			owner:     r,
			dec:       dec,
			extractor: xlsxrows.NewExtractor(part.Body, r.pool.Lookup),
		}, nil
	}
}

// ToCSV streams the resolved worksheet's rows to w as CSV.
func (r *Reader) ToCSV(ctx context.Context, w io.Writer) error {
	it, err := r.StreamRows(ctx)
	if err != nil {
		return err
	}
	defer it.Close()

	cw := csvrow.NewWriter(w)
	for {
		row, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := cw.WriteRow(row); err != nil {
			return err
		}
	}
	return cw.Flush()
}

func translateMetaErr(err error) error {
	switch {
	case errors.Is(err, xlsxmeta.ErrSheetNotFound):
		return fmt.Errorf("%w: %w", ErrSheetNotFound, err)
	case errors.Is(err, xlsxmeta.ErrXMLFormat):
		return fmt.Errorf("%w: %w", ErrXMLFormat, err)
	default:
		return translateZipErr(err)
	}
}

func translateZipErr(err error) error {
	switch {
	case errors.Is(err, zipstream.ErrUnsupportedCompression):
		return fmt.Errorf("%w: %w", ErrUnsupportedCompression, err)
	case errors.Is(err, zipstream.ErrFormat):
		return fmt.Errorf("%w: %w", ErrZipFormat, err)
	default:
		return err
	}
}

func translateRowsErr(err error) error {
	if errors.Is(err, xlsxrows.ErrXMLFormat) {
		return fmt.Errorf("%w: %w", ErrXMLFormat, err)
	}
	return err
}
