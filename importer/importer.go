// Package importer loads books in bulk from CSV files.
//
// Each row is title,author[,bookshelf]. A first row whose first column is
// "title" is treated as a header. Input that is not UTF-8 is decoded using
// the given charset label, or detected from the first bytes of the file.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/htol/bookshelf/book"
	"github.com/htol/bookshelf/logger"
	"github.com/htol/bookshelf/validator"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
)

const DefaultBatchSize = 500

type Storager interface {
	ImportBooks(ctx context.Context, records []book.Record) (int, error)
}

type Options struct {
	// Charset is an encoding label such as "windows-1251". Empty means detect.
	Charset string
	// BatchSize is the number of records written per transaction
	BatchSize int
}

// Result summarises an import run
type Result struct {
	Imported int
	Skipped  int
}

// Import reads CSV rows from r and hands them to storage in batches. Rows
// missing a title or author are skipped and counted.
func Import(ctx context.Context, r io.Reader, opts Options, storage Storager) (Result, error) {
	var res Result

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	contentType := "text/csv"
	if opts.Charset != "" {
		contentType += "; charset=" + opts.Charset
	}
	decoded, err := charset.NewReader(r, contentType)
	if errors.Is(err, io.EOF) {
		// empty input
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("decode input: %w", err)
	}

	records := make(chan book.Record)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(records)
		skipped, err := readRecords(ctx, decoded, records)
		res.Skipped = skipped
		return err
	})

	g.Go(func() error {
		batch := make([]book.Record, 0, batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			n, err := storage.ImportBooks(ctx, batch)
			if err != nil {
				return err
			}
			res.Imported += n
			batch = make([]book.Record, 0, batchSize)
			return nil
		}

		for rec := range records {
			batch = append(batch, rec)
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})

	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

func readRecords(ctx context.Context, r io.Reader, out chan<- book.Record) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	skipped := 0
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}
		if err != nil {
			return skipped, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			row[0] = strings.TrimPrefix(row[0], "\ufeff")
			if strings.EqualFold(strings.TrimSpace(row[0]), "title") {
				continue
			}
		}

		rec, err := parseRow(row)
		if err != nil {
			logger.Warn("Skipping row", "line", line, "error", err)
			skipped++
			continue
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return skipped, ctx.Err()
		}
	}
}

func parseRow(row []string) (book.Record, error) {
	var rec book.Record
	if len(row) < 2 {
		return rec, fmt.Errorf("%w: expected title and author, got %d column(s)", validator.ErrRequired, len(row))
	}

	var err error
	if rec.Title, err = validator.Required("title", row[0]); err != nil {
		return rec, err
	}
	if rec.Author, err = validator.Required("author", row[1]); err != nil {
		return rec, err
	}
	if len(row) > 2 {
		rec.Shelf = strings.TrimSpace(row[2])
	}
	return rec, nil
}
