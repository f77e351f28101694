package rowsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"retention-dashboard/internal/models"
)

// ErrUnavailable marks a row source that cannot be reached or answered with a
// non-success status. Callers surface it as a single top-level failure; no
// partial row set is ever returned alongside it.
var ErrUnavailable = errors.New("row source unavailable")

// Source supplies the raw line-item records one computation runs over.
type Source interface {
	Fetch(ctx context.Context) ([]models.RawRow, error)
}

const (
	batchSize  = 10000
	maxWorkers = 10
)

// parseCSV reads header-keyed records from r. Input with no data rows yields
// an empty set, not an error. Record-to-row conversion runs in batches across
// workers; the output keeps input order.
func parseCSV(ctx context.Context, r io.Reader) ([]models.RawRow, error) {
	cr := csv.NewReader(bufio.NewReaderSize(r, 1<<20))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var records [][]string
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		records = append(records, record)
	}

	rows := make([]models.RawRow, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			for i := start; i < end; i++ {
				rows[i] = toRow(header, records[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func toRow(header, record []string) models.RawRow {
	row := make(models.RawRow, len(header))
	for i, h := range header {
		if i < len(record) {
			row[h] = record[i]
		} else {
			row[h] = ""
		}
	}
	return row
}
