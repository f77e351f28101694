package rowsource

import (
	"context"
	"fmt"
	"io"
	"os"

	"retention-dashboard/internal/models"
)

// CSVFileSource reads line-item rows from a local CSV export.
type CSVFileSource struct {
	Path string
}

func NewCSVFile(path string) *CSVFileSource {
	return &CSVFileSource{Path: path}
}

func (s *CSVFileSource) Fetch(ctx context.Context) ([]models.RawRow, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, s.Path, err)
	}
	defer f.Close()

	return parseCSV(ctx, f)
}

// ReadRows parses rows from any CSV stream. Used by the CLI when piping data
// through stdin.
func ReadRows(ctx context.Context, r io.Reader) ([]models.RawRow, error) {
	return parseCSV(ctx, r)
}
