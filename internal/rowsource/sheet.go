package rowsource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"retention-dashboard/internal/models"
)

// SheetSource pulls rows from a published-spreadsheet CSV URL.
type SheetSource struct {
	URL    string
	Client *http.Client
}

func NewSheet(url string) *SheetSource {
	return &SheetSource{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SheetSource) Fetch(ctx context.Context) ([]models.RawRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch sheet: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch sheet: unexpected status %s", ErrUnavailable, resp.Status)
	}

	return parseCSV(ctx, resp.Body)
}
