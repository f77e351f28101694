package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"retention-dashboard/internal/models"
	"retention-dashboard/internal/rowsource"
)

// Filters are the request-level narrowing options. From and To are inclusive
// YYYY-MM-DD bounds compared lexically against the raw date field; Product
// applies the first-order membership filter.
type Filters struct {
	From    string
	To      string
	Product string
}

// Analytics owns the cached raw row set and computes reports from it. Rows
// are refetched from the source once the cache window expires; every report
// is a full recomputation over the row set, there is no incremental merge.
type Analytics struct {
	mu        sync.RWMutex
	source    rowsource.Source
	ttl       time.Duration
	rows      []models.RawRow
	fetchedAt time.Time
	logger    *slog.Logger
}

// NewAnalytics builds the service. A ttl of zero or less keeps fetched rows
// forever, which also covers injected test data.
func NewAnalytics(source rowsource.Source, ttl time.Duration, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{source: source, ttl: ttl, logger: logger}
}

// SetRows injects a row set directly, bypassing the source.
func (a *Analytics) SetRows(rows []models.RawRow) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = rows
	a.fetchedAt = time.Now()
}

// Rows returns the cached row set, refetching from the source when the cache
// window has expired. A failed fetch surfaces as-is; stale rows are never
// served in its place.
func (a *Analytics) Rows(ctx context.Context) ([]models.RawRow, error) {
	a.mu.RLock()
	if a.fresh() {
		rows := a.rows
		a.mu.RUnlock()
		return rows, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fresh() {
		return a.rows, nil
	}
	if a.source == nil {
		return nil, fmt.Errorf("no row source configured")
	}

	start := time.Now()
	rows, err := a.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	a.rows = rows
	a.fetchedAt = time.Now()
	a.logger.Info("row set refreshed", "rows", len(rows), "duration", time.Since(start))
	return rows, nil
}

func (a *Analytics) fresh() bool {
	if a.fetchedAt.IsZero() {
		return false
	}
	return a.ttl <= 0 || time.Since(a.fetchedAt) < a.ttl
}

// Report runs the whole pipeline: date-range filter, normalization, the
// catalogue (frozen before any product narrowing), the optional product
// membership filter, then the metrics engine once per shop slice. The
// computation is sequential and works on data owned by this call only.
func (a *Analytics) Report(ctx context.Context, f Filters) (*models.Report, error) {
	rows, err := a.Rows(ctx)
	if err != nil {
		return nil, err
	}

	if f.From != "" || f.To != "" {
		filtered := make([]models.RawRow, 0, len(rows))
		for _, row := range rows {
			date := row[models.ColDate]
			if f.From != "" && date < f.From {
				continue
			}
			if f.To != "" && date > f.To {
				continue
			}
			filtered = append(filtered, row)
		}
		rows = filtered
	}

	items := NormalizeRows(rows)
	catalog := BuildCatalog(items)
	if f.Product != "" {
		items = FilterByFirstOrderProduct(items, f.Product)
	}

	shops := Shops(items)
	results := make(map[string]models.MetricsBundle, len(shops))
	for _, shop := range shops {
		results[shop] = ComputeMetrics(FilterByShop(items, shop))
	}

	return &models.Report{
		Shops:    shops,
		Products: catalog,
		Results:  results,
	}, nil
}

// Stats reports cache state for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return map[string]any{
		"cached_rows": len(a.rows),
		"fetched_at":  a.fetchedAt,
		"cache_ttl":   a.ttl.String(),
		"fresh":       a.fresh(),
	}
}
