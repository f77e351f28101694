package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"retention-dashboard/internal/models"
	"retention-dashboard/internal/rowsource"
)

type countingSource struct {
	rows  []models.RawRow
	err   error
	calls int
}

func (s *countingSource) Fetch(ctx context.Context) ([]models.RawRow, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func testRows() []models.RawRow {
	return []models.RawRow{
		rawRow("2024-01-10", "c1", "1", "ProdA", "Shop1", "40", "#1"),
		rawRow("2024-01-20", "c1", "2", "ProdB", "Shop1", "60", "#2"),
		rawRow("2024-01-15", "c2", "1", "ProdA", "Shop2", "30", "#3"),
	}
}

func TestAnalytics_Report(t *testing.T) {
	a := NewAnalytics(nil, 0, nil)
	a.SetRows(testRows())

	report, err := a.Report(context.Background(), Filters{})
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}

	wantShops := []string{"All", "Shop1", "Shop2"}
	if len(report.Shops) != len(wantShops) {
		t.Fatalf("Shops = %v, want %v", report.Shops, wantShops)
	}
	for i, s := range wantShops {
		if report.Shops[i] != s {
			t.Errorf("Shops[%d] = %q, want %q", i, report.Shops[i], s)
		}
	}

	all, ok := report.Results["All"]
	if !ok {
		t.Fatal("missing All slice")
	}
	if all.TotalOrders != 3 || all.TotalCustomers != 2 {
		t.Errorf("All = orders %d customers %d, want 3/2", all.TotalOrders, all.TotalCustomers)
	}

	// Per-shop order counts sum to the aggregate.
	sum := 0
	for _, shop := range report.Shops {
		if shop == AggregateShop {
			continue
		}
		sum += report.Results[shop].TotalOrders
	}
	if sum != all.TotalOrders {
		t.Errorf("per-shop orders sum to %d, want %d", sum, all.TotalOrders)
	}
}

func TestAnalytics_CatalogFrozenBeforeProductFilter(t *testing.T) {
	var rows []models.RawRow
	for i := 0; i < 20; i++ {
		rows = append(rows,
			rawRow("2024-01-10", fmt.Sprintf("a%02d", i), "1", "Alpha", "Shop1", "10", fmt.Sprintf("#a%02d", i)),
			rawRow("2024-01-10", fmt.Sprintf("b%02d", i), "1", "Beta", "Shop1", "10", fmt.Sprintf("#b%02d", i)),
		)
	}

	a := NewAnalytics(nil, 0, nil)
	a.SetRows(rows)

	report, err := a.Report(context.Background(), Filters{Product: "Alpha"})
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}

	// Narrowing to Alpha buyers must not shrink the catalogue: both products
	// stay available as filter options.
	if len(report.Products) != 2 {
		t.Fatalf("Products length = %d, want 2", len(report.Products))
	}
	// The metrics themselves cover only Alpha's buyers.
	if got := report.Results["All"].TotalCustomers; got != 20 {
		t.Errorf("TotalCustomers = %d, want 20", got)
	}
}

func TestAnalytics_DateRange(t *testing.T) {
	a := NewAnalytics(nil, 0, nil)
	a.SetRows(testRows())

	report, err := a.Report(context.Background(), Filters{From: "2024-01-12", To: "2024-01-16"})
	if err != nil {
		t.Fatalf("Report() error: %v", err)
	}

	all := report.Results["All"]
	if all.TotalOrders != 1 || all.TotalCustomers != 1 {
		t.Errorf("ranged slice = orders %d customers %d, want 1/1", all.TotalOrders, all.TotalCustomers)
	}
}

func TestAnalytics_CachesRows(t *testing.T) {
	src := &countingSource{rows: testRows()}
	a := NewAnalytics(src, time.Hour, nil)

	for i := 0; i < 3; i++ {
		if _, err := a.Report(context.Background(), Filters{}); err != nil {
			t.Fatalf("Report() error: %v", err)
		}
	}
	if src.calls != 1 {
		t.Errorf("source fetched %d times, want 1", src.calls)
	}
}

func TestAnalytics_RefetchesAfterTTL(t *testing.T) {
	src := &countingSource{rows: testRows()}
	a := NewAnalytics(src, time.Nanosecond, nil)

	if _, err := a.Rows(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, err := a.Rows(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source fetched %d times, want 2", src.calls)
	}
}

func TestAnalytics_SourceErrorPropagates(t *testing.T) {
	src := &countingSource{err: rowsource.ErrUnavailable}
	a := NewAnalytics(src, time.Hour, nil)

	_, err := a.Report(context.Background(), Filters{})
	if !errors.Is(err, rowsource.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
