package services

import (
	"strconv"
	"strings"
	"time"

	"retention-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// NormalizeRows converts raw sheet rows into typed line items. Rows without a
// customer ID or a parseable date are dropped; that is data-quality tolerance,
// not an error. Negative sales amounts (refund lines) contribute zero revenue
// but the line itself is kept. Input order is preserved.
func NormalizeRows(rows []models.RawRow) []models.LineItem {
	items := make([]models.LineItem, 0, len(rows))
	for _, row := range rows {
		customerID := row[models.ColCustomerID]
		date, ok := normalizeDate(row[models.ColDate])
		if customerID == "" || !ok {
			continue
		}

		orderIndex, _ := strconv.Atoi(strings.TrimSpace(row[models.ColOrderIndex]))
		if orderIndex < 0 {
			orderIndex = 0
		}

		shop := row[models.ColShop]
		if shop == "" {
			shop = "Unknown"
		}

		revenue, _ := strconv.ParseFloat(strings.TrimSpace(row[models.ColTotalSales]), 64)
		if revenue < 0 {
			revenue = 0
		}

		items = append(items, models.LineItem{
			OrderName:  row[models.ColOrderName],
			Date:       date,
			CustomerID: customerID,
			OrderIndex: orderIndex,
			Product:    row[models.ColProduct],
			Shop:       shop,
			Revenue:    revenue,
		})
	}
	return items
}

// normalizeDate reduces a date field to a bare YYYY-MM-DD string. A trailing
// time component (space or "T" separated) is cut off before validation, so
// every surviving date is a UTC midnight and day arithmetic stays exact.
func normalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[:i]
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", false
	}
	return s, true
}
