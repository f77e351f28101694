package services

import (
	"math"
	"sort"
	"strconv"
	"time"

	"retention-dashboard/internal/models"
)

const msPerDay = 86_400_000

// ComputeMetrics turns the line items of one shop slice into the full
// analytics bundle. It is a pure function: a fixed input always yields a
// byte-identical bundle. Empty input yields an all-zero bundle with empty
// collections, never an error.
func ComputeMetrics(items []models.LineItem) models.MetricsBundle {
	orders := dedupeOrders(items)

	customerIDs := make(map[string]struct{})
	repeatIDs := make(map[string]struct{})
	for _, o := range orders {
		customerIDs[o.CustomerID] = struct{}{}
		if o.OrderIndex >= 2 {
			repeatIDs[o.CustomerID] = struct{}{}
		}
	}
	totalCustomers := len(customerIDs)
	repeatCustomers := len(repeatIDs)

	cohortMonths, cohortOrders := groupCohorts(orders)
	timing, daysTo2nd := computeTiming(orders)
	spend, spendOrder := customerSpend(orders)

	var totalRevenue float64
	for _, o := range orders {
		totalRevenue += o.Revenue
	}

	bundle := models.MetricsBundle{
		TotalCustomers:   totalCustomers,
		RepeatCustomers:  repeatCustomers,
		RepeatRate:       ratioPct(repeatCustomers, totalCustomers),
		TotalOrders:      len(orders),
		Monthly:          computeMonthly(orders),
		Cohorts:          computeCohortRetention(orders, cohortMonths, cohortOrders),
		Timing:           timing,
		Distribution:     computeDistribution(daysTo2nd),
		ProductRetention: computeProductRetention(items, repeatIDs),
		ProductJourney:   computeProductJourney(items),
		AvgLtv:           roundDiv(totalRevenue, totalCustomers),
		TotalRevenue:     int(math.Round(totalRevenue)),
		LtvByCohort:      computeCohortLTV(cohortMonths, cohortOrders, spend),
		LtvDistribution:  computeLTVDistribution(spend, spendOrder, totalCustomers),
	}
	bundle.RepeatLtv, bundle.OneTimeLtv = splitLTV(spend, spendOrder, repeatIDs)
	return bundle
}

// dedupeOrders merges line items sharing an (OrderName, CustomerID) key into
// one order, summing revenue and collecting products in encounter order. The
// result keeps first-encounter order so downstream accumulation stays
// deterministic.
func dedupeOrders(items []models.LineItem) []*models.Order {
	byKey := make(map[string]*models.Order)
	var orders []*models.Order
	for _, it := range items {
		key := it.OrderName + "|" + it.CustomerID
		o, ok := byKey[key]
		if !ok {
			o = &models.Order{
				OrderName:  it.OrderName,
				Date:       it.Date,
				CustomerID: it.CustomerID,
				OrderIndex: it.OrderIndex,
				Shop:       it.Shop,
			}
			byKey[key] = o
			orders = append(orders, o)
		}
		o.Revenue += it.Revenue
		if it.Product != "" {
			o.Products = append(o.Products, it.Product)
		}
	}
	return orders
}

type monthAccum struct {
	orders    int
	revenue   float64
	customers map[string]struct{}
	newCusts  map[string]struct{}
	repCusts  map[string]struct{}
}

// computeMonthly buckets orders by calendar month.
func computeMonthly(orders []*models.Order) []models.MonthlyTrend {
	byMonth := make(map[string]*monthAccum)
	for _, o := range orders {
		month := o.Date[:7]
		m, ok := byMonth[month]
		if !ok {
			m = &monthAccum{
				customers: make(map[string]struct{}),
				newCusts:  make(map[string]struct{}),
				repCusts:  make(map[string]struct{}),
			}
			byMonth[month] = m
		}
		m.orders++
		m.revenue += o.Revenue
		m.customers[o.CustomerID] = struct{}{}
		if o.OrderIndex == 1 {
			m.newCusts[o.CustomerID] = struct{}{}
		}
		if o.OrderIndex >= 2 {
			m.repCusts[o.CustomerID] = struct{}{}
		}
	}

	months := sortedKeys(byMonth)
	monthly := make([]models.MonthlyTrend, 0, len(months))
	for _, month := range months {
		m := byMonth[month]
		monthly = append(monthly, models.MonthlyTrend{
			Month:     formatMonth(month),
			Orders:    m.orders,
			Revenue:   int(math.Round(m.revenue)),
			Customers: len(m.customers),
			New:       len(m.newCusts),
			Repeat:    len(m.repCusts),
			RepeatPct: ratioPct(len(m.repCusts), len(m.customers)),
			AOV:       roundDiv(m.revenue, m.orders),
		})
	}
	return monthly
}

// groupCohorts groups first orders (OrderIndex == 1) by calendar month.
// Months come back sorted; each cohort's orders keep encounter order.
func groupCohorts(orders []*models.Order) ([]string, map[string][]*models.Order) {
	byMonth := make(map[string][]*models.Order)
	for _, o := range orders {
		if o.OrderIndex != 1 {
			continue
		}
		month := o.Date[:7]
		byMonth[month] = append(byMonth[month], o)
	}
	return sortedKeys(byMonth), byMonth
}

// daysBetween is the calendar-day difference of two YYYY-MM-DD dates,
// computed as an epoch-millisecond difference divided by 86,400,000 and
// rounded. Both dates are UTC midnights, so the quotient is always a whole
// number of days. Deliberately not a calendar-aware day count: DST or
// timezone shifts must not move results by a day.
func daysBetween(d1, d2 string) int {
	t1, _ := time.Parse(dateLayout, d1)
	t2, _ := time.Parse(dateLayout, d2)
	return int(math.Round(float64(t2.UnixMilli()-t1.UnixMilli()) / msPerDay))
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ratioPct is num/den as a percentage rounded to one decimal, 0 when den is 0.
func ratioPct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round1(float64(num) / float64(den) * 100)
}

// roundDiv is sum/n rounded to the nearest integer, 0 when n is 0.
func roundDiv(sum float64, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

var monthAbbrev = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// formatMonth renders "YYYY-MM" as "Jan 24".
func formatMonth(yyyymm string) string {
	m, _ := strconv.Atoi(yyyymm[5:7])
	if m < 1 || m > 12 {
		return yyyymm
	}
	return monthAbbrev[m-1] + " " + yyyymm[2:4]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
