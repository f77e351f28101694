package services

import (
	"math"

	"retention-dashboard/internal/models"
)

type spendAccum struct {
	total  float64
	orders int
}

// ltvBuckets partition customers by total spend; bounds are inclusive upper
// limits, the last bucket is open-ended.
var ltvBuckets = []struct {
	label string
	max   float64
}{
	{"€0–50", 50},
	{"€50–100", 100},
	{"€100–200", 200},
	{"€200–500", 500},
	{"€500+", math.MaxFloat64},
}

// customerSpend totals revenue and order count per customer over the
// deduplicated orders. The first-encounter ID order is returned alongside so
// every later float accumulation runs in a fixed order.
func customerSpend(orders []*models.Order) (map[string]*spendAccum, []string) {
	spend := make(map[string]*spendAccum)
	var ids []string
	for _, o := range orders {
		s, ok := spend[o.CustomerID]
		if !ok {
			s = &spendAccum{}
			spend[o.CustomerID] = s
			ids = append(ids, o.CustomerID)
		}
		s.total += o.Revenue
		s.orders++
	}
	return spend, ids
}

// splitLTV averages total spend within the repeat and one-time partitions.
func splitLTV(spend map[string]*spendAccum, ids []string, repeatIDs map[string]struct{}) (repeatLtv, oneTimeLtv int) {
	var repeatTotal, oneTimeTotal float64
	var repeatCount, oneTimeCount int
	for _, id := range ids {
		s := spend[id]
		if _, ok := repeatIDs[id]; ok {
			repeatTotal += s.total
			repeatCount++
		} else {
			oneTimeTotal += s.total
			oneTimeCount++
		}
	}
	return roundDiv(repeatTotal, repeatCount), roundDiv(oneTimeTotal, oneTimeCount)
}

// computeCohortLTV averages total customer spend and order count per
// first-purchase-month cohort.
func computeCohortLTV(months []string, cohorts map[string][]*models.Order, spend map[string]*spendAccum) []models.CohortLTV {
	out := make([]models.CohortLTV, 0, len(months))
	for _, month := range months {
		members := make(map[string]struct{})
		var memberOrder []string
		for _, o := range cohorts[month] {
			if _, ok := members[o.CustomerID]; !ok {
				memberOrder = append(memberOrder, o.CustomerID)
			}
			members[o.CustomerID] = struct{}{}
		}

		var totalSpend float64
		var totalOrders int
		for _, id := range memberOrder {
			if s, ok := spend[id]; ok {
				totalSpend += s.total
				totalOrders += s.orders
			}
		}

		size := len(members)
		avgOrders := 0.0
		if size > 0 {
			avgOrders = round1(float64(totalOrders) / float64(size))
		}
		out = append(out, models.CohortLTV{
			Cohort:    formatMonth(month),
			Size:      size,
			AvgLtv:    roundDiv(totalSpend, size),
			AvgOrders: avgOrders,
		})
	}
	return out
}

// computeLTVDistribution buckets customers by total spend.
func computeLTVDistribution(spend map[string]*spendAccum, ids []string, totalCustomers int) []models.BucketCount {
	counts := make([]int, len(ltvBuckets))
	for _, id := range ids {
		total := spend[id].total
		for i, b := range ltvBuckets {
			if total <= b.max {
				counts[i]++
				break
			}
		}
	}

	out := make([]models.BucketCount, 0, len(ltvBuckets))
	for i, b := range ltvBuckets {
		out = append(out, models.BucketCount{
			Bucket: b.label,
			Count:  counts[i],
			Pct:    ratioPct(counts[i], totalCustomers),
		})
	}
	return out
}
