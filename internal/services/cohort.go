package services

import (
	"math"
	"sort"

	"retention-dashboard/internal/models"
)

// timingBuckets are the fixed day buckets of the time-to-second-order
// histogram. Bounds are inclusive; the last bucket is open-ended.
var timingBuckets = []struct {
	label    string
	min, max int
}{
	{"0–7d", 0, 7},
	{"8–14d", 8, 14},
	{"15–30d", 15, 30},
	{"31–60d", 31, 60},
	{"61–90d", 61, 90},
	{"91–120d", 91, 120},
	{"121–180d", 121, 180},
	{"180d+", 181, 99999},
}

// computeCohortRetention classifies each cohort customer by the day delta of
// their earliest repeat order. A customer lands in every window wide enough
// to contain that delta, so r30 <= r60 <= r90 holds per cohort. Later repeat
// orders never reclassify a customer; only the first repeat counts.
func computeCohortRetention(orders []*models.Order, months []string, cohorts map[string][]*models.Order) []models.CohortRetention {
	out := make([]models.CohortRetention, 0, len(months))
	for _, month := range months {
		cohort := cohorts[month]

		members := make(map[string]struct{}, len(cohort))
		firstDates := make(map[string]string, len(cohort))
		var memberOrder []string
		for _, o := range cohort {
			if _, ok := members[o.CustomerID]; !ok {
				memberOrder = append(memberOrder, o.CustomerID)
			}
			members[o.CustomerID] = struct{}{}
			if d, ok := firstDates[o.CustomerID]; !ok || o.Date < d {
				firstDates[o.CustomerID] = o.Date
			}
		}
		size := len(members)

		// Earliest repeat order strictly after the first order, per member.
		firstRepeat := make(map[string]string)
		for _, o := range orders {
			if o.OrderIndex < 2 {
				continue
			}
			first, ok := firstDates[o.CustomerID]
			if !ok || o.Date <= first {
				continue
			}
			if d, ok := firstRepeat[o.CustomerID]; !ok || o.Date < d {
				firstRepeat[o.CustomerID] = o.Date
			}
		}

		var r30, r60, r90 int
		for _, id := range memberOrder {
			repeat, ok := firstRepeat[id]
			if !ok {
				continue
			}
			days := daysBetween(firstDates[id], repeat)
			switch {
			case days > 0 && days <= 30:
				r30++
				r60++
				r90++
			case days > 30 && days <= 60:
				r60++
				r90++
			case days > 60 && days <= 90:
				r90++
			}
		}

		out = append(out, models.CohortRetention{
			Cohort: formatMonth(month),
			Size:   size,
			R30:    ratioPct(r30, size),
			R60:    ratioPct(r60, size),
			R90:    ratioPct(r90, size),
		})
	}
	return out
}

// computeTiming measures the days between each customer's earliest
// first-index order and earliest second-index order. Only positive deltas
// enter the sample. The sorted sample is returned for the histogram.
func computeTiming(orders []*models.Order) (models.TimingStats, []int) {
	idx1 := make(map[string]string)
	idx2 := make(map[string]string)
	for _, o := range orders {
		switch o.OrderIndex {
		case 1:
			if d, ok := idx1[o.CustomerID]; !ok || o.Date < d {
				idx1[o.CustomerID] = o.Date
			}
		case 2:
			if d, ok := idx2[o.CustomerID]; !ok || o.Date < d {
				idx2[o.CustomerID] = o.Date
			}
		}
	}

	var daysTo2nd []int
	for id, d1 := range idx1 {
		d2, ok := idx2[id]
		if !ok {
			continue
		}
		if days := daysBetween(d1, d2); days > 0 {
			daysTo2nd = append(daysTo2nd, days)
		}
	}
	sort.Ints(daysTo2nd)

	n := len(daysTo2nd)
	if n == 0 {
		return models.TimingStats{}, nil
	}

	sum := 0
	for _, d := range daysTo2nd {
		sum += d
	}
	return models.TimingStats{
		Median: percentile(daysTo2nd, 50),
		Mean:   round1(float64(sum) / float64(n)),
		P25:    percentile(daysTo2nd, 25),
		P75:    percentile(daysTo2nd, 75),
		N:      n,
	}, daysTo2nd
}

// percentile is the linear-interpolation percentile of a sorted sample,
// rounded to the nearest integer.
func percentile(sorted []int, p float64) int {
	idx := p / 100 * float64(len(sorted)-1)
	lower := int(idx)
	frac := idx - float64(lower)
	if lower+1 < len(sorted) {
		v := float64(sorted[lower]) + frac*float64(sorted[lower+1]-sorted[lower])
		return int(math.Round(v))
	}
	return sorted[lower]
}

// computeDistribution counts the timing sample into the fixed day buckets.
// Bucket counts always sum to the sample size.
func computeDistribution(daysTo2nd []int) []models.BucketCount {
	n := len(daysTo2nd)
	out := make([]models.BucketCount, 0, len(timingBuckets))
	for _, b := range timingBuckets {
		count := 0
		for _, d := range daysTo2nd {
			if d >= b.min && d <= b.max {
				count++
			}
		}
		out = append(out, models.BucketCount{
			Bucket: b.label,
			Count:  count,
			Pct:    ratioPct(count, n),
		})
	}
	return out
}
