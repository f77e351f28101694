package services

import (
	"sort"

	"retention-dashboard/internal/models"
)

// computeProductRetention reports, per product bought in a first order, the
// share of its buyers that became repeat customers. Buyer sets come from the
// raw line items (pre-dedup), repeat membership from the slice's deduplicated
// orders. Products with fewer than retentionMinBuyers distinct buyers are
// dropped.
func computeProductRetention(items []models.LineItem, repeatIDs map[string]struct{}) []models.ProductRetention {
	buyers := make(map[string]map[string]struct{})
	var seen []string
	for _, it := range items {
		if it.OrderIndex != 1 || it.Product == "" {
			continue
		}
		set, ok := buyers[it.Product]
		if !ok {
			set = make(map[string]struct{})
			buyers[it.Product] = set
			seen = append(seen, it.Product)
		}
		set[it.CustomerID] = struct{}{}
	}

	out := make([]models.ProductRetention, 0, len(seen))
	for _, product := range seen {
		set := buyers[product]
		if len(set) < retentionMinBuyers {
			continue
		}
		returned := 0
		for id := range set {
			if _, ok := repeatIDs[id]; ok {
				returned++
			}
		}
		out = append(out, models.ProductRetention{
			Product:   product,
			Buyers:    len(set),
			Returned:  returned,
			Retention: ratioPct(returned, len(set)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Retention > out[j].Retention
	})
	return out
}

// computeProductJourney lists the top ten products bought at order index 1,
// 2 and 3, counted across raw line items.
func computeProductJourney(items []models.LineItem) map[int][]models.JourneyEntry {
	journey := make(map[int][]models.JourneyEntry, 3)
	for _, idx := range []int{1, 2, 3} {
		counts := make(map[string]int)
		var seen []string
		for _, it := range items {
			if it.OrderIndex != idx || it.Product == "" {
				continue
			}
			if _, ok := counts[it.Product]; !ok {
				seen = append(seen, it.Product)
			}
			counts[it.Product]++
		}

		entries := make([]models.JourneyEntry, 0, len(seen))
		for _, product := range seen {
			entries = append(entries, models.JourneyEntry{Product: product, Count: counts[product]})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Count > entries[j].Count
		})
		if len(entries) > 10 {
			entries = entries[:10]
		}
		journey[idx] = entries
	}
	return journey
}
