package services

import (
	"sort"

	"retention-dashboard/internal/models"
)

// Significance floors: rare SKUs below these thresholds only add noise to
// product-level views.
const (
	catalogMinCount    = 20 // line-item occurrences for the catalogue
	retentionMinBuyers = 20 // distinct first-order buyers for product retention
)

// AggregateShop is the synthetic slice covering every shop.
const AggregateShop = "All"

// BuildCatalog lists every distinct product appearing in at least
// catalogMinCount line items, sorted by count descending. Products with equal
// counts keep first-encounter order.
func BuildCatalog(items []models.LineItem) []models.ProductCount {
	counts := make(map[string]int)
	var seen []string
	for _, it := range items {
		if it.Product == "" {
			continue
		}
		if _, ok := counts[it.Product]; !ok {
			seen = append(seen, it.Product)
		}
		counts[it.Product]++
	}

	catalog := make([]models.ProductCount, 0, len(seen))
	for _, name := range seen {
		if counts[name] >= catalogMinCount {
			catalog = append(catalog, models.ProductCount{Name: name, Count: counts[name]})
		}
	}
	sort.SliceStable(catalog, func(i, j int) bool {
		return catalog[i].Count > catalog[j].Count
	})
	return catalog
}

// FilterByFirstOrderProduct keeps every line item belonging to a customer
// whose first order contained the given product. Filtering happens at the
// customer level: a qualifying customer's later orders all stay in.
func FilterByFirstOrderProduct(items []models.LineItem, product string) []models.LineItem {
	return FilterByProductAtIndex(items, product, 1)
}

// FilterByProductAtIndex is the generalized membership filter: it keeps every
// line item of customers who bought the product at the given order index.
func FilterByProductAtIndex(items []models.LineItem, product string, orderIndex int) []models.LineItem {
	members := make(map[string]struct{})
	for _, it := range items {
		if it.OrderIndex == orderIndex && it.Product == product {
			members[it.CustomerID] = struct{}{}
		}
	}

	out := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		if _, ok := members[it.CustomerID]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Shops returns the distinct shop names plus the aggregate slice, sorted
// lexically.
func Shops(items []models.LineItem) []string {
	set := map[string]struct{}{AggregateShop: {}}
	for _, it := range items {
		set[it.Shop] = struct{}{}
	}

	shops := make([]string, 0, len(set))
	for shop := range set {
		shops = append(shops, shop)
	}
	sort.Strings(shops)
	return shops
}

// FilterByShop narrows line items to one shop. The aggregate slice is the
// unfiltered set.
func FilterByShop(items []models.LineItem, shop string) []models.LineItem {
	if shop == AggregateShop {
		return items
	}
	out := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		if it.Shop == shop {
			out = append(out, it)
		}
	}
	return out
}
