package services

import (
	"fmt"
	"reflect"
	"testing"

	"retention-dashboard/internal/models"
)

func repeatItems(product string, n int) []models.LineItem {
	items := make([]models.LineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, li(
			fmt.Sprintf("#%s-%d", product, i),
			"2024-01-10",
			fmt.Sprintf("%s-c%d", product, i),
			1, product, "Shop1", 10,
		))
	}
	return items
}

func TestBuildCatalog_Threshold(t *testing.T) {
	items := append(repeatItems("Popular", 20), repeatItems("Rare", 19)...)

	catalog := BuildCatalog(items)
	if len(catalog) != 1 {
		t.Fatalf("catalog length = %d, want 1", len(catalog))
	}
	if catalog[0].Name != "Popular" || catalog[0].Count != 20 {
		t.Errorf("catalog[0] = %+v, want Popular with 20", catalog[0])
	}
}

func TestBuildCatalog_SortAndTies(t *testing.T) {
	items := append(repeatItems("B", 25), repeatItems("A", 30)...)
	items = append(items, repeatItems("C", 25)...)

	catalog := BuildCatalog(items)
	got := make([]string, len(catalog))
	for i, p := range catalog {
		got[i] = p.Name
	}

	// Highest count first; ties keep first-encounter order (B before C).
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("catalog order = %v, want %v", got, want)
	}
}

func TestFilterByFirstOrderProduct(t *testing.T) {
	items := []models.LineItem{
		li("#1", "2024-01-01", "buyer", 1, "Target", "S", 10),
		li("#2", "2024-02-01", "buyer", 2, "Other", "S", 10),
		li("#3", "2024-01-01", "bystander", 1, "Other", "S", 10),
		li("#4", "2024-02-01", "latecomer", 2, "Target", "S", 10),
	}

	got := FilterByFirstOrderProduct(items, "Target")

	// The qualifying customer keeps all their line items; buying the product
	// in a later order does not qualify.
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	for _, it := range got {
		if it.CustomerID != "buyer" {
			t.Errorf("unexpected customer %q in filtered set", it.CustomerID)
		}
	}
}

func TestShops(t *testing.T) {
	items := []models.LineItem{
		li("#1", "2024-01-01", "c1", 1, "P", "Zeta", 10),
		li("#2", "2024-01-01", "c2", 1, "P", "Alpha", 10),
		li("#3", "2024-01-01", "c3", 1, "P", "Zeta", 10),
	}

	got := Shops(items)
	want := []string{"All", "Alpha", "Zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Shops() = %v, want %v", got, want)
	}
}

func TestShops_Empty(t *testing.T) {
	got := Shops(nil)
	if !reflect.DeepEqual(got, []string{"All"}) {
		t.Errorf("Shops(nil) = %v, want [All]", got)
	}
}

func TestFilterByShop(t *testing.T) {
	items := []models.LineItem{
		li("#1", "2024-01-01", "c1", 1, "P", "Alpha", 10),
		li("#2", "2024-01-01", "c2", 1, "P", "Beta", 10),
	}

	if got := FilterByShop(items, "Alpha"); len(got) != 1 || got[0].Shop != "Alpha" {
		t.Errorf("FilterByShop(Alpha) = %+v", got)
	}
	if got := FilterByShop(items, AggregateShop); len(got) != 2 {
		t.Errorf("FilterByShop(All) length = %d, want 2", len(got))
	}
}
