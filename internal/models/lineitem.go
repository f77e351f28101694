package models

// Canonical column names of the exported order line-item sheet.
const (
	ColDate       = "Date"
	ColCustomerID = "Customer ID"
	ColOrderIndex = "Customer Order Index"
	ColProduct    = "Product Title"
	ColShop       = "E-shop"
	ColTotalSales = "Total Sales (EUR)"
	ColOrderName  = "Order Name"
)

// RawRow is one spreadsheet line, keyed by column name.
type RawRow map[string]string

// LineItem is a normalized sheet row. CustomerID and Date are always set;
// rows missing either never make it past normalization. Revenue is the
// clamped non-negative gross sales amount for this line.
type LineItem struct {
	OrderName  string
	Date       string // YYYY-MM-DD, lexically sortable
	CustomerID string
	OrderIndex int // 1 = the customer's first order
	Product    string
	Shop       string
	Revenue    float64
}

// Order is a deduplicated order, keyed by (OrderName, CustomerID). Revenue
// is the sum over all line items sharing the key; Products lists product
// names in line-item encounter order.
type Order struct {
	OrderName  string
	Date       string
	CustomerID string
	OrderIndex int
	Shop       string
	Products   []string
	Revenue    float64
}
