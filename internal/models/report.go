package models

// ProductCount is one catalogue entry.
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthlyTrend is one row of the monthly series.
type MonthlyTrend struct {
	Month     string  `json:"month"` // "Jan 24"
	Orders    int     `json:"orders"`
	Revenue   int     `json:"revenue"`
	Customers int     `json:"customers"`
	New       int     `json:"new"`
	Repeat    int     `json:"repeat"`
	RepeatPct float64 `json:"repeatPct"`
	AOV       int     `json:"aov"`
}

// CohortRetention reports, for one first-purchase-month cohort, the share of
// customers whose first repeat order happened within 30/60/90 days.
type CohortRetention struct {
	Cohort string  `json:"cohort"`
	Size   int     `json:"size"`
	R30    float64 `json:"r30"`
	R60    float64 `json:"r60"`
	R90    float64 `json:"r90"`
}

// TimingStats summarizes the days between first and second order.
type TimingStats struct {
	Median int     `json:"median"`
	Mean   float64 `json:"mean"`
	P25    int     `json:"p25"`
	P75    int     `json:"p75"`
	N      int     `json:"n"`
}

// BucketCount is a histogram bucket with its share of the sample.
type BucketCount struct {
	Bucket string  `json:"bucket"`
	Count  int     `json:"count"`
	Pct    float64 `json:"pct"`
}

// ProductRetention reports how many first-order buyers of a product came back.
type ProductRetention struct {
	Product   string  `json:"product"`
	Buyers    int     `json:"buyers"`
	Returned  int     `json:"returned"`
	Retention float64 `json:"retention"`
}

// JourneyEntry is one top-product entry at a given order index.
type JourneyEntry struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

// CohortLTV is the average lifetime value of one cohort.
type CohortLTV struct {
	Cohort    string  `json:"cohort"`
	Size      int     `json:"size"`
	AvgLtv    int     `json:"avgLtv"`
	AvgOrders float64 `json:"avgOrders"`
}

// MetricsBundle is the engine output for one shop slice.
type MetricsBundle struct {
	TotalCustomers   int                    `json:"totalCustomers"`
	RepeatCustomers  int                    `json:"repeatCustomers"`
	RepeatRate       float64                `json:"repeatRate"`
	TotalOrders      int                    `json:"totalOrders"`
	Monthly          []MonthlyTrend         `json:"monthly"`
	Cohorts          []CohortRetention      `json:"cohorts"`
	Timing           TimingStats            `json:"timing"`
	Distribution     []BucketCount          `json:"distribution"`
	ProductRetention []ProductRetention     `json:"productRetention"`
	ProductJourney   map[int][]JourneyEntry `json:"productJourney"`
	AvgLtv           int                    `json:"avgLtv"`
	RepeatLtv        int                    `json:"repeatLtv"`
	OneTimeLtv       int                    `json:"oneTimeLtv"`
	TotalRevenue     int                    `json:"totalRevenue"`
	LtvByCohort      []CohortLTV            `json:"ltvByCohort"`
	LtvDistribution  []BucketCount          `json:"ltvDistribution"`
}

// Report is the full response for one request: every shop slice plus the
// global product catalogue. The catalogue always reflects the row set before
// any product-membership narrowing, so a client can keep offering all filter
// options after narrowing.
type Report struct {
	Shops    []string                 `json:"shops"`
	Products []ProductCount           `json:"products"`
	Results  map[string]MetricsBundle `json:"results"`
}
