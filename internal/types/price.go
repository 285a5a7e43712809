package types

import "sort"

// DateLayout is the calendar date format used by PricePoint.Date.
// Dates in this layout order lexicographically the same as chronologically.
const DateLayout = "2006-01-02"

// PricePoint is a single dated price observation.
type PricePoint struct {
	// Date in YYYY-MM-DD format.
	Date  string  `json:"date" yaml:"date" csv:"date" parquet:"date"`
	Price float64 `json:"price" yaml:"price" csv:"price" parquet:"price"`
}

// PriceSeries is an ordered sequence of price points, strictly increasing by date.
// The engine assumes this ordering and does not validate it.
type PriceSeries []PricePoint

// Prices returns the price column of the series.
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}

	return prices
}

// SortByDate orders the series by date in place.
func (s PriceSeries) SortByDate() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date < s[j].Date
	})
}
