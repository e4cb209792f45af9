package model

import "time"

// StockPoint is a single normalized observation. Date is a calendar day at
// UTC midnight; Price is always finite.
type StockPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Series is an ordered run of points, non-decreasing by date once sorted.
type Series []StockPoint

// Len returns the number of points.
func (s Series) Len() int { return len(s) }

// Clone returns a copy that shares no memory with s.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Prices extracts the price column in series order.
func (s Series) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, p := range s {
		prices[i] = p.Price
	}
	return prices
}

// RawRecord is one parsed data row keyed by header name. Values are string or
// float64; a missing cell is an absent key.
type RawRecord map[string]any
