package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"StockLens/internal/model"
)

// Candidate header names, tried in order. The first present key wins.
var (
	DateKeys  = []string{"Date", "date", "DATE"}
	PriceKeys = []string{"Close", "close", "CLOSE", "Price", "price", "PRICE"}
)

// RequiredColumns is what users are told to provide when nothing survives.
var RequiredColumns = []string{"Date", "Close"}

// NoValidDataError reports input that had rows but none normalized to a point.
type NoValidDataError struct {
	Rows int
}

func (e *NoValidDataError) Error() string {
	return fmt.Sprintf("missing required columns: %s (%d rows, none valid)",
		strings.Join(RequiredColumns, ", "), e.Rows)
}

// Result is the outcome of normalizing a batch of records.
type Result struct {
	Points    model.Series
	Surviving int
	Rejected  int
}

// Normalize maps each record to a point, silently dropping the ones that do
// not yield a finite price and a valid calendar date. Input order is kept.
func Normalize(records []model.RawRecord) Result {
	res := Result{Points: make(model.Series, 0, len(records))}
	for _, rec := range records {
		p, ok := Point(rec)
		if !ok {
			res.Rejected++
			continue
		}
		res.Points = append(res.Points, p)
	}
	res.Surviving = len(res.Points)
	return res
}

// Require turns an all-rejected result into a NoValidDataError.
func Require(res Result) error {
	if res.Surviving == 0 {
		return &NoValidDataError{Rows: res.Rejected}
	}
	return nil
}

// Point normalizes a single record.
func Point(rec model.RawRecord) (model.StockPoint, bool) {
	rawDate, ok := Lookup(rec, DateKeys)
	if !ok {
		return model.StockPoint{}, false
	}
	rawPrice, ok := Lookup(rec, PriceKeys)
	if !ok {
		return model.StockPoint{}, false
	}

	price, ok := ParsePrice(rawPrice)
	if !ok {
		return model.StockPoint{}, false
	}
	date, ok := ParseDate(rawDate)
	if !ok {
		return model.StockPoint{}, false
	}
	return model.StockPoint{Date: date, Price: price}, true
}

// Lookup returns the value of the first key present in rec.
func Lookup(rec model.RawRecord, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// ParsePrice accepts an advisory numeric value as is and parses strings.
// Only finite results are valid.
func ParsePrice(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseDate parses a loosely formatted date and truncates it to the calendar
// day it names, returned as UTC midnight. Inputs without a year are rejected.
func ParseDate(v any) (time.Time, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, false
		}
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return time.Time{}, false
	}
	if s == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	if y < 1 {
		// dateparse fills a missing year with zero
		return time.Time{}, false
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}
