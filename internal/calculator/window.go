package calculator

import (
	"sort"
	"time"

	"StockLens/internal/model"
)

// SortByDate returns a copy of points in ascending date order. Points on the
// same date keep their input order.
func SortByDate(points model.Series) model.Series {
	out := make(model.Series, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// WindowAnchor returns January 1 of the year of t, time of day zeroed.
func WindowAnchor(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// Window restricts a date-sorted series to [Jan 1 of the first point's year,
// last point's date]. The result never aliases the input.
func Window(series model.Series) model.Series {
	out := make(model.Series, 0, len(series))
	if len(series) == 0 {
		return out
	}

	anchor := WindowAnchor(series[0].Date)
	last := series[len(series)-1].Date
	for _, p := range series {
		if p.Date.Before(anchor) || p.Date.After(last) {
			continue
		}
		out = append(out, p)
	}
	return out
}
