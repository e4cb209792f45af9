package calculator

import (
	"fmt"
	"time"

	"StockLens/internal/model"
)

const rangeLayout = "Jan 02, 2006"

// DateRange returns the first and last dates of a sorted series.
func DateRange(series model.Series) (start, end time.Time, ok bool) {
	if len(series) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return series[0].Date, series[len(series)-1].Date, true
}

// FormatRange renders the covered range, e.g. "Jan 05, 2023 → Jun 01, 2023".
// Empty series render as "".
func FormatRange(series model.Series) string {
	start, end, ok := DateRange(series)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s → %s", start.Format(rangeLayout), end.Format(rangeLayout))
}
