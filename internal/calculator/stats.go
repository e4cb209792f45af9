package calculator

import (
	"errors"
	"math"

	"StockLens/internal/model"
)

// ErrUndefinedReturn is returned when the first price of a series is zero.
var ErrUndefinedReturn = errors.New("period return undefined: first price is zero")

// Compute derives min, max, mean and period return from a series. An empty
// series yields all zeros. A zero first price yields a zero return with
// ReturnDefined unset.
func Compute(series model.Series) model.Statistics {
	if len(series) == 0 {
		return model.Statistics{ReturnDefined: true}
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	sum := 0.0
	for _, p := range series {
		if p.Price > high {
			high = p.Price
		}
		if p.Price < low {
			low = p.Price
		}
		sum += p.Price
	}

	stats := model.Statistics{
		Min:           low,
		Max:           high,
		Mean:          sum / float64(len(series)),
		ReturnDefined: true,
	}
	ret, err := PeriodReturn(series)
	if err != nil {
		stats.ReturnDefined = false
		return stats
	}
	stats.PeriodReturnPercent = ret
	return stats
}

// PeriodReturn is the percent change from the first to the last element in
// series order. An empty series returns 0.
func PeriodReturn(series model.Series) (float64, error) {
	if len(series) == 0 {
		return 0, nil
	}
	first := series[0].Price
	last := series[len(series)-1].Price
	if first == 0 {
		return 0, ErrUndefinedReturn
	}
	return (last - first) / first * 100, nil
}
