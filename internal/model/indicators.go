package model

// Statistics holds the aggregates computed over a series.
type Statistics struct {
	Min                 float64 `json:"min"`
	Max                 float64 `json:"max"`
	Mean                float64 `json:"mean"`
	PeriodReturnPercent float64 `json:"period_return_percent"`
	// ReturnDefined is false when the first price is zero and the period
	// return has no finite value; PeriodReturnPercent is 0 in that case.
	ReturnDefined bool `json:"return_defined"`
}
