package model

// ExportPoint is the down-sampled form handed to the insight collaborator.
type ExportPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}
