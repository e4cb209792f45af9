package insight

import (
	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

// DefaultLimit is how many trailing points are sent to a provider.
const DefaultLimit = 366

// Export converts the last limit points of series into the wire shape sent
// to insight providers. A limit <= 0 means DefaultLimit.
func Export(series model.Series, limit int) []model.ExportPoint {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(series) > limit {
		series = series[len(series)-limit:]
	}
	out := make([]model.ExportPoint, len(series))
	for i, p := range series {
		price, _ := decimal.NewFromFloat(p.Price).Round(4).Float64()
		out[i] = model.ExportPoint{
			Date:  p.Date.UTC().Format("2006-01-02"),
			Price: price,
		}
	}
	return out
}

func tail(points []model.ExportPoint, limit int) []model.ExportPoint {
	if limit > 0 && len(points) > limit {
		return points[len(points)-limit:]
	}
	return points
}
