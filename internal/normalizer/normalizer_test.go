package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLookup_PriorityOrder(t *testing.T) {
	rec := model.RawRecord{"price": 2.0, "Close": 1.0, "CLOSE": 3.0}
	v, ok := Lookup(rec, PriceKeys)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	rec = model.RawRecord{"PRICE": 4.0, "close": 5.0}
	v, ok = Lookup(rec, PriceKeys)
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = Lookup(model.RawRecord{"Adj Close": 1.0}, PriceKeys)
	assert.False(t, ok)
}

func TestPoint(t *testing.T) {
	tests := []struct {
		name  string
		rec   model.RawRecord
		want  model.StockPoint
		valid bool
	}{
		{"numeric close", model.RawRecord{"Date": "2023-01-10", "Close": 100.0}, model.StockPoint{Date: day(2023, 1, 10), Price: 100}, true},
		{"string price", model.RawRecord{"date": "2023-06-01", "Price": "150.25"}, model.StockPoint{Date: day(2023, 6, 1), Price: 150.25}, true},
		{"negative price kept", model.RawRecord{"DATE": "2023-02-01", "PRICE": -3.0}, model.StockPoint{Date: day(2023, 2, 1), Price: -3}, true},
		{"time of day dropped", model.RawRecord{"Date": "2023-03-04 15:30:00", "Close": 1.0}, model.StockPoint{Date: day(2023, 3, 4), Price: 1}, true},
		{"slash date", model.RawRecord{"Date": "01/05/2023", "Close": 90.0}, model.StockPoint{Date: day(2023, 1, 5), Price: 90}, true},
		{"compact numeric date", model.RawRecord{"Date": 20230110.0, "Close": 1.0}, model.StockPoint{Date: day(2023, 1, 10), Price: 1}, true},
		{"bad price", model.RawRecord{"Date": "2024-03-01", "Price": "abc"}, model.StockPoint{}, false},
		{"bad date", model.RawRecord{"Date": "not-a-date", "Close": 1.0}, model.StockPoint{}, false},
		{"dangling slash", model.RawRecord{"Date": "12/", "Close": 1.0}, model.StockPoint{}, false},
		{"month and day only", model.RawRecord{"Date": "Jan 5", "Close": 1.0}, model.StockPoint{}, false},
		{"decimal string date", model.RawRecord{"Date": "1.5", "Close": 1.0}, model.StockPoint{}, false},
		{"decimal number date", model.RawRecord{"Date": 1.5, "Close": 1.0}, model.StockPoint{}, false},
		{"infinite price", model.RawRecord{"Date": "2024-03-01", "Close": "Infinity"}, model.StockPoint{}, false},
		{"missing price", model.RawRecord{"Date": "2024-03-01"}, model.StockPoint{}, false},
		{"missing date", model.RawRecord{"Close": 1.0}, model.StockPoint{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Point(tt.rec)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.True(t, tt.want.Date.Equal(got.Date), "date: want %s got %s", tt.want.Date, got.Date)
				assert.Equal(t, tt.want.Price, got.Price)
			}
		})
	}
}

func TestNormalize_DropsRejectedRowsSilently(t *testing.T) {
	records := []model.RawRecord{
		{"Date": "2023-01-10", "Close": 100.0},
		{"Date": "2023-01-11", "Close": "abc"},
		{"Date": "not-a-date", "Close": 5.0},
		{"Date": "2023-01-12", "Close": 101.0},
		{"Date": "12/", "Close": 50.0},
		{"Date": 1.5, "Close": 60.0},
	}

	res := Normalize(records)
	assert.Equal(t, 2, res.Surviving)
	assert.Equal(t, 4, res.Rejected)
	require.Len(t, res.Points, 2)
	assert.Equal(t, 100.0, res.Points[0].Price)
	assert.Equal(t, 101.0, res.Points[1].Price)
	assert.NoError(t, Require(res))
}

func TestRequire_NoValidData(t *testing.T) {
	res := Normalize([]model.RawRecord{{"Date": "2024-03-01", "Price": "not-a-number"}})

	err := Require(res)
	var noData *NoValidDataError
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, 1, noData.Rows)
	assert.Contains(t, err.Error(), "Date, Close")
}
