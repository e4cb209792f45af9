package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSortByDate_StableOnTies(t *testing.T) {
	in := model.Series{
		{Date: day(2023, 1, 10), Price: 100},
		{Date: day(2023, 1, 5), Price: 1},
		{Date: day(2023, 1, 5), Price: 2},
		{Date: day(2023, 1, 5), Price: 3},
	}
	got := SortByDate(in)

	require.Len(t, got, 4)
	assert.Equal(t, []float64{1, 2, 3, 100}, got.Prices())
	assert.Equal(t, 100.0, in[0].Price, "input must not be reordered")
}

func TestPipelineScenario(t *testing.T) {
	in := model.Series{
		{Date: day(2023, 1, 10), Price: 100},
		{Date: day(2023, 6, 1), Price: 150},
		{Date: day(2023, 1, 5), Price: 90},
	}

	series := Window(SortByDate(in))
	require.Len(t, series, 3)
	assert.Equal(t, []float64{90, 100, 150}, series.Prices())
	assert.Equal(t, day(2023, 1, 1), WindowAnchor(series[0].Date))

	stats := Compute(series)
	assert.Equal(t, 90.0, stats.Min)
	assert.Equal(t, 150.0, stats.Max)
	assert.InDelta(t, 113.333, stats.Mean, 0.001)
	assert.InDelta(t, 66.67, stats.PeriodReturnPercent, 0.01)
	assert.True(t, stats.ReturnDefined)
}

func TestWindow_SpansYears(t *testing.T) {
	series := model.Series{
		{Date: day(2022, 11, 30), Price: 1},
		{Date: day(2023, 2, 1), Price: 2},
		{Date: day(2024, 3, 1), Price: 3},
	}
	assert.Equal(t, series, Window(series))
}

func TestWindow_DropsPointsOutsideBounds(t *testing.T) {
	// Not sorted: the bounds come from the first and last elements.
	series := model.Series{
		{Date: day(2023, 3, 1), Price: 1},
		{Date: day(2022, 12, 31), Price: 2},
		{Date: day(2023, 9, 1), Price: 3},
		{Date: day(2023, 6, 1), Price: 4},
	}
	got := Window(series)
	assert.Equal(t, []float64{1, 4}, got.Prices())
}

func TestWindow_Empty(t *testing.T) {
	got := Window(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWindow_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		series := randomSeries(rng, 1+rng.Intn(40))
		once := Window(SortByDate(series))
		twice := Window(once)
		assert.Equal(t, once, twice)
	}
}

func TestCompute_Empty(t *testing.T) {
	stats := Compute(model.Series{})
	assert.Equal(t, 0.0, stats.Min)
	assert.Equal(t, 0.0, stats.Max)
	assert.Equal(t, 0.0, stats.Mean)
	assert.Equal(t, 0.0, stats.PeriodReturnPercent)
}

func TestCompute_MeanBetweenMinAndMax(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		stats := Compute(randomSeries(rng, 1+rng.Intn(60)))
		assert.LessOrEqual(t, stats.Min, stats.Mean+1e-9)
		assert.LessOrEqual(t, stats.Mean, stats.Max+1e-9)
	}
}

func TestCompute_ZeroFirstPrice(t *testing.T) {
	series := model.Series{
		{Date: day(2023, 1, 2), Price: 0},
		{Date: day(2023, 1, 3), Price: 5},
	}
	stats := Compute(series)
	assert.False(t, stats.ReturnDefined)
	assert.Equal(t, 0.0, stats.PeriodReturnPercent)
	assert.False(t, math.IsInf(stats.PeriodReturnPercent, 0))

	_, err := PeriodReturn(series)
	assert.ErrorIs(t, err, ErrUndefinedReturn)
}

func TestCompute_NegativePrices(t *testing.T) {
	series := model.Series{
		{Date: day(2023, 1, 2), Price: -10},
		{Date: day(2023, 1, 3), Price: -5},
	}
	stats := Compute(series)
	assert.Equal(t, -10.0, stats.Min)
	assert.Equal(t, -5.0, stats.Max)
	assert.InDelta(t, -50.0, stats.PeriodReturnPercent, 1e-9)
}

func TestFormatRange(t *testing.T) {
	series := model.Series{
		{Date: day(2023, 1, 5), Price: 90},
		{Date: day(2023, 6, 1), Price: 150},
	}
	assert.Equal(t, "Jan 05, 2023 → Jun 01, 2023", FormatRange(series))
	assert.Equal(t, "", FormatRange(nil))
}

func randomSeries(rng *rand.Rand, n int) model.Series {
	series := make(model.Series, n)
	start := day(2020+rng.Intn(4), time.Month(1+rng.Intn(12)), 1+rng.Intn(28))
	for i := range series {
		series[i] = model.StockPoint{
			Date:  start.AddDate(0, 0, rng.Intn(900)),
			Price: rng.Float64()*1000 - 100,
		}
	}
	return series
}
