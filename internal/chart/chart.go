package chart

import (
	"fmt"

	"StockLens/internal/model"
)

// Gradient endpoints for point markers, as hue, saturation and lightness.
var (
	gradientFrom = hsl{221, 83, 53}
	gradientTo   = hsl{190, 89, 52}
)

// Line describes the series line.
type Line struct {
	Color     string  `json:"color"`
	Width     int     `json:"width"`
	Shape     string  `json:"shape"`
	Smoothing float64 `json:"smoothing"`
}

// Marker describes per-point markers.
type Marker struct {
	Size  int      `json:"size"`
	Color []string `json:"color"`
}

// Trace is a scatter trace ready for a plotting front end.
type Trace struct {
	X             []string  `json:"x"`
	Y             []float64 `json:"y"`
	Type          string    `json:"type"`
	Mode          string    `json:"mode"`
	Line          Line      `json:"line"`
	Marker        Marker    `json:"marker"`
	HoverTemplate string    `json:"hovertemplate"`
}

// Build lays out series for plotting. It never modifies series.
func Build(series model.Series) Trace {
	n := len(series)
	t := Trace{
		X:             make([]string, n),
		Y:             make([]float64, n),
		Type:          "scatter",
		Mode:          "lines+markers",
		Line:          Line{Color: gradientFrom.String(), Width: 3, Shape: "spline", Smoothing: 1.2},
		Marker:        Marker{Size: 5, Color: MarkerColors(n)},
		HoverTemplate: "%{x|%b %d, %Y}: ₹%{y:.2f}<extra></extra>",
	}
	for i, p := range series {
		t.X[i] = p.Date.UTC().Format("2006-01-02")
		t.Y[i] = p.Price
	}
	return t
}

// MarkerColors spreads the gradient over n points, first to last.
func MarkerColors(n int) []string {
	colors := make([]string, n)
	span := float64(max(1, n-1))
	for i := range colors {
		colors[i] = gradientFrom.lerp(gradientTo, float64(i)/span).format1()
	}
	return colors
}

type hsl struct{ h, s, l float64 }

func (c hsl) lerp(to hsl, t float64) hsl {
	return hsl{
		h: c.h + (to.h-c.h)*t,
		s: c.s + (to.s-c.s)*t,
		l: c.l + (to.l-c.l)*t,
	}
}

func (c hsl) String() string {
	return fmt.Sprintf("hsl(%g %g%% %g%%)", c.h, c.s, c.l)
}

func (c hsl) format1() string {
	return fmt.Sprintf("hsl(%.1f %.1f%% %.1f%%)", c.h, c.s, c.l)
}
