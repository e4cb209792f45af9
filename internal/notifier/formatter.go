package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/model"
)

// FormatStatsReport renders the statistics panel for the current series.
func FormatStatsReport(snap model.Snapshot, stats model.Statistics) string {
	if !snap.Loaded() {
		return "📭 No series loaded. Upload a CSV with Date and Close columns."
	}

	var b strings.Builder
	b.WriteString("📊 <b>StockLens</b>\n")
	b.WriteString(fmt.Sprintf("%s\n\n", html.EscapeString(calculator.FormatRange(snap.Series))))
	b.WriteString(fmt.Sprintf("Points: %d", len(snap.Series)))
	if snap.Source != "" {
		b.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(snap.Source)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Min Price: ₹%.2f\n", stats.Min))
	b.WriteString(fmt.Sprintf("Max Price: ₹%.2f\n", stats.Max))
	b.WriteString(fmt.Sprintf("Average Price: ₹%.2f\n", stats.Mean))
	b.WriteString(fmt.Sprintf("Year-to-Date Change: %s\n", FormatReturn(stats)))
	return b.String()
}

// FormatReturn renders the period return, or n/a when it is undefined.
func FormatReturn(stats model.Statistics) string {
	if !stats.ReturnDefined {
		return "n/a"
	}
	arrow := "🟢"
	if stats.PeriodReturnPercent < 0 {
		arrow = "🔴"
	}
	return fmt.Sprintf("%s %+.2f%%", arrow, stats.PeriodReturnPercent)
}

// FormatInsight wraps insight text for chat delivery.
func FormatInsight(text, provider string) string {
	var b strings.Builder
	b.WriteString("🤖 <b>AI Market Insights</b>")
	if provider != "" {
		b.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(provider)))
	}
	b.WriteString("\n\n")
	b.WriteString(html.EscapeString(text))
	return b.String()
}

// FormatLoadResult summarizes a finished load.
func FormatLoadResult(res *collector.LoadResult) string {
	var b strings.Builder
	if !res.Applied {
		b.WriteString("⏭ <b>Load superseded</b> by a newer request\n")
	} else {
		b.WriteString(fmt.Sprintf("✅ <b>Loaded %d rows</b>\n", res.Points))
	}
	if res.Filename != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", html.EscapeString(res.Filename)))
	}
	b.WriteString(fmt.Sprintf("Parsed: %d | Valid: %d | Rejected: %d\n", res.Rows, res.Surviving, res.Rejected))
	if res.Applied && !res.Start.IsZero() {
		b.WriteString(fmt.Sprintf("Range: %s → %s\n",
			res.Start.Format("Jan 02, 2006"), res.End.Format("Jan 02, 2006")))
	}
	return b.String()
}

// HelpText lists the chat commands.
func HelpText() string {
	return "📖 <b>StockLens commands</b>\n\n" +
		"/stats - statistics for the loaded series\n" +
		"/insight - regenerate AI insights\n" +
		"/reload - reload the configured source\n" +
		"/clear - clear the loaded series\n" +
		"/help - show this message"
}
