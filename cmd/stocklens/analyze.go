package main

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/spf13/cobra"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/notifier"
)

var withInsight bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Load a CSV or XLSX file once and print its statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&withInsight, "insight", false, "also request AI insights")
}

var stripTags = strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "")

func plain(s string) string { return html.UnescapeString(stripTags.Replace(s)) }

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.collector.Load(ctx, &collector.FileSource{Path: args[0]})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	snap := a.store.Current()
	fmt.Fprintln(out, plain(notifier.FormatLoadResult(res)))
	fmt.Fprintln(out, plain(notifier.FormatStatsReport(snap, calculator.Compute(snap.Series))))

	if withInsight {
		st := a.insights.Refresh(ctx, snap)
		fmt.Fprintln(out, plain(notifier.FormatInsight(st.Text, st.Provider)))
	}
	return nil
}
