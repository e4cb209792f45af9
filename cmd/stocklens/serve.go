package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"StockLens/internal/collector"
	"StockLens/internal/insight"
	"StockLens/internal/notifier"
	"StockLens/internal/scheduler"
	"StockLens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, scheduler, file watcher and Telegram bot",
	Long: `Starts the StockLens service. Uploads arrive over HTTP; a configured source
can be reloaded on a cron schedule or whenever a watched file changes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("StockLens starting", zap.String("config", configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	a.store.Subscribe(a.insights.Listen(ctx))

	hub := server.NewHub(cfg.HTTP.AllowedOrigin, logger)
	srv := server.New(server.Deps{
		Store:       a.store,
		Collector:   a.collector,
		Insights:    a.insights,
		Analyze:     insight.NewAnalyzeHandler(a.provider, cfg.HTTP.AllowedOrigin, logger),
		Metrics:     a.metrics,
		Hub:         hub,
		Logger:      logger,
		MaxUploadMB: cfg.HTTP.MaxUploadMB,
	})

	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		n = tn
	}

	src := a.source()
	sched := scheduler.NewScheduler(ctx, a.collector, a.store, a.insights, n, src, logger)
	if err := sched.RegisterAll(cfg.Schedule.ReloadCron, cfg.Schedule.ReportCron); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.HTTP.Addr)
	})
	if cfg.Watch.File != "" {
		w := collector.NewWatcher(a.collector, cfg.Watch.File, a.watchDebounce(), logger)
		g.Go(func() error { return w.Run(gctx) })
	}
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
	}

	if src != nil {
		logger.Info("initial load", zap.String("source", src.Name()))
		sched.RunReloadNow()
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		if err := tn.Send(ctx, "🚀 StockLens started\n\n"+notifier.HelpText()); err != nil {
			logger.Warn("startup notification failed", zap.Error(err))
		}
	}

	err = g.Wait()
	logger.Info("StockLens stopped")
	return err
}
