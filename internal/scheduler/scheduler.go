package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockLens/internal/calculator"
	"StockLens/internal/collector"
	"StockLens/internal/insight"
	"StockLens/internal/notifier"
	"StockLens/internal/store"
)

// Notifier pushes reports to a chat.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron tasks and chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Store     *store.Store
	Insights  *insight.Requester
	Notifier  Notifier
	Source    collector.Source
	Ctx       context.Context
	logger    *zap.Logger
}

// NewScheduler creates a new Scheduler. src and n may be nil when no
// reload source or chat is configured.
func NewScheduler(ctx context.Context, col *collector.Collector, st *store.Store, req *insight.Requester,
	n Notifier, src collector.Source, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Store:     st,
		Insights:  req,
		Notifier:  n,
		Source:    src,
		Ctx:       ctx,
		logger:    logger.Named("scheduler"),
	}
}

// RegisterAll registers the reload and report tasks. Empty specs are skipped.
func (s *Scheduler) RegisterAll(reloadCron, reportCron string) error {
	if reloadCron != "" {
		if s.Source == nil {
			return fmt.Errorf("register reload task: no source configured")
		}
		if _, err := s.Cron.AddFunc(reloadCron, s.reloadTask); err != nil {
			return fmt.Errorf("register reload task: %w", err)
		}
	}
	if reportCron != "" {
		if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
			return fmt.Errorf("register report task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunReloadNow loads the configured source immediately.
func (s *Scheduler) RunReloadNow() string {
	if s.Source == nil {
		return "⚠️ No reload source configured."
	}
	res, err := s.Collector.Load(s.Ctx, s.Source)
	if err != nil {
		s.logger.Error("reload failed", zap.String("source", s.Source.Name()), zap.Error(err))
		return fmt.Sprintf("❌ Reload failed: %s", html.EscapeString(err.Error()))
	}
	return notifier.FormatLoadResult(res)
}

func (s *Scheduler) reloadTask() {
	s.logger.Info("running reload task")
	s.trySend(s.RunReloadNow())
}

func (s *Scheduler) reportTask() {
	s.logger.Info("running report task")
	if !s.Store.Current().Loaded() {
		return
	}
	report := s.statsReport()
	if s.Insights != nil {
		if st := s.Insights.Current(); st.Text != "" {
			report += "\n" + notifier.FormatInsight(st.Text, st.Provider)
		}
	}
	s.trySend(report)
}

func (s *Scheduler) statsReport() string {
	snap := s.Store.Current()
	return notifier.FormatStatsReport(snap, calculator.Compute(snap.Series))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i] // /stats@StockLensBot
	}
	switch cmd {
	case "/stats":
		return s.statsReport()
	case "/insight":
		if s.Insights == nil {
			return "⚠️ Insights are disabled."
		}
		if !s.Store.Current().Loaded() {
			return notifier.FormatStatsReport(s.Store.Current(), calculator.Compute(nil))
		}
		st := s.Insights.Regenerate(ctx)
		return notifier.FormatInsight(st.Text, st.Provider)
	case "/reload":
		return s.RunReloadNow()
	case "/clear":
		if s.Store.Clear() {
			return "🗑 Series cleared."
		}
		return "📭 Nothing to clear."
	default:
		return notifier.HelpText()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || text == "" {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error("send notification", zap.Error(err))
	}
}
