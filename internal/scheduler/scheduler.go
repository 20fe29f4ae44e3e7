package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"Instagraph/internal/calculator"
	"Instagraph/internal/collector"
	"Instagraph/internal/config"
	"Instagraph/internal/model"
	"Instagraph/internal/notifier"
	"Instagraph/internal/recorder"
	"Instagraph/internal/render"
)

const sendRetries = 3

// Notifier delivers session results. *notifier.TelegramNotifier satisfies it.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhoto(ctx context.Context, filename string, png []byte, caption string) error
}

// Options controls what a session writes.
type Options struct {
	OutputDir  string
	WriteXLSX  bool
	WriteChart bool
	Watchlist  []config.WatchItem
}

// Outcome is everything one session produced. Stats and Summary are nil unless the
// session completed.
type Outcome struct {
	Quote   string
	Result  *collector.Result
	Stats   *model.DerivedStats
	Summary *model.Summary
	Files   []string
	Chart   []byte
}

// Scheduler runs sessions on the cron schedule and on command.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Notifier // nil disables delivery
	Recorder  recorder.Recorder
	Opts      Options
	Log       zerolog.Logger
	Ctx       context.Context

	mu sync.Mutex // one session at a time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Notifier, rec recorder.Recorder, opts Options, log zerolog.Logger) *Scheduler {
	cronLog := cron.PrintfLogger(&log)
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cronLog))),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Opts:      opts,
		Log:       log,
		Ctx:       ctx,
	}
}

// RegisterAll registers the watchlist refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Int("watchlist", len(s.Opts.Watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// RefreshNow executes the watchlist refresh immediately.
func (s *Scheduler) RefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	s.Log.Info().Int("symbols", len(s.Opts.Watchlist)).Msg("running watchlist refresh")
	failed := 0
	for _, item := range s.Opts.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		out, err := s.RunSession(s.Ctx, item.Symbol, item.Exchange)
		if err != nil {
			failed++
		}
		s.deliver(s.Ctx, item.Symbol, out, err)
	}
	s.Log.Info().Int("failed", failed).Msg("watchlist refresh done")
}

// RunSession collects one symbol, derives its statistics, writes the configured
// outputs and records the session. The Outcome is non-nil whenever the session
// started, including when it failed with a partial dataset.
func (s *Scheduler) RunSession(ctx context.Context, symbol, exchange string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.Collector.Collect(ctx, symbol, exchange)
	if res == nil {
		return nil, err
	}
	out := &Outcome{Quote: collector.QuoteSymbol(res.Symbol, res.Exchange), Result: res}
	log := s.Log.With().Str("session", res.ID).Str("symbol", out.Quote).Logger()

	if err == nil {
		err = s.finish(out)
	}

	rec := &recorder.SessionRecord{
		ID:        res.ID,
		Symbol:    res.Symbol,
		Exchange:  res.Exchange,
		StartedAt: res.StartedAt,
		Complete:  res.Complete,
		Dataset:   res.Dataset,
		Stats:     out.Stats,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if rerr := s.Recorder.RecordSession(rec); rerr != nil {
		log.Error().Err(rerr).Msg("record session")
	}

	if err != nil {
		log.Error().Err(err).Int("rows", res.Dataset.Len()).Msg("session failed")
		return out, err
	}
	log.Info().Int("rows", res.Dataset.Len()).Strs("files", out.Files).Msg("session finished")
	return out, nil
}

// finish derives statistics for a complete dataset and writes the outputs.
func (s *Scheduler) finish(out *Outcome) error {
	ds := out.Result.Dataset
	stats, err := calculator.Derive(ds)
	if err != nil {
		return fmt.Errorf("derive stats: %w", err)
	}
	summary, err := calculator.Summarize(ds, stats)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	out.Stats, out.Summary = stats, summary

	report := &render.Report{Quote: out.Quote, Dataset: ds, Stats: stats, Summary: summary}
	at := out.Result.StartedAt

	if s.Opts.WriteXLSX {
		path := filepath.Join(s.Opts.OutputDir, render.FileName(out.Quote, at, "xlsx"))
		if err := render.WriteWorkbook(path, report); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		out.Files = append(out.Files, path)
	}

	if s.Opts.WriteChart && ds.Len() >= 2 {
		png, err := render.RenderChart(report)
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		path := filepath.Join(s.Opts.OutputDir, render.FileName(out.Quote, at, "png"))
		if err := os.MkdirAll(s.Opts.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		out.Chart = png
		out.Files = append(out.Files, path)
	}
	return nil
}

// deliver sends the outcome of a session: the chart with the summary as its caption
// when one was drawn, otherwise text.
func (s *Scheduler) deliver(ctx context.Context, symbol string, out *Outcome, err error) {
	if s.Notifier == nil {
		return
	}
	if err != nil {
		s.trySend(ctx, failureText(symbol, out, err))
		return
	}
	text := notifier.FormatSummary(out.Summary, out.Stats, out.Quote)
	if out.Chart != nil {
		err := s.Notifier.SendPhoto(ctx, out.Quote+".png", out.Chart, text)
		if err == nil {
			return
		}
		s.Log.Warn().Err(err).Msg("send chart failed, falling back to text")
	}
	s.trySend(ctx, text)
}

func failureText(symbol string, out *Outcome, err error) string {
	if out == nil {
		return notifier.FormatFailure(strings.ToUpper(symbol), err, 0)
	}
	return notifier.FormatFailure(out.Quote, err, out.Result.Dataset.Len())
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/graph":
		if len(fields) < 2 {
			return "Usage: /graph SYMBOL [EXCHANGE]"
		}
		exchange := ""
		if len(fields) > 2 {
			exchange = fields[2]
		}
		out, err := s.RunSession(ctx, fields[1], exchange)
		if err != nil {
			return failureText(fields[1], out, err)
		}
		if s.Notifier == nil {
			return notifier.FormatSummary(out.Summary, out.Stats, out.Quote)
		}
		s.deliver(ctx, fields[1], out, nil)
		return ""
	case "/watchlist":
		quotes := make([]string, 0, len(s.Opts.Watchlist))
		for _, w := range s.Opts.Watchlist {
			suffix, err := collector.ResolveExchange(w.Exchange)
			if err != nil {
				continue
			}
			quotes = append(quotes, collector.QuoteSymbol(w.Symbol, suffix))
		}
		return notifier.FormatWatchlist(quotes)
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		s.Log.Error().Err(err).Msg("send notification")
	}
}
