package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"Instagraph/internal/collector"
	"Instagraph/internal/config"
	"Instagraph/internal/logger"
	"Instagraph/internal/model"
	"Instagraph/internal/notifier"
	"Instagraph/internal/recorder"
	"Instagraph/internal/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	var symbol, exchange string
	var daemon bool
	flag.StringVar(&cfgPath, "config", cfgPath, "config path")
	flag.StringVar(&symbol, "symbol", "", "ticker to graph once")
	flag.StringVar(&exchange, "exchange", "", "exchange of the ticker: NYSE, NASDAQ, TSX, CVE")
	flag.BoolVar(&daemon, "daemon", false, "run the scheduled refresh and Telegram commands")
	flag.Parse()

	boot := logger.New("info")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Error().Err(err).Msg("load config")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		boot.Error().Err(err).Msg("config validation")
		return 1
	}
	log := logger.New(cfg.Log.Level)

	// Init fetcher
	fetcher := collector.NewYahooFetcher(collector.YahooOptions{
		BaseURL:         cfg.Source.BaseURL,
		UserAgent:       cfg.Source.UserAgent,
		Proxy:           cfg.Proxy,
		Timeout:         cfg.Source.Timeout,
		RequestInterval: cfg.Source.RequestInterval,
	})
	log.Info().Str("source", fetcher.Name()).Str("base_url", cfg.Source.BaseURL).Msg("data source")
	col := collector.NewCollector(fetcher, log)

	rec := openRecorder(cfg.Database.SQLitePath, log)
	defer rec.Close()

	// A nil *TelegramNotifier must not reach the interface.
	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		n = tn
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, n, rec, scheduler.Options{
		OutputDir:  cfg.Output.Dir,
		WriteXLSX:  cfg.WriteXLSX(),
		WriteChart: cfg.WriteChart(),
		Watchlist:  cfg.Watchlist,
	}, log)

	if !daemon {
		if symbol == "" {
			fmt.Fprintln(os.Stderr, "either -symbol or -daemon is required")
			flag.Usage()
			return 2
		}
		out, err := sched.RunSession(ctx, symbol, exchange)
		printOutcome(os.Stdout, out, err)
		if err != nil {
			return 1
		}
		return 0
	}

	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Error().Err(err).Msg("register cron tasks")
		return 1
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, refreshing watchlist now")
		go sched.RefreshNow()
	}

	log.Info().Str("cron", cfg.Schedule.RefreshCron).Msg("Instagraph is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	return 0
}

func openRecorder(path string, log zerolog.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// printOutcome writes the summary box of a one-shot session, or its failure.
func printOutcome(w io.Writer, out *scheduler.Outcome, err error) {
	red := color.New(color.FgRed, color.Bold)
	if err != nil {
		red.Fprintf(w, "error: %v\n", err)
		if out != nil && out.Result.Dataset.Len() > 0 {
			fmt.Fprintf(w, "partial dataset kept: %d rows\n", out.Result.Dataset.Len())
		}
		return
	}

	bold := color.New(color.Bold, color.Underline)
	value := color.New(color.FgGreen).SprintFunc()
	s, format := out.Summary, out.Stats.PriceFormat

	bold.Fprintf(w, "%s  1-Year Historical Price Summary\n", out.Quote)
	line := func(label, v string) { fmt.Fprintf(w, "  %-11s %s\n", label, value(v)) }
	line("Company", s.Company)
	line("Date", s.Date.Format("1/2/2006"))
	line("Last Price", model.DisplayPrice(s.LastPrice, format))
	line("High", model.DisplayPrice(s.High, format))
	line("Low", model.DisplayPrice(s.Low, format))
	line("ADTV", model.DisplayVolume(s.ADTV))
	for _, f := range out.Files {
		fmt.Fprintf(w, "wrote %s\n", f)
	}
}
