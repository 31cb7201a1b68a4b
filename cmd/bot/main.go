package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/wfuentes35/codigo-fut/internal/config"
	"github.com/wfuentes35/codigo-fut/internal/engine"
	"github.com/wfuentes35/codigo-fut/internal/market"
	"github.com/wfuentes35/codigo-fut/internal/metrics"
	"github.com/wfuentes35/codigo-fut/internal/notifier"
	"github.com/wfuentes35/codigo-fut/internal/pivot"
	"github.com/wfuentes35/codigo-fut/internal/recorder"
	"github.com/wfuentes35/codigo-fut/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogFile)

	fetcher := market.NewBinanceFetcher(cfg.Binance.BaseURL, cfg.Binance.APIKey, cfg.Proxy)
	st := store.New(cfg.Files.Active, cfg.Files.Closed, logger)
	pivots := pivot.NewService(cfg.Files.Pivots, fetcher, logger)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sq, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.WithError(err).Warn("sqlite unavailable, recording disabled")
		} else {
			rec = sq
			defer sq.Close()
		}
	}

	var tg *notifier.TelegramNotifier
	var not notifier.Notifier = notifier.Noop{}
	if cfg.TelegramEnabled() {
		tg = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		not = tg
	} else {
		logger.Warn("telegram not configured, notifications disabled")
	}

	met := metrics.New()
	if cfg.Metrics.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			logger.Infof("metrics listening on %s", cfg.Metrics.ListenAddr)
			if err := http.ListenAndServe(cfg.Metrics.ListenAddr, mux); err != nil {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := ensureUniverse(ctx, fetcher, cfg, logger); err != nil {
		logger.WithError(err).Error("initial universe scan failed")
		if tg != nil {
			_ = tg.SendWithRetry(ctx, "🆘 *BOT DETENIDO*: fallo al construir el universo de pares.", 3)
		}
		os.Exit(1)
	}

	eng := engine.New(engine.Options{
		Fetcher:      fetcher,
		Pivots:       pivots,
		Store:        st,
		Recorder:     rec,
		Notifier:     not,
		Metrics:      met,
		Logger:       logger,
		Interval:     time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute,
		UniverseFile: cfg.Files.Symbols,
	})

	sched := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))
	if _, err := sched.AddFunc(cfg.Schedule.UniverseCron, func() {
		if err := rescanUniverse(ctx, fetcher, cfg, logger); err != nil {
			logger.WithError(err).Warn("scheduled universe rescan failed")
		}
	}); err != nil {
		logger.WithError(err).Error("bad universe cron expression")
		os.Exit(1)
	}
	if _, err := sched.AddFunc(cfg.Schedule.ExportCron, func() {
		if err := st.ExportCSV(cfg.Files.CSVExport); err != nil {
			logger.WithError(err).Warn("scheduled csv export failed")
		} else {
			logger.Infof("trade history exported to %s", cfg.Files.CSVExport)
		}
	}); err != nil {
		logger.WithError(err).Error("bad export cron expression")
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	if tg != nil {
		go tg.StartPolling(ctx, eng.HandleCommand)
	}

	if err := eng.Run(ctx); err != nil {
		logger.WithError(err).Error("engine stopped")
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// newLogger writes to stderr and, when possible, the activity log file.
func newLogger(logFile string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.WithError(err).Warn("cannot open log file, logging to stderr only")
		} else {
			logger.SetOutput(io.MultiWriter(os.Stderr, f))
		}
	}
	return logger
}

// ensureUniverse performs the initial top-volume scan when no symbols file
// exists yet. Subsequent refreshes are handled by the cron schedule.
func ensureUniverse(ctx context.Context, fetcher *market.BinanceFetcher, cfg *config.Config, logger *logrus.Logger) error {
	if _, err := market.LoadSymbols(cfg.Files.Symbols); err == nil {
		return nil
	}
	logger.Info("no symbols file found, scanning top volume pairs")
	return rescanUniverse(ctx, fetcher, cfg, logger)
}

func rescanUniverse(ctx context.Context, fetcher *market.BinanceFetcher, cfg *config.Config, logger *logrus.Logger) error {
	symbols, err := fetcher.TopSymbols(ctx, cfg.Monitor.UniverseSize)
	if err != nil {
		return fmt.Errorf("scan top symbols: %w", err)
	}
	if err := market.SaveSymbols(cfg.Files.Symbols, symbols); err != nil {
		return fmt.Errorf("save symbols: %w", err)
	}
	logger.Infof("universe updated: %d pairs", len(symbols))
	return nil
}
