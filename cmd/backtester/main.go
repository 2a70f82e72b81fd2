package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alejandrodnm/sigfuse/config"
	"github.com/alejandrodnm/sigfuse/internal/adapters/fixture"
	"github.com/alejandrodnm/sigfuse/internal/adapters/notify"
	"github.com/alejandrodnm/sigfuse/internal/adapters/polygon"
	"github.com/alejandrodnm/sigfuse/internal/adapters/storage"
	"github.com/alejandrodnm/sigfuse/internal/application/backtest"
	"github.com/alejandrodnm/sigfuse/internal/domain/strategy"
	"github.com/alejandrodnm/sigfuse/internal/ports"
)

const dateLayout = "2006-01-02"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	symbolsArg := flag.String("symbols", "AAPL,MSFT", "comma-separated symbols to backtest")
	startArg := flag.String("start", "", "start date YYYY-MM-DD (default: 1 year ago)")
	endArg := flag.String("end", "", "end date YYYY-MM-DD (default: today)")
	timeframe := flag.String("timeframe", "1d", "bar timeframe: 1d|1h|1m|5m|15m|1w")
	dryRun := flag.Bool("dry-run", false, "use synthetic fixture data instead of the Polygon API")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	trades := flag.Bool("trades", false, "print the full trade log after the summary")
	history := flag.Int("history", 0, "print the last N stored runs and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to load config", "err", err, "path", *configPath)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	notifier := notify.NewConsole(*trades)

	if *history > 0 {
		printHistory(cfg, notifier, *history)
		return
	}

	symbols := splitSymbols(*symbolsArg)
	if len(symbols) == 0 {
		slog.Error("no symbols given")
		os.Exit(1)
	}

	start, end, err := parseRange(*startArg, *endArg)
	if err != nil {
		slog.Error("invalid date range", "err", err)
		os.Exit(1)
	}

	slog.Info("backtester starting",
		"config", *configPath,
		"symbols", symbols,
		"start", start.Format(dateLayout),
		"end", end.Format(dateLayout),
		"timeframe", *timeframe,
		"dry_run", *dryRun,
	)

	var provider ports.HistoryProvider
	if *dryRun {
		provider = fixture.NewProvider(0)
	} else {
		if cfg.API.PolygonKey == "" {
			slog.Error("POLYGON_API_KEY is not set (use -dry-run for synthetic data)")
			os.Exit(1)
		}
		provider = polygon.NewClient(cfg.API.PolygonBase, cfg.API.PolygonKey)
	}

	var store ports.RunStore
	if !*dryRun {
		s, err := storage.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	}

	strat := strategy.New(cfg.Strategy)
	engine := backtest.New(cfg.BacktestEngine(), provider)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := engine.Run(ctx, strat, symbols, start, end, *timeframe)
	if err != nil {
		slog.Error("backtest failed", "err", err)
		os.Exit(1)
	}

	notifier.PrintResult(result)

	if store != nil {
		if err := store.SaveRun(ctx, result); err != nil {
			slog.Warn("failed to persist run", "err", err)
		}
	}

	slog.Info("backtest finished", "run", result.RunID, "status", string(result.Status))
}

func printHistory(cfg *config.Config, notifier *notify.Console, n int) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	runs, err := store.RecentRuns(context.Background(), n)
	if err != nil {
		slog.Error("failed to read run history", "err", err)
		os.Exit(1)
	}
	notifier.PrintHistory(runs)
}

func splitSymbols(arg string) []string {
	var out []string
	for _, s := range strings.Split(arg, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseRange(startArg, endArg string) (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if endArg != "" {
		var err error
		end, err = time.Parse(dateLayout, endArg)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	start := end.AddDate(-1, 0, 0)
	if startArg != "" {
		var err error
		start, err = time.Parse(dateLayout, startArg)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
