package backtest

// loader.go — concurrent history fetch across symbols.
//
// Each symbol's bars load on a separate worker; the provider's own rate
// limiter still governs the actual request pacing, so concurrency here
// overlaps waiting, not requests.

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
	"github.com/alejandrodnm/sigfuse/internal/ports"
)

// loadBars fetches every symbol's history through a worker pool and returns
// the per-symbol bar series, chronologically sorted. Symbols with no data
// are dropped from the map. The first provider error aborts the load.
func loadBars(
	ctx context.Context,
	provider ports.HistoryProvider,
	symbols []string,
	start, end time.Time,
	timeframe string,
	workers int,
) (map[string][]domain.PriceBar, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	type fetched struct {
		symbol string
		bars   []domain.PriceBar
		err    error
	}

	workCh := make(chan string, len(symbols))
	resultCh := make(chan fetched, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range workCh {
				bars, err := provider.FetchBars(ctx, symbol, start, end, timeframe)
				resultCh <- fetched{symbol: symbol, bars: bars, err: err}
			}
		}()
	}

	for _, symbol := range symbols {
		workCh <- symbol
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	data := make(map[string][]domain.PriceBar, len(symbols))
	var firstErr error
	var failed string
	for r := range resultCh {
		if r.err != nil {
			if firstErr == nil {
				firstErr, failed = r.err, r.symbol
			}
			continue
		}
		if len(r.bars) == 0 {
			slog.Warn("no historical data, skipping symbol", "symbol", r.symbol)
			continue
		}
		data[r.symbol] = domain.SortChronological(r.bars)
	}
	if firstErr != nil {
		return nil, &loadError{symbol: failed, err: firstErr}
	}
	return data, nil
}

// loadError attaches the failing symbol to the provider error.
type loadError struct {
	symbol string
	err    error
}

func (e *loadError) Error() string { return "fetch bars for " + e.symbol + ": " + e.err.Error() }
func (e *loadError) Unwrap() error { return e.err }
