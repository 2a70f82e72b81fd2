package backtest

// engine.go — bar-by-bar replay of the fusion strategy over historical data.
//
// One Engine owns exactly one run at a time: positions, trades and the
// equity curve are reset on every Run call and never shared across runs.
// The replay is single-threaded and synchronous; all data is materialized
// up front, so there is no blocking I/O inside the day loop.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
	"github.com/alejandrodnm/sigfuse/internal/domain/strategy"
	"github.com/alejandrodnm/sigfuse/internal/ports"
	"github.com/google/uuid"
)

// State is the lifecycle phase of a run.
type State string

const (
	StateInitialized State = "INITIALIZED"
	StateLoadingData State = "LOADING_DATA"
	StateReplaying   State = "REPLAYING"
	StateFinalized   State = "FINALIZED"
	StateError       State = "ERROR"
)

// Config holds the simulation parameters.
type Config struct {
	InitialCapital float64
	Commission     float64 // fraction per trade, applied to cost/proceeds
	Slippage       float64 // fraction, against the simulated trader
	RiskPerTrade   float64 // fraction of capital risked per trade
	LookbackBars   int     // max window handed to the strategy per evaluation
	LoadWorkers    int     // goroutines for the history fetch (0 = NumCPU)
}

// DefaultConfig returns the reference simulation parameters.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 10000,
		Commission:     0.001, // 0.1% per trade
		Slippage:       0.001,
		RiskPerTrade:   domain.DefaultRiskPerTrade,
		LookbackBars:   75,
	}
}

// Engine replays a multi-symbol dataset day by day, invoking the fusion
// strategy and the risk sizer, and tracking capital, positions and equity.
type Engine struct {
	cfg      Config
	sizer    domain.Sizer
	provider ports.HistoryProvider

	state     State
	capital   float64
	positions map[string]*domain.Position
	trades    []domain.Trade
	tradeID   int
	equity    []domain.EquityPoint
}

// New creates an engine backed by the given history provider.
func New(cfg Config, provider ports.HistoryProvider) *Engine {
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = DefaultConfig().InitialCapital
	}
	if cfg.LookbackBars <= 0 {
		cfg.LookbackBars = DefaultConfig().LookbackBars
	}
	return &Engine{
		cfg:      cfg,
		sizer:    domain.NewSizer(cfg.RiskPerTrade),
		provider: provider,
		state:    StateInitialized,
	}
}

// State returns the current lifecycle phase.
func (e *Engine) State() State { return e.state }

// Run executes one backtest. Data problems (no bars, no common dates) come
// back as a result flagged with the corresponding status, not as an error;
// an error is only returned when the provider itself fails.
func (e *Engine) Run(
	ctx context.Context,
	strat strategy.Evaluator,
	symbols []string,
	start, end time.Time,
	timeframe string,
) (domain.BacktestResult, error) {
	e.reset()
	runID := uuid.New().String()

	slog.Info("backtest starting",
		"run", runID,
		"symbols", len(symbols),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"timeframe", timeframe,
	)

	e.state = StateLoadingData
	data, err := loadBars(ctx, e.provider, symbols, start, end, timeframe, e.cfg.LoadWorkers)
	if err != nil {
		e.state = StateError
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: %w", err)
	}

	if len(data) == 0 {
		e.state = StateError
		slog.Error("no historical data found for any symbol")
		return e.unrunnable(runID, domain.StatusNoData, symbols, timeframe), nil
	}

	dates := commonDates(data)
	if len(dates) == 0 {
		e.state = StateError
		slog.Error("no common trading dates across symbols")
		return e.unrunnable(runID, domain.StatusNoCommonDates, symbols, timeframe), nil
	}

	// Deterministic iteration order for reproducible trade IDs.
	active := make([]string, 0, len(data))
	for symbol := range data {
		active = append(active, symbol)
	}
	sort.Strings(active)

	index := buildDayIndexes(data)

	e.state = StateReplaying
	for _, day := range dates {
		e.markToMarket(day, data, index)
		e.recordEquity(day, domain.PhaseStartOfDay)

		for _, symbol := range active {
			idx, ok := index[symbol][day]
			if !ok {
				continue
			}
			bars := data[symbol]
			bar := bars[idx]

			windowStart := 0
			if idx+1 > e.cfg.LookbackBars {
				windowStart = idx + 1 - e.cfg.LookbackBars
			}
			sig := strat.Evaluate(symbol, bars[windowStart:idx+1], bar.Close)
			if sig != nil && sig.Decision != domain.Hold {
				e.executeTrade(*sig, bar, day)
			}
		}

		e.recordEquity(day, domain.PhaseEndOfDay)
	}
	e.state = StateFinalized

	result := computeResult(runID, e.cfg.InitialCapital, active, timeframe, e.trades, e.equity)
	slog.Info("backtest finished",
		"run", runID,
		"days", len(dates),
		"trades", result.TotalTrades,
		"final_equity", fmt.Sprintf("%.2f", result.FinalEquity),
	)
	return result, nil
}

// reset clears all per-run state.
func (e *Engine) reset() {
	e.state = StateInitialized
	e.capital = e.cfg.InitialCapital
	e.positions = make(map[string]*domain.Position)
	e.trades = nil
	e.tradeID = 0
	e.equity = nil
}

// unrunnable builds the structured "could not run" outcome.
func (e *Engine) unrunnable(runID string, status domain.RunStatus, symbols []string, timeframe string) domain.BacktestResult {
	return domain.BacktestResult{
		RunID:          runID,
		Status:         status,
		Symbols:        symbols,
		Timeframe:      timeframe,
		InitialCapital: e.cfg.InitialCapital,
		FinalEquity:    e.cfg.InitialCapital,
	}
}

// executeTrade applies slippage, sizing and commission, and mutates capital
// and positions. Buy with an open position, or sell without one, is a no-op:
// this design never pyramids or shorts.
func (e *Engine) executeTrade(sig domain.FusedSignal, bar domain.PriceBar, day time.Time) {
	symbol := sig.Symbol

	switch sig.Decision {
	case domain.Buy:
		if _, open := e.positions[symbol]; open {
			return
		}
		price := bar.Close * (1 + e.cfg.Slippage)

		size := e.sizer.Size(e.capital, price, sig.Metadata.Volatility, sig.Confidence)
		if size <= 0 {
			// Insufficient size is a valid non-signal outcome, skip silently.
			return
		}
		cost := size * price
		if cost > e.capital {
			size = e.capital / price
			cost = e.capital
		}
		commission := cost * e.cfg.Commission

		e.tradeID++
		e.trades = append(e.trades, domain.Trade{
			ID:         e.tradeID,
			Symbol:     symbol,
			Action:     domain.Buy,
			Price:      price,
			Size:       size,
			Cost:       cost,
			Commission: commission,
			Date:       day,
			Signal:     sig,
		})
		e.capital -= cost + commission
		e.positions[symbol] = &domain.Position{
			Symbol:       symbol,
			Size:         size,
			EntryPrice:   price,
			EntryDate:    day,
			CurrentPrice: price,
			EntryTradeID: e.tradeID,
		}

		slog.Info("BUY",
			"symbol", symbol,
			"size", fmt.Sprintf("%.2f", size),
			"price", fmt.Sprintf("%.2f", price),
			"cost", fmt.Sprintf("%.2f", cost),
			"confidence", fmt.Sprintf("%.2f", sig.Confidence),
		)

	case domain.Sell:
		pos, open := e.positions[symbol]
		if !open {
			return
		}
		price := bar.Close * (1 - e.cfg.Slippage)

		proceeds := pos.Size * price
		pl := proceeds - pos.Size*pos.EntryPrice
		commission := proceeds * e.cfg.Commission

		e.tradeID++
		e.trades = append(e.trades, domain.Trade{
			ID:            e.tradeID,
			Symbol:        symbol,
			Action:        domain.Sell,
			Price:         price,
			Size:          pos.Size,
			Cost:          proceeds,
			Commission:    commission,
			RealizedPL:    pl,
			RealizedPLPct: price/pos.EntryPrice - 1,
			EntryTradeID:  pos.EntryTradeID,
			Date:          day,
			Signal:        sig,
		})
		e.capital += proceeds - commission
		delete(e.positions, symbol)

		slog.Info("SELL",
			"symbol", symbol,
			"size", fmt.Sprintf("%.2f", pos.Size),
			"price", fmt.Sprintf("%.2f", price),
			"pl", fmt.Sprintf("%.2f", pl),
		)
	}
}

// markToMarket refreshes open positions with the day's close.
func (e *Engine) markToMarket(day time.Time, data map[string][]domain.PriceBar, index map[string]map[time.Time]int) {
	for symbol, pos := range e.positions {
		if idx, ok := index[symbol][day]; ok {
			pos.CurrentPrice = data[symbol][idx].Close
		}
	}
}

// recordEquity appends an equity point. Peak and drawdown are computed once
// here and never retroactively.
func (e *Engine) recordEquity(day time.Time, phase domain.EquityPhase) {
	positionsValue := 0.0
	for _, pos := range e.positions {
		positionsValue += pos.Value()
	}
	equity := e.capital + positionsValue

	peak := equity
	periodReturn := 0.0
	if len(e.equity) > 0 {
		prev := e.equity[len(e.equity)-1]
		if prev.Equity != 0 {
			periodReturn = equity/prev.Equity - 1
		}
		if prev.PeakEquity > peak {
			peak = prev.PeakEquity
		}
	}

	drawdown := 0.0
	if equity < peak && peak > 0 {
		drawdown = (peak - equity) / peak
	}

	e.equity = append(e.equity, domain.EquityPoint{
		Date:           day,
		Phase:          phase,
		Equity:         equity,
		Cash:           e.capital,
		PositionsValue: positionsValue,
		PeakEquity:     peak,
		Drawdown:       drawdown,
		PeriodReturn:   periodReturn,
	})
}

// commonDates returns the sorted intersection of all symbols' trading days.
func commonDates(data map[string][]domain.PriceBar) []time.Time {
	counts := make(map[time.Time]int)
	for _, bars := range data {
		seen := make(map[time.Time]bool, len(bars))
		for _, b := range bars {
			day := b.Day()
			if !seen[day] {
				seen[day] = true
				counts[day]++
			}
		}
	}

	var dates []time.Time
	for day, n := range counts {
		if n == len(data) {
			dates = append(dates, day)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// buildDayIndexes maps each symbol's trading day to the index of its last
// bar on that day.
func buildDayIndexes(data map[string][]domain.PriceBar) map[string]map[time.Time]int {
	index := make(map[string]map[time.Time]int, len(data))
	for symbol, bars := range data {
		m := make(map[time.Time]int, len(bars))
		for i, b := range bars {
			m[b.Day()] = i // bars are chronological, later bars win
		}
		index[symbol] = m
	}
	return index
}
