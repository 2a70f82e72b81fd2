package storage

// sqlite.go — persistencia de runs de backtest.
//
// Estrategia:
//   - `runs`: una fila por run con todas las métricas de resumen.
//   - `trades`: el registro completo de operaciones del run.
//   - `equity_points`: la curva de equity completa, dos puntos por día.
//   - Prune automático al arrancar: runs (y sus hijos) > 90 días.

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id                TEXT PRIMARY KEY,
    created_at        DATETIME NOT NULL,
    status            TEXT     NOT NULL,
    symbols           TEXT     NOT NULL,
    timeframe         TEXT     NOT NULL,
    start_date        DATETIME,
    end_date          DATETIME,
    initial_capital   REAL NOT NULL DEFAULT 0,
    final_equity      REAL NOT NULL DEFAULT 0,
    total_return      REAL NOT NULL DEFAULT 0,
    annualized_return REAL NOT NULL DEFAULT 0,
    max_drawdown      REAL NOT NULL DEFAULT 0,
    avg_drawdown      REAL NOT NULL DEFAULT 0,
    sharpe_ratio      REAL NOT NULL DEFAULT 0,
    total_trades      INTEGER NOT NULL DEFAULT 0,
    closed_trades     INTEGER NOT NULL DEFAULT 0,
    winning_trades    INTEGER NOT NULL DEFAULT 0,
    losing_trades     INTEGER NOT NULL DEFAULT 0,
    win_rate          REAL NOT NULL DEFAULT 0,
    avg_win           REAL NOT NULL DEFAULT 0,
    avg_loss          REAL NOT NULL DEFAULT 0,
    profit_factor     REAL NOT NULL DEFAULT 0,
    avg_holding_days  REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS trades (
    run_id          TEXT    NOT NULL,
    trade_id        INTEGER NOT NULL,
    symbol          TEXT    NOT NULL,
    action          TEXT    NOT NULL,
    price           REAL NOT NULL DEFAULT 0,
    size            REAL NOT NULL DEFAULT 0,
    cost            REAL NOT NULL DEFAULT 0,
    commission      REAL NOT NULL DEFAULT 0,
    realized_pl     REAL NOT NULL DEFAULT 0,
    realized_pl_pct REAL NOT NULL DEFAULT 0,
    entry_trade_id  INTEGER NOT NULL DEFAULT 0,
    date            DATETIME NOT NULL,
    confidence      REAL NOT NULL DEFAULT 0,
    reasons         TEXT,
    PRIMARY KEY (run_id, trade_id)
);

CREATE TABLE IF NOT EXISTS equity_points (
    run_id          TEXT    NOT NULL,
    seq             INTEGER NOT NULL,
    date            DATETIME NOT NULL,
    phase           TEXT    NOT NULL,
    equity          REAL NOT NULL DEFAULT 0,
    cash            REAL NOT NULL DEFAULT 0,
    positions_value REAL NOT NULL DEFAULT 0,
    peak_equity     REAL NOT NULL DEFAULT 0,
    drawdown        REAL NOT NULL DEFAULT 0,
    period_return   REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_trades_run   ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_equity_run   ON equity_points(run_id);
`

const retentionRuns = 90 * 24 * time.Hour

// infSentinel representa +Inf en la columna profit_factor: SQLite no
// almacena infinitos de forma portable.
const infSentinel = -1.0

// SQLiteStore implementa ports.RunStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada, aplica el
// schema y limpia runs antiguos.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun guarda el run completo (resumen + trades + equity) en una
// transacción.
func (s *SQLiteStore) SaveRun(ctx context.Context, result domain.BacktestResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	profitFactor := result.ProfitFactor
	if math.IsInf(profitFactor, 1) {
		profitFactor = infSentinel
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, status, symbols, timeframe, start_date, end_date,
			initial_capital, final_equity, total_return, annualized_return,
			max_drawdown, avg_drawdown, sharpe_ratio,
			total_trades, closed_trades, winning_trades, losing_trades,
			win_rate, avg_win, avg_loss, profit_factor, avg_holding_days
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		result.RunID, time.Now().UTC(), string(result.Status),
		strings.Join(result.Symbols, ","), result.Timeframe,
		result.StartDate, result.EndDate,
		result.InitialCapital, result.FinalEquity,
		result.TotalReturn, result.AnnualizedReturn,
		result.MaxDrawdown, result.AvgDrawdown, result.SharpeRatio,
		result.TotalTrades, result.ClosedTrades,
		result.WinningTrades, result.LosingTrades,
		result.WinRate, result.AvgWin, result.AvgLoss,
		profitFactor, result.AvgHoldingDays,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	for _, t := range result.Trades {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO trades (
				run_id, trade_id, symbol, action, price, size, cost,
				commission, realized_pl, realized_pl_pct, entry_trade_id,
				date, confidence, reasons
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			result.RunID, t.ID, t.Symbol, string(t.Action),
			t.Price, t.Size, t.Cost, t.Commission,
			t.RealizedPL, t.RealizedPLPct, t.EntryTradeID,
			t.Date, t.Signal.Confidence, strings.Join(t.Signal.Reasons, "; "),
		)
		if err != nil {
			return fmt.Errorf("storage.SaveRun: insert trade %d: %w", t.ID, err)
		}
	}

	for seq, p := range result.EquityCurve {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO equity_points (
				run_id, seq, date, phase, equity, cash, positions_value,
				peak_equity, drawdown, period_return
			) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			result.RunID, seq, p.Date, string(p.Phase),
			p.Equity, p.Cash, p.PositionsValue,
			p.PeakEquity, p.Drawdown, p.PeriodReturn,
		)
		if err != nil {
			return fmt.Errorf("storage.SaveRun: insert equity point %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// RecentRuns devuelve los últimos n resúmenes, sin trades ni curva.
func (s *SQLiteStore) RecentRuns(ctx context.Context, n int) ([]domain.BacktestResult, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, symbols, timeframe, start_date, end_date,
		       initial_capital, final_equity, total_return, annualized_return,
		       max_drawdown, avg_drawdown, sharpe_ratio,
		       total_trades, closed_trades, winning_trades, losing_trades,
		       win_rate, avg_win, avg_loss, profit_factor, avg_holding_days
		FROM runs ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentRuns: query: %w", err)
	}
	defer rows.Close()

	var results []domain.BacktestResult
	for rows.Next() {
		var r domain.BacktestResult
		var status, symbols string
		var startDate, endDate sql.NullTime
		if err := rows.Scan(
			&r.RunID, &status, &symbols, &r.Timeframe, &startDate, &endDate,
			&r.InitialCapital, &r.FinalEquity, &r.TotalReturn, &r.AnnualizedReturn,
			&r.MaxDrawdown, &r.AvgDrawdown, &r.SharpeRatio,
			&r.TotalTrades, &r.ClosedTrades, &r.WinningTrades, &r.LosingTrades,
			&r.WinRate, &r.AvgWin, &r.AvgLoss, &r.ProfitFactor, &r.AvgHoldingDays,
		); err != nil {
			return nil, fmt.Errorf("storage.RecentRuns: scan: %w", err)
		}
		r.Status = domain.RunStatus(status)
		if symbols != "" {
			r.Symbols = strings.Split(symbols, ",")
		}
		if startDate.Valid {
			r.StartDate = startDate.Time
		}
		if endDate.Valid {
			r.EndDate = endDate.Time
		}
		if r.ProfitFactor == infSentinel {
			r.ProfitFactor = math.Inf(1)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close cierra la conexión a la base de datos limpiamente.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// pruneOld borra runs antiguos y sus trades/equity asociados.
func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	_, _ = s.db.ExecContext(ctx,
		`DELETE FROM trades WHERE run_id IN (SELECT id FROM runs WHERE created_at < ?)`, cutoff)
	_, _ = s.db.ExecContext(ctx,
		`DELETE FROM equity_points WHERE run_id IN (SELECT id FROM runs WHERE created_at < ?)`, cutoff)
	_, _ = s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
}
