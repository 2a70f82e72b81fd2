package notify

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out    io.Writer
	trades bool // imprimir además el registro de trades completo
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(trades bool) *Console {
	return &Console{out: os.Stdout, trades: trades}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, trades bool) *Console {
	return &Console{out: w, trades: trades}
}

// PrintResult imprime el resumen del backtest y, en modo trades, el
// registro de operaciones.
func (c *Console) PrintResult(result domain.BacktestResult) {
	if !result.Status.Runnable() {
		fmt.Fprintf(c.out, "\n  Backtest could not run: %s\n", statusLabel(result.Status))
		fmt.Fprintf(c.out, "  Symbols: %s | Timeframe: %s | Trades: 0\n\n",
			strings.Join(result.Symbols, ", "), result.Timeframe)
		return
	}

	fmt.Fprintf(c.out, "\n╔══════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(c.out, "║  BACKTEST RESULTS                                                ║\n")
	fmt.Fprintf(c.out, "╚══════════════════════════════════════════════════════════════════╝\n\n")

	fmt.Fprintf(c.out, "  Period:   %s → %s\n", dateLabel(result.StartDate), dateLabel(result.EndDate))
	fmt.Fprintf(c.out, "  Symbols:  %s (%s)\n", strings.Join(result.Symbols, ", "), result.Timeframe)
	fmt.Fprintln(c.out)

	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")
	table.Append("Initial capital", fmt.Sprintf("$%.2f", result.InitialCapital))
	table.Append("Final equity", fmt.Sprintf("$%.2f", result.FinalEquity))
	table.Append("Total return", fmt.Sprintf("%.2f%%", result.TotalReturn*100))
	table.Append("Annualized return", fmt.Sprintf("%.2f%%", result.AnnualizedReturn*100))
	table.Append("Max drawdown", fmt.Sprintf("%.2f%%", result.MaxDrawdown*100))
	table.Append("Avg drawdown", fmt.Sprintf("%.2f%%", result.AvgDrawdown*100))
	table.Append("Sharpe ratio", fmt.Sprintf("%.2f", result.SharpeRatio))
	table.Append("Total trades", fmt.Sprintf("%d", result.TotalTrades))
	table.Append("Closed trades", fmt.Sprintf("%d", result.ClosedTrades))
	table.Append("Win rate", fmt.Sprintf("%.2f%%", result.WinRate*100))
	table.Append("Avg win / loss", fmt.Sprintf("$%.2f / $%.2f", result.AvgWin, math.Abs(result.AvgLoss)))
	table.Append("Profit factor", profitFactorLabel(result.ProfitFactor))
	table.Append("Avg holding period", fmt.Sprintf("%.1f days", result.AvgHoldingDays))
	table.Render()

	if result.TotalTrades == 0 {
		fmt.Fprintln(c.out, "\n  No trades were executed over the tested period.")
		return
	}

	if c.trades {
		c.printTrades(result.Trades)
	}
}

// printTrades imprime el registro de operaciones completo.
func (c *Console) printTrades(trades []domain.Trade) {
	fmt.Fprintln(c.out)
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Date", "Symbol", "Action", "Size", "Price", "P&L", "Conf", "Reasons")

	for _, t := range trades {
		pl := ""
		if t.Action == domain.Sell {
			pl = fmt.Sprintf("$%.2f", t.RealizedPL)
		}
		table.Append(
			fmt.Sprintf("%d", t.ID),
			t.Date.Format("2006-01-02"),
			t.Symbol,
			strings.ToUpper(string(t.Action)),
			fmt.Sprintf("%.2f", t.Size),
			fmt.Sprintf("$%.2f", t.Price),
			pl,
			fmt.Sprintf("%.2f", t.Signal.Confidence),
			truncate(strings.Join(t.Signal.Reasons, "; "), 45),
		)
	}
	table.Render()
}

// PrintHistory imprime los resúmenes de runs anteriores.
func (c *Console) PrintHistory(runs []domain.BacktestResult) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "\n  No previous runs stored.")
		return
	}

	fmt.Fprintln(c.out)
	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "Status", "Symbols", "Period", "Return", "MaxDD", "Sharpe", "Trades")

	for _, r := range runs {
		table.Append(
			shortID(r.RunID),
			statusLabel(r.Status),
			truncate(strings.Join(r.Symbols, ","), 20),
			fmt.Sprintf("%s→%s", dateLabel(r.StartDate), dateLabel(r.EndDate)),
			fmt.Sprintf("%.2f%%", r.TotalReturn*100),
			fmt.Sprintf("%.2f%%", r.MaxDrawdown*100),
			fmt.Sprintf("%.2f", r.SharpeRatio),
			fmt.Sprintf("%d", r.TotalTrades),
		)
	}
	table.Render()
}

func profitFactorLabel(pf float64) string {
	if math.IsInf(pf, 1) {
		return "INF"
	}
	return fmt.Sprintf("%.2f", pf)
}

func statusLabel(s domain.RunStatus) string {
	switch s {
	case domain.StatusNoData:
		return "NO DATA"
	case domain.StatusNoCommonDates:
		return "NO COMMON DATES"
	default:
		return "OK"
	}
}

func dateLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
