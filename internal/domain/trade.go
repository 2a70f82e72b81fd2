package domain

import "time"

// Position es una posición abierta por el simulador. Como máximo hay una
// posición abierta por símbolo — invariante que impone el simulador.
type Position struct {
	Symbol       string
	Size         float64 // cantidad con signo (este diseño solo abre largos)
	EntryPrice   float64
	EntryDate    time.Time
	CurrentPrice float64 // último mark-to-market
	EntryTradeID int
}

// Value es el valor de mercado de la posición al último precio conocido.
func (p Position) Value() float64 {
	return p.Size * p.CurrentPrice
}

// Trade es una entrada del registro append-only de operaciones. Los IDs son
// monotónicos en orden de ejecución y emparejan cada venta con su compra.
type Trade struct {
	ID            int
	Symbol        string
	Action        Decision
	Price         float64 // precio efectivo tras slippage
	Size          float64
	Cost          float64 // compras: coste total; ventas: proceeds brutos
	Commission    float64
	RealizedPL    float64 // solo ventas
	RealizedPLPct float64 // solo ventas
	EntryTradeID  int     // solo ventas: ID del trade de apertura
	Date          time.Time
	Signal        FusedSignal // la señal que originó la operación
}

// EquityPhase marca en qué punto del día se registró el equity.
type EquityPhase string

const (
	PhaseStartOfDay EquityPhase = "start_of_day"
	PhaseEndOfDay   EquityPhase = "end_of_day"
)

// EquityPoint es un punto de la curva de equity. Append-only, cronológico.
// El drawdown se calcula una vez al registrar el punto y nunca se recalcula
// retroactivamente.
type EquityPoint struct {
	Date           time.Time
	Phase          EquityPhase
	Equity         float64 // cash + valor mark-to-market de posiciones
	Cash           float64
	PositionsValue float64
	PeakEquity     float64 // máximo histórico hasta este punto
	Drawdown       float64 // (peak - equity) / peak, 0 si equity ≥ peak
	PeriodReturn   float64 // retorno respecto al punto anterior
}

// RunStatus distingue "corrió con cero trades" de "no pudo correr".
type RunStatus string

const (
	StatusCompleted     RunStatus = "completed"
	StatusNoData        RunStatus = "no_data"
	StatusNoCommonDates RunStatus = "no_common_dates"
)

// Runnable indica si el backtest llegó a ejecutar el replay.
func (s RunStatus) Runnable() bool {
	return s == StatusCompleted
}

// BacktestResult agrega trades y curva de equity en métricas de resumen.
// Se calcula una vez al final del run y es inmutable.
type BacktestResult struct {
	RunID     string
	Status    RunStatus
	Symbols   []string
	Timeframe string
	StartDate time.Time
	EndDate   time.Time

	InitialCapital float64
	FinalEquity    float64

	TotalReturn      float64 // fracción: 0.10 = +10%
	AnnualizedReturn float64
	MaxDrawdown      float64
	AvgDrawdown      float64
	SharpeRatio      float64

	TotalTrades    int
	ClosedTrades   int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64
	AvgWin         float64
	AvgLoss        float64
	ProfitFactor   float64 // +Inf si no hay trades perdedores
	AvgHoldingDays float64

	Trades      []Trade
	EquityCurve []EquityPoint
}
