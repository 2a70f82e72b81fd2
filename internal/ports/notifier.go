package ports

import "github.com/alejandrodnm/sigfuse/internal/domain"

// Notifier presenta el resultado de un backtest al usuario.
type Notifier interface {
	// PrintResult muestra el resumen de métricas. En la implementación de
	// consola imprime una tabla formateada.
	PrintResult(result domain.BacktestResult)

	// PrintHistory muestra los resúmenes de runs anteriores.
	PrintHistory(runs []domain.BacktestResult)
}
