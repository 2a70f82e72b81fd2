package ports

import (
	"context"

	"github.com/alejandrodnm/sigfuse/internal/domain"
)

// RunStore persiste los resultados de backtests terminados.
type RunStore interface {
	// SaveRun guarda el resumen del run junto con su registro de trades
	// y su curva de equity.
	SaveRun(ctx context.Context, result domain.BacktestResult) error

	// RecentRuns devuelve los últimos n resúmenes, del más reciente al
	// más antiguo, sin trades ni curva de equity.
	RecentRuns(ctx context.Context, n int) ([]domain.BacktestResult, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
