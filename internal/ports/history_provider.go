package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
)

// HistoryProvider obtiene barras históricas de un símbolo. El core no posee
// la adquisición de datos: reintentos y credenciales viven en el adapter.
type HistoryProvider interface {
	// FetchBars devuelve las barras del rango pedido, en cualquier orden
	// temporal (el engine normaliza). Sin datos devuelve slice vacío y nil
	// error: "salta este símbolo", no un fallo.
	FetchBars(ctx context.Context, symbol string, start, end time.Time, timeframe string) ([]domain.PriceBar, error)
}
