package domain

import (
	"sort"
	"time"
)

// PriceBar es una barra OHLCV inmutable producida por el proveedor de datos.
type PriceBar struct {
	Symbol    string
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Day devuelve el día de la barra truncado a medianoche UTC.
func (b PriceBar) Day() time.Time {
	return b.Timestamp.UTC().Truncate(24 * time.Hour)
}

// SortChronological devuelve una copia de las barras ordenada de más antigua
// a más reciente. El feed puede llegar ascendente o descendente; internamente
// el engine siempre trabaja en orden cronológico (oldest → newest).
func SortChronological(bars []PriceBar) []PriceBar {
	out := make([]PriceBar, len(bars))
	copy(out, bars)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Closes extrae los precios de cierre en el mismo orden que las barras.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extrae los volúmenes en el mismo orden que las barras.
func Volumes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
