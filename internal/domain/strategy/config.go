package strategy

import "github.com/alejandrodnm/sigfuse/internal/domain"

// FusionWeights son los pesos de la mezcla final de confianzas. Dos juegos:
// uno cuando el momentum (RSI) emitió un voto no-hold y otro cuando no.
// Son constantes empíricas sin derivación documentada — se mantienen
// configurables porque su "corrección" es definicional, no demostrable.
type FusionWeights struct {
	PriceWithMomentum  float64 `yaml:"price_with_momentum"`
	VolumeWithMomentum float64 `yaml:"volume_with_momentum"`
	TrendWithMomentum  float64 `yaml:"trend_with_momentum"`
	Momentum           float64 `yaml:"momentum"`

	Price  float64 `yaml:"price"`
	Volume float64 `yaml:"volume"`
	Trend  float64 `yaml:"trend"`
}

// Config agrupa todos los umbrales y constantes de la estrategia.
type Config struct {
	// Cambio de precio
	PriceChangeThreshold float64 `yaml:"price_change_threshold"` // % para disparar buy/sell

	// Volumen
	VolumeSpikeThreshold float64 `yaml:"volume_spike_threshold"`

	// Medias móviles
	MAShortPeriod    int     `yaml:"ma_short_period"`
	MALongPeriod     int     `yaml:"ma_long_period"`
	TrendStrengthMin float64 `yaml:"trend_strength_min"` // % mínimo para señal de continuación

	// RSI
	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	UseRSISignals bool    `yaml:"use_rsi_signals"`

	// Indicadores auxiliares para metadata
	VolatilityWindow int     `yaml:"volatility_window"`
	BollingerPeriod  int     `yaml:"bollinger_period"`
	BollingerK       float64 `yaml:"bollinger_k"`

	// Fusión
	Weights                FusionWeights `yaml:"weights"`
	ContradictionDampening float64       `yaml:"contradiction_dampening"`
	MaxConfidence          float64       `yaml:"max_confidence"`

	// Analizadores activos, en orden de precedencia tras price_change.
	Analyzers []domain.SignalKind `yaml:"analyzers"`
}

// DefaultConfig devuelve la configuración de referencia: orden de
// precedencia, umbrales y pesos con los que se calibró la estrategia.
func DefaultConfig() Config {
	return Config{
		PriceChangeThreshold: 2.0,
		VolumeSpikeThreshold: 3.0,
		MAShortPeriod:        20,
		MALongPeriod:         50,
		TrendStrengthMin:     5.0,
		RSIPeriod:            14,
		RSIOverbought:        70,
		RSIOversold:          30,
		UseRSISignals:        true,
		VolatilityWindow:     20,
		BollingerPeriod:      20,
		BollingerK:           2.0,
		Weights: FusionWeights{
			PriceWithMomentum:  0.3,
			VolumeWithMomentum: 0.2,
			TrendWithMomentum:  0.2,
			Momentum:           0.3,
			Price:              0.4,
			Volume:             0.3,
			Trend:              0.3,
		},
		ContradictionDampening: 0.7,
		MaxConfidence:          0.95,
		Analyzers: []domain.SignalKind{
			domain.KindVolume,
			domain.KindTrend,
			domain.KindMomentum,
		},
	}
}

// Normalized devuelve una copia con los campos a cero rellenados con los
// defaults, para que una Config parcial cargada de YAML no rompa la estrategia.
func (c Config) Normalized() Config {
	c.normalize()
	return c
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.PriceChangeThreshold <= 0 {
		c.PriceChangeThreshold = def.PriceChangeThreshold
	}
	if c.VolumeSpikeThreshold <= 0 {
		c.VolumeSpikeThreshold = def.VolumeSpikeThreshold
	}
	if c.MAShortPeriod <= 0 {
		c.MAShortPeriod = def.MAShortPeriod
	}
	if c.MALongPeriod <= 0 {
		c.MALongPeriod = def.MALongPeriod
	}
	if c.TrendStrengthMin <= 0 {
		c.TrendStrengthMin = def.TrendStrengthMin
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = def.RSIPeriod
	}
	if c.RSIOverbought <= 0 {
		c.RSIOverbought = def.RSIOverbought
	}
	if c.RSIOversold <= 0 {
		c.RSIOversold = def.RSIOversold
	}
	if c.VolatilityWindow <= 0 {
		c.VolatilityWindow = def.VolatilityWindow
	}
	if c.BollingerPeriod <= 0 {
		c.BollingerPeriod = def.BollingerPeriod
	}
	if c.BollingerK <= 0 {
		c.BollingerK = def.BollingerK
	}
	if c.Weights == (FusionWeights{}) {
		c.Weights = def.Weights
	}
	if c.ContradictionDampening <= 0 {
		c.ContradictionDampening = def.ContradictionDampening
	}
	if c.MaxConfidence <= 0 {
		c.MaxConfidence = def.MaxConfidence
	}
	if len(c.Analyzers) == 0 {
		c.Analyzers = def.Analyzers
	}
}
