package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/sigfuse/internal/application/backtest"
	"github.com/alejandrodnm/sigfuse/internal/domain/strategy"
)

// Config es la configuración completa del backtester.
type Config struct {
	Backtest BacktestConfig  `yaml:"backtest"`
	Strategy strategy.Config `yaml:"strategy"`
	API      APIConfig       `yaml:"api"`
	Storage  StorageConfig   `yaml:"storage"`
	Log      LogConfig       `yaml:"log"`
}

// BacktestConfig controla el simulador de replay.
type BacktestConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	Commission     float64 `yaml:"commission"` // fracción por operación
	Slippage       float64 `yaml:"slippage"`   // fracción por operación
	RiskPerTrade   float64 `yaml:"risk_per_trade"`
	LookbackBars   int     `yaml:"lookback_bars"`
	LoadWorkers    int     `yaml:"load_workers"` // goroutines para el fetch (0 = NumCPU)
}

// APIConfig contiene el base URL y la API key de Polygon.
type APIConfig struct {
	PolygonBase string `yaml:"polygon_base"`
	PolygonKey  string `yaml:"polygon_key"` // normalmente vía POLYGON_API_KEY
}

// StorageConfig controla dónde se persisten los runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve una configuración usable sin archivo YAML.
func Default() *Config {
	cfg := &Config{Strategy: strategy.DefaultConfig()}
	applyEnvOverrides(cfg)
	setDefaults(cfg)
	return cfg
}

// BacktestEngine traduce la sección backtest a la configuración del simulador.
func (c *Config) BacktestEngine() backtest.Config {
	return backtest.Config{
		InitialCapital: c.Backtest.InitialCapital,
		Commission:     c.Backtest.Commission,
		Slippage:       c.Backtest.Slippage,
		RiskPerTrade:   c.Backtest.RiskPerTrade,
		LookbackBars:   c.Backtest.LookbackBars,
		LoadWorkers:    c.Backtest.LoadWorkers,
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.API.PolygonKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	def := backtest.DefaultConfig()
	if cfg.Backtest.InitialCapital <= 0 {
		cfg.Backtest.InitialCapital = def.InitialCapital
	}
	if cfg.Backtest.Commission < 0 {
		cfg.Backtest.Commission = def.Commission
	}
	if cfg.Backtest.Slippage < 0 {
		cfg.Backtest.Slippage = def.Slippage
	}
	if cfg.Backtest.RiskPerTrade <= 0 {
		cfg.Backtest.RiskPerTrade = def.RiskPerTrade
	}
	if cfg.Backtest.LookbackBars <= 0 {
		cfg.Backtest.LookbackBars = def.LookbackBars
	}
	cfg.Strategy = cfg.Strategy.Normalized()
	if cfg.API.PolygonBase == "" {
		cfg.API.PolygonBase = "https://api.polygon.io"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "sigfuse.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
