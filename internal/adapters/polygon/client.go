package polygon

// client.go — HTTP client de Polygon.io con rate limiting y retries.
// Implementa ports.HistoryProvider: el core nunca ve HTTP, solo barras.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBase = "https://api.polygon.io"

	// Free tier: 5 requests/min. Dejamos margen con 4/min.
	aggsInterval = 15 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	maxBarsPerRequest = 50000
)

// Client es el HTTP client de Polygon con rate limiting y retries.
type Client struct {
	http    *http.Client
	base    string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient crea un Client con el base URL dado. Si base está vacío usa el
// URL de producción.
func NewClient(base, apiKey string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		base:    base,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(aggsInterval), 2),
	}
}

// aggsResponse es la respuesta de /v2/aggs.
type aggsResponse struct {
	Ticker       string `json:"ticker"`
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		Timestamp int64   `json:"t"` // epoch millis
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
	} `json:"results"`
	Error string `json:"error"`
}

// FetchBars devuelve las barras agregadas del rango pedido. Sin resultados
// devuelve slice vacío y nil error: el caller salta el símbolo.
func (c *Client) FetchBars(ctx context.Context, symbol string, start, end time.Time, timeframe string) ([]domain.PriceBar, error) {
	multiplier, timespan, err := parseTimeframe(timeframe)
	if err != nil {
		return nil, fmt.Errorf("polygon.FetchBars: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s",
		c.base,
		url.PathEscape(symbol),
		multiplier,
		timespan,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	query := url.Values{
		"adjusted": {"true"},
		"sort":     {"asc"},
		"limit":    {fmt.Sprint(maxBarsPerRequest)},
		"apiKey":   {c.apiKey},
	}

	var resp aggsResponse
	if err := c.get(ctx, endpoint+"?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("polygon.FetchBars: %s: %w", symbol, err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("polygon.FetchBars: %s: API error: %s", symbol, resp.Error)
	}
	if len(resp.Results) == 0 {
		slog.Debug("polygon: no bars for symbol", "symbol", symbol,
			"start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))
		return nil, nil
	}

	bars := make([]domain.PriceBar, 0, len(resp.Results))
	for _, r := range resp.Results {
		bars = append(bars, domain.PriceBar{
			Symbol:    symbol,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
		})
	}
	return bars, nil
}

// parseTimeframe traduce el timeframe compacto ("1d", "1h", "5m") al par
// multiplier/timespan que espera la API de aggregates.
func parseTimeframe(tf string) (int, string, error) {
	switch tf {
	case "", "1d", "day":
		return 1, "day", nil
	case "1h", "hour":
		return 1, "hour", nil
	case "1m", "minute":
		return 1, "minute", nil
	case "5m":
		return 5, "minute", nil
	case "15m":
		return 15, "minute", nil
	case "1w", "week":
		return 1, "week", nil
	default:
		return 0, "", fmt.Errorf("unsupported timeframe %q", tf)
	}
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, fullURL string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by Polygon", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
