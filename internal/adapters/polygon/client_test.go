package polygon_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/adapters/polygon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aggsOK = `{
	"ticker": "AAPL",
	"status": "OK",
	"resultsCount": 2,
	"results": [
		{"t": 1704153600000, "o": 186.0, "h": 187.5, "l": 184.3, "c": 185.6, "v": 82488700},
		{"t": 1704240000000, "o": 185.0, "h": 186.4, "l": 183.9, "c": 184.2, "v": 58414500}
	]
}`

func TestFetchBars_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/aggs/ticker/AAPL/range/1/day/2024-01-01/2024-01-03", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("adjusted"))
		assert.Equal(t, "asc", r.URL.Query().Get("sort"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(aggsOK))
	}))
	defer srv.Close()

	client := polygon.NewClient(srv.URL, "test-key")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	bars, err := client.FetchBars(context.Background(), "AAPL", start, end, "1d")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	b := bars[0]
	assert.Equal(t, "AAPL", b.Symbol)
	assert.InDelta(t, 185.6, b.Close, 0.001)
	assert.InDelta(t, 82488700.0, b.Volume, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), b.Timestamp)
}

func TestFetchBars_EmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ticker": "ZZZZ", "status": "OK", "resultsCount": 0, "results": []}`))
	}))
	defer srv.Close()

	client := polygon.NewClient(srv.URL, "test-key")
	bars, err := client.FetchBars(context.Background(), "ZZZZ",
		time.Now().AddDate(0, -1, 0), time.Now(), "1d")

	// Sin resultados no es un error: el caller salta el símbolo
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchBars_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ERROR", "error": "Unknown API Key"}`))
	}))
	defer srv.Close()

	client := polygon.NewClient(srv.URL, "bad-key")
	_, err := client.FetchBars(context.Background(), "AAPL",
		time.Now().AddDate(0, -1, 0), time.Now(), "1d")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown API Key")
}

func TestFetchBars_ClientErrorNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := polygon.NewClient(srv.URL, "test-key")
	_, err := client.FetchBars(context.Background(), "AAPL",
		time.Now().AddDate(0, -1, 0), time.Now(), "1d")

	require.Error(t, err)
	assert.Equal(t, 1, calls) // los 4xx no se reintentan
}

func TestFetchBars_UnsupportedTimeframe(t *testing.T) {
	client := polygon.NewClient("", "test-key")
	_, err := client.FetchBars(context.Background(), "AAPL",
		time.Now().AddDate(0, -1, 0), time.Now(), "3y")
	assert.Error(t, err)
}
