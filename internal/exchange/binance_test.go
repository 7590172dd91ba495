package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/skalibog/bfsd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBinance struct {
	premium      any
	history      any
	premiumCode  int
	historyCode  int
	historyQuery atomic.Value
}

func (f *fakeBinance) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/premiumIndex", func(w http.ResponseWriter, r *http.Request) {
		if f.premiumCode != 0 {
			w.WriteHeader(f.premiumCode)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
			return
		}
		_ = json.NewEncoder(w).Encode(f.premium)
	})
	mux.HandleFunc("/futures/data/openInterestHist", func(w http.ResponseWriter, r *http.Request) {
		f.historyQuery.Store(r.URL.Query())
		if f.historyCode != 0 {
			w.WriteHeader(f.historyCode)
			_, _ = w.Write([]byte(`{"code":-1003,"msg":"Too many requests."}`))
			return
		}
		_ = json.NewEncoder(w).Encode(f.history)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, f *fakeBinance) *BinanceClient {
	srv := f.server(t)
	client, err := NewBinanceClient(config.BinanceConfig{BaseURL: srv.URL, TimeoutSeconds: 5})
	require.NoError(t, err)
	return client
}

func validFake() *fakeBinance {
	return &fakeBinance{
		premium: map[string]any{
			"symbol":          "BTCUSDT",
			"markPrice":       "65000.00000000",
			"indexPrice":      "64990.10000000",
			"lastFundingRate": "0.00080000",
			"interestRate":    "0.00010000",
			"nextFundingTime": 1714550400000,
			"time":            1714546800000,
		},
		history: []map[string]any{{
			"symbol":               "BTCUSDT",
			"sumOpenInterest":      "18461.123",
			"sumOpenInterestValue": "1200000000.00",
			"timestamp":            1714546500000,
		}},
	}
}

func TestFetchCombinesBothEndpoints(t *testing.T) {
	f := validFake()
	client := newTestClient(t, f)

	snap, err := client.Fetch(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", snap.Symbol)
	assert.Equal(t, 65000.0, snap.MarkPrice)
	assert.Equal(t, 0.0008, snap.FundingRate)
	assert.Equal(t, 0.08, snap.FundingRatePercent)
	assert.Equal(t, 1.2e9, snap.OpenInterest)
	assert.False(t, snap.FetchedAt.IsZero())

	query, ok := f.historyQuery.Load().(url.Values)
	require.True(t, ok)
	assert.Equal(t, "5m", query.Get("period"))
}

func TestGetOpenInterestRequestsSingleFiveMinuteBucket(t *testing.T) {
	f := validFake()
	client := newTestClient(t, f)

	oi, err := client.GetOpenInterest(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1.2e9, oi.Value)
	assert.Equal(t, OpenInterestPeriod, oi.Period)
	assert.Equal(t, int64(1714546500000), oi.Timestamp.UnixMilli())

	query, ok := f.historyQuery.Load().(url.Values)
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", query.Get("symbol"))
	assert.Equal(t, "5m", query.Get("period"))
	assert.Equal(t, "1", query.Get("limit"))
}

func TestFetchFailsOnEmptyOpenInterestHistory(t *testing.T) {
	f := validFake()
	f.history = []map[string]any{}
	client := newTestClient(t, f)

	snap, err := client.Fetch(context.Background(), "BTCUSDT")
	assert.Nil(t, snap)
	assert.ErrorContains(t, err, "открытом интересе")
}

func TestFetchFailsOnMissingFundingField(t *testing.T) {
	f := validFake()
	f.premium = map[string]any{
		"symbol":    "BTCUSDT",
		"markPrice": "65000.0",
	}
	client := newTestClient(t, f)

	snap, err := client.Fetch(context.Background(), "BTCUSDT")
	assert.Nil(t, snap)
	assert.ErrorContains(t, err, "ставки финансирования")
}

func TestFetchFailsOnMalformedNumber(t *testing.T) {
	f := validFake()
	f.history = []map[string]any{{
		"symbol":               "BTCUSDT",
		"sumOpenInterestValue": "n/a",
		"timestamp":            1714546500000,
	}}
	client := newTestClient(t, f)

	_, err := client.Fetch(context.Background(), "BTCUSDT")
	assert.Error(t, err)
}

func TestFetchFailsWhenOneEndpointErrors(t *testing.T) {
	f := validFake()
	f.historyCode = http.StatusTooManyRequests
	client := newTestClient(t, f)

	snap, err := client.Fetch(context.Background(), "BTCUSDT")
	assert.Nil(t, snap)
	assert.Error(t, err)

	f = validFake()
	f.premiumCode = http.StatusBadRequest
	client = newTestClient(t, f)

	snap, err = client.Fetch(context.Background(), "BTCUSDT")
	assert.Nil(t, snap)
	assert.Error(t, err)
}

func TestNewBinanceClientBaseURL(t *testing.T) {
	client, err := NewBinanceClient(config.BinanceConfig{Testnet: true})
	require.NoError(t, err)
	assert.Equal(t, testnetBaseURL, client.futures.BaseURL)

	client, err = NewBinanceClient(config.BinanceConfig{Testnet: true, BaseURL: "http://relay.local"})
	require.NoError(t, err)
	assert.Equal(t, "http://relay.local", client.futures.BaseURL)
}
