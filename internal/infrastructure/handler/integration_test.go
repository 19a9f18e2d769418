// internal/infrastructure/handler/integration_test.go
package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/damon-houk/currency-rate-cache/internal/application/service"
	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/db"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/handler"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/middleware"
	"github.com/damon-houk/currency-rate-cache/internal/mocks"
	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	server *httptest.Server
	store  *db.BadgerRateStore
	rates  *service.RateCache
}

// setupTestServer creates a test server backed by a badger store and a mocked rate source
func setupTestServer(t *testing.T, source *mocks.MockRateSource) *testServer {
	t.Helper()

	badgerOpts := badger.DefaultOptions(t.TempDir())
	badgerOpts.Logger = nil
	badgerOpts.SyncWrites = false

	badgerDB, err := badger.Open(badgerOpts)
	require.NoError(t, err, "failed to open database")

	log := logger.NewJSONLogger(io.Discard, logger.DebugLevel)

	store := db.NewBadgerRateStore(badgerDB, log)
	rates := service.NewRateCache(store, source, log)
	conversions := service.NewConversionService(rates, log)

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	handler.NewRatesHandler(rates, conversions, log).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		_ = badgerDB.Close()
	})

	return &testServer{server: server, store: store, rates: rates}
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestRatesAndConversion(t *testing.T) {
	source := new(mocks.MockRateSource)
	fetched := entity.NewRateSnapshot("2024-01-01", map[string]float64{"USD": 1.1, "GBP": 0.86})
	source.On("FetchLatest", mock.Anything).Return(fetched, nil).Once()

	ts := setupTestServer(t, source)

	// Nothing held yet: the first request resolves and persists a snapshot
	var rates handler.RatesResponse
	resp := getJSON(t, ts.server.URL+"/rates", &rates)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "2024-01-01", rates.Date)
	assert.Equal(t, "EUR", rates.Base)
	assert.Equal(t, map[string]float64{"EUR": 1.0, "USD": 1.1, "GBP": 0.86}, rates.Rates)

	persisted, err := ts.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fetched.Rates, persisted.Rates)

	var conversion handler.ConversionResponse
	resp = getJSON(t, ts.server.URL+"/convert?amount=100&from=euro&to=dollar", &conversion)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EUR", conversion.From)
	assert.Equal(t, "USD", conversion.To)
	assert.InDelta(t, 110.0, conversion.Result, 1e-9)
	assert.Equal(t, "110.00", conversion.Formatted)
	assert.Equal(t, "2024-01-01", conversion.RateDate)

	// Comma decimal separator
	resp = getJSON(t, ts.server.URL+"/convert?amount=12,5&from=USD&to=GBP", &conversion)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 12.5/1.1*0.86, conversion.Result, 1e-9)

	var currencies handler.CurrenciesResponse
	resp = getJSON(t, ts.server.URL+"/currencies", &currencies)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"EUR", "GBP", "USD"}, currencies.Currencies)

	var status handler.StatusResponse
	resp = getJSON(t, ts.server.URL+"/status", &status)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "source", status.Origin)
	assert.Equal(t, "2024-01-01", status.Date)

	// Held snapshot is reused without touching the source again
	source.AssertNumberOfCalls(t, "FetchLatest", 1)
}

func TestRefresh(t *testing.T) {
	source := new(mocks.MockRateSource)
	ts := setupTestServer(t, source)

	t.Run("Success", func(t *testing.T) {
		fetched := entity.NewRateSnapshot("2024-01-02", map[string]float64{"USD": 1.2})
		source.On("FetchLatest", mock.Anything).Return(fetched, nil).Once()

		resp, err := http.Post(ts.server.URL+"/rates/refresh", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var rates handler.RatesResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rates))
		assert.Equal(t, "2024-01-02", rates.Date)
		assert.Equal(t, "2024-01-02", ts.rates.Current().Date)
	})

	t.Run("Source failure keeps held rates", func(t *testing.T) {
		source.On("FetchLatest", mock.Anything).
			Return(nil, fmt.Errorf("%w: status 500", entity.ErrNetwork)).Once()

		resp, err := http.Post(ts.server.URL+"/rates/refresh", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var errorResp handler.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errorResp))
		assert.Equal(t, "Rate provider unavailable", errorResp.Error)
		assert.NotEmpty(t, errorResp.RequestID)
		assert.Equal(t, "2024-01-02", ts.rates.Current().Date)
	})

	t.Run("Wrong method", func(t *testing.T) {
		resp, err := http.Get(ts.server.URL + "/rates/refresh")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestErrorHandling(t *testing.T) {
	t.Run("No rates available", func(t *testing.T) {
		source := new(mocks.MockRateSource)
		source.On("FetchLatest", mock.Anything).
			Return(nil, fmt.Errorf("%w: connection refused", entity.ErrNetwork))

		ts := setupTestServer(t, source)

		var errorResp handler.ErrorResponse
		resp := getJSON(t, ts.server.URL+"/rates", &errorResp)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "No rates available", errorResp.Error)

		resp = getJSON(t, ts.server.URL+"/convert?amount=1&from=EUR&to=USD", &errorResp)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		resp = getJSON(t, ts.server.URL+"/currencies", &errorResp)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var status handler.StatusResponse
		resp = getJSON(t, ts.server.URL+"/status", &status)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "none", status.Origin)
		assert.Empty(t, status.Date)
	})

	source := new(mocks.MockRateSource)
	source.On("FetchLatest", mock.Anything).
		Return(entity.NewRateSnapshot("2024-01-01", map[string]float64{"USD": 1.1}), nil).Once()
	ts := setupTestServer(t, source)

	tests := []struct {
		name      string
		query     string
		wantError string
	}{
		{"Missing from", "amount=1&to=USD", "Missing currency parameter"},
		{"Missing to", "amount=1&from=EUR", "Missing currency parameter"},
		{"Missing amount", "from=EUR&to=USD", "Invalid amount"},
		{"Non-numeric amount", "amount=ten&from=EUR&to=USD", "Invalid amount"},
		{"Unknown source currency", "amount=1&from=XYZ&to=USD", "Unknown currency"},
		{"Currency not in snapshot", "amount=1&from=EUR&to=JPY", "Unknown currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errorResp handler.ErrorResponse
			resp := getJSON(t, ts.server.URL+"/convert?"+tt.query, &errorResp)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantError, errorResp.Error)
			assert.Equal(t, http.StatusBadRequest, errorResp.Status)
		})
	}
}

func TestConvertOutOfRange(t *testing.T) {
	source := new(mocks.MockRateSource)
	source.On("FetchLatest", mock.Anything).
		Return(entity.NewRateSnapshot("2024-01-01", map[string]float64{"USD": 1e-5}), nil).Once()
	ts := setupTestServer(t, source)

	tests := []struct {
		name      string
		query     string
		wantError string
	}{
		{"Amount beyond float range", "amount=1e400&from=EUR&to=USD", "Invalid amount"},
		{"Result beyond float range", "amount=1e308&from=USD&to=EUR", "Amount out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errorResp handler.ErrorResponse
			resp := getJSON(t, ts.server.URL+"/convert?"+tt.query, &errorResp)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantError, errorResp.Error)
		})
	}
}
