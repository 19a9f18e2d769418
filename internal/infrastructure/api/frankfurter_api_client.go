package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
)

const (
	// DefaultLatestRatesURL returns the latest ECB rates with EUR as base
	DefaultLatestRatesURL = "https://api.frankfurter.app/latest?from=" + entity.BaseCurrency

	maxBodyBytes = 1 << 20
)

// FrankfurterAPIClient fetches the latest rates from the Frankfurter API
type FrankfurterAPIClient struct {
	url        string
	httpClient *http.Client
	logger     logger.Logger
}

// NewFrankfurterAPIClient creates a new Frankfurter API client.
// An empty url selects DefaultLatestRatesURL.
func NewFrankfurterAPIClient(url string, httpClient *http.Client, log logger.Logger) *FrankfurterAPIClient {
	if url == "" {
		url = DefaultLatestRatesURL
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FrankfurterAPIClient{
		url:        url,
		httpClient: httpClient,
		logger:     log.WithField("component", "rate_source"),
	}
}

// latestResponse represents the response structure from the latest endpoint.
// Pointer and map fields stay nil when the provider omits them.
type latestResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   *string            `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// FetchLatest retrieves the current rate table and adds the base currency at 1.0.
// Errors wrap entity.ErrNetwork, entity.ErrDecode or entity.ErrData.
func (c *FrankfurterAPIClient) FetchLatest(ctx context.Context) (*entity.RateSnapshot, error) {
	c.logger.Debug("Fetching latest rates", map[string]interface{}{
		"url": c.url,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", entity.ErrNetwork, err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Rate request failed", map[string]interface{}{
			"url":   c.url,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: failed to execute request: %w", entity.ErrNetwork, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", entity.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Rate API returned error status", map[string]interface{}{
			"url":    c.url,
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: API returned error status: %d, body: %s", entity.ErrNetwork, resp.StatusCode, string(body))
	}

	var latest latestResponse
	if err := json.Unmarshal(body, &latest); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", entity.ErrDecode, err)
	}

	if latest.Date == nil || latest.Rates == nil {
		return nil, fmt.Errorf("%w: response is missing date or rates", entity.ErrData)
	}

	snapshot := entity.NewRateSnapshot(*latest.Date, latest.Rates)
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrData, err)
	}

	c.logger.Info("Fetched latest rates", map[string]interface{}{
		"date":       snapshot.Date,
		"currencies": len(snapshot.Rates),
	})

	return snapshot, nil
}
