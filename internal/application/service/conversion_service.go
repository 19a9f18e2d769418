// Package service internal/application/service/conversion_service.go
package service

import (
	"context"
	"fmt"
	"math"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/middleware"
)

// Conversion represents the result of converting an amount between two currencies
type Conversion struct {
	Amount   float64 `json:"amount"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Rate     float64 `json:"rate"`
	Result   float64 `json:"result"`
	RateDate string  `json:"rate_date"`
}

// Convert converts amount from one currency to another using the rates in snapshot.
// Inputs may be codes or aliases such as "dollar". The result is not rounded.
// A result that does not fit in a float64 fails with entity.ErrOutOfRange.
func Convert(amount float64, fromInput, toInput string, snapshot *entity.RateSnapshot) (*Conversion, error) {
	from := entity.ResolveCurrency(fromInput)
	to := entity.ResolveCurrency(toInput)

	if snapshot == nil || len(snapshot.Rates) == 0 {
		return nil, fmt.Errorf("%w: no rates available", entity.ErrUnknownCurrency)
	}

	fromRate, ok := snapshot.Rate(from)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownCurrency, from)
	}

	toRate, ok := snapshot.Rate(to)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownCurrency, to)
	}

	if fromRate == 0 {
		return nil, fmt.Errorf("%w: rate for %s is zero", entity.ErrDivisionByZero, from)
	}

	result := amount / fromRate * toRate
	if from == to {
		result = amount
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return nil, fmt.Errorf("%w: %v %s in %s", entity.ErrOutOfRange, amount, from, to)
	}

	return &Conversion{
		Amount:   amount,
		From:     from,
		To:       to,
		Rate:     toRate / fromRate,
		Result:   result,
		RateDate: snapshot.Date,
	}, nil
}

// SnapshotProvider supplies the snapshot conversions are computed against
type SnapshotProvider interface {
	Current() *entity.RateSnapshot
}

// ConversionService handles currency conversion against the held rate snapshot
type ConversionService struct {
	rates  SnapshotProvider
	logger logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(rates SnapshotProvider, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		rates:  rates,
		logger: log.WithField("component", "conversion"),
	}
}

// Convert converts amount using the current snapshot
func (s *ConversionService) Convert(ctx context.Context, amount float64, from, to string) (*Conversion, error) {
	requestID := middleware.GetRequestID(ctx)

	conversion, err := Convert(amount, from, to, s.rates.Current())
	if err != nil {
		s.logger.Warn("Conversion failed", map[string]interface{}{
			"request_id": requestID,
			"amount":     amount,
			"from":       from,
			"to":         to,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id": requestID,
		"amount":     amount,
		"from":       conversion.From,
		"to":         conversion.To,
		"rate":       conversion.Rate,
		"result":     conversion.Result,
		"rate_date":  conversion.RateDate,
	})

	return conversion, nil
}

// AvailableCurrencies returns the sorted codes present in the current snapshot
func (s *ConversionService) AvailableCurrencies() []string {
	return s.rates.Current().Currencies()
}
