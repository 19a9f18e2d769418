// Package handler internal/infrastructure/handler/rates_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/damon-houk/currency-rate-cache/internal/application/service"
	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/cache"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-cache/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RatesHandler handles HTTP requests for exchange rates and conversions
type RatesHandler struct {
	rates       *service.RateCache
	conversions *service.ConversionService
	logger      logger.Logger
}

// NewRatesHandler creates a new rates handler
func NewRatesHandler(rates *service.RateCache, conversions *service.ConversionService, log logger.Logger) *RatesHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RatesHandler{
		rates:       rates,
		conversions: conversions,
		logger:      log.WithField("component", "rates_handler"),
	}
}

// GetRates returns the held snapshot
func (h *RatesHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	snapshot := h.snapshot(r)
	if snapshot == nil {
		h.logger.Warn("No rates available", map[string]interface{}{
			"request_id": requestID,
		})
		sendErrorResponse(w, h.logger, "No rates available",
			"Exchange rates could not be loaded from storage or the rate provider", http.StatusServiceUnavailable, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, toRatesResponse(snapshot))
}

// Convert converts an amount between two currencies using the held snapshot
func (h *RatesHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	from, to := query.Get("from"), query.Get("to")
	if from == "" || to == "" {
		sendErrorResponse(w, h.logger, "Missing currency parameter",
			"Both 'from' and 'to' query parameters are required", http.StatusBadRequest, requestID)
		return
	}

	amount, err := service.ParseAmount(query.Get("amount"))
	if err != nil {
		h.logger.Warn("Invalid amount", map[string]interface{}{
			"request_id": requestID,
			"amount":     query.Get("amount"),
		})
		sendErrorResponse(w, h.logger, "Invalid amount",
			"The 'amount' query parameter must be a number, e.g. 12.50 or 12,50", http.StatusBadRequest, requestID)
		return
	}

	if h.snapshot(r) == nil {
		sendErrorResponse(w, h.logger, "No rates available",
			"Exchange rates could not be loaded from storage or the rate provider", http.StatusServiceUnavailable, requestID)
		return
	}

	conversion, err := h.conversions.Convert(r.Context(), amount, from, to)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUnknownCurrency):
			sendErrorResponse(w, h.logger, "Unknown currency", err.Error(), http.StatusBadRequest, requestID)
		case errors.Is(err, entity.ErrOutOfRange):
			sendErrorResponse(w, h.logger, "Amount out of range",
				"The converted amount is too large to represent", http.StatusBadRequest, requestID)
		default:
			h.logger.Error("Unexpected error in conversion handler", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Internal server error",
				"The held exchange rates are unusable for this conversion", http.StatusInternalServerError, requestID)
		}
		return
	}

	sendJSON(w, h.logger, http.StatusOK, ConversionResponse{
		Amount:    conversion.Amount,
		From:      conversion.From,
		To:        conversion.To,
		Rate:      conversion.Rate,
		Result:    conversion.Result,
		Formatted: service.FormatAmount(conversion.Result),
		RateDate:  conversion.RateDate,
	})
}

// Refresh fetches the latest rates regardless of freshness
func (h *RatesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	snapshot, err := h.rates.ForceRefresh(r.Context())
	if err != nil {
		h.logger.Error("Refresh failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Rate provider unavailable",
			"The latest exchange rates could not be fetched. Previously held rates are kept.", http.StatusBadGateway, requestID)
		return
	}

	h.logger.Info("Rates refreshed", map[string]interface{}{
		"request_id": requestID,
		"date":       snapshot.Date,
	})

	sendJSON(w, h.logger, http.StatusOK, toRatesResponse(snapshot))
}

// Currencies lists the codes available for conversion
func (h *RatesHandler) Currencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	snapshot := h.snapshot(r)
	if snapshot == nil {
		sendErrorResponse(w, h.logger, "No rates available",
			"Exchange rates could not be loaded from storage or the rate provider", http.StatusServiceUnavailable, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, CurrenciesResponse{
		Date:       snapshot.Date,
		Currencies: h.conversions.AvailableCurrencies(),
	})
}

// Status reports which snapshot is held and where it came from
func (h *RatesHandler) Status(w http.ResponseWriter, r *http.Request) {
	entry := h.rates.Status()

	resp := StatusResponse{Origin: "none"}
	if entry.Origin != cache.OriginNone {
		resp.Origin = string(entry.Origin)
	}
	if entry.Snapshot != nil {
		resp.Date = entry.Snapshot.Date
		resp.HeldSince = entry.Timestamp.UTC().Format(time.RFC3339)
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// RegisterRoutes registers the rates handler routes
func (h *RatesHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rates", h.GetRates).Methods(http.MethodGet)
	router.HandleFunc("/rates/refresh", h.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/convert", h.Convert).Methods(http.MethodGet)
	router.HandleFunc("/currencies", h.Currencies).Methods(http.MethodGet)
	router.HandleFunc("/status", h.Status).Methods(http.MethodGet)

	h.logger.Info("Rates routes registered", map[string]interface{}{
		"routes": []string{
			"GET /rates",
			"POST /rates/refresh",
			"GET /convert",
			"GET /currencies",
			"GET /status",
		},
	})
}

// snapshot returns the held snapshot, resolving one if nothing is held yet
func (h *RatesHandler) snapshot(r *http.Request) *entity.RateSnapshot {
	if current := h.rates.Current(); current != nil {
		return current
	}
	return h.rates.GetUsableRates(r.Context())
}

func toRatesResponse(snapshot *entity.RateSnapshot) RatesResponse {
	return RatesResponse{
		Date:  snapshot.Date,
		Base:  entity.BaseCurrency,
		Rates: snapshot.Rates,
	}
}

// sendJSON encodes body before writing the status, so an unencodable body becomes a 500
func sendJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"status_code": statusCode,
			"error":       err.Error(),
		})
		http.Error(w, `{"error":"Internal server error","status":500}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Debug("Failed to write response", map[string]interface{}{
			"status_code": statusCode,
			"error":       err.Error(),
		})
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSON(w, log, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}
