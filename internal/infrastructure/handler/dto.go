package handler

// RatesResponse represents the response for the rates endpoints
type RatesResponse struct {
	Date  string             `json:"date"`
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// ConversionResponse represents the response for the conversion endpoint
type ConversionResponse struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Rate      float64 `json:"rate"`
	Result    float64 `json:"result"`
	Formatted string  `json:"formatted"`
	RateDate  string  `json:"rate_date"`
}

// CurrenciesResponse represents the response for the currencies endpoint
type CurrenciesResponse struct {
	Date       string   `json:"date"`
	Currencies []string `json:"currencies"`
}

// StatusResponse describes the held snapshot
type StatusResponse struct {
	Date      string `json:"date,omitempty"`
	Origin    string `json:"origin"`
	HeldSince string `json:"held_since,omitempty"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
