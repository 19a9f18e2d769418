package entity

import (
	"fmt"
	"math"
	"sort"
)

// BaseCurrency is the currency every rate in a snapshot is expressed against
const BaseCurrency = "EUR"

// RateSnapshot represents one dated set of exchange rates relative to BaseCurrency
type RateSnapshot struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// NewRateSnapshot builds a snapshot from provider data, adding the base currency entry
func NewRateSnapshot(date string, rates map[string]float64) *RateSnapshot {
	merged := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		merged[code] = rate
	}
	merged[BaseCurrency] = 1.0

	return &RateSnapshot{
		Date:  date,
		Rates: merged,
	}
}

// Validate ensures the snapshot meets all invariants
func (s *RateSnapshot) Validate() error {
	if s.Date == "" {
		return fmt.Errorf("snapshot has no date")
	}

	if len(s.Rates) == 0 {
		return fmt.Errorf("snapshot has no rates")
	}

	if base, ok := s.Rates[BaseCurrency]; !ok || base != 1.0 {
		return fmt.Errorf("snapshot must contain %s with rate 1.0", BaseCurrency)
	}

	for code, rate := range s.Rates {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return fmt.Errorf("invalid rate for %s: %v", code, rate)
		}
	}

	return nil
}

// Rate returns the rate for a code and whether it is present
func (s *RateSnapshot) Rate(code string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	rate, ok := s.Rates[code]
	return rate, ok
}

// Currencies returns the codes present in the snapshot in sorted order
func (s *RateSnapshot) Currencies() []string {
	if s == nil {
		return nil
	}

	codes := make([]string, 0, len(s.Rates))
	for code := range s.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return codes
}
