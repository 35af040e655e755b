package booking

import "fmt"

// PricingStrategy defines the interface for calculating stay prices.
type PricingStrategy interface {
	// Calculate returns the quote for the given parameters.
	Calculate(params PricingParams) (Quote, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	Dates              DateRange
	PricePerNightCents int64
}

// Quote is the priced breakdown of a stay.
type Quote struct {
	Nights     int
	TotalCents int64
}

// Amount converts cents to currency units for response bodies.
func Amount(cents int64) float64 {
	return float64(cents) / 100
}

// NightlyPricingStrategy charges the property's nightly rate for every night of the stay.
type NightlyPricingStrategy struct{}

// NewNightlyPricingStrategy creates a new NightlyPricingStrategy.
func NewNightlyPricingStrategy() *NightlyPricingStrategy {
	return &NightlyPricingStrategy{}
}

// Calculate computes nights = max(1, ceil(days)) and total = nights * nightly rate.
func (s *NightlyPricingStrategy) Calculate(params PricingParams) (Quote, error) {
	if params.PricePerNightCents < 0 {
		return Quote{}, fmt.Errorf("price per night cannot be negative")
	}
	nights := params.Dates.Nights()
	return Quote{
		Nights:     nights,
		TotalCents: int64(nights) * params.PricePerNightCents,
	}, nil
}
