// Package shipment provides the shipment domain model and the abstraction
// over external rate-quoting systems.
package shipment

import (
	"context"
)

// RateAdapter adapts one external rate-quoting system.
type RateAdapter interface {
	// Name returns the adapter identifier (e.g., "shipengine").
	Name() string

	// FetchRates quotes the payload and returns the normalized shipment.
	// A nil shipment with a nil error means the rate service produced nothing.
	FetchRates(ctx context.Context, payload *FetchRatesPayload) (*Shipment, error)
}
