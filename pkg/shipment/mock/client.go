// Package mock provides a mock rate adapter for local runs and testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/ratebridge/pkg/shipment"
)

// Client is a mock rate adapter.
type Client struct {
	name string
}

// New creates a new mock adapter.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the adapter name.
func (c *Client) Name() string {
	return c.name
}

// FetchRates returns a shipment with two canned rates.
func (c *Client) FetchRates(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error) {
	now := time.Now()
	standard, express := 15.82, 29.95
	zero := 0.0

	return &shipment.Shipment{
		ID: fmt.Sprintf("%s-%s", c.name, uuid.NewString()),
		Rates: []shipment.Rate{
			{
				ID:                    fmt.Sprintf("%s-rate-standard-%d", c.name, now.UnixNano()),
				Carrier:               fmt.Sprintf("%s Standard", c.name),
				CarrierCode:           c.name,
				CarrierID:             c.name + "-standard",
				ConfirmationAmount:    &zero,
				Currency:              "USD",
				DeliveryDays:          5,
				EstimatedDeliveryDate: now.AddDate(0, 0, 5).Format(time.RFC3339),
				InsuranceAmount:       &zero,
				ServiceCode:           "STANDARD",
				ShipDate:              now.Format(time.RFC3339),
				ShipmentAmount:        &standard,
				Trackable:             true,
			},
			{
				ID:                    fmt.Sprintf("%s-rate-express-%d", c.name, now.UnixNano()),
				Carrier:               fmt.Sprintf("%s Express", c.name),
				CarrierCode:           c.name,
				CarrierID:             c.name + "-express",
				Currency:              "USD",
				DeliveryDays:          2,
				EstimatedDeliveryDate: now.AddDate(0, 0, 2).Format(time.RFC3339),
				ServiceCode:           "EXPRESS",
				ShipDate:              now.Format(time.RFC3339),
				ShipmentAmount:        &express,
				Trackable:             true,
			},
		},
		ShippingAddress: payload.ShippingAddress,
		Weight:          payload.Weight,
	}, nil
}

var _ shipment.RateAdapter = (*Client)(nil)
