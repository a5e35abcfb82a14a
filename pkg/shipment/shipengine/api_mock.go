package shipengine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetRates func(ctx context.Context, req *RatesRequest) (*RatesResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// GetRatesWithShipmentDetails returns mock shipping rates.
func (m *MockAPIClient) GetRatesWithShipmentDetails(ctx context.Context, req *RatesRequest) (*RatesResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, &APIError{Errors: []Error{{ErrorSource: "shipengine", ErrorType: "system", Message: "Simulated API error"}}}
	}

	if m.OnGetRates != nil {
		return m.OnGetRates(ctx, req)
	}

	shipDate := time.Now().Format(time.RFC3339)
	var weight *Weight
	if len(req.Shipment.Packages) > 0 {
		w := req.Shipment.Packages[0].Weight
		weight = &w
	}

	return &RatesResponse{
		ShipmentID:  "se-" + uuid.New().String()[:8],
		TotalWeight: weight,
		RateResponse: RateResponse{
			RateRequestID: "se-req-" + uuid.New().String()[:8],
			Status:        "completed",
			Rates: []Rate{
				{
					RateID:                "se-rate-" + uuid.New().String()[:8],
					RateType:              "shipment",
					CarrierID:             "se-123890",
					ShippingAmount:        &MonetaryValue{Currency: "usd", Amount: 9.37},
					InsuranceAmount:       &MonetaryValue{Currency: "usd", Amount: 0},
					ConfirmationAmount:    &MonetaryValue{Currency: "usd", Amount: 0},
					OtherAmount:           &MonetaryValue{Currency: "usd", Amount: 0},
					PackageType:           "package",
					DeliveryDays:          3,
					EstimatedDeliveryDate: time.Now().AddDate(0, 0, 3).Format(time.RFC3339),
					ShipDate:              shipDate,
					ServiceType:           "USPS Priority Mail",
					ServiceCode:           "usps_priority_mail",
					Trackable:             true,
					CarrierCode:           "stamps_com",
					ValidationStatus:      "valid",
				},
				{
					RateID:                "se-rate-" + uuid.New().String()[:8],
					RateType:              "shipment",
					CarrierID:             "se-123891",
					ShippingAmount:        &MonetaryValue{Currency: "usd", Amount: 24.12},
					InsuranceAmount:       &MonetaryValue{Currency: "usd", Amount: 0},
					ConfirmationAmount:    &MonetaryValue{Currency: "usd", Amount: 2.5},
					PackageType:           "package",
					DeliveryDays:          1,
					GuaranteedService:     true,
					EstimatedDeliveryDate: time.Now().AddDate(0, 0, 1).Format(time.RFC3339),
					ShipDate:              shipDate,
					ServiceType:           "UPS Next Day Air",
					ServiceCode:           "ups_next_day_air",
					Trackable:             true,
					CarrierCode:           "ups",
					ValidationStatus:      "valid",
				},
			},
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
