// Package shipengine provides integration with the ShipEngine rates API.
package shipengine

import (
	"context"
	"time"

	"github.com/tournevent/ratebridge/pkg/shipment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const adapterName = "shipengine"

// Config holds ShipEngine configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	CarrierIDs []string // Carrier allow-list sent with every rate request
	ShipFrom   Address  // Origin address; its residential indicator is forced to "no"
	UseMock    bool     // When true, uses mock API client
}

// Client is the ShipEngine rate adapter.
// It implements the shipment.RateAdapter interface and delegates
// API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new ShipEngine adapter.
// If cfg.UseMock is true, it uses a mock API client for testing.
// Otherwise, it uses the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new ShipEngine adapter with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = otel.Tracer(adapterName)
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the adapter name.
func (c *Client) Name() string {
	return adapterName
}

// FetchRates quotes the payload with ShipEngine and normalizes the result.
func (c *Client) FetchRates(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error) {
	ctx, span := c.tracer.Start(ctx, "shipengine.FetchRates")
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting ShipEngine rates",
		zap.String("destination_city", payload.ShippingAddress.City),
		zap.String("destination_country", payload.ShippingAddress.Country),
		zap.Strings("carrier_ids", c.config.CarrierIDs),
	)

	apiResp, err := c.apiClient.GetRatesWithShipmentDetails(ctx, c.ratesRequest(payload))
	if err != nil {
		c.logger.Ctx(ctx).Error("ShipEngine API error", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, shipment.WrapRateFetchError(err)
	}
	if apiResp == nil {
		c.logger.Ctx(ctx).Warn("ShipEngine returned no rate response")
		return nil, nil
	}

	if msg := firstErrorMessage(apiResp); msg != "" {
		c.logger.Ctx(ctx).Warn("ShipEngine rejected rate request", zap.String("message", msg))
		span.SetStatus(codes.Error, msg)
		return nil, shipment.NewRateFetchError(msg)
	}
	if apiResp.ShipmentID == "" {
		span.SetStatus(codes.Error, "missing shipment id")
		return nil, shipment.NewRateFetchError("rate response missing shipment id")
	}

	result := ratesResponseToShipment(apiResp, payload)
	span.SetAttributes(
		attribute.String("shipment.id", result.ID),
		attribute.Int("shipment.rates", len(result.Rates)),
	)
	return result, nil
}

// ============================================================================
// Conversion helpers: domain models -> API models
// ============================================================================

func (c *Client) ratesRequest(payload *shipment.FetchRatesPayload) *RatesRequest {
	shipFrom := c.config.ShipFrom
	shipFrom.AddressResidentialIndicator = residentialNo

	return &RatesRequest{
		RateOptions: RateOptions{
			CarrierIDs: c.config.CarrierIDs,
		},
		Shipment: ShipmentDetails{
			ValidateAddress: validateAddressNone,
			ShipTo:          shippingAddressToAPI(payload.ShippingAddress),
			ShipFrom:        shipFrom,
			Packages: []Package{
				{Weight: Weight{Value: payload.Weight.Value, Unit: string(payload.Weight.Unit)}},
			},
		},
	}
}

func shippingAddressToAPI(addr shipment.ShippingAddress) Address {
	residential := residentialYes
	if addr.CompanyName != "" {
		residential = residentialNo
	}

	return Address{
		Name:                        addr.Name,
		Phone:                       addr.PhoneNumber,
		CompanyName:                 addr.CompanyName,
		AddressLine1:                addr.AddressLine1,
		AddressLine2:                addr.AddressLine2,
		CityLocality:                addr.City,
		StateProvince:               addr.State,
		PostalCode:                  addr.Postcode,
		CountryCode:                 addr.Country,
		AddressResidentialIndicator: residential,
	}
}

// ============================================================================
// Conversion helpers: API models -> domain models
// ============================================================================

func firstErrorMessage(resp *RatesResponse) string {
	if len(resp.RateResponse.Errors) == 0 {
		return ""
	}
	return resp.RateResponse.Errors[0].Message
}

// Weight and address are echoed from the payload rather than read back
// from the response.
func ratesResponseToShipment(resp *RatesResponse, payload *shipment.FetchRatesPayload) *shipment.Shipment {
	rates := make([]shipment.Rate, len(resp.RateResponse.Rates))
	for i, r := range resp.RateResponse.Rates {
		rates[i] = rateToShipment(r)
	}

	return &shipment.Shipment{
		ID:              resp.ShipmentID,
		Rates:           rates,
		ShippingAddress: payload.ShippingAddress,
		Weight:          payload.Weight,
	}
}

func rateToShipment(r Rate) shipment.Rate {
	var currency string
	if r.ShippingAmount != nil {
		currency = r.ShippingAmount.Currency
	}

	return shipment.Rate{
		ID:                    r.RateID,
		Carrier:               r.ServiceType,
		CarrierCode:           r.CarrierCode,
		CarrierID:             r.CarrierID,
		ConfirmationAmount:    amountOf(r.ConfirmationAmount),
		Currency:              currency,
		DeliveryDays:          r.DeliveryDays,
		EstimatedDeliveryDate: r.EstimatedDeliveryDate,
		InsuranceAmount:       amountOf(r.InsuranceAmount),
		ServiceCode:           r.ServiceCode,
		ShipDate:              r.ShipDate,
		ShipmentAmount:        amountOf(r.ShippingAmount),
		Trackable:             r.Trackable,
	}
}

func amountOf(v *MonetaryValue) *float64 {
	if v == nil {
		return nil
	}
	amount := v.Amount
	return &amount
}

var _ shipment.RateAdapter = (*Client)(nil)
