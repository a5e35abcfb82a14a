package shipengine

import (
	"context"
)

// APIClient defines the interface for ShipEngine API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// GetRatesWithShipmentDetails quotes a shipment described inline.
	GetRatesWithShipmentDetails(ctx context.Context, req *RatesRequest) (*RatesResponse, error)
}

// ============================================================================
// API Request/Response Types (match ShipEngine REST API v1 structure)
// ============================================================================

const (
	validateAddressNone = "no_validation"
	residentialYes      = "yes"
	residentialNo       = "no"
)

// RatesRequest represents a ShipEngine rate request.
// POST /v1/rates endpoint
type RatesRequest struct {
	RateOptions RateOptions     `json:"rate_options"`
	Shipment    ShipmentDetails `json:"shipment"`
}

// RateOptions restricts which carriers are quoted.
type RateOptions struct {
	CarrierIDs []string `json:"carrier_ids"`
}

// ShipmentDetails describes the shipment being quoted.
type ShipmentDetails struct {
	ValidateAddress string    `json:"validate_address"` // "no_validation", "validate_only", "validate_and_clean"
	ShipTo          Address   `json:"ship_to"`
	ShipFrom        Address   `json:"ship_from"`
	Packages        []Package `json:"packages"`
}

// Address represents a ship-to or ship-from address.
type Address struct {
	Name                        string `json:"name"`
	Phone                       string `json:"phone"`
	CompanyName                 string `json:"company_name"`
	AddressLine1                string `json:"address_line1"`
	AddressLine2                string `json:"address_line2,omitempty"`
	CityLocality                string `json:"city_locality"`
	StateProvince               string `json:"state_province"`
	PostalCode                  string `json:"postal_code"`
	CountryCode                 string `json:"country_code"` // ISO 3166-1 alpha-2 code
	AddressResidentialIndicator string `json:"address_residential_indicator"` // "yes", "no", "unknown"
}

// Package represents a single package.
type Package struct {
	Weight Weight `json:"weight"`
}

// Weight is a package weight.
type Weight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"` // "pound", "ounce", "gram", "kilogram"
}

// MonetaryValue is an amount in a currency.
type MonetaryValue struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// RatesResponse represents the ShipEngine rate response.
type RatesResponse struct {
	ShipmentID   string       `json:"shipment_id"`
	CarrierID    string       `json:"carrier_id,omitempty"`
	ServiceCode  string       `json:"service_code,omitempty"`
	ExternalID   string       `json:"external_shipment_id,omitempty"`
	ShipDate     string       `json:"ship_date,omitempty"`
	CreatedAt    string       `json:"created_at,omitempty"`
	TotalWeight  *Weight      `json:"total_weight,omitempty"`
	RateResponse RateResponse `json:"rate_response"`
}

// RateResponse holds the quoted rates and any errors.
type RateResponse struct {
	RateRequestID string  `json:"rate_request_id,omitempty"`
	ShipmentID    string  `json:"shipment_id,omitempty"`
	Status        string  `json:"status,omitempty"` // "working", "completed", "partial", "error"
	CreatedAt     string  `json:"created_at,omitempty"`
	Rates         []Rate  `json:"rates"`
	InvalidRates  []Rate  `json:"invalid_rates,omitempty"`
	Errors        []Error `json:"errors,omitempty"`
}

// Rate represents a single rate quote.
type Rate struct {
	RateID                string         `json:"rate_id"`
	RateType              string         `json:"rate_type,omitempty"`
	CarrierID             string         `json:"carrier_id"`
	ShippingAmount        *MonetaryValue `json:"shipping_amount,omitempty"`
	InsuranceAmount       *MonetaryValue `json:"insurance_amount,omitempty"`
	ConfirmationAmount    *MonetaryValue `json:"confirmation_amount,omitempty"`
	OtherAmount           *MonetaryValue `json:"other_amount,omitempty"`
	TaxAmount             *MonetaryValue `json:"tax_amount,omitempty"`
	Zone                  *int           `json:"zone,omitempty"`
	PackageType           string         `json:"package_type,omitempty"`
	DeliveryDays          int            `json:"delivery_days"`
	GuaranteedService     bool           `json:"guaranteed_service"`
	EstimatedDeliveryDate string         `json:"estimated_delivery_date"`
	CarrierDeliveryDays   string         `json:"carrier_delivery_days,omitempty"`
	ShipDate              string         `json:"ship_date"`
	NegotiatedRate        bool           `json:"negotiated_rate"`
	ServiceType           string         `json:"service_type"`
	ServiceCode           string         `json:"service_code"`
	Trackable             bool           `json:"trackable"`
	CarrierCode           string         `json:"carrier_code"`
	CarrierNickname       string         `json:"carrier_nickname,omitempty"`
	CarrierFriendlyName   string         `json:"carrier_friendly_name,omitempty"`
	ValidationStatus      string         `json:"validation_status,omitempty"`
	WarningMessages       []string       `json:"warning_messages,omitempty"`
	ErrorMessages         []string       `json:"error_messages,omitempty"`
}

// Error is an error entry reported by ShipEngine.
type Error struct {
	ErrorSource string `json:"error_source,omitempty"` // "carrier", "order_source", "shipengine"
	ErrorType   string `json:"error_type,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`
	Message     string `json:"message"`
	CarrierID   string `json:"carrier_id,omitempty"`
	CarrierCode string `json:"carrier_code,omitempty"`
}

// APIError represents an error envelope returned by the ShipEngine API.
type APIError struct {
	RequestID  string  `json:"request_id"`
	Errors     []Error `json:"errors"`
	StatusCode int     `json:"-"`
	Body       string  `json:"-"`
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 && e.Errors[0].Message != "" {
		return e.Errors[0].Message
	}
	if e.Body != "" {
		return e.Body
	}
	return "shipengine request failed"
}
