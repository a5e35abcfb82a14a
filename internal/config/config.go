package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// ShipFrom is the origin address sent with every ShipEngine rate request.
type ShipFrom struct {
	Name         string `envconfig:"NAME"`
	Phone        string `envconfig:"PHONE"`
	CompanyName  string `envconfig:"COMPANY_NAME"`
	AddressLine1 string `envconfig:"ADDRESS_LINE1"`
	AddressLine2 string `envconfig:"ADDRESS_LINE2"`
	City         string `envconfig:"CITY"`
	State        string `envconfig:"STATE"`
	PostalCode   string `envconfig:"POSTAL_CODE"`
	CountryCode  string `envconfig:"COUNTRY_CODE" default:"US"`
}

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Rate adapters
	RateAdapter        string `envconfig:"RATE_ADAPTER" default:"shipengine"`
	MockAdapterEnabled bool   `envconfig:"MOCK_ADAPTER_ENABLED" default:"false"`

	// ShipEngine
	ShipEngineAPIKey     string        `envconfig:"SHIPENGINE_API_KEY"`
	ShipEngineBaseURL    string        `envconfig:"SHIPENGINE_BASE_URL" default:"https://api.shipengine.com"`
	ShipEngineCarrierIDs []string      `envconfig:"SHIPENGINE_CARRIER_IDS"`
	ShipEngineUseMock    bool          `envconfig:"SHIPENGINE_USE_MOCK" default:"false"`
	ShipEngineTimeout    time.Duration `envconfig:"SHIPENGINE_TIMEOUT" default:"30s"`
	ShipFrom             ShipFrom      `envconfig:"SHIP_FROM"`

	// AWS
	AWSRegion        string `envconfig:"AWS_REGION" default:"us-east-1"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT"`
	ShipmentsTable   string `envconfig:"SHIPMENTS_TABLE" default:"shipments"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.claude.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"ratebridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.String("rate.adapter", c.RateAdapter),
		attribute.Bool("shipengine.mock", c.ShipEngineUseMock),
		attribute.String("aws.region", c.AWSRegion),
	}
}
