package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ratebridge/internal/server"
	"github.com/tournevent/ratebridge/internal/telemetry"
	"github.com/tournevent/ratebridge/pkg/shipment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockService is a ShipmentService with injectable behavior.
type mockService struct {
	OnFetchRates   func(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error)
	OnFindShipment func(ctx context.Context, id string) (*shipment.Shipment, error)
}

func (m *mockService) FetchRates(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error) {
	return m.OnFetchRates(ctx, payload)
}

func (m *mockService) FindShipment(ctx context.Context, id string) (*shipment.Shipment, error) {
	return m.OnFindShipment(ctx, id)
}

func newTestServer(t *testing.T, svc *mockService) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	logger := otelzap.New(zap.NewNop())

	return server.New(server.Config{Port: 8080}, svc, logger, metrics, reg).Engine()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validRatesBody = `{
	"shippingAddress": {
		"addressLine1": "1 Main St",
		"city": "Austin",
		"companyName": "Acme",
		"country": "US",
		"name": "Jane",
		"phoneNumber": "555-0100",
		"postcode": "78701",
		"state": "TX"
	},
	"weight": {"value": 10, "unit": "kilogram"}
}`

func TestServer_Health(t *testing.T) {
	h := newTestServer(t, &mockService{})

	rec := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_RequestIDPropagated(t *testing.T) {
	h := newTestServer(t, &mockService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
}

func TestServer_FetchRates_Success(t *testing.T) {
	amount := 20.0
	var got *shipment.FetchRatesPayload
	svc := &mockService{OnFetchRates: func(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error) {
		got = payload
		return &shipment.Shipment{
			ID:              "se-1",
			Rates:           []shipment.Rate{{ID: "r1", Currency: "USD", ShipmentAmount: &amount}},
			ShippingAddress: payload.ShippingAddress,
			Weight:          payload.Weight,
		}, nil
	}}
	h := newTestServer(t, svc)

	rec := do(t, h, http.MethodPost, "/rates", validRatesBody)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.ShippingAddress.CompanyName)
	assert.Equal(t, shipment.Weight{Value: 10, Unit: shipment.WeightKilogram}, got.Weight)

	var resp shipment.Shipment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "se-1", resp.ID)
	require.Len(t, resp.Rates, 1)
	assert.Equal(t, 20.0, *resp.Rates[0].ShipmentAmount)
	assert.Nil(t, resp.Rates[0].InsuranceAmount)
}

func TestServer_FetchRates_NoShipment(t *testing.T) {
	svc := &mockService{OnFetchRates: func(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error) {
		return nil, nil
	}}
	h := newTestServer(t, svc)

	rec := do(t, h, http.MethodPost, "/rates", validRatesBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestServer_FetchRates_InvalidJSON(t *testing.T) {
	h := newTestServer(t, &mockService{})

	rec := do(t, h, http.MethodPost, "/rates", `{"shippingAddress":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request_body", resp["error"])
}

func TestServer_FetchRates_ValidationFailed(t *testing.T) {
	h := newTestServer(t, &mockService{})

	body := `{"shippingAddress":{"addressLine1":"1 Main St","country":"US","postcode":"78701"},"weight":{"value":0,"unit":"stone"}}`
	rec := do(t, h, http.MethodPost, "/rates", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error)
	assert.Contains(t, resp.Fields, "shippingAddress.city")
	assert.Contains(t, resp.Fields, "weight.value")
	assert.Contains(t, resp.Fields, "weight.unit")
}

func TestServer_FetchRates_MissingAddress(t *testing.T) {
	h := newTestServer(t, &mockService{})

	rec := do(t, h, http.MethodPost, "/rates", `{"weight":{"value":1,"unit":"pound"}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "shippingAddress")
}

func TestServer_FetchRates_ServiceFailure(t *testing.T) {
	svc := &mockService{OnFetchRates: func(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error) {
		return nil, shipment.NewRateOrchestrationError(shipment.NewRateFetchError("Invalid postal code"))
	}}
	h := newTestServer(t, svc)

	rec := do(t, h, http.MethodPost, "/rates", validRatesBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"rate_orchestration","msg":"error getting shipment rates: Invalid postal code"}`, rec.Body.String())
}

func TestServer_FindShipment(t *testing.T) {
	svc := &mockService{OnFindShipment: func(ctx context.Context, id string) (*shipment.Shipment, error) {
		if id == "se-1" {
			return &shipment.Shipment{ID: "se-1", Rates: []shipment.Rate{}}, nil
		}
		return nil, nil
	}}
	h := newTestServer(t, svc)

	rec := do(t, h, http.MethodGet, "/shipments/se-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp shipment.Shipment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "se-1", resp.ID)

	rec = do(t, h, http.MethodGet, "/shipments/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Shipment with id: missing - not found.")
}

func TestServer_FindShipment_BlankID(t *testing.T) {
	called := false
	svc := &mockService{OnFindShipment: func(ctx context.Context, id string) (*shipment.Shipment, error) {
		called = true
		return nil, nil
	}}
	h := newTestServer(t, svc)

	rec := do(t, h, http.MethodGet, "/shipments/%20", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid shipment id:")
	assert.False(t, called)
}

func TestServer_FindShipment_Failure(t *testing.T) {
	svc := &mockService{OnFindShipment: func(ctx context.Context, id string) (*shipment.Shipment, error) {
		return nil, shipment.NewLookupError(errors.New("connection reset"))
	}}
	h := newTestServer(t, svc)

	rec := do(t, h, http.MethodGet, "/shipments/se-1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "error finding shipment: connection reset")
}

func TestServer_Metrics(t *testing.T) {
	h := newTestServer(t, &mockService{})

	do(t, h, http.MethodGet, "/health", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ratebridge_http_requests_total{code="200",method="GET",route="/health"} 1`)
}
