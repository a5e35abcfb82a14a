package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ratebridge/pkg/shipment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// mockDynamo is a minimal in-memory table keyed by "id" that honours
// attribute_not_exists conditions on PutItem.
type mockDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	putCalls int
	getCalls int

	putErr error
	getErr error
	getOut *dyn.GetItemOutput
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return nil, m.putErr
	}
	keyAttr, ok := params.Item["id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing key")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(#id)" {
		if _, exists := m.items[keyAttr.Value]; exists {
			msg := "The conditional request failed"
			return nil, &types.ConditionalCheckFailedException{Message: &msg}
		}
	}
	m.items[keyAttr.Value] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOut != nil {
		return m.getOut, nil
	}
	keyAttr, ok := params.Key["id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing key")
	}
	item, ok := m.items[keyAttr.Value]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func newTestRepository(client *mockDynamo) *ShipmentRepository {
	return NewShipmentRepository(client, "shipments", otelzap.New(zap.NewNop()))
}

func testShipment(id string) *shipment.Shipment {
	confirmation, shipping := 10.0, 20.0
	return &shipment.Shipment{
		ID: id,
		Rates: []shipment.Rate{
			{
				ID:                    "rate1",
				Carrier:               "Standard",
				CarrierCode:           "UPS",
				CarrierID:             "ups",
				ConfirmationAmount:    &confirmation,
				Currency:              "USD",
				DeliveryDays:          3,
				EstimatedDeliveryDate: "2022-01-01",
				ServiceCode:           "ST",
				ShipDate:              "2021-12-31",
				ShipmentAmount:        &shipping,
				Trackable:             true,
			},
		},
		ShippingAddress: shipment.ShippingAddress{
			CompanyName:  "Example Corp.",
			Name:         "John Doe",
			PhoneNumber:  "111-111-1111",
			AddressLine1: "123 Main St",
			City:         "Austin",
			State:        "TX",
			Postcode:     "78731",
			Country:      "US",
		},
		Weight: shipment.Weight{Value: 10, Unit: shipment.WeightKilogram},
	}
}

func TestShipmentRepository_CreateAndFind(t *testing.T) {
	client := newMockDynamo()
	repo := newTestRepository(client)
	ctx := context.Background()

	s := testShipment("shipment1")
	require.NoError(t, repo.CreateShipment(ctx, s))

	got, err := repo.FindShipment(ctx, "shipment1")
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Nil(t, got.Rates[0].InsuranceAmount, "absent amounts stay absent")
}

func TestShipmentRepository_CreateStoresKeyAndCondition(t *testing.T) {
	client := newMockDynamo()
	repo := newTestRepository(client)

	require.NoError(t, repo.CreateShipment(context.Background(), testShipment("shipment1")))

	item := client.items["shipment1"]
	require.NotNil(t, item)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "shipment1"}, item["id"])
	_, hasInsurance := item["rates"].(*types.AttributeValueMemberL).Value[0].(*types.AttributeValueMemberM).Value["insuranceAmount"]
	assert.False(t, hasInsurance)
}

func TestShipmentRepository_CreateTwiceConflicts(t *testing.T) {
	client := newMockDynamo()
	repo := newTestRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.CreateShipment(ctx, testShipment("shipment1")))
	err := repo.CreateShipment(ctx, testShipment("shipment1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, shipment.ErrStorageConflict))
	assert.Contains(t, err.Error(), "The conditional request failed")
	assert.Equal(t, 2, client.putCalls)
}

func TestShipmentRepository_CreateWriteFailureIsConflict(t *testing.T) {
	client := newMockDynamo()
	client.putErr = errors.New("dial tcp: connection refused")
	repo := newTestRepository(client)

	err := repo.CreateShipment(context.Background(), testShipment("shipment1"))

	require.Error(t, err)
	assert.Equal(t, shipment.KindStorageConflict, shipment.KindOf(err))
	assert.Equal(t, "dial tcp: connection refused", err.Error())
}

func TestShipmentRepository_FindAbsentReturnsNil(t *testing.T) {
	client := newMockDynamo()
	repo := newTestRepository(client)

	got, err := repo.FindShipment(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, client.getCalls)
}

func TestShipmentRepository_FindReadFailure(t *testing.T) {
	client := newMockDynamo()
	msg := "Requested resource not found"
	client.getErr = &types.ResourceNotFoundException{Message: &msg}
	repo := newTestRepository(client)

	got, err := repo.FindShipment(context.Background(), "shipment1")

	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shipment.ErrStorageNotFound))
	assert.Contains(t, err.Error(), msg)
}

func TestShipmentRepository_FindUndecodableItem(t *testing.T) {
	client := newMockDynamo()
	client.getOut = &dyn.GetItemOutput{Item: map[string]types.AttributeValue{
		"id":    &types.AttributeValueMemberS{Value: "shipment1"},
		"rates": &types.AttributeValueMemberS{Value: "not-a-list"},
	}}
	repo := newTestRepository(client)

	_, err := repo.FindShipment(context.Background(), "shipment1")

	require.Error(t, err)
	assert.Equal(t, shipment.KindStorageNotFound, shipment.KindOf(err))
}

func TestShipmentRepository_FindEmptyRates(t *testing.T) {
	client := newMockDynamo()
	repo := newTestRepository(client)
	ctx := context.Background()

	s := testShipment("shipment2")
	s.Rates = []shipment.Rate{}
	require.NoError(t, repo.CreateShipment(ctx, s))

	got, err := repo.FindShipment(ctx, "shipment2")
	require.NoError(t, err)
	assert.NotNil(t, got.Rates)
	assert.Empty(t, got.Rates)
}

func TestErrorCode(t *testing.T) {
	msg := "The conditional request failed"
	assert.Equal(t, "ConditionalCheckFailedException", errorCode(&types.ConditionalCheckFailedException{Message: &msg}))
	assert.Equal(t, "", errorCode(errors.New("plain")))
}
