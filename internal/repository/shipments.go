// Package repository persists shipments in DynamoDB.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/tournevent/ratebridge/internal/aws"
	"github.com/tournevent/ratebridge/pkg/shipment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// keyAttribute is the table's partition key. The shipment id doubles as
// item key and partition key.
const keyAttribute = "id"

// ShipmentRepository encapsulates operations on the shipments table.
type ShipmentRepository struct {
	client    aws.DynamoDBAPI
	tableName string
	logger    *otelzap.Logger
}

// NewShipmentRepository creates a new ShipmentRepository.
func NewShipmentRepository(client aws.DynamoDBAPI, tableName string, logger *otelzap.Logger) *ShipmentRepository {
	return &ShipmentRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// CreateShipment writes s once; an existing item with the same id is not
// overwritten. Every failure is reported as a storage conflict.
func (r *ShipmentRepository) CreateShipment(ctx context.Context, s *shipment.Shipment) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return shipment.NewStorageConflictError(fmt.Errorf("marshal shipment: %w", err))
	}

	_, err = r.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &r.tableName,
		Item:                     item,
		ConditionExpression:      awsString("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": keyAttribute},
	})
	if err != nil {
		r.logger.Ctx(ctx).Warn("Failed to create shipment",
			zap.String("shipment_id", s.ID),
			zap.String("error_code", errorCode(err)),
			zap.Error(err),
		)
		return shipment.NewStorageConflictError(err)
	}
	return nil
}

// FindShipment fetches a shipment by id. Returns (nil, nil) if not found.
func (r *ShipmentRepository) FindShipment(ctx context.Context, id string) (*shipment.Shipment, error) {
	out, err := r.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &r.tableName,
		Key: map[string]types.AttributeValue{
			keyAttribute: &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		r.logger.Ctx(ctx).Warn("Failed to read shipment",
			zap.String("shipment_id", id),
			zap.String("error_code", errorCode(err)),
			zap.Error(err),
		)
		return nil, shipment.NewStorageNotFoundError(err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}

	var s shipment.Shipment
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, shipment.NewStorageNotFoundError(fmt.Errorf("unmarshal shipment: %w", err))
	}
	if s.Rates == nil {
		s.Rates = []shipment.Rate{}
	}
	return &s, nil
}

// errorCode returns the DynamoDB error code of err, if any.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
