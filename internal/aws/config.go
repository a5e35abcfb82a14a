// Package aws loads AWS configuration and builds the service clients.
package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

const defaultRegion = "us-east-1"

// Config selects the AWS region and an optional DynamoDB endpoint
// (e.g. DynamoDB Local or LocalStack).
type Config struct {
	Region           string
	DynamoDBEndpoint string
}

// LoadAWSConfig loads the default AWS config chain for cfg.Region.
func LoadAWSConfig(ctx context.Context, cfg Config) (sdkaws.Config, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return awsCfg, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return awsCfg, nil
}
