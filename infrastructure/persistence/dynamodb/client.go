package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Index names on the single table
const (
	indexByKind     = "gsi1" // GSI1PK = KIND#<kind>, GSI1SK = <createdAt>#<id>
	indexByOwner    = "gsi2" // GSI2PK = OWNER#<owner>#<group>, GSI2SK = <name or createdAt>
	indexByRelation = "gsi3" // GSI3PK = REL#<source>#<target>#<type>
)

// NewClient creates a DynamoDB client from the ambient AWS configuration.
// An endpoint override points the client at DynamoDB Local.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
