// Package dynamo implements the user and item stores on DynamoDB.
//
// Users table: partition key user_id, GSI "email-index" on email. Email
// uniqueness is enforced with a marker item (user_id = "EMAIL#<email>")
// written in the same transaction as the user.
//
// Items table: partition key item_id, GSI "posted_by-index" on posted_by.
package dynamo

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/config"
	"github.com/lostfound/found-api/internal/store"
)

const (
	emailIndex    = "email-index"
	postedByIndex = "posted_by-index"
	emailMarker   = "EMAIL#"
)

// API is the subset of the DynamoDB client used by the stores.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// NewClient loads AWS configuration and creates a DynamoDB client.
func NewClient(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.DynamoDB.Region),
	}
	if cfg.AWS.Profile != "" {
		// Use specific profile for local development
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWS.Profile))
	}
	if cfg.DynamoDB.Endpoint != "" {
		// DynamoDB Local does not validate credentials but the signer needs some
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	})

	logger.WithFields(logrus.Fields{
		"region":      cfg.DynamoDB.Region,
		"users_table": cfg.DynamoDB.UsersTableName,
		"items_table": cfg.DynamoDB.ItemsTableName,
		"endpoint":    cfg.DynamoDB.Endpoint,
	}).Info("DynamoDB client initialized")

	return client, nil
}

// normalizeID canonicalizes the UUIDs assigned by this backend.
func normalizeID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidID, raw)
	}
	return id.String(), nil
}

func ping(ctx context.Context, api API, tables ...string) error {
	for _, table := range tables {
		if _, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}); err != nil {
			return fmt.Errorf("describe table %s failed: %w", table, err)
		}
	}
	return nil
}
