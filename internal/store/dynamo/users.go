package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/store"
)

// UserStore persists users in the users table.
type UserStore struct {
	api       API
	tableName string
}

// NewUserStore creates a user store backed by tableName.
func NewUserStore(api API, tableName string) *UserStore {
	return &UserStore{api: api, tableName: tableName}
}

func (s *UserStore) NormalizeID(raw string) (string, error) { return normalizeID(raw) }

func (s *UserStore) Ping(ctx context.Context) error { return ping(ctx, s.api, s.tableName) }

// Create writes the user and its email marker atomically.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New().String()

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	_, err = s.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.tableName),
					Item:                item,
					ConditionExpression: aws.String("attribute_not_exists(user_id)"),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(s.tableName),
					Item: map[string]types.AttributeValue{
						"user_id":  &types.AttributeValueMemberS{Value: emailMarkerKey(user.Email)},
						"owner_id": &types.AttributeValueMemberS{Value: user.ID},
					},
					ConditionExpression: aws.String("attribute_not_exists(user_id)"),
				},
			},
		},
	})
	if err != nil {
		if isEmailConflict(err) {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("transact write failed: %w", err)
	}

	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	result, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item failed: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, store.ErrNotFound
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Item, &user); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	// Query by email (GSI: email-index)
	result, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(emailIndex),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, store.ErrNotFound
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Items[0], &user); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}
	return &user, nil
}

func (s *UserStore) UpdateName(ctx context.Context, id, name string) error {
	id, err := normalizeID(id)
	if err != nil {
		return store.ErrNotFound
	}

	_, err = s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    aws.String("SET #name = :name, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames: map[string]string{
			"#name": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: name},
			":now":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("update item failed: %w", err)
	}
	return nil
}

func emailMarkerKey(email string) string {
	return emailMarker + email
}

// isEmailConflict reports whether a TransactWriteItems failure was caused by
// one of the attribute_not_exists conditions.
func isEmailConflict(err error) bool {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return false
	}
	for _, reason := range canceled.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
