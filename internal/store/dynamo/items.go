package dynamo

import (
	"context"
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

// ItemStore persists found items in the items table.
type ItemStore struct {
	api       API
	tableName string
}

// NewItemStore creates an item store backed by tableName.
func NewItemStore(api API, tableName string) *ItemStore {
	return &ItemStore{api: api, tableName: tableName}
}

func (s *ItemStore) NormalizeID(raw string) (string, error) { return normalizeID(raw) }

func (s *ItemStore) Ping(ctx context.Context) error { return ping(ctx, s.api, s.tableName) }

func (s *ItemStore) Create(ctx context.Context, item *models.FoundItem) error {
	item.ID = uuid.New().String()

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(item_id)"),
	})
	if err != nil {
		return fmt.Errorf("put item failed: %w", err)
	}
	return nil
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*models.FoundItem, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	result, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get item failed: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, store.ErrNotFound
	}

	var item models.FoundItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}
	return &item, nil
}

// List scans the whole table.
func (s *ItemStore) List(ctx context.Context) ([]*models.FoundItem, error) {
	paginator := dynamodb.NewScanPaginator(s.api, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})

	var items []*models.FoundItem
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		decoded, err := unmarshalItems(page.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, decoded...)
	}
	return items, nil
}

func (s *ItemStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.FoundItem, error) {
	paginator := dynamodb.NewQueryPaginator(s.api, s.ownerQuery(ownerID))

	var items []*models.FoundItem
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		decoded, err := unmarshalItems(page.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, decoded...)
	}
	return items, nil
}

func (s *ItemStore) UpdateStatus(ctx context.Context, id string, status models.ItemStatus) (*models.FoundItem, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	result, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 itemKey(id),
		UpdateExpression:    aws.String("SET #status = :status, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(item_id)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":now":    &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update item failed: %w", err)
	}

	var item models.FoundItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}
	return &item, nil
}

func (s *ItemStore) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return store.ErrNotFound
	}

	_, err = s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 itemKey(id),
		ConditionExpression: aws.String("attribute_exists(item_id)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("delete item failed: %w", err)
	}
	return nil
}

// UpdatePosterName has no set-based equivalent in DynamoDB: the owner's item
// ids are read from the posted_by GSI and each is updated conditionally.
// Items deleted between the query and the update are skipped.
func (s *ItemStore) UpdatePosterName(ctx context.Context, ownerID, name string) (int, error) {
	query := s.ownerQuery(ownerID)
	query.ProjectionExpression = aws.String("item_id")
	paginator := dynamodb.NewQueryPaginator(s.api, query)

	matched := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return matched, fmt.Errorf("query failed: %w", err)
		}

		for _, key := range page.Items {
			_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
				TableName:           aws.String(s.tableName),
				Key:                 map[string]types.AttributeValue{"item_id": key["item_id"]},
				UpdateExpression:    aws.String("SET posted_by_name = :name"),
				ConditionExpression: aws.String("attribute_exists(item_id)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":name": &types.AttributeValueMemberS{Value: name},
				},
			})
			if err != nil {
				if isConditionFailed(err) {
					continue
				}
				return matched, fmt.Errorf("update item failed: %w", err)
			}
			matched++
		}
	}
	return matched, nil
}

func (s *ItemStore) ownerQuery(ownerID string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(postedByIndex),
		KeyConditionExpression: aws.String("posted_by = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerID},
		},
	}
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"item_id": &types.AttributeValueMemberS{Value: id},
	}
}

func unmarshalItems(raw []map[string]types.AttributeValue) ([]*models.FoundItem, error) {
	items := make([]*models.FoundItem, 0, len(raw))
	for _, av := range raw {
		var item models.FoundItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, fmt.Errorf("unmarshal failed: %w", err)
		}
		items = append(items, &item)
	}
	return items, nil
}
