package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/gearshop/internal/domain/cart"
)

// DynamoCartStore keeps one cart document per owner in a DynamoDB
// table keyed by owner_id. Replacement is a conditional PutItem on the
// stored version, so a stale read-modify-write fails instead of
// overwriting a newer document.
type DynamoCartStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoCart is the DynamoDB item structure
type dynamoCart struct {
	OwnerID   string `dynamodbav:"owner_id"`
	Lines     string `dynamodbav:"lines"`
	Version   int    `dynamodbav:"version"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoCartStore(client *dynamodb.Client, tableName string) *DynamoCartStore {
	return &DynamoCartStore{client: client, tableName: tableName}
}

// GetCart loads the owner's cart document.
func (s *DynamoCartStore) GetCart(ctx context.Context, ownerID string) (*cart.Cart, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"owner_id": &types.AttributeValueMemberS{Value: ownerID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if result.Item == nil {
		return nil, ErrCartNotFound
	}

	var item dynamoCart
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}

	var lines []cart.Line
	if err := json.Unmarshal([]byte(item.Lines), &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart lines: %w", err)
	}

	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &cart.Cart{
		OwnerID:   item.OwnerID,
		Lines:     lines,
		Version:   item.Version,
		UpdatedAt: updatedAt,
	}, nil
}

// PutCart replaces the owner's document with a conditional write on the
// version the caller read (optimistic locking).
func (s *DynamoCartStore) PutCart(ctx context.Context, c *cart.Cart) error {
	linesJSON, err := json.Marshal(c.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart lines: %w", err)
	}

	now := time.Now()
	item := dynamoCart{
		OwnerID:   c.OwnerID,
		Lines:     string(linesJSON),
		Version:   c.Version + 1,
		UpdatedAt: now.Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}
	if c.Version == 0 {
		input.ConditionExpression = aws.String("attribute_not_exists(owner_id)")
	} else {
		input.ConditionExpression = aws.String("version = :expected")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", c.Version)},
		}
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to put cart: %w", err)
	}

	c.Version++
	c.UpdatedAt = now
	return nil
}
