// Package dynamodb provides a blob store backed by a DynamoDB table, for
// deployments where user data should survive host replacement. Each key
// maps to a single item; the table is shared with other data under other
// keys, so the store never scans or assumes exclusive access.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// blobRecord is the item layout for a stored blob.
type blobRecord struct {
	PK        string `dynamodbav:"PK"`
	Blob      []byte `dynamodbav:"Blob"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// BlobStore reads and writes single-key JSON blobs in one table.
type BlobStore struct {
	client *awsdynamodb.Client
	table  string
	logger *zap.Logger
}

// NewBlobStore creates a DynamoDB-backed blob store.
func NewBlobStore(client *awsdynamodb.Client, table string, logger *zap.Logger) *BlobStore {
	return &BlobStore{
		client: client,
		table:  table,
		logger: logger,
	}
}

// Read returns the blob for key, or nil when no item exists.
func (s *BlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s: %w", key, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var record blobRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blob %s: %w", key, err)
	}
	return record.Blob, nil
}

// Write replaces the item for key with the given blob.
func (s *BlobStore) Write(ctx context.Context, key string, blob []byte) error {
	item, err := attributevalue.MarshalMap(blobRecord{
		PK:        key,
		Blob:      blob,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal blob %s: %w", key, err)
	}

	if _, err := s.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put blob %s: %w", key, err)
	}

	s.logger.Debug("Blob persisted",
		zap.String("key", key),
		zap.Int("bytes", len(blob)),
	)
	return nil
}

// Remove deletes the item for key. Deleting an absent item is a no-op in
// DynamoDB, matching the store contract.
func (s *BlobStore) Remove(ctx context.Context, key string) error {
	if _, err := s.client.DeleteItem(ctx, &awsdynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: key},
		},
	}); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}
