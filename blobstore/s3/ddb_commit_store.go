package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/typedjson/blobstore"
)

// CurrentName is the base name of pointer blobs routed through DynamoDB.
const CurrentName = "CURRENT"

// DDBCommitStore implements blobstore.Store backed by an object store, with
// DynamoDB for atomic pointer commits. This enables safe concurrent writers.
//
// Blobs named CURRENT (or ending in /CURRENT) are not written to the object
// store. Each Put of such a blob appends a new version to DynamoDB with a
// conditional write, which provides the compare-and-swap semantics that S3
// lacks. All other names go to the backing store unchanged.
//
// CURRENT blobs are not returned by List.
//
// Table schema:
//   - Partition key: base_uri (string) - the base URI joined with the blob name
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name typedjson-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	store     blobstore.Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ErrConcurrentModification is returned when a concurrent write is detected.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// NewDDBCommitStore creates a new commit store.
// The baseURI (e.g. "s3://bucket/prefix/") namespaces the partition keys.
func NewDDBCommitStore(store blobstore.Store, ddbClient DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{
		store:     store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

func isCommitName(name string) bool {
	return path.Base(name) == CurrentName
}

func (s *DDBCommitStore) partitionKey(name string) string {
	return s.baseURI + name
}

// Get reads a blob. For CURRENT, returns the latest committed content.
func (s *DDBCommitStore) Get(ctx context.Context, name string) ([]byte, error) {
	if !isCommitName(name) {
		return s.store.Get(ctx, name)
	}
	if err := blobstore.ValidateName(name); err != nil {
		return nil, err
	}

	version, content, err := s.getLatestVersion(ctx, name)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return []byte(content), nil
}

// Put writes a blob. For CURRENT, uses a DynamoDB conditional write and
// returns ErrConcurrentModification if another writer committed first.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if !isCommitName(name) {
		return s.store.Put(ctx, name, data)
	}
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}
	return s.commitVersion(ctx, name, string(data))
}

// Delete deletes a blob. For CURRENT, removes every committed version.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	if !isCommitName(name) {
		return s.store.Delete(ctx, name)
	}
	if err := blobstore.ValidateName(name); err != nil {
		return err
	}

	pk := s.partitionKey(name)
	var startKey map[string]types.AttributeValue
	for {
		resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("base_uri = :uri"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uri": &types.AttributeValueMemberS{Value: pk},
			},
			ProjectionExpression: aws.String("base_uri, version"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return fmt.Errorf("failed to query DynamoDB: %w", err)
		}

		for _, item := range resp.Items {
			if _, err := s.ddbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(s.tableName),
				Key: map[string]types.AttributeValue{
					"base_uri": item["base_uri"],
					"version":  item["version"],
				},
			}); err != nil {
				return fmt.Errorf("failed to delete version from DynamoDB: %w", err)
			}
		}

		if len(resp.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = resp.LastEvaluatedKey
	}
}

// List lists blobs with prefix from the backing store.
func (s *DDBCommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.store.List(ctx, prefix)
}

// getLatestVersion queries DynamoDB for the latest committed version.
func (s *DDBCommitStore) getLatestVersion(ctx context.Context, name string) (uint64, string, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.partitionKey(name)},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to query DynamoDB: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, "", nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute in DynamoDB")
	}
	contentAttr, ok := item["content"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid content attribute in DynamoDB")
	}

	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}

	return version, contentAttr.Value, nil
}

// commitVersion atomically commits a new pointer version using a DynamoDB conditional write.
func (s *DDBCommitStore) commitVersion(ctx context.Context, name, content string) error {
	currentVersion, _, err := s.getLatestVersion(ctx, name)
	if err != nil {
		return err
	}

	newVersion := currentVersion + 1

	// Conditional put: only succeed if this version doesn't exist yet
	_, err = s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.partitionKey(name)},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(newVersion, 10)},
			"content":  &types.AttributeValueMemberS{Value: content},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})

	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("failed to commit version to DynamoDB: %w", err)
	}

	return nil
}

var _ blobstore.Store = (*DDBCommitStore)(nil)
