package s3

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/typedjson/blobstore"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // key -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Item["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := baseURI + ":" + version

	// Check conditional expression
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseURI := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value

	// Find items matching baseURI, sort by version descending
	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == baseURI {
			items = append(items, item)
		}
	}

	// Sort descending by version
	sort.Slice(items, func(i, j int) bool {
		vi, _ := strconv.Atoi(items[i]["version"].(*types.AttributeValueMemberN).Value)
		vj, _ := strconv.Atoi(items[j]["version"].(*types.AttributeValueMemberN).Value)
		return vi > vj
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *mockDDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	baseURI := params.Key["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Key["version"].(*types.AttributeValueMemberN).Value
	delete(m.items, baseURI+":"+version)
	return &dynamodb.DeleteItemOutput{}, nil
}

func newTestDDBCommitStore(ddb *mockDDBClient, baseURI string) *DDBCommitStore {
	return NewDDBCommitStore(blobstore.NewMemoryStore(), ddb, "typedjson-commits", baseURI)
}

func TestDDBCommitStore_FirstCommit(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	// First commit should succeed
	err := store.Put(ctx, "pipe/CURRENT", []byte("pipe/STATE-000001.json"))
	require.NoError(t, err)

	// Read back CURRENT
	got, err := store.Get(ctx, "pipe/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "pipe/STATE-000001.json", string(got))

	// The pointer never reaches the object store.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDDBCommitStore_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	// Commit versions 1, 2, 3
	for i := 1; i <= 3; i++ {
		err := store.Put(ctx, "CURRENT", []byte(fmt.Sprintf("STATE-%06d.json", i)))
		require.NoError(t, err)
	}

	// Read back should get latest (version 3)
	got, err := store.Get(ctx, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "STATE-000003.json", string(got))
}

func TestDDBCommitStore_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	// Initial commit
	err := store.Put(ctx, "CURRENT", []byte("STATE-000001.json"))
	require.NoError(t, err)

	// Concurrent writers
	var wg sync.WaitGroup
	successes := 0
	conflicts := 0
	var mu sync.Mutex

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := store.Put(ctx, "CURRENT", []byte(fmt.Sprintf("STATE-%06d.json", id+2)))
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, ErrConcurrentModification) {
				conflicts++
			} else if err == nil {
				successes++
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()
	assert.Greater(t, successes, 0, "at least one writer should succeed")
	assert.Equal(t, 5, successes+conflicts)
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	_, err := store.Get(ctx, "pipe/CURRENT")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()

	store1 := newTestDDBCommitStore(ddb, "s3://bucket-a/path/")
	store2 := newTestDDBCommitStore(ddb, "s3://bucket-b/path/")

	// Commit to each store
	require.NoError(t, store1.Put(ctx, "CURRENT", []byte("STATE-A.json")))
	require.NoError(t, store2.Put(ctx, "CURRENT", []byte("STATE-B.json")))
	require.NoError(t, store1.Put(ctx, "other/CURRENT", []byte("STATE-C.json")))

	// Each sees their own pointer
	got, err := store1.Get(ctx, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "STATE-A.json", string(got))

	got, err = store2.Get(ctx, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "STATE-B.json", string(got))

	got, err = store1.Get(ctx, "other/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "STATE-C.json", string(got))
}

func TestDDBCommitStore_DeleteCurrent(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	store := newTestDDBCommitStore(ddb, "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, "pipe/CURRENT", []byte("1")))
	require.NoError(t, store.Put(ctx, "pipe/CURRENT", []byte("2")))
	require.NoError(t, store.Delete(ctx, "pipe/CURRENT"))

	_, err := store.Get(ctx, "pipe/CURRENT")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	// Versions restart after a delete.
	require.NoError(t, store.Put(ctx, "pipe/CURRENT", []byte("3")))
	got, err := store.Get(ctx, "pipe/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "3", string(got))
}

func TestDDBCommitStore_PassThrough(t *testing.T) {
	ctx := context.Background()
	store := newTestDDBCommitStore(newMockDDBClient(), "s3://test-bucket/test/")

	require.NoError(t, store.Put(ctx, "pipe/STATE-000001.json", []byte("{}")))
	got, err := store.Get(ctx, "pipe/STATE-000001.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))

	names, err := store.List(ctx, "pipe/")
	require.NoError(t, err)
	assert.Equal(t, []string{"pipe/STATE-000001.json"}, names)

	require.NoError(t, store.Delete(ctx, "pipe/STATE-000001.json"))
	_, err = store.Get(ctx, "pipe/STATE-000001.json")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}
