package store

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hackverse-mindmap/internal/errors"
)

// fakeDynamo stores items by PK/SK and answers the store's single query
// shape: PK equality, SK prefix and an optional ClassID filter.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[str(in.Key["PK"])+"|"+str(in.Key["SK"])]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.items[str(in.Item["PK"])+"|"+str(in.Item["SK"])] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pk, classID string
	for _, v := range in.ExpressionAttributeValues {
		s := str(v)
		switch {
		case strings.HasPrefix(s, userKeyPrefix):
			pk = s
		case s == resourceKeyPrefix:
		default:
			classID = s
		}
	}
	out := &dynamodb.QueryOutput{}
	for _, item := range f.items {
		if str(item["PK"]) != pk || !strings.HasPrefix(str(item["SK"]), resourceKeyPrefix) {
			continue
		}
		if in.FilterExpression != nil && str(item["ClassID"]) != classID {
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func TestDynamoDBStore(t *testing.T) {
	runStoreContract(t, NewDynamoDBStore(newFakeDynamo(), "resources", nil))
}

func TestDynamoDBStore_KeyLayout(t *testing.T) {
	fake := newFakeDynamo()
	s := NewDynamoDBStore(fake, "resources", nil)

	require.NoError(t, s.Put(context.Background(), fixture("r1", "u1", "c1", 0)))

	item, ok := fake.items["USER#u1|RESOURCE#r1"]
	require.True(t, ok)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, str(item["Content"]))
}

func TestDynamoDBStore_MapsAPIErrors(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		check func(error) bool
	}{
		{"Should map conditional failures to conflicts", "ConditionalCheckFailedException", apperrors.IsConflict},
		{"Should map throttling to persistence errors", "ProvisionedThroughputExceededException", apperrors.IsPersistence},
		{"Should map a missing table to persistence errors", "ResourceNotFoundException", apperrors.IsPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeDynamo()
			fake.err = &smithy.GenericAPIError{Code: tt.code, Message: "boom"}
			s := NewDynamoDBStore(fake, "resources", nil)

			_, err := s.Get(context.Background(), "u1", "r1")

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
			assert.False(t, apperrors.IsNotFound(err))
		})
	}
}
