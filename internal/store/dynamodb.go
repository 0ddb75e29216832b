package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
)

const (
	userKeyPrefix     = "USER#"
	resourceKeyPrefix = "RESOURCE#"
)

// DynamoDBAPI is the part of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	dynamodb.QueryAPIClient
}

// DynamoDBStore keeps resources in a single table keyed by
// PK=USER#{userId}, SK=RESOURCE#{resourceId}.
type DynamoDBStore struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// dynamoItem is the stored shape; content is kept as a JSON string.
type dynamoItem struct {
	PK        string    `dynamodbav:"PK"`
	SK        string    `dynamodbav:"SK"`
	ID        string    `dynamodbav:"ResourceID"`
	UserID    string    `dynamodbav:"UserID"`
	ClassID   string    `dynamodbav:"ClassID"`
	Type      string    `dynamodbav:"Type"`
	Name      string    `dynamodbav:"Name"`
	Content   string    `dynamodbav:"Content"`
	ClassName *string   `dynamodbav:"ClassName,omitempty"`
	CreatedAt time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt time.Time `dynamodbav:"UpdatedAt"`
}

func NewDynamoDBStore(client DynamoDBAPI, tableName string, logger *zap.Logger) *DynamoDBStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DynamoDBStore{client: client, tableName: tableName, logger: logger}
}

// NewDynamoDBStoreFromConfig loads the default AWS configuration and
// creates the client. A non-empty endpoint targets DynamoDB Local.
func NewDynamoDBStoreFromConfig(ctx context.Context, cfg config.DynamoDBConfig, logger *zap.Logger) (*DynamoDBStore, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsConfig.LoadDefaultConfig(loadCtx, awsConfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewDynamoDBStore(client, cfg.TableName, logger), nil
}

func userKey(userID string) string         { return userKeyPrefix + userID }
func resourceKey(resourceID string) string { return resourceKeyPrefix + resourceID }

func (s *DynamoDBStore) Get(ctx context.Context, userID, resourceID string) (*resource.Resource, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userKey(userID)},
			"SK": &types.AttributeValueMemberS{Value: resourceKey(resourceID)},
		},
	})
	if err != nil {
		return nil, dynamoError("get", err)
	}
	if out.Item == nil {
		return nil, notFound(resourceID)
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewPersistenceError("failed to decode resource").WithCause(err)
	}
	return item.toResource(), nil
}

func (s *DynamoDBStore) Put(ctx context.Context, res *resource.Resource) error {
	if err := validateForPut(res); err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(newDynamoItem(res))
	if err != nil {
		return apperrors.NewPersistenceError("failed to encode resource").WithCause(err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return dynamoError("put", err)
	}

	s.logger.Debug("stored resource",
		zap.String("user_id", res.UserID),
		zap.String("resource_id", res.ID))
	return nil
}

func (s *DynamoDBStore) List(ctx context.Context, userID, classID string) ([]resource.Resource, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(userKey(userID))).
		And(expression.Key("SK").BeginsWith(resourceKeyPrefix))
	builder := expression.NewBuilder().WithKeyCondition(keyEx)
	if classID != "" {
		builder = builder.WithFilter(expression.Name("ClassID").Equal(expression.Value(classID)))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	out := []resource.Resource{}
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, dynamoError("list", err)
		}
		var items []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, apperrors.NewPersistenceError("failed to decode resources").WithCause(err)
		}
		for i := range items {
			out = append(out, *items[i].toResource())
		}
	}
	newestFirst(out)
	return out, nil
}

func (s *DynamoDBStore) Close() error { return nil }

func newDynamoItem(res *resource.Resource) dynamoItem {
	return dynamoItem{
		PK:        userKey(res.UserID),
		SK:        resourceKey(res.ID),
		ID:        res.ID,
		UserID:    res.UserID,
		ClassID:   res.ClassID,
		Type:      res.Type,
		Name:      res.Name,
		Content:   string(res.Content),
		ClassName: res.ClassName,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}

func (item *dynamoItem) toResource() *resource.Resource {
	res := &resource.Resource{
		ID:        item.ID,
		UserID:    item.UserID,
		ClassID:   item.ClassID,
		Type:      item.Type,
		Name:      item.Name,
		ClassName: item.ClassName,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.ID == "" {
		res.ID = strings.TrimPrefix(item.SK, resourceKeyPrefix)
	}
	if item.Content != "" {
		res.Content = json.RawMessage(item.Content)
	}
	return res
}

// dynamoError maps DynamoDB API errors onto application errors.
func dynamoError(op string, err error) error {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return apperrors.NewPersistenceError(fmt.Sprintf("resource %s failed", op)).WithCause(err)
	}
	switch ae.ErrorCode() {
	case "ResourceNotFoundException":
		return apperrors.NewPersistenceError("resource table not found").WithDetails(ae.ErrorMessage()).WithCause(err)
	case "ConditionalCheckFailedException":
		return apperrors.NewConflictError("resource was modified concurrently").WithCause(err)
	case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException":
		return apperrors.NewPersistenceError("resource store is busy, try again").WithCode(ae.ErrorCode()).WithCause(err)
	default:
		return apperrors.NewPersistenceError(fmt.Sprintf("resource %s failed", op)).WithCode(ae.ErrorCode()).WithCause(err)
	}
}
