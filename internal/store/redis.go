package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/domain/resource"
	apperrors "hackverse-mindmap/internal/errors"
)

// RedisStore keeps each resource as a JSON value and indexes a user's
// resources in a sorted set scored by creation time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "hackverse"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) resourceKey(userID, resourceID string) string {
	return fmt.Sprintf("%s:user:%s:resource:%s", s.prefix, userID, resourceID)
}

func (s *RedisStore) indexKey(userID string) string {
	return fmt.Sprintf("%s:user:%s:resources", s.prefix, userID)
}

func (s *RedisStore) Get(ctx context.Context, userID, resourceID string) (*resource.Resource, error) {
	data, err := s.client.Get(ctx, s.resourceKey(userID, resourceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(resourceID)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("resource get failed").WithCause(err)
	}
	var res resource.Resource
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, apperrors.NewPersistenceError("failed to decode resource").WithCause(err)
	}
	return &res, nil
}

func (s *RedisStore) Put(ctx context.Context, res *resource.Resource) error {
	if err := validateForPut(res); err != nil {
		return err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return apperrors.NewPersistenceError("failed to encode resource").WithCause(err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.resourceKey(res.UserID, res.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(res.UserID), redis.Z{
			Score:  float64(res.CreatedAt.UnixMilli()),
			Member: res.ID,
		})
		return nil
	})
	if err != nil {
		return apperrors.NewPersistenceError("resource put failed").WithCause(err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, userID, classID string) ([]resource.Resource, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, apperrors.NewPersistenceError("resource list failed").WithCause(err)
	}
	out := []resource.Resource{}
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.resourceKey(userID, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperrors.NewPersistenceError("resource list failed").WithCause(err)
	}
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var res resource.Resource
		if err := json.Unmarshal([]byte(str), &res); err != nil {
			return nil, apperrors.NewPersistenceError("failed to decode resource").WithCause(err)
		}
		if classID != "" && res.ClassID != classID {
			continue
		}
		out = append(out, res)
	}
	newestFirst(out)
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
