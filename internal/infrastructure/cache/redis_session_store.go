package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/repository"
)

const sessionKeyPrefix = "pos-gateway:session:"

// RedisSessionStore shares sessions between gateway instances.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(addr string, password string, db int, ttl time.Duration) *RedisSessionStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSessionStore{client: client, ttl: ttl}
}

var _ repository.SessionRepository = (*RedisSessionStore)(nil)

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func (s *RedisSessionStore) Get(ctx context.Context, digest string) (*entity.Session, error) {
	val, err := s.client.Get(ctx, sessionKey(digest)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *entity.Session) error {
	if session == nil {
		return nil
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.TokenDigest), payload, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, digest string) error {
	return s.client.Del(ctx, sessionKey(digest)).Err()
}

func sessionKey(digest string) string {
	return sessionKeyPrefix + digest
}
