package preview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis under a namespace, each with a TTL.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// NewRedisStore returns a store that prefixes every key with namespace.
// A ttl of zero keeps entries until deleted.
func NewRedisStore(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) key(k string) string { return s.namespace + k }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis DEL %s: %w", key, err)
	}
	return nil
}

// Keys walks the namespace with SCAN so a large keyspace never blocks the
// server.
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	pattern := escapeGlob(s.key(prefix)) + "*"
	keys := make([]string, 0)

	iter := s.client.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis SCAN %s: %w", pattern, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// escapeGlob escapes the characters SCAN MATCH treats specially.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
