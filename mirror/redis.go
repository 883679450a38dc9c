package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "mirror:properties:"

// writeScript stores the JSON document in ARGV[1] under KEYS[1] as is and
// records the Redis server clock (epoch millis) as createdAt/updatedAt in the
// hash KEYS[2].
const writeScript = `
local now = redis.call('TIME')
local ms = string.format('%d', tonumber(now[1]) * 1000 + math.floor(tonumber(now[2]) / 1000))
redis.call('SET', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[2], 'createdAt', ms, 'updatedAt', ms)
return ms
`

// RedisStore keeps each mirror document as a JSON string under prefix+key
// and its write stamps in a hash under the prefix with "@meta:" in place of
// the trailing separator. A commit is one MULTI/EXEC transaction.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	batch  int
}

func NewRedisStore(client redis.UniversalClient, prefix string, batch int) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &RedisStore{client: client, prefix: prefix, batch: batch}
}

func (s *RedisStore) MaxBatch() int { return s.batch }

func (s *RedisStore) metaKey(key string) string {
	return strings.TrimSuffix(s.prefix, ":") + "@meta:" + key
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Commit(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) > s.batch {
		return fmt.Errorf("batch of %d exceeds limit %d", len(docs), s.batch)
	}
	payloads := make([][]byte, len(docs))
	for i, d := range docs {
		raw, err := json.Marshal(d.Data)
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.Key, err)
		}
		payloads[i] = raw
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, d := range docs {
			pipe.Eval(ctx, writeScript, []string{s.prefix + d.Key, s.metaKey(d.Key)}, payloads[i])
		}
		return nil
	})
	return err
}

// Get decodes a stored document and adds its createdAt/updatedAt stamps in
// epoch millis. It returns redis.Nil when key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) (map[string]any, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	stamps, err := s.client.HGetAll(ctx, s.metaKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("read stamps of %s: %w", key, err)
	}
	for field, v := range stamps {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("read stamps of %s: %w", key, err)
		}
		doc[field] = ms
	}
	return doc, nil
}
