package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "studyhub:job:"
	redisActiveSet = "studyhub:jobs:active"
	defaultJobTTL  = 24 * time.Hour
	maxUpdateTries = 5
)

// RedisStore keeps jobs in Redis so API and worker processes share them.
// Each job is a JSON string; non-terminal job IDs are also kept in a sorted
// set scored by last update.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore parses url, pings the server and returns a store.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: defaultJobTTL}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Create(ctx context.Context, job Job) error {
	payload, err := encodeJob(job)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, jobKey(job.ID), payload, s.ttl)
		pipe.ZAdd(ctx, redisActiveSet, redis.Z{Score: float64(job.UpdatedAt.Unix()), Member: job.ID})
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, id string) (Job, error) {
	raw, err := s.rdb.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, err
	}
	return decodeJob(raw)
}

// Update runs fn inside an optimistic WATCH transaction, retrying when
// another process changed the job concurrently.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Job) error) (Job, error) {
	key := jobKey(id)
	var updated Job
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		job, err := decodeJob(raw)
		if err != nil {
			return err
		}
		if err := fn(&job); err != nil {
			return err
		}
		payload, err := encodeJob(job)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			if job.Status.Terminal() {
				pipe.ZRem(ctx, redisActiveSet, job.ID)
			} else {
				pipe.ZAdd(ctx, redisActiveSet, redis.Z{Score: float64(job.UpdatedAt.Unix()), Member: job.ID})
			}
			return nil
		})
		if err == nil {
			updated = job
		}
		return err
	}

	for i := 0; i < maxUpdateTries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Job{}, err
		}
		return updated, nil
	}
	return Job{}, fmt.Errorf("update job %s: too much contention", id)
}

func (s *RedisStore) ListActive(ctx context.Context) ([]Job, error) {
	ids, err := s.rdb.ZRange(ctx, redisActiveSet, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Job{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = jobKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Job, 0, len(values))
	var expired []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Record expired before it reached a terminal state.
			expired = append(expired, ids[i])
			continue
		}
		job, err := decodeJob([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	if len(expired) > 0 {
		s.rdb.ZRem(ctx, redisActiveSet, expired...)
	}
	return out, nil
}

func jobKey(id string) string {
	return redisKeyPrefix + id
}

func encodeJob(job Job) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	return payload, nil
}

func decodeJob(raw []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

var _ Store = (*RedisStore)(nil)

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
