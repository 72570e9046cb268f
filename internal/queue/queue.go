// Package queue implements the delay queue (C3): a single Redis sorted set
// keyed by task id, scored by Unix-timestamp fire-at, supporting a
// range-pop of everything due by a given time. Grounded on the teacher's
// redis wrapper (internal/persistence/redis.go) for client construction;
// the sorted-set operations themselves follow spec.md §5's pop_due
// contract, which this package implements with a MULTI/EXEC transaction
// so the read and the remove bracket the same score window.
package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DelayQueue is a process-global sorted set over task ids. The queue may
// lag the database transiently; the database is authoritative for task
// existence, the queue is authoritative for scheduling (spec.md §4.1).
type DelayQueue struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *DelayQueue {
	return &DelayQueue{client: client, key: key}
}

func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 5
	opts.ConnMaxLifetime = time.Hour

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Add schedules id to fire at the given Unix-seconds timestamp.
func (q *DelayQueue) Add(ctx context.Context, id int64, fireAt int64) error {
	return q.client.ZAdd(ctx, q.key, redis.Z{Score: float64(fireAt), Member: idMember(id)}).Err()
}

// Entry is one (task id, fire-at) pair for the batch AddMany variant C6
// uses at ingestion time.
type Entry struct {
	ID     int64
	FireAt int64
}

// AddMany schedules a batch of entries in a single round trip.
func (q *DelayQueue) AddMany(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	zs := make([]redis.Z, len(entries))
	for i, e := range entries {
		zs[i] = redis.Z{Score: float64(e.FireAt), Member: idMember(e.ID)}
	}
	return q.client.ZAdd(ctx, q.key, zs...).Err()
}

// PopDue atomically reads every id scored at most `now`, then removes that
// same score range, and returns the ids. The read and remove are wrapped
// in a MULTI/EXEC transaction so an id added with a later score between
// the two steps is never swept up (spec.md §5).
func (q *DelayQueue) PopDue(ctx context.Context, now int64) ([]int64, error) {
	min := "-inf"
	max := strconv.FormatInt(now, 10)

	var rangeCmd *redis.StringSliceCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rangeCmd = pipe.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{Min: min, Max: max})
		pipe.ZRemRangeByScore(ctx, q.key, min, max)
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pop_due: %w", err)
	}

	members := rangeCmd.Val()
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, perr := strconv.ParseInt(m, 10, 64)
		if perr != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Depth reports the current cardinality of the sorted set. It does not feed
// the queue_depth gauge, which the dispatcher sets from each pop_due batch.
func (q *DelayQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}

// Health pings the Redis connection for the readiness probe (C10).
func (q *DelayQueue) Health(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func idMember(id int64) string {
	return strconv.FormatInt(id, 10)
}
