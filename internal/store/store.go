package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lorecast/internal/config"
)

// ErrNotFound is returned when a record is absent from the store.
var ErrNotFound = errors.New("store: record not found")

const connectTimeout = 2 * time.Second

// Record is the contract every durable entity implements. Entities are
// persisted as flat field-value records under "<kind>:<key>", with a
// "<kind>:all" set index for listing.
type Record interface {
	Kind() string
	Key() string
	MarshalFields() (map[string]string, error)
	UnmarshalFields(fields map[string]string) error
}

// recordPtr constrains generic lookups to pointer types implementing Record.
type recordPtr[T any] interface {
	*T
	Record
}

// Client wraps the Redis connection used for entity persistence, secondary
// set-indices, and the locking/dedup substrate. It is constructed explicitly
// and passed in; there is no package-level instance.
type Client struct {
	rdb *redis.Client
}

// Open connects to Redis and verifies the connection with a bounded ping.
func Open(cfg *config.Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromRedis wraps an existing Redis client (used by tests).
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Redis exposes the underlying client for the queue layer, which shares the
// same connection.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func entityKey(kind, key string) string {
	return kind + ":" + key
}

func indexKey(kind string) string {
	return kind + ":all"
}

// Save persists a record and registers it in the kind's set index. Writes
// are last-write-wins; there is no optimistic concurrency check.
func (c *Client) Save(ctx context.Context, rec Record) error {
	fields, err := rec.MarshalFields()
	if err != nil {
		return err
	}
	key := entityKey(rec.Kind(), rec.Key())
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.SAdd(ctx, indexKey(rec.Kind()), rec.Key())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Update persists a record only if it already exists.
func (c *Client) Update(ctx context.Context, rec Record) error {
	key := entityKey(rec.Kind(), rec.Key())
	exists, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	if exists == 0 {
		return fmt.Errorf("update %s: %w", key, ErrNotFound)
	}
	fields, err := rec.MarshalFields()
	if err != nil {
		return err
	}
	if err := c.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	return nil
}

// Delete removes a record and its index entry.
func (c *Client) Delete(ctx context.Context, kind, key string) error {
	full := entityKey(kind, key)
	pipe := c.rdb.TxPipeline()
	del := pipe.Del(ctx, full)
	pipe.SRem(ctx, indexKey(kind), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", full, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("delete %s: %w", full, ErrNotFound)
	}
	return nil
}

// Exists reports whether a record of the given kind and key is present.
func (c *Client) Exists(ctx context.Context, kind, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, entityKey(kind, key)).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", entityKey(kind, key), err)
	}
	return n > 0, nil
}

// Count returns the number of records of a kind via its set index.
func (c *Client) Count(ctx context.Context, kind string) (int64, error) {
	n, err := c.rdb.SCard(ctx, indexKey(kind)).Result()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// Get loads one record by key. Absence is reported as ErrNotFound.
func Get[T any, PT recordPtr[T]](ctx context.Context, c *Client, key string) (*T, error) {
	var value T
	rec := PT(&value)
	full := entityKey(rec.Kind(), key)
	fields, err := c.rdb.HGetAll(ctx, full).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", full, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("get %s: %w", full, ErrNotFound)
	}
	if err := rec.UnmarshalFields(fields); err != nil {
		return nil, err
	}
	return &value, nil
}

// ListAll loads every record of a kind through its set index.
func ListAll[T any, PT recordPtr[T]](ctx context.Context, c *Client) ([]*T, error) {
	var probe T
	kind := PT(&probe).Kind()
	keys, err := c.rdb.SMembers(ctx, indexKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}

	records := make([]*T, 0, len(keys))
	for _, key := range keys {
		rec, err := Get[T, PT](ctx, c, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Index entry outlived its record; skip.
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ListByField returns every record of a kind whose named field matches the
// given value. This is a full-scan filter over ListAll, acceptable at the
// pipeline's expected cardinality, not a general index.
func ListByField[T any, PT recordPtr[T]](ctx context.Context, c *Client, field, value string) ([]*T, error) {
	all, err := ListAll[T, PT](ctx, c)
	if err != nil {
		return nil, err
	}
	matched := make([]*T, 0, len(all))
	for _, rec := range all {
		fields, err := PT(rec).MarshalFields()
		if err != nil {
			return nil, err
		}
		if fields[field] == value {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}
