package hotstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/config"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/rowkey"
)

// Cell column names inside the event_data family.
const (
	CellEventType = "event_type"
	CellProductID = "product_id"
	CellRevenue   = "revenue"

	// cellWrittenAt records the processing-time write timestamp of the last
	// mutation, in epoch milliseconds. Versioning is by processing time, not
	// event time: out-of-order arrivals overwrite in arrival order.
	cellWrittenAt = "written_at"
)

// DefaultLookupLimit bounds a profile read when the caller supplies no limit.
const DefaultLookupLimit = 5

// Redis key layout: one sorted set carries every row key at score zero, so
// member order is pure lexicographic byte order and ZRANGEBYLEX is a bounded
// prefix scan. Each row's cells live in a hash keyed by its row key.
const (
	indexKey    = "user_events:index"
	rowKeyspace = "user_events:event_data:"
)

// ErrNoEvents is returned by Lookup when the prefix scan matches zero rows.
// It is a normal outcome, not a failure.
var ErrNoEvents = errors.New("no events for user")

// RowMutation is one logical hot-path write: a row key plus its cell values.
// Cell values are string-encoded; consumers parse numbers back from strings.
type RowMutation struct {
	Key   []byte
	Cells map[string]string
}

// ProfileEvent is one decoded row from a profile lookup.
type ProfileEvent struct {
	RowKey    string `json:"row_key"`
	EventType string `json:"event_type"`
	ProductID string `json:"product_id"`
	Revenue   string `json:"revenue"`
}

// Store is the hot-path key-value sink and read client. It holds one long-lived
// Redis client, safe for concurrent use by many in-flight events.
type Store struct {
	client *redis.Client
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(cfg *config.RedisConfig, logger *zap.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis hot store",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	return &Store{client: client, logger: logger}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// HealthCheck verifies the Redis connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Apply writes one row mutation: the row key is registered in the scan index
// and the cells are written to the row hash. Writing the same key twice
// overwrites cell values (last-writer-wins); no event id disambiguates
// same-millisecond collisions.
func (s *Store) Apply(ctx context.Context, m RowMutation) error {
	fields := make(map[string]interface{}, len(m.Cells)+1)
	for cell, value := range m.Cells {
		fields[cell] = value
	}
	fields[cellWrittenAt] = time.Now().UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, indexKey, &redis.Z{Score: 0, Member: string(m.Key)})
	pipe.HSet(ctx, rowHashKey(m.Key), fields)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to apply row mutation: %w", err)
	}
	return nil
}

// Lookup performs a bounded prefix scan for one user and decodes the matched
// rows. Rows come back in index order, which the row-key encoding guarantees
// is reverse-chronological down to millisecond resolution; no client-side sort
// happens here.
func (s *Store) Lookup(ctx context.Context, userID string, limit int) ([]ProfileEvent, error) {
	if limit <= 0 {
		limit = DefaultLookupLimit
	}

	prefix := string(rowkey.Prefix(userID))
	keys, err := s.client.ZRangeByLex(ctx, indexKey, &redis.ZRangeBy{
		Min:    "[" + prefix,
		Max:    "[" + prefix + "\xff",
		Offset: 0,
		Count:  int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan row keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, ErrNoEvents
	}

	events := make([]ProfileEvent, 0, len(keys))
	for _, key := range keys {
		cells, err := s.client.HGetAll(ctx, rowHashKey([]byte(key))).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %s: %w", key, err)
		}
		events = append(events, ProfileEvent{
			RowKey:    key,
			EventType: cells[CellEventType],
			ProductID: cells[CellProductID],
			Revenue:   cells[CellRevenue],
		})
	}

	return events, nil
}

func rowHashKey(key []byte) string {
	return rowKeyspace + string(key)
}
