// Package redis provides Redis-based implementations of the store interfaces.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"vigil-go/internal/config"
)

// Key prefixes for the daily activity counters.
const (
	prefixDocs   = "vigil:docs:"
	prefixErrors = "vigil:errors:"
	prefixUsers  = "vigil:users:"
	keyGauges    = "vigil:gauges"
)

// Daily keys outlive the day they describe so late reads around midnight
// still resolve, then expire.
const dailyTTL = 48 * time.Hour

// MetricsStore implements store.MetricsStore using Redis. Document counts
// and error counts are day-scoped INCR keys, active users a day-scoped set,
// gauges a single hash.
type MetricsStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewMetricsStore creates a new Redis-backed metrics store.
func NewMetricsStore(cfg *config.RedisConfig) (*MetricsStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &MetricsStore{client: client, now: time.Now}, nil
}

func (s *MetricsStore) day() string {
	return s.now().UTC().Format("2006-01-02")
}

// IncrDocuments counts one classified document for today.
func (s *MetricsStore) IncrDocuments(ctx context.Context, failed bool) error {
	day := s.day()

	pipe := s.client.TxPipeline()
	docs := prefixDocs + day
	pipe.Incr(ctx, docs)
	pipe.Expire(ctx, docs, dailyTTL)
	if failed {
		errs := prefixErrors + day
		pipe.Incr(ctx, errs)
		pipe.Expire(ctx, errs, dailyTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to count document: %w", err)
	}
	return nil
}

// TouchUser marks a user as active today.
func (s *MetricsStore) TouchUser(ctx context.Context, userID string) error {
	key := prefixUsers + s.day()

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, userID)
	pipe.Expire(ctx, key, dailyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return nil
}

// SetGauge stores the latest sampled value for an infrastructure metric.
func (s *MetricsStore) SetGauge(ctx context.Context, name string, value float64) error {
	if err := s.client.HSet(ctx, keyGauges, name, value).Err(); err != nil {
		return fmt.Errorf("failed to set gauge %s: %w", name, err)
	}
	return nil
}

// DocumentCounts returns today's processed and failed document counts.
func (s *MetricsStore) DocumentCounts(ctx context.Context) (int64, int64, error) {
	day := s.day()

	processed, err := s.getCounter(ctx, prefixDocs+day)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read document count: %w", err)
	}
	failed, err := s.getCounter(ctx, prefixErrors+day)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read error count: %w", err)
	}
	return processed, failed, nil
}

func (s *MetricsStore) getCounter(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// ActiveUsers returns the number of distinct users seen today.
func (s *MetricsStore) ActiveUsers(ctx context.Context) (int64, error) {
	n, err := s.client.SCard(ctx, prefixUsers+s.day()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return n, nil
}

// Gauges returns the latest value of every stored gauge.
func (s *MetricsStore) Gauges(ctx context.Context) (map[string]float64, error) {
	raw, err := s.client.HGetAll(ctx, keyGauges).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read gauges: %w", err)
	}

	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("gauge %s holds non-numeric value %q", name, v)
		}
		out[name] = f
	}
	return out, nil
}

// Close closes the Redis connection.
func (s *MetricsStore) Close() error {
	return s.client.Close()
}
