package memory

import (
	"context"
	"sync"
	"time"
)

// MetricsStore is an in-memory implementation of store.MetricsStore.
// Daily counters reset automatically when the UTC date rolls over.
type MetricsStore struct {
	mu        sync.RWMutex
	day       string
	processed int64
	failed    int64
	users     map[string]bool
	gauges    map[string]float64
	now       func() time.Time
}

// NewMetricsStore creates a new in-memory metrics store.
func NewMetricsStore() *MetricsStore {
	s := &MetricsStore{
		users:  make(map[string]bool),
		gauges: make(map[string]float64),
		now:    time.Now,
	}
	s.day = s.today()
	return s
}

// SetClock overrides the time source. Useful for rollover tests.
func (s *MetricsStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MetricsStore) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// rollover resets daily counters when the date changes. Callers must hold
// the write lock.
func (s *MetricsStore) rollover() {
	if day := s.today(); day != s.day {
		s.day = day
		s.processed = 0
		s.failed = 0
		s.users = make(map[string]bool)
	}
}

// IncrDocuments counts one classified document for today.
func (s *MetricsStore) IncrDocuments(ctx context.Context, failed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover()
	s.processed++
	if failed {
		s.failed++
	}
	return nil
}

// TouchUser marks a user as active today.
func (s *MetricsStore) TouchUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover()
	s.users[userID] = true
	return nil
}

// SetGauge stores the latest sampled value for an infrastructure metric.
func (s *MetricsStore) SetGauge(ctx context.Context, name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gauges[name] = value
	return nil
}

// DocumentCounts returns today's processed and failed document counts.
func (s *MetricsStore) DocumentCounts(ctx context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover()
	return s.processed, s.failed, nil
}

// ActiveUsers returns the number of distinct users seen today.
func (s *MetricsStore) ActiveUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollover()
	return int64(len(s.users)), nil
}

// Gauges returns a copy of the latest gauge values.
func (s *MetricsStore) Gauges(ctx context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(s.gauges))
	for k, v := range s.gauges {
		out[k] = v
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MetricsStore) Close() error {
	return nil
}
