package snapshot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"vigil-go/internal/condition"
	"vigil-go/internal/store/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildSnapshotComposesAllVariables(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewMetricsStore()

	for i := 0; i < 8; i++ {
		if err := ms.IncrDocuments(ctx, false); err != nil {
			t.Fatalf("IncrDocuments() error = %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := ms.IncrDocuments(ctx, true); err != nil {
			t.Fatalf("IncrDocuments() error = %v", err)
		}
	}
	_ = ms.TouchUser(ctx, "u1")
	_ = ms.TouchUser(ctx, "u2")
	_ = ms.SetGauge(ctx, condition.VarQueueSize, 17)
	_ = ms.SetGauge(ctx, condition.VarCPUUsage, 42.5)

	fixed := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	b := NewMetricsBuilder(ms, discardLogger(),
		WithClock(func() time.Time { return fixed }),
		WithDBConnections(func() int64 { return 12 }),
	)

	snap, err := b.BuildSnapshot(ctx)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}

	if got := snap[condition.VarDocumentsToday]; got != float64(10) {
		t.Errorf("documents_today = %v, want 10", got)
	}
	if got := snap[condition.VarErrorRate]; got != float64(20) {
		t.Errorf("error_rate = %v, want 20", got)
	}
	if got := snap[condition.VarActiveUsers]; got != float64(2) {
		t.Errorf("active_users = %v, want 2", got)
	}
	if got := snap[condition.VarQueueSize]; got != float64(17) {
		t.Errorf("queue_size = %v, want 17", got)
	}
	if got := snap[condition.VarCurrentHour]; got != float64(14) {
		t.Errorf("current_hour = %v, want 14", got)
	}
	wantDate := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := snap[condition.VarCurrentDate]; !got.(time.Time).Equal(wantDate) {
		t.Errorf("current_date = %v, want %v", got, wantDate)
	}
	if got := snap[condition.VarDBConnections]; got != float64(12) {
		t.Errorf("db_connections = %v, want probe value 12", got)
	}

	// Catalog coverage: every declared variable must be present.
	for _, v := range condition.DefaultCatalog().Variables() {
		if _, ok := snap[v.Name]; !ok {
			t.Errorf("snapshot missing catalog variable %q", v.Name)
		}
	}
}

func TestBuildSnapshotErrorRateZeroWithoutDocuments(t *testing.T) {
	ms := memory.NewMetricsStore()
	b := NewMetricsBuilder(ms, discardLogger())

	snap, err := b.BuildSnapshot(context.Background())
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	if got := snap[condition.VarErrorRate]; got != float64(0) {
		t.Errorf("error_rate = %v, want 0 when nothing was processed", got)
	}
}

func TestBuildSnapshotGaugeFallbackForDBConnections(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewMetricsStore()
	_ = ms.SetGauge(ctx, condition.VarDBConnections, 5)

	b := NewMetricsBuilder(ms, discardLogger())
	snap, err := b.BuildSnapshot(ctx)
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	if got := snap[condition.VarDBConnections]; got != float64(5) {
		t.Errorf("db_connections = %v, want sampled gauge 5", got)
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(7.5); got != "7.50" {
		t.Errorf("FormatValue(7.5) = %q, want 7.50", got)
	}
	d := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := FormatValue(d); got != "2026-08-31" {
		t.Errorf("FormatValue(date) = %q, want 2026-08-31", got)
	}
	if got := FormatValue(true); got != "true" {
		t.Errorf("FormatValue(true) = %q, want true", got)
	}
}
