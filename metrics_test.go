package sceneauth

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricTokenRotated)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricTokenRotated); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricVerifyLatency, d)
	}
	m.Observe(MetricLoginSuccess, time.Millisecond)

	buckets := m.Snapshot().Histograms[MetricVerifyLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestEngineMetricsTrackOutcomes(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Metrics.EnableLatencyHistograms = true
	}, nil)
	ctx := context.Background()

	cookie := mustCreate(t, env, "user", nil)
	_, _ = env.engine.Verify(ctx, requestWithCookie(nil), "user")
	_, _ = env.engine.Verify(ctx, requestWithCookie(cookie), "user")
	env.clock.Advance(10 * time.Minute)
	_, _ = env.engine.Verify(ctx, requestWithCookie(cookie), "user")
	_, _ = env.engine.Destroy(ctx, requestWithCookie(cookie), "user")
	_, _ = env.engine.Destroy(ctx, requestWithCookie(nil), "user")

	snap := env.engine.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricLoginSuccess:      1,
		MetricMissingCredential: 1,
		MetricVerifyFailure:     1,
		MetricVerifySuccess:     2,
		MetricTokenRotated:      1,
		MetricLogout:            1,
		MetricLogoutNoop:        1,
	}
	for id, v := range want {
		if snap.Counters[id] != v {
			t.Errorf("metric %d: expected %d, got %d", id, v, snap.Counters[id])
		}
	}

	var total uint64
	for _, v := range snap.Histograms[MetricVerifyLatency] {
		total += v
	}
	if total != 3 {
		t.Fatalf("expected 3 verify latency observations, got %d", total)
	}
}
