package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrEthical07/sceneauth"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeSource struct {
	snapshot sceneauth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() sceneauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func TestCollectorCountersAndHistogram(t *testing.T) {
	src := fakeSource{
		snapshot: sceneauth.MetricsSnapshot{
			Counters: map[sceneauth.MetricID]uint64{
				sceneauth.MetricLoginSuccess: 7,
				sceneauth.MetricTokenRotated: 3,
			},
			Histograms: map[sceneauth.MetricID][]uint64{
				sceneauth.MetricVerifyLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	}

	exp, err := NewExporterFromSource(src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}

	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		"sceneauth_login_success_total 7",
		"sceneauth_token_rotated_total 3",
		`sceneauth_verify_latency_seconds_bucket{le="0.005"} 1`,
		`sceneauth_verify_latency_seconds_bucket{le="+Inf"} 36`,
		"sceneauth_verify_latency_seconds_count 36",
		"sceneauth_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestCollectorLintsClean(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{snapshot: sceneauth.MetricsSnapshot{}})
	problems, err := testutil.CollectAndLint(c)
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if len(problems) != 0 {
		t.Fatalf("unexpected lint problems: %v", problems)
	}
}

func TestCollectorRegistersWithCustomRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	if err := reg.Register(NewCollectorFromSource(fakeSource{})); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(NewCollectorFromSource(fakeSource{})); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestCollectorReadsLiveEngine(t *testing.T) {
	m := sceneauth.NewMetrics(sceneauth.MetricsConfig{Enabled: true})
	m.Inc(sceneauth.MetricLogout)
	c := NewCollectorFromSource(fakeSource{snapshot: m.Snapshot()})

	if got := testutil.CollectAndCount(c, "sceneauth_logout_total"); got != 1 {
		t.Fatalf("expected one logout series, got %d", got)
	}
}

func BenchmarkCollect(b *testing.B) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: sceneauth.MetricsSnapshot{
			Counters: map[sceneauth.MetricID]uint64{
				sceneauth.MetricLoginSuccess:  1000,
				sceneauth.MetricVerifySuccess: 40000,
				sceneauth.MetricTokenRotated:  800,
			},
			Histograms: map[sceneauth.MetricID][]uint64{
				sceneauth.MetricVerifyLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ch := make(chan prom.Metric, 32)
		c.Collect(ch)
		close(ch)
	}
}
