package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/sceneauth"
	"github.com/MrEthical07/sceneauth/token"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const scene = "load"

// singleCookie serves one scene cookie to the engine.
type singleCookie struct {
	cookie *http.Cookie
}

func (s singleCookie) Cookie(name string) (*http.Cookie, error) {
	if s.cookie == nil || s.cookie.Name != name {
		return nil, http.ErrNoCookie
	}
	return s.cookie, nil
}

type sessionState struct {
	mu     sync.Mutex
	cookie *http.Cookie
}

// skewClock lets seeding mint tokens that are already expired.
type skewClock struct {
	offset atomic.Int64
}

func (c *skewClock) Now() time.Time {
	return time.Now().Add(time.Duration(c.offset.Load()))
}

func main() {
	var (
		sessions    = flag.Int("sessions", 20000, "sessions to seed per phase")
		concurrency = flag.Int("concurrency", 256, "concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "rt", "refresh key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}
	if err := run(*sessions, *concurrency, *ops, *redisAddr, *prefix); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(sessions, concurrency, ops int, addr, prefix string) error {
	ctx := context.Background()

	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start miniredis: %w", err)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		fmt.Printf("using redis at %s\n", addr)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	defer client.Close()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	cfg := sceneauth.DefaultConfig()
	cfg.Token.PrivateKey = priv
	cfg.Token.PublicKey = pub
	cfg.Refresh.RedisPrefix = prefix
	cfg.Security.EnableRotationThrottle = false
	cfg.Audit.Enabled = false
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	clock := &skewClock{}
	tm, err := token.NewManager(token.Config{
		AccessTTL:     cfg.Token.AccessTTL,
		SigningMethod: token.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Clock:         clock.Now,
	})
	if err != nil {
		return err
	}

	engine, err := sceneauth.New().
		WithConfig(cfg).
		WithRedis(client).
		WithTokenService(tm).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	live, err := seed(ctx, engine, sessions)
	if err != nil {
		return err
	}
	clock.offset.Store(int64(-time.Hour))
	expired, err := seed(ctx, engine, sessions)
	clock.offset.Store(0)
	if err != nil {
		return err
	}

	createStats := runPhase(ops, concurrency, func(_ *mrand.Rand) error {
		_, err := engine.Create(ctx, scene, map[string]any{"uid": "load"})
		return err
	})
	verifyStats := runPhase(ops, concurrency, func(r *mrand.Rand) error {
		st := &live[r.Intn(len(live))]
		_, err := engine.Verify(ctx, singleCookie{st.cookie}, scene)
		return err
	})
	rotateStats := runPhase(ops, concurrency, func(r *mrand.Rand) error {
		st := &expired[r.Intn(len(expired))]
		st.mu.Lock()
		defer st.mu.Unlock()
		res, err := engine.Verify(ctx, singleCookie{st.cookie}, scene)
		if c := sceneauth.CookieOf(res); c != nil {
			st.cookie = c
		}
		return err
	})
	destroyStats := runPhase(len(live), concurrency, func(r *mrand.Rand) error {
		st := &live[r.Intn(len(live))]
		_, err := engine.Destroy(ctx, singleCookie{st.cookie}, scene)
		return err
	})

	fmt.Println("---- results ----")
	printStats("create", createStats)
	printStats("verify", verifyStats)
	printStats("rotate", rotateStats)
	printStats("destroy", destroyStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("rotated=%d refresh_expired=%d storage_failures=%d\n",
		snap.Counters[sceneauth.MetricTokenRotated],
		snap.Counters[sceneauth.MetricRefreshExpired],
		snap.Counters[sceneauth.MetricStorageFailure],
	)
	return nil
}

func seed(ctx context.Context, engine *sceneauth.Engine, n int) ([]sessionState, error) {
	states := make([]sessionState, n)
	start := time.Now()
	for i := range states {
		res, err := engine.Create(ctx, scene, map[string]any{"uid": fmt.Sprintf("u%d", i)})
		if err != nil {
			return nil, fmt.Errorf("seed create failed: %w", err)
		}
		states[i].cookie = sceneauth.CookieOf(res)
	}
	fmt.Printf("seeded %d sessions in %s\n", n, time.Since(start).Round(time.Millisecond))
	return states, nil
}

func runPhase(ops, concurrency int, op func(r *mrand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := mrand.New(mrand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				if int(atomic.AddInt64(&cursor, 1))-1 >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
