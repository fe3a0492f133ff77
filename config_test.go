package sceneauth

import (
	"net/http"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{name: "defaults with keys", mutate: func(*Config) {}, wantValid: true},
		{
			name:      "token leeway valid",
			mutate:    func(c *Config) { c.Token.Leeway = 45 * time.Second },
			wantValid: true,
		},
		{
			name:      "token leeway invalid",
			mutate:    func(c *Config) { c.Token.Leeway = 3 * time.Minute },
			wantValid: false,
		},
		{
			name:      "signing invalid",
			mutate:    func(c *Config) { c.Token.SigningMethod = "rs256" },
			wantValid: false,
		},
		{
			name: "hs256 valid",
			mutate: func(c *Config) {
				c.Token.SigningMethod = "hs256"
				c.Token.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
				c.Token.PublicKey = nil
			},
			wantValid: true,
		},
		{
			name:      "ed25519 without public key",
			mutate:    func(c *Config) { c.Token.PublicKey = nil },
			wantValid: false,
		},
		{
			name:      "blank key id",
			mutate:    func(c *Config) { c.Token.KeyID = "  " },
			wantValid: false,
		},
		{
			name:      "access ttl zero",
			mutate:    func(c *Config) { c.Token.AccessTTL = 0 },
			wantValid: false,
		},
		{
			name:      "access ttl below one second",
			mutate:    func(c *Config) { c.Token.AccessTTL = 500 * time.Millisecond },
			wantValid: false,
		},
		{
			name:      "refresh ttl zero",
			mutate:    func(c *Config) { c.Refresh.TTL = 0 },
			wantValid: false,
		},
		{
			name:      "access ttl not shorter than refresh ttl",
			mutate:    func(c *Config) { c.Token.AccessTTL = c.Refresh.TTL },
			wantValid: false,
		},
		{
			name:      "empty redis prefix",
			mutate:    func(c *Config) { c.Refresh.RedisPrefix = "" },
			wantValid: false,
		},
		{
			name: "samesite none without secure",
			mutate: func(c *Config) {
				c.Cookie.SameSite = http.SameSiteNoneMode
				c.Cookie.Secure = false
			},
			wantValid: false,
		},
		{
			name:      "relative cookie path",
			mutate:    func(c *Config) { c.Cookie.Path = "app" },
			wantValid: false,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name:      "throttle without budget",
			mutate:    func(c *Config) { c.Security.MaxRotations = 0 },
			wantValid: false,
		},
		{
			name: "throttle disabled ignores budget",
			mutate: func(c *Config) {
				c.Security.EnableRotationThrottle = false
				c.Security.MaxRotations = 0
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t)
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected invalid config")
			}
		})
	}
}

func TestConfigProductionMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.ProductionMode = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should satisfy production mode: %v", err)
	}

	cfg.Cookie.Secure = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected production mode to require secure cookies")
	}

	cfg = testConfig(t)
	cfg.Security.ProductionMode = true
	cfg.Token.AccessTTL = time.Hour
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected production mode to cap access ttl")
	}
}

func TestDefaultRefreshTTLIsSevenDays(t *testing.T) {
	if got := DefaultConfig().Refresh.TTL; got != 604800*time.Second {
		t.Fatalf("unexpected default refresh ttl %v", got)
	}
}

func TestWithConfigClonesKeyMaterial(t *testing.T) {
	cfg := testConfig(t)
	b := New().WithConfig(cfg)
	cfg.Token.PrivateKey[0] ^= 0xff

	if b.config.Token.PrivateKey[0] == cfg.Token.PrivateKey[0] {
		t.Fatal("builder config must not alias caller key material")
	}
}

func TestBuildRequiresRedis(t *testing.T) {
	if _, err := New().WithConfig(testConfig(t)).Build(); err == nil {
		t.Fatal("expected build without redis to fail")
	}

	cfg := testConfig(t)
	_, err := New().WithConfig(cfg).WithRefreshStore(&failingStore{}).Build()
	if err == nil {
		t.Fatal("expected rotation throttle without redis to fail")
	}

	cfg.Security.EnableRotationThrottle = false
	engine, err := New().WithConfig(cfg).WithRefreshStore(&failingStore{}).Build()
	if err != nil {
		t.Fatalf("injected store without throttle should build: %v", err)
	}
	engine.Close()
}

func TestBuilderSingleUse(t *testing.T) {
	_, rdb := newTestRedis(t)
	b := New().WithConfig(testConfig(t)).WithRedis(rdb)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}
