package sceneauth

import (
	"testing"
	"time"
)

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func TestLint_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	codes := cfg.Lint().Codes()

	for _, unwanted := range []string{"rate_limits_disabled", "cookie_insecure", "cookie_script_readable", "sliding_renewal_unbounded"} {
		if containsCode(codes, unwanted) {
			t.Errorf("default config should not produce warning %q", unwanted)
		}
	}
	if !containsCode(codes, "token_unscoped") {
		t.Error("expected token_unscoped for default config without issuer")
	}
}

func TestLint_Findings(t *testing.T) {
	tests := []struct {
		code   string
		mutate func(*Config)
	}{
		{"leeway_large", func(c *Config) { c.Token.Leeway = 90 * time.Second }},
		{"access_ttl_long", func(c *Config) { c.Token.AccessTTL = 15 * time.Minute }},
		{"refresh_ttl_long", func(c *Config) { c.Refresh.TTL = 60 * 24 * time.Hour }},
		{"rate_limits_disabled", func(c *Config) { c.Security.EnableRotationThrottle = false }},
		{"sliding_renewal_unbounded", func(c *Config) { c.Refresh.SlidingRenewal = true }},
		{"cookie_insecure", func(c *Config) { c.Cookie.Secure = false }},
		{"cookie_script_readable", func(c *Config) { c.Cookie.HTTPOnly = false }},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if !containsCode(cfg.Lint().Codes(), tc.code) {
				t.Fatalf("expected %s warning", tc.code)
			}
		})
	}
}
