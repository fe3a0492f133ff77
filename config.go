package sceneauth

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config defines the complete Engine configuration.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Token    TokenConfig
	Refresh  RefreshConfig
	Cookie   CookieConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Security SecurityConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls signing and validation of scene access tokens.
type TokenConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls the server-side refresh records.
type RefreshConfig struct {
	// TTL is the renewable window of a session, independent of token expiry.
	TTL         time.Duration
	RedisPrefix string
	// SlidingRenewal restarts TTL on every successful rotation.
	SlidingRenewal bool
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process counters and the verify latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds hardening switches.
type SecurityConfig struct {
	ProductionMode         bool
	EnableRotationThrottle bool
	MaxRotations           int
	RotationWindow         time.Duration
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultRefreshTTL is the renewable session window used when none is configured.
const DefaultRefreshTTL = 7 * 24 * time.Hour

// DefaultConfig returns a config with every field except key material populated.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:     5 * time.Minute,
			SigningMethod: "ed25519",
			Leeway:        0,
		},
		Refresh: RefreshConfig{
			TTL:            DefaultRefreshTTL,
			RedisPrefix:    "rt",
			SlidingRenewal: false,
		},
		Cookie: CookieConfig{
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Security: SecurityConfig{
			ProductionMode:         false,
			EnableRotationThrottle: true,
			MaxRotations:           30,
			RotationWindow:         time.Minute,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	if cfg.Token.VerifyKeys != nil {
		out.Token.VerifyKeys = make(map[string][]byte, len(cfg.Token.VerifyKeys))
		for kid, key := range cfg.Token.VerifyKeys {
			out.Token.VerifyKeys[kid] = cloneBytes(key)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks field ranges and cross-field constraints.
//
// Validate only inspects the config; it does not parse key material. Key
// parsing errors surface from [Builder.Build].
func (c *Config) Validate() error {
	if err := c.validateTokenKeys(); err != nil {
		return err
	}
	return c.validateWithoutKeys()
}

func (c *Config) validateTokenKeys() error {
	switch c.Token.SigningMethod {
	case "ed25519":
		if len(c.Token.PrivateKey) == 0 {
			return errors.New("ed25519 requires PrivateKey")
		}
		if len(c.Token.PublicKey) == 0 && len(c.Token.VerifyKeys) == 0 {
			return errors.New("ed25519 requires PublicKey or VerifyKeys")
		}
	case "hs256":
		if len(c.Token.PrivateKey) == 0 {
			return errors.New("hs256 requires PrivateKey")
		}
	default:
		return errors.New("unsupported Token signing method")
	}
	if c.Token.KeyID != "" && strings.TrimSpace(c.Token.KeyID) == "" {
		return errors.New("Token KeyID must not be blank")
	}
	return nil
}

// validateWithoutKeys runs every check that still applies when the token
// service is injected.
func (c *Config) validateWithoutKeys() error {
	// Token
	if c.Token.AccessTTL < time.Second {
		return errors.New("Token AccessTTL must be at least 1s")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Refresh
	if c.Refresh.TTL <= 0 {
		return errors.New("Refresh TTL must be > 0")
	}
	if c.Token.AccessTTL >= c.Refresh.TTL {
		return errors.New("Token AccessTTL must be shorter than Refresh TTL")
	}
	if c.Refresh.RedisPrefix == "" {
		return errors.New("Refresh RedisPrefix must not be empty")
	}
	if strings.ContainsAny(c.Refresh.RedisPrefix, " \t\r\n") {
		return errors.New("Refresh RedisPrefix must not contain whitespace")
	}

	// Cookie
	if c.Cookie.SameSite == http.SameSiteNoneMode && !c.Cookie.Secure {
		return errors.New("Cookie SameSite=None requires Secure")
	}
	if c.Cookie.MaxAge < 0 {
		return errors.New("Cookie MaxAge must be >= 0")
	}
	if c.Cookie.Path != "" && !strings.HasPrefix(c.Cookie.Path, "/") {
		return errors.New("Cookie Path must start with '/'")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Security
	if c.Security.EnableRotationThrottle {
		if c.Security.MaxRotations <= 0 {
			return errors.New("MaxRotations must be > 0 when rotation throttle is enabled")
		}
		if c.Security.RotationWindow <= 0 {
			return errors.New("RotationWindow must be > 0 when rotation throttle is enabled")
		}
	}

	if c.Security.ProductionMode {
		if c.Token.AccessTTL > 15*time.Minute {
			return errors.New("ProductionMode requires Token AccessTTL <= 15m")
		}
		if c.Refresh.TTL > 30*24*time.Hour {
			return errors.New("ProductionMode requires Refresh TTL <= 30d")
		}
		if c.Token.SigningMethod == "hs256" && len(c.Token.PrivateKey) < 32 {
			return errors.New("ProductionMode requires hs256 key length >= 256 bits")
		}
		if !c.Cookie.Secure || !c.Cookie.HTTPOnly {
			return errors.New("ProductionMode requires Secure and HTTPOnly cookies")
		}
		if !c.Security.EnableRotationThrottle {
			return errors.New("ProductionMode requires rotation throttle")
		}
	}

	return nil
}
