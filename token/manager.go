package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the signature algorithm used for access tokens.
type SigningMethod string

const (
	// MethodEd25519 signs tokens with EdDSA over Ed25519.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs tokens with HMAC-SHA256.
	MethodHS256 SigningMethod = "hs256"
)

var (
	// ErrSceneMismatch is returned when a token was issued for another scene.
	ErrSceneMismatch = errors.New("token scene mismatch")
	// ErrMissingClaims is returned when a token lacks jti, ack, iat or exp.
	ErrMissingClaims = errors.New("token missing required claims")
	// ErrInvalidInput is returned when Create is called with empty identifiers.
	ErrInvalidInput = errors.New("invalid token input")
)

// Config defines signing and validation parameters for a [Manager].
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	AccessTTL     time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	MaxFutureIAT  time.Duration
	KeyID         string
	VerifyKeys    map[string][]byte

	// Clock overrides time.Now. Nil uses the wall clock.
	Clock func() time.Time
}

// Claims is the payload of a scene access token.
type Claims struct {
	Scene  string         `json:"scene"`
	Ack    string         `json:"ack"`
	Symbol map[string]any `json:"symbol,omitempty"`
	jwt.RegisteredClaims
}

// JTI returns the session id carried in the registered jti claim.
func (c *Claims) JTI() string {
	if c == nil {
		return ""
	}
	return c.ID
}

// Verified is the outcome of a structurally valid token.
type Verified struct {
	Claims  *Claims
	Expired bool
}

// Manager issues and verifies scene access tokens.
//
// Manager instances are safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a [Manager].
//
// NewManager may return an error when the TTL, leeway or key material is
// invalid. AccessTTL must be at least one second.
func NewManager(cfg Config) (*Manager, error) {
	// iat and exp are whole seconds; a shorter TTL can mint exp == iat.
	if cfg.AccessTTL < time.Second {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key or verify key set")
		}
		for kid, key := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return nil, errors.New("verify key map contains empty kid")
			}
			if _, err := parseEdPublicKey(key); err != nil {
				return nil, fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	if cfg.KeyID != "" && len(cfg.VerifyKeys) > 0 {
		if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
			return nil, errors.New("KeyID is not present in VerifyKeys")
		}
	}

	return &Manager{config: cfg}, nil
}

// AccessTTL returns the configured token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

// Create mints a signed token for the scene/session pair.
//
// Create returns [ErrInvalidInput] when scene, jti or ack is empty, and a
// signing error when key material cannot be used.
func (m *Manager) Create(scene, jti, ack string, symbol map[string]any) (string, error) {
	if scene == "" || jti == "" || ack == "" {
		return "", ErrInvalidInput
	}

	now := m.now()
	claims := Claims{
		Scene:  scene,
		Ack:    ack,
		Symbol: symbol,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}
	if m.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.config.Audience}
	}

	tok := jwt.NewWithClaims(m.getMethod(), claims)
	if m.config.KeyID != "" {
		tok.Header["kid"] = m.config.KeyID
	}

	signKey, err := m.getSignKey()
	if err != nil {
		return "", err
	}

	return tok.SignedString(signKey)
}

// Verify checks the token's signature and structure for the given scene.
//
// Expiry is reported through [Verified.Expired] instead of an error. Issuer,
// audience and iat are evaluated as of the token's own issuance time so an
// expired token still gets its remaining claims checked.
func (m *Manager) Verify(scene, tokenStr string) (*Verified, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.getMethod().Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, m.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil || claims.ID == "" || claims.Ack == "" {
		return nil, ErrMissingClaims
	}

	now := m.now()
	if claims.IssuedAt.Time.After(now.Add(m.config.MaxFutureIAT)) {
		return nil, errors.New("token iat too far in the future")
	}
	if !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		return nil, jwt.ErrTokenInvalidClaims
	}

	issuedAt := claims.IssuedAt.Time
	options := []jwt.ParserOption{
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return issuedAt }),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}
	if err := jwt.NewValidator(options...).Validate(claims); err != nil {
		return nil, err
	}

	if claims.Scene != scene {
		return nil, ErrSceneMismatch
	}

	expired := !now.Before(claims.ExpiresAt.Time.Add(m.config.Leeway))
	return &Verified{Claims: claims, Expired: expired}, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != m.getMethod().Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}

	if len(m.config.VerifyKeys) > 0 {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		key, ok := m.config.VerifyKeys[kid]
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return m.keyBytesToVerifyKey(key)
	}

	if m.config.KeyID != "" {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		if kid != m.config.KeyID {
			return nil, errors.New("unknown kid")
		}
	}

	return m.getVerifyKey()
}

func (m *Manager) now() time.Time {
	if m.config.Clock != nil {
		return m.config.Clock()
	}
	return time.Now()
}

func (m *Manager) getMethod() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (m *Manager) getSignKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPrivateKey(m.config.PrivateKey)
	}
}

func (m *Manager) getVerifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return parseEdPublicKey(m.config.PublicKey)
	}
}

func (m *Manager) keyBytesToVerifyKey(key []byte) (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return key, nil
	default:
		return parseEdPublicKey(key)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}

// Lifetime reads iat and exp from a minted token without checking its
// signature. It is meant for tokens this process just signed.
func Lifetime(tokenStr string) (issuedAt, expiresAt time.Time, err error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return time.Time{}, time.Time{}, ErrMissingClaims
	}
	return claims.IssuedAt.Time, claims.ExpiresAt.Time, nil
}
