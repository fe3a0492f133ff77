package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func newTestManager(t *testing.T, clock *fakeClock) (*Manager, ed25519.PrivateKey) {
	t.Helper()
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "sceneauth",
		Audience:      "web",
		Clock:         clock.Now,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m, priv
}

func TestCreateVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m, _ := newTestManager(t, clock)

	tok, err := m.Create("user", "jti-1", "ack-1", map[string]any{"uid": "42", "role": "member"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := m.Verify("user", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Expired {
		t.Fatal("fresh token reported as expired")
	}
	if res.Claims.JTI() != "jti-1" || res.Claims.Ack != "ack-1" || res.Claims.Scene != "user" {
		t.Fatalf("unexpected claims: %+v", res.Claims)
	}
	if res.Claims.Symbol["uid"] != "42" || res.Claims.Symbol["role"] != "member" {
		t.Fatalf("symbol not preserved: %v", res.Claims.Symbol)
	}
}

func TestVerifyReportsExpiryWithoutError(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m, _ := newTestManager(t, clock)

	tok, err := m.Create("user", "jti-1", "ack-1", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	clock.Advance(2 * time.Minute)
	res, err := m.Verify("user", tok)
	if err != nil {
		t.Fatalf("expected expired token to verify structurally, got %v", err)
	}
	if !res.Expired {
		t.Fatal("expected expired flag")
	}
	if res.Claims.JTI() != "jti-1" || res.Claims.Ack != "ack-1" {
		t.Fatalf("expired token claims not decoded: %+v", res.Claims)
	}
}

func TestVerifyRejectsOtherScene(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m, _ := newTestManager(t, clock)

	tok, err := m.Create("admin", "jti-1", "ack-1", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.Verify("user", tok); !errors.Is(err, ErrSceneMismatch) {
		t.Fatalf("expected scene mismatch, got %v", err)
	}
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m, _ := newTestManager(t, clock)

	tok, err := m.Create("user", "jti-1", "ack-1", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tampered := flipSignatureChar(tok)
	if _, err := m.Verify("user", tampered); err == nil {
		t.Fatal("expected tampered signature to fail")
	}
	if _, err := m.Verify("user", "not-a-token"); err == nil {
		t.Fatal("expected malformed token to fail")
	}

	other, _ := newTestManager(t, clock)
	foreign, err := other.Create("user", "jti-1", "ack-1", nil)
	if err != nil {
		t.Fatalf("create foreign: %v", err)
	}
	if _, err := m.Verify("user", foreign); err == nil {
		t.Fatal("expected token signed by another key to fail")
	}
}

func flipSignatureChar(tok string) string {
	idx := strings.LastIndex(tok, ".") + 1
	replacement := byte('A')
	if tok[idx] == 'A' {
		replacement = 'B'
	}
	return tok[:idx] + string(replacement) + tok[idx+1:]
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m, _ := newTestManager(t, clock)

	claims := Claims{Scene: "user", Ack: "a", RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "j",
		Issuer:    "sceneauth",
		Audience:  gjwt.ClaimStrings{"web"},
		IssuedAt:  gjwt.NewNumericDate(clock.Now()),
		ExpiresAt: gjwt.NewNumericDate(clock.Now().Add(time.Minute)),
	}}
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret-secret-secret-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify("user", tok); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
}

func TestVerifyChecksIssuerAndAudienceOnExpiredTokens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m, priv := newTestManager(t, clock)

	issued := clock.Now().Add(-time.Hour)
	wrongIssuer := Claims{Scene: "user", Ack: "a", RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "j",
		Issuer:    "other",
		Audience:  gjwt.ClaimStrings{"web"},
		IssuedAt:  gjwt.NewNumericDate(issued),
		ExpiresAt: gjwt.NewNumericDate(issued.Add(time.Minute)),
	}}
	tok, _ := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, wrongIssuer).SignedString(priv)
	if _, err := m.Verify("user", tok); err == nil {
		t.Fatal("expected wrong issuer to fail even when expired")
	}

	wrongAudience := wrongIssuer
	wrongAudience.Issuer = "sceneauth"
	wrongAudience.Audience = gjwt.ClaimStrings{"mobile"}
	tok, _ = gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, wrongAudience).SignedString(priv)
	if _, err := m.Verify("user", tok); err == nil {
		t.Fatal("expected wrong audience to fail")
	}
}

func TestVerifyRequiresSessionClaims(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m, priv := newTestManager(t, clock)

	missingAck := Claims{Scene: "user", RegisteredClaims: gjwt.RegisteredClaims{
		ID:        "j",
		Issuer:    "sceneauth",
		Audience:  gjwt.ClaimStrings{"web"},
		IssuedAt:  gjwt.NewNumericDate(clock.Now()),
		ExpiresAt: gjwt.NewNumericDate(clock.Now().Add(time.Minute)),
	}}
	tok, _ := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, missingAck).SignedString(priv)
	if _, err := m.Verify("user", tok); !errors.Is(err, ErrMissingClaims) {
		t.Fatalf("expected missing claims, got %v", err)
	}
}

func TestLeewayDelaysExpiry(t *testing.T) {
	pub, priv := newEdKeys(t)
	clock := &fakeClock{now: time.Now()}
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Leeway:        30 * time.Second,
		Clock:         clock.Now,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	tok, err := m.Create("user", "j", "a", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clock.Advance(75 * time.Second)
	res, err := m.Verify("user", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Expired {
		t.Fatal("expected token within leeway to be live")
	}
	clock.Advance(time.Minute)
	res, err = m.Verify("user", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.Expired {
		t.Fatal("expected token past leeway to be expired")
	}
}

func TestKeyIDRotation(t *testing.T) {
	pub1, priv1 := newEdKeys(t)
	pub2, priv2 := newEdKeys(t)

	old, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: priv1, PublicKey: pub1, KeyID: "k1"})
	if err != nil {
		t.Fatalf("old manager: %v", err)
	}
	next, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv2,
		KeyID:         "k2",
		VerifyKeys:    map[string][]byte{"k1": pub1, "k2": pub2},
	})
	if err != nil {
		t.Fatalf("next manager: %v", err)
	}

	tok, err := old.Create("user", "j", "a", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := next.Verify("user", tok); err != nil {
		t.Fatalf("expected token signed with retired kid to verify: %v", err)
	}

	unknown, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub2, VerifyKeys: map[string][]byte{"k2": pub2}})
	if err != nil {
		t.Fatalf("unknown manager: %v", err)
	}
	if _, err := unknown.Verify("user", tok); err == nil {
		t.Fatal("expected unknown kid to fail")
	}
}

func TestHS256RoundTrip(t *testing.T) {
	m, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("0123456789abcdef0123456789abcdef")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	tok, err := m.Create("admin", "j", "a", map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := m.Verify("admin", tok); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestShortestTTLVerifiesLive(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, int64(900*time.Millisecond))}
	m, err := NewManager(Config{
		AccessTTL:     time.Second,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Clock:         clock.Now,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	tok, err := m.Create("user", "j", "a", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	v, err := m.Verify("user", tok)
	if err != nil {
		t.Fatalf("verify right after create: %v", err)
	}
	if v.Expired {
		t.Fatal("token expired right after create")
	}
}

func TestCreateRejectsEmptyInput(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m, _ := newTestManager(t, clock)

	for _, tc := range []struct{ scene, jti, ack string }{
		{"", "j", "a"},
		{"user", "", "a"},
		{"user", "j", ""},
	} {
		if _, err := m.Create(tc.scene, tc.jti, tc.ack, nil); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", tc, err)
		}
	}
}

func TestNewManagerValidation(t *testing.T) {
	pub, _ := newEdKeys(t)
	cases := []Config{
		{AccessTTL: 0, SigningMethod: MethodHS256, PrivateKey: []byte("k")},
		{AccessTTL: 500 * time.Millisecond, SigningMethod: MethodHS256, PrivateKey: []byte("k")},
		{AccessTTL: time.Minute, SigningMethod: MethodHS256},
		{AccessTTL: time.Minute, SigningMethod: MethodEd25519},
		{AccessTTL: time.Minute, SigningMethod: "rs256", PrivateKey: []byte("k")},
		{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub, Leeway: time.Hour},
		{AccessTTL: time.Minute, SigningMethod: MethodEd25519, KeyID: "k3", VerifyKeys: map[string][]byte{"k1": pub}},
	}
	for i, cfg := range cases {
		if _, err := NewManager(cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}
}
