package sceneauth

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("wrapped: %w", &AuthError{Kind: KindStorageFailure, Op: "create", Msg: "refresh token set failed", Err: cause})

	if !errors.Is(err, ErrStorageFailure) {
		t.Fatal("expected kind sentinel match")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause match")
	}
	if errors.Is(err, ErrTokenMint) {
		t.Fatal("unexpected sentinel match")
	}
	if KindOf(err) != KindStorageFailure {
		t.Fatalf("unexpected kind %s", KindOf(err))
	}
	if KindOf(cause) != KindUnexpected {
		t.Fatal("plain errors classify as unexpected")
	}

	var ae *AuthError
	if !errors.As(err, &ae) || ae.Message() != "refresh token set failed" {
		t.Fatalf("unexpected message %q", ae.Message())
	}
	if got := ae.Error(); got != "create: refresh token set failed: dial tcp: refused" {
		t.Fatalf("unexpected error text %q", got)
	}
}

func TestErrorKindString(t *testing.T) {
	if KindRefreshExpired.String() != "refresh_expired" {
		t.Fatalf("unexpected name %q", KindRefreshExpired.String())
	}
	if ErrorKind(99).String() != "unknown" {
		t.Fatal("out of range kinds must be unknown")
	}
	if ErrorKind(99).Sentinel() != ErrUnexpected {
		t.Fatal("out of range kinds map to ErrUnexpected")
	}
}

func TestValidateScene(t *testing.T) {
	for _, ok := range []string{"user", "admin", "tenant-1_api"} {
		if err := ValidateScene(ok); err != nil {
			t.Fatalf("scene %q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a b", "a=b", "ü"} {
		if err := ValidateScene(bad); !errors.Is(err, ErrInvalidScene) {
			t.Fatalf("scene %q accepted", bad)
		}
	}
	if CookieName("admin") != "admin_token" {
		t.Fatal("unexpected cookie name")
	}
}
