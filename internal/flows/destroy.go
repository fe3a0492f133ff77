package flows

import (
	"context"

	"github.com/MrEthical07/sceneauth/token"
)

// DestroyFailureKind classifies logout failures for root-level mapping.
type DestroyFailureKind int

const (
	DestroyFailureNone DestroyFailureKind = iota
	DestroyFailureStore
)

// DestroyResult reports which session, if any, was cleared.
type DestroyResult struct {
	Failure   DestroyFailureKind
	Err       error
	SessionID string
	// Decoded is false when no usable token was presented; logout is then a no-op.
	Decoded bool
}

type DestroyRefreshStore interface {
	Clear(ctx context.Context, sessionID string) error
}

type RotationResetter interface {
	Reset(ctx context.Context, scene, sessionID string) error
}

// DestroyDeps captures logout flow dependencies.
type DestroyDeps struct {
	VerifyToken  func(scene, tokenStr string) (*token.Verified, error)
	Warn         func(string, ...any)
	RateLimiter  RotationResetter
	RefreshStore DestroyRefreshStore
}

// RunDestroy clears the refresh record bound to the presented token. A missing
// or undecodable token is a successful no-op so logout stays idempotent.
func RunDestroy(ctx context.Context, scene, tokenStr string, deps DestroyDeps) DestroyResult {
	if tokenStr == "" {
		return DestroyResult{Failure: DestroyFailureNone}
	}

	verified, err := deps.VerifyToken(scene, tokenStr)
	if err != nil {
		return DestroyResult{Failure: DestroyFailureNone, Err: err}
	}

	sessionID := verified.Claims.JTI()
	if err := deps.RefreshStore.Clear(ctx, sessionID); err != nil {
		return DestroyResult{Failure: DestroyFailureStore, Err: err, SessionID: sessionID, Decoded: true}
	}

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.Reset(ctx, scene, sessionID); err != nil && deps.Warn != nil {
			deps.Warn("sceneauth: rotation counter reset failed", "scene", scene, "session_id", sessionID, "error", err)
		}
	}

	return DestroyResult{Failure: DestroyFailureNone, SessionID: sessionID, Decoded: true}
}
