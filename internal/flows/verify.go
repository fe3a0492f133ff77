package flows

import (
	"context"

	"github.com/MrEthical07/sceneauth/token"
)

// VerifyFailureKind classifies verification failures for root-level mapping.
type VerifyFailureKind int

const (
	VerifyFailureNone VerifyFailureKind = iota
	VerifyFailureMissingToken
	VerifyFailureInvalidToken
	VerifyFailureRateLimited
	VerifyFailureRefreshRejected
	VerifyFailureStoreUnavailable
	VerifyFailureMint
)

// VerifyResult carries the verified claims and, when rotation happened, the fresh token.
type VerifyResult struct {
	Failure VerifyFailureKind
	Err     error
	Claims  *token.Claims
	Expired bool
	Rotated bool
	Token   string
}

type VerifyRefreshStore interface {
	Verify(ctx context.Context, sessionID, ack string) error
}

type RotationRateLimiter interface {
	CheckRotation(ctx context.Context, scene, sessionID string) error
}

// VerifyDeps captures verify/rotate flow dependencies.
type VerifyDeps struct {
	VerifyToken func(scene, tokenStr string) (*token.Verified, error)
	MintToken   func(scene, sessionID, ack string, symbol map[string]any) (string, error)
	// IsStoreUnavailable separates I/O failures from refresh rejections.
	IsStoreUnavailable func(error) bool
	// Renew is optional; when set it restarts the refresh window after rotation.
	Renew        func(ctx context.Context, sessionID string) error
	Warn         func(string, ...any)
	RateLimiter  RotationRateLimiter
	RefreshStore VerifyRefreshStore
}

// RunVerify checks the scene token and silently rotates it when the token has
// expired but its refresh record is still valid. Concurrent rotations of the
// same session are not serialized; the last cookie written wins.
func RunVerify(ctx context.Context, scene, tokenStr string, deps VerifyDeps) VerifyResult {
	if tokenStr == "" {
		return VerifyResult{Failure: VerifyFailureMissingToken}
	}

	verified, err := deps.VerifyToken(scene, tokenStr)
	if err != nil {
		return VerifyResult{Failure: VerifyFailureInvalidToken, Err: err}
	}
	claims := verified.Claims
	if !verified.Expired {
		return VerifyResult{Failure: VerifyFailureNone, Claims: claims}
	}

	sessionID := claims.JTI()
	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckRotation(ctx, scene, sessionID); err != nil {
			return VerifyResult{Failure: VerifyFailureRateLimited, Err: err, Claims: claims, Expired: true}
		}
	}

	if err := deps.RefreshStore.Verify(ctx, sessionID, claims.Ack); err != nil {
		failure := VerifyFailureRefreshRejected
		if deps.IsStoreUnavailable != nil && deps.IsStoreUnavailable(err) {
			failure = VerifyFailureStoreUnavailable
		}
		return VerifyResult{Failure: failure, Err: err, Claims: claims, Expired: true}
	}

	next, err := deps.MintToken(scene, sessionID, claims.Ack, claims.Symbol)
	if err == nil && next == "" {
		err = errEmptyToken
	}
	if err != nil {
		return VerifyResult{Failure: VerifyFailureMint, Err: err, Claims: claims, Expired: true}
	}

	if deps.Renew != nil {
		if err := deps.Renew(ctx, sessionID); err != nil && deps.Warn != nil {
			deps.Warn("sceneauth: refresh renewal failed", "scene", scene, "session_id", sessionID, "error", err)
		}
	}

	return VerifyResult{
		Failure: VerifyFailureNone,
		Claims:  claims,
		Expired: true,
		Rotated: true,
		Token:   next,
	}
}
