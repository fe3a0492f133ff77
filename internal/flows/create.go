package flows

import (
	"context"
	"time"
)

// CreateFailureKind classifies login failures for root-level mapping.
type CreateFailureKind int

const (
	CreateFailureNone CreateFailureKind = iota
	CreateFailureIdentity
	CreateFailureStore
	CreateFailureMint
)

// CreateResult carries the minted token or failure metadata.
type CreateResult struct {
	Failure   CreateFailureKind
	Err       error
	SessionID string
	Token     string
}

type CreateRefreshStore interface {
	Create(ctx context.Context, sessionID, ack string, ttl time.Duration) error
}

// CreateDeps captures login flow dependencies.
type CreateDeps struct {
	NewSessionID func() (string, error)
	NewAck       func() (string, error)
	RefreshTTL   func() time.Duration
	MintToken    func(scene, sessionID, ack string, symbol map[string]any) (string, error)
	RefreshStore CreateRefreshStore
}

// RunCreate opens a session: it persists the refresh record first and only then
// mints the access token, so every issued token has a record to rotate against.
// A mint failure leaves the record to expire on its own.
func RunCreate(ctx context.Context, scene string, symbol map[string]any, deps CreateDeps) CreateResult {
	sessionID, err := deps.NewSessionID()
	if err != nil {
		return CreateResult{Failure: CreateFailureIdentity, Err: err}
	}
	ack, err := deps.NewAck()
	if err != nil {
		return CreateResult{Failure: CreateFailureIdentity, Err: err, SessionID: sessionID}
	}

	if err := deps.RefreshStore.Create(ctx, sessionID, ack, deps.RefreshTTL()); err != nil {
		return CreateResult{Failure: CreateFailureStore, Err: err, SessionID: sessionID}
	}

	tok, err := deps.MintToken(scene, sessionID, ack, symbol)
	if err != nil {
		return CreateResult{Failure: CreateFailureMint, Err: err, SessionID: sessionID}
	}
	if tok == "" {
		return CreateResult{Failure: CreateFailureMint, Err: errEmptyToken, SessionID: sessionID}
	}

	return CreateResult{
		Failure:   CreateFailureNone,
		SessionID: sessionID,
		Token:     tok,
	}
}
