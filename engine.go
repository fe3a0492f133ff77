package sceneauth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/sceneauth/internal"
	"github.com/MrEthical07/sceneauth/internal/audit"
	"github.com/MrEthical07/sceneauth/internal/flows"
	"github.com/MrEthical07/sceneauth/internal/rate"
	"github.com/MrEthical07/sceneauth/refresh"
	"github.com/MrEthical07/sceneauth/token"
	"github.com/google/uuid"
)

const ackBytes = 32

// TokenService mints and verifies scene tokens. [*token.Manager] implements it.
type TokenService interface {
	Create(scene, jti, ack string, symbol map[string]any) (string, error)
	// Verify must check signature and structure regardless of expiry and
	// report expiry through token.Verified.Expired.
	Verify(scene, tokenStr string) (*token.Verified, error)
}

// RefreshStore persists refresh records keyed by session id. [*refresh.Store] implements it.
//
// Implementations should wrap I/O failures with [ErrStorageFailure] or
// refresh.ErrRedisUnavailable so Verify can tell an outage from a rejection.
type RefreshStore interface {
	Create(ctx context.Context, sessionID, ack string, ttl time.Duration) error
	Verify(ctx context.Context, sessionID, ack string) error
	Clear(ctx context.Context, sessionID string) error
}

type refreshRenewer interface {
	Renew(ctx context.Context, sessionID string, ttl time.Duration) error
}

// Engine runs the create, verify and destroy operations for any number of scenes.
//
// Engine instances are safe for concurrent use after [Builder.Build].
type Engine struct {
	config       Config
	tokens       TokenService
	refreshStore RefreshStore
	rateLimiter  *rate.Limiter
	audit        *audit.Dispatcher
	metrics      *Metrics
	logger       *slog.Logger
	flowDeps     flows.Deps

	newSessionID func() (string, error)
	newAck       func() (string, error)
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// Shutdown is Close bounded by ctx. Events still queued when ctx ends are
// delivered in the background.
func (e *Engine) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.audit.Drain(ctx)
}

// AuditDropped returns the number of audit events dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditDroppedOf returns the number of dropped audit events of kind k.
func (e *Engine) AuditDroppedOf(k AuditKind) uint64 {
	if e == nil {
		return 0
	}
	return e.audit.DroppedOf(k)
}

// MetricsSnapshot returns a copy of the Engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the Engine configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) initFlowDeps() {
	e.flowDeps = flows.Deps{
		Create: flows.CreateDeps{
			NewSessionID: e.newSessionID,
			NewAck:       e.newAck,
			RefreshTTL:   func() time.Duration { return e.config.Refresh.TTL },
			MintToken:    e.tokens.Create,
			RefreshStore: e.refreshStore,
		},
		Verify: flows.VerifyDeps{
			VerifyToken:        e.tokens.Verify,
			MintToken:          e.tokens.Create,
			IsStoreUnavailable: isStoreUnavailable,
			Renew:              e.renewFunc(),
			Warn:               e.logger.Warn,
			RateLimiter:        e.rateLimiter,
			RefreshStore:       e.refreshStore,
		},
		Destroy: flows.DestroyDeps{
			VerifyToken:  e.tokens.Verify,
			Warn:         e.logger.Warn,
			RateLimiter:  e.rateLimiter,
			RefreshStore: e.refreshStore,
		},
	}
}

func (e *Engine) renewFunc() func(context.Context, string) error {
	if !e.config.Refresh.SlidingRenewal {
		return nil
	}
	renewer, ok := e.refreshStore.(refreshRenewer)
	if !ok {
		return nil
	}
	return func(ctx context.Context, sessionID string) error {
		err := renewer.Renew(ctx, sessionID, e.config.Refresh.TTL)
		if err != nil {
			e.metricInc(MetricRefreshRenewFailure)
		}
		return err
	}
}

// Create opens a session for scene: it stores a refresh record, mints a token
// carrying symbol, and returns a [CookieResult] setting the scene cookie.
//
// On failure the returned Result carries the error body and no cookie, and
// the error is an [*AuthError].
//
// The returned Session holds symbol as passed. Sessions from Verify decode
// symbol from the token's JSON, so numbers come back as float64.
func (e *Engine) Create(ctx context.Context, scene string, symbol map[string]any) (Result, error) {
	if e == nil || e.tokens == nil {
		return failure(&AuthError{Kind: KindUnexpected, Op: "create", Msg: ErrUnexpected.Error(), Err: ErrEngineNotReady})
	}
	if err := ValidateScene(scene); err != nil {
		return failure(&AuthError{Kind: KindInvalidScene, Op: "create", Msg: ErrInvalidScene.Error()})
	}

	res := flows.RunCreate(ctx, scene, symbol, e.flowDeps.Create)
	switch res.Failure {
	case flows.CreateFailureNone:
	case flows.CreateFailureStore:
		e.metricInc(MetricStorageFailure)
		return e.createFailed(ctx, scene, res.SessionID, &AuthError{Kind: KindStorageFailure, Op: "create", Msg: "refresh token set failed", Err: res.Err})
	case flows.CreateFailureMint:
		e.metricInc(MetricTokenMintFailure)
		return e.createFailed(ctx, scene, res.SessionID, &AuthError{Kind: KindTokenMint, Op: "create", Msg: ErrTokenMint.Error(), Err: res.Err})
	default:
		return e.createFailed(ctx, scene, res.SessionID, e.unexpected(ctx, "create", scene, res.Err))
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, AuditLoginSuccess, true, scene, res.SessionID, nil, nil)

	sess := &Session{
		Scene:     scene,
		SessionID: res.SessionID,
		Symbol:    symbol,
	}
	e.stampLifetime(sess, res.Token)
	return CookieResult{
		Cookie:  e.config.Cookie.tokenCookie(scene, res.Token),
		Body:    okBody(),
		Session: sess,
	}, nil
}

func (e *Engine) createFailed(ctx context.Context, scene, sessionID string, authErr *AuthError) (Result, error) {
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, AuditLoginFailure, false, scene, sessionID, authErr, nil)
	return failure(authErr)
}

// Verify checks the scene cookie. A live token succeeds with a [PlainResult]
// and no side effects. An expired token whose refresh record is still valid
// is re-minted with the same session id, ack and symbol, and the new token is
// returned in a [CookieResult].
//
// Concurrent rotations of one session are not serialized; the last cookie
// written wins and every rotated token stays valid until the record goes.
//
// Session.Symbol is decoded from JSON: numbers are float64 and nested
// objects are map[string]any, whatever types were passed to Create.
func (e *Engine) Verify(ctx context.Context, cookies CookieReader, scene string) (Result, error) {
	if e == nil || e.tokens == nil {
		return failure(&AuthError{Kind: KindUnexpected, Op: "verify", Msg: ErrUnexpected.Error(), Err: ErrEngineNotReady})
	}
	if err := ValidateScene(scene); err != nil {
		return failure(&AuthError{Kind: KindInvalidScene, Op: "verify", Msg: ErrInvalidScene.Error()})
	}

	start := time.Now()
	defer func() {
		if e.metrics.LatencyEnabled() {
			e.metrics.Observe(MetricVerifyLatency, time.Since(start))
		}
	}()

	res := flows.RunVerify(ctx, scene, readToken(cookies, scene), e.flowDeps.Verify)
	sessionID := res.Claims.JTI()

	var authErr *AuthError
	switch res.Failure {
	case flows.VerifyFailureNone:
	case flows.VerifyFailureMissingToken:
		e.metricInc(MetricMissingCredential)
		authErr = &AuthError{Kind: KindMissingCredential, Op: "verify", Msg: ErrMissingCredential.Error()}
	case flows.VerifyFailureInvalidToken:
		e.metricInc(MetricInvalidToken)
		authErr = &AuthError{Kind: KindInvalidToken, Op: "verify", Msg: ErrTokenInvalid.Error(), Err: res.Err}
	case flows.VerifyFailureRateLimited:
		if errors.Is(res.Err, rate.ErrRateLimited) {
			e.metricInc(MetricRefreshRateLimited)
			e.emitAudit(ctx, AuditRefreshRateLimited, false, scene, sessionID, ErrRefreshRateLimited, nil)
			authErr = &AuthError{Kind: KindRateLimited, Op: "verify", Msg: ErrRefreshRateLimited.Error(), Err: res.Err}
		} else {
			e.metricInc(MetricStorageFailure)
			authErr = &AuthError{Kind: KindStorageFailure, Op: "verify", Msg: "refresh token store unavailable", Err: res.Err}
		}
	case flows.VerifyFailureRefreshRejected:
		e.metricInc(MetricRefreshExpired)
		e.emitAudit(ctx, AuditRefreshExpired, false, scene, sessionID, ErrRefreshExpired, func() map[string]string {
			return map[string]string{"reason": refreshRejectReason(res.Err)}
		})
		authErr = &AuthError{Kind: KindRefreshExpired, Op: "verify", Msg: ErrRefreshExpired.Error(), Err: res.Err}
	case flows.VerifyFailureStoreUnavailable:
		e.metricInc(MetricStorageFailure)
		authErr = &AuthError{Kind: KindStorageFailure, Op: "verify", Msg: "refresh token store unavailable", Err: res.Err}
	case flows.VerifyFailureMint:
		e.metricInc(MetricTokenMintFailure)
		authErr = &AuthError{Kind: KindTokenMint, Op: "verify", Msg: ErrTokenMint.Error(), Err: res.Err}
	default:
		authErr = e.unexpected(ctx, "verify", scene, res.Err)
	}

	if authErr != nil {
		e.metricInc(MetricVerifyFailure)
		if authErr.Kind != KindRefreshExpired && authErr.Kind != KindRateLimited {
			e.emitAudit(ctx, AuditVerifyFailure, false, scene, sessionID, authErr, nil)
		}
		return failure(authErr)
	}

	e.metricInc(MetricVerifySuccess)
	sess := sessionFromClaims(res.Claims)
	if !res.Rotated {
		return PlainResult{Body: okBody(), Session: sess}, nil
	}

	e.metricInc(MetricTokenRotated)
	e.emitAudit(ctx, AuditTokenRotated, true, scene, sessionID, nil, nil)

	sess.Rotated = true
	e.stampLifetime(sess, res.Token)
	return CookieResult{
		Cookie:  e.config.Cookie.tokenCookie(scene, res.Token),
		Body:    okBody(),
		Session: sess,
	}, nil
}

// Destroy logs the scene session out: it clears the refresh record of the
// presented token and returns a [CookieResult] that expires the scene cookie.
//
// A missing or undecodable token is a successful no-op. Calling Destroy twice
// succeeds both times. When the store fails the cleared cookie is still
// attached so the client forgets the token either way.
func (e *Engine) Destroy(ctx context.Context, cookies CookieReader, scene string) (Result, error) {
	if e == nil || e.tokens == nil {
		return failure(&AuthError{Kind: KindUnexpected, Op: "destroy", Msg: ErrUnexpected.Error(), Err: ErrEngineNotReady})
	}
	if err := ValidateScene(scene); err != nil {
		return failure(&AuthError{Kind: KindInvalidScene, Op: "destroy", Msg: ErrInvalidScene.Error()})
	}

	cleared := e.config.Cookie.clearedCookie(scene)
	res := flows.RunDestroy(ctx, scene, readToken(cookies, scene), e.flowDeps.Destroy)

	if res.Failure == flows.DestroyFailureStore {
		e.metricInc(MetricStorageFailure)
		authErr := &AuthError{Kind: KindStorageFailure, Op: "destroy", Msg: "refresh token clear failed", Err: res.Err}
		e.emitAudit(ctx, AuditLogout, false, scene, res.SessionID, authErr, nil)
		return CookieResult{Cookie: cleared, Body: errorBody(authErr.Msg)}, authErr
	}

	if res.Decoded {
		e.metricInc(MetricLogout)
		e.emitAudit(ctx, AuditLogout, true, scene, res.SessionID, nil, nil)
	} else {
		e.metricInc(MetricLogoutNoop)
		if res.Err != nil {
			e.logger.DebugContext(ctx, "sceneauth: logout with undecodable token", "scene", scene, "error", res.Err)
		}
	}

	return CookieResult{Cookie: cleared, Body: okBody()}, nil
}

func (e *Engine) unexpected(ctx context.Context, op, scene string, err error) *AuthError {
	e.logger.ErrorContext(ctx, "sceneauth: unexpected failure", "op", op, "scene", scene, "error", err)
	return &AuthError{Kind: KindUnexpected, Op: op, Msg: ErrUnexpected.Error(), Err: err}
}

func failure(authErr *AuthError) (Result, error) {
	return PlainResult{Body: errorBody(authErr.Msg)}, authErr
}

func sessionFromClaims(claims *token.Claims) *Session {
	if claims == nil {
		return nil
	}
	sess := &Session{
		Scene:     claims.Scene,
		SessionID: claims.JTI(),
		Symbol:    claims.Symbol,
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess
}

// stampLifetime copies iat and exp from the freshly minted token so the
// session matches the token service clock. Tokens that are not JWTs fall
// back to the wall clock.
func (e *Engine) stampLifetime(sess *Session, tok string) {
	issuedAt, expiresAt, err := token.Lifetime(tok)
	if err != nil {
		issuedAt = time.Now()
		expiresAt = issuedAt.Add(e.config.Token.AccessTTL)
	}
	sess.IssuedAt = issuedAt
	sess.ExpiresAt = expiresAt
}

func isStoreUnavailable(err error) bool {
	return errors.Is(err, refresh.ErrRedisUnavailable) || errors.Is(err, ErrStorageFailure)
}

func refreshRejectReason(err error) string {
	switch {
	case errors.Is(err, refresh.ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, refresh.ErrRecordExpired):
		return "expired"
	case errors.Is(err, refresh.ErrAckMismatch):
		return "ack_mismatch"
	case errors.Is(err, refresh.ErrRecordCorrupt):
		return "corrupt"
	default:
		return "rejected"
	}
}

func newSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func newAck() (string, error) {
	return internal.NewSecret(ackBytes)
}
