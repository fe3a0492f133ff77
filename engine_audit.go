package sceneauth

import (
	"context"
	"errors"
	"time"
)

// AuditErrorCode is the stable error label written into [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrMissingCredential AuditErrorCode = "missing_credential"
	auditErrInvalidToken      AuditErrorCode = "invalid_token"
	auditErrRefreshExpired    AuditErrorCode = "refresh_expired"
	auditErrRateLimited       AuditErrorCode = "rate_limited"
	auditErrUnavailable       AuditErrorCode = "backend_unavailable"
	auditErrTokenMint         AuditErrorCode = "token_mint_failed"
	auditErrInvalidScene      AuditErrorCode = "invalid_scene"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	kind AuditKind,
	success bool,
	scene string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Scene:     scene,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Publish(ctx, event)
}

func (e *Engine) auditDropped(ev AuditEvent) {
	e.logger.Debug("sceneauth: audit event dropped", "event", string(ev.Kind), "scene", ev.Scene)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMissingCredential):
		return auditErrMissingCredential
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrRefreshExpired):
		return auditErrRefreshExpired
	case errors.Is(err, ErrRefreshRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrStorageFailure):
		return auditErrUnavailable
	case errors.Is(err, ErrTokenMint):
		return auditErrTokenMint
	case errors.Is(err, ErrInvalidScene):
		return auditErrInvalidScene
	default:
		return auditErrInternal
	}
}
