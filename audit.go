package sceneauth

import (
	"io"

	"github.com/MrEthical07/sceneauth/internal/audit"
)

// AuditEvent is the record emitted for login, verification, rotation and logout outcomes.
type AuditEvent = audit.Event

// AuditKind names an audited outcome; it is serialized as event_type.
type AuditKind = audit.Kind

// Audited outcomes. A live verify that needs no rotation is not audited.
const (
	AuditLoginSuccess       = audit.KindLoginSuccess
	AuditLoginFailure       = audit.KindLoginFailure
	AuditTokenRotated       = audit.KindTokenRotated
	AuditRefreshExpired     = audit.KindRefreshExpired
	AuditRefreshRateLimited = audit.KindRefreshRateLimited
	AuditVerifyFailure      = audit.KindVerifyFailure
	AuditLogout             = audit.KindLogout
)

// AuditSink receives audit events from the Engine's dispatcher goroutine.
type AuditSink = audit.Sink

// AuditSinkFunc adapts a function to [AuditSink].
type AuditSinkFunc = audit.SinkFunc

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers audit events into a channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON audit event per line.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink returns a [ChannelSink] with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}
