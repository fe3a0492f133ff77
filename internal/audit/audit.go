package audit

import (
	"time"
)

// Kind names an auditable session outcome. Its value is the event_type field
// of the serialized event.
type Kind string

const (
	KindLoginSuccess       Kind = "login_success"
	KindLoginFailure       Kind = "login_failure"
	KindTokenRotated       Kind = "token_rotated"
	KindRefreshExpired     Kind = "refresh_expired"
	KindRefreshRateLimited Kind = "refresh_rate_limited"
	KindVerifyFailure      Kind = "verify_failure"
	KindLogout             Kind = "logout"
)

var kinds = [...]Kind{
	KindLoginSuccess,
	KindLoginFailure,
	KindTokenRotated,
	KindRefreshExpired,
	KindRefreshRateLimited,
	KindVerifyFailure,
	KindLogout,
}

// Kinds returns every known event kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds[:])
	return out
}

// slot maps k to its drop counter; unknown kinds share the last slot.
func (k Kind) slot() int {
	for i, known := range kinds {
		if k == known {
			return i
		}
	}
	return len(kinds)
}

// Event is one audit record. A live verify without rotation is never audited.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Kind      Kind              `json:"event_type"`
	Scene     string            `json:"scene"`
	SessionID string            `json:"session_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
