package sceneauth

import "errors"

var (
	// ErrMissingCredential is returned when the scene cookie is absent or empty.
	ErrMissingCredential = errors.New("access token not present")
	// ErrTokenInvalid is returned when the token fails signature, structure or scene checks.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrRefreshExpired is returned when an expired token has no live, matching refresh record.
	ErrRefreshExpired = errors.New("refresh token verification expired")
	// ErrRefreshRateLimited is returned when a session exceeds its rotation budget.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrStorageFailure is returned when the refresh store cannot be read or written.
	ErrStorageFailure = errors.New("refresh token store failure")
	// ErrTokenMint is returned when the token service cannot sign a token.
	ErrTokenMint = errors.New("create token failed")
	// ErrInvalidScene is returned when a scene name is empty or contains unsupported characters.
	ErrInvalidScene = errors.New("invalid scene")
	// ErrUnexpected is returned for failures outside the known taxonomy.
	ErrUnexpected = errors.New("internal error")
	// ErrEngineNotReady is returned when a nil or unbuilt Engine is used.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrorKind classifies an [AuthError].
type ErrorKind int

const (
	// KindUnexpected covers failures outside the known taxonomy.
	KindUnexpected ErrorKind = iota
	// KindMissingCredential means no token cookie was presented.
	KindMissingCredential
	// KindInvalidToken means the token is structurally invalid.
	KindInvalidToken
	// KindRefreshExpired means the session can no longer be renewed.
	KindRefreshExpired
	// KindRateLimited means rotation was throttled.
	KindRateLimited
	// KindStorageFailure means the refresh store failed.
	KindStorageFailure
	// KindTokenMint means signing failed.
	KindTokenMint
	// KindInvalidScene means the scene name was rejected.
	KindInvalidScene
)

var kindNames = [...]string{
	KindUnexpected:        "unexpected",
	KindMissingCredential: "missing_credential",
	KindInvalidToken:      "invalid_token",
	KindRefreshExpired:    "refresh_expired",
	KindRateLimited:       "rate_limited",
	KindStorageFailure:    "storage_failure",
	KindTokenMint:         "token_mint_failure",
	KindInvalidScene:      "invalid_scene",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Sentinel returns the package-level error matching k.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindMissingCredential:
		return ErrMissingCredential
	case KindInvalidToken:
		return ErrTokenInvalid
	case KindRefreshExpired:
		return ErrRefreshExpired
	case KindRateLimited:
		return ErrRefreshRateLimited
	case KindStorageFailure:
		return ErrStorageFailure
	case KindTokenMint:
		return ErrTokenMint
	case KindInvalidScene:
		return ErrInvalidScene
	default:
		return ErrUnexpected
	}
}

// AuthError is the typed failure returned alongside every error [Result].
//
// Msg is the caller-facing text written into the response body. Err holds the
// underlying cause and is never exposed through Msg for [KindUnexpected].
type AuthError struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	prefix := e.Op
	if prefix != "" {
		prefix += ": "
	}
	if e.Err == nil {
		return prefix + e.Msg
	}
	return prefix + e.Msg + ": " + e.Err.Error()
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is.
func (e *AuthError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{e.Kind.Sentinel()}
	}
	return []error{e.Kind.Sentinel(), e.Err}
}

// Message returns the caller-safe message.
func (e *AuthError) Message() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

// KindOf reports the [ErrorKind] of err, or [KindUnexpected] when err is not an [AuthError].
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}
