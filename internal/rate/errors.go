package rate

import "errors"

var (
	// ErrRateLimited is returned once a session exhausts its rotation budget
	// for the current window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps a failed counter read or write.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
