// Package refresh provides the Redis-backed refresh record store that proves a
// session is still renewable after its access token expires.
//
// # Record format
//
// One key per session id. The value is a compact versioned binary record holding the
// SHA-256 digest of the session's acknowledgement secret together with its creation and
// expiry timestamps. The plaintext secret is never persisted.
//
// # Architecture boundaries
//
// This package owns the [Store] and the [Record] codec. It does NOT parse access tokens,
// set cookies, or decide whether a request may rotate; those belong to the engine.
//
// # What this package must NOT do
//
//   - Import sceneauth or token.
//   - Cache records in process memory; every call is a Redis round trip.
package refresh
