// Package sceneauth provides cookie-based authentication scoped by scene: short-lived
// signed access tokens, a Redis-backed refresh record per session, and transparent
// token rotation when the access token has expired but the refresh record is live.
//
// A scene ("user", "admin", ...) namespaces the cookie name ({scene}_token) and the
// token's scene claim, so a token issued for one scene is never accepted by another.
// Engine methods are safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// sceneauth is the public surface. It exposes [Engine], [Builder], [Config], [Result]
// and the [TokenService] / [RefreshStore] seams. Flow orchestration, rotation
// throttling and audit dispatch live under internal/ and are never exported. The
// token and refresh packages are the default implementations of the two seams.
//
// # What this package must NOT do
//
//   - Expose raw error text to callers: unexpected failures are logged and reported
//     as "internal error".
//   - Hold per-session state in memory; Redis is the only shared state.
//   - Serialize concurrent rotations of one session. The last cookie written wins.
//
// # Performance contract
//
// Verify of a live token performs no Redis round-trip. Rotation costs one GET plus
// the optional throttle INCR. Create and Destroy cost one Redis write each.
package sceneauth
