// Package token mints and verifies the signed, scene-scoped access tokens that are
// delivered to browsers in the {scene}_token cookie.
//
// # Claims
//
// Every token carries the scene it was issued for, the session id (registered jti
// claim), the acknowledgement secret paired with that session, and an opaque symbol
// map supplied by the application at login.
//
// # Expiry handling
//
// [Manager.Verify] separates structural validity from temporal validity. Signature,
// algorithm, key id, issuer, audience and scene failures are errors. An expired but
// otherwise valid token is returned with [Verified.Expired] set so callers can decide
// whether the paired refresh record allows rotation.
//
// # What this package must NOT do
//
//   - Access Redis or any I/O.
//   - Import sceneauth or refresh.
package token
