// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunCreate, RunVerify, RunDestroy) accepts a typed dependency
// struct and returns a result carrying either the produced token or failure metadata.
// Metrics, audit and error mapping stay in the Engine.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the refresh store, token service and rotation
// limiter. They do NOT own any of these resources; ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import sceneauth (to avoid import cycles).
//   - Read or write cookies; the Engine hands in the raw token string.
package flows
