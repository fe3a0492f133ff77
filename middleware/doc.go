// Package middleware adapts sceneauth.Engine to net/http handler chains.
//
// # Guards
//
//   - [Guard] rejects requests without a verified scene cookie (401).
//   - [Optional] attaches the session when present and never rejects.
//   - [RequireSymbol] gates a guarded route on one symbol claim (403).
//
// Guards read the {scene}_token cookie, call Engine.Verify, forward any rotated
// cookie to the response and store the [sceneauth.Session] in the request
// context for [SessionFromContext].
//
// # What this package must NOT do
//
//   - Parse or mint tokens directly.
//   - Access Redis.
//   - Decide authentication beyond the pass or reject returned by Engine.Verify.
package middleware
