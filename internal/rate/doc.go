// Package rate provides the Redis-backed fixed-window counter that throttles token
// rotation per session.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefix:
//   - ar: rotations per scene/session
//
// # What this package must NOT do
//
//   - Decide how a throttled request is reported to callers.
//   - Be imported outside the sceneauth module.
package rate
