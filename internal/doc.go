// Package internal holds helpers private to sceneauth, currently secret
// generation for refresh acks.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: Create, Verify and Destroy orchestration over injected dependencies
//   - rate: Redis fixed-window counter for the rotation throttle
//   - security: configuration posture report
//
// # What this package must NOT do
//
//   - Export types that appear in the public sceneauth API.
//   - Be imported by any package outside the sceneauth module.
package internal
