// Package audit carries session audit events from the Engine to a [Sink].
//
// [Kind] enumerates the outcomes worth recording: login success and failure,
// rotation, refresh rejection, rotation throttling, verify failure and
// logout. [Dispatcher] queues events for a single background goroutine and
// counts discarded events per kind when the queue is full.
//
// The Engine decides which events to emit. This package must not import
// sceneauth or any sibling internal package.
package audit
