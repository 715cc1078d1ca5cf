// Package voice implements the dictation adapter over a streaming
// speech-to-text collaborator.
//
// A [Recorder] moves through idle → starting → recording → idle, with a
// transient error state. Start and stop are debounced (1 second), finalized
// tokens accumulate into a running buffer republished as "prefix + buffer"
// to the host editor, and a 30 second inactivity window closes the
// connection when no token arrives. Every exit path cancels the inactivity
// timer and releases the session handle so stale callbacks cannot mutate a
// closed host.
package voice
