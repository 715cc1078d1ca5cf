// Package editor implements the entry composer's autosave state machine.
//
// A [Session] tracks one composing or editing interaction with a single
// entry. Input changes land synchronously in a latest-value [Snapshot] cell
// guarded by a mutex; the periodic autosave reads that cell at tick time, so
// a save always persists the newest keystroke rather than a snapshot
// captured when the timer was armed.
//
// Lifecycle: Open (resuming the diary's newest draft when one exists) or
// OpenEntry → SetInput marks the session dirty → Autosave persists drafts on
// a fixed cadence → Publish promotes the draft (clearing its draft flag
// exactly once) or Save rewrites an existing entry → Close releases the
// timer on every exit path.
package editor
