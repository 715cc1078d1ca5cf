// package tasks implements multi-step journal operations against the row store.
//
// The core abstraction is JournalEngine, which orchestrates cascade deletes,
// cache synchronization, and data dumps. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks
