// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view journaling workflow:
//  1. [LoginView] / [SignupView] : Account access
//  2. [DiaryListView] : Browse, create, rename, and delete diaries
//  3. [EntryListView] : Browse a diary's entries with previews
//  4. [ComposerView] : Write or edit an entry with periodic autosave and voice dictation
//  5. [ConfirmView] : Confirm destructive or input-discarding actions
//  6. [DeleteView] : Monitor cascade delete progress
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Autosave runs on tick messages, dictation results and auth changes arrive over
// channels pumped into messages, and every key press touches the idle watcher.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
