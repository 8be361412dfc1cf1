// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI browses one account collection at a time:
//  1. [MenuView] : Pick videos, comments, likes or playlists
//  2. [ItemListView] : Browse the listing and toggle a selection with space
//  3. [ConfirmView] : Confirm the bulk operation for the selection
//  4. [ProgressView] : Monitor per-item progress updates
//  5. [ResultView] : Show how many items succeeded and which failed
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Bulk progress flows through a channel from [tasks.AccountOperations] without blocking the UI.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
