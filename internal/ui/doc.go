// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [SongListView] : Browse and filter the songs returned by a [Loader]
//  2. [TabView] : Read the selected tab laid out in columns
//
// In the tab view the arrow keys (or h/l) page through columns two at a time,
// +/- transpose, c toggles chord lines, and esc returns to the list.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
package ui
