// Package tab formats raw guitar-tab text into fixed-capacity columns for side-by-side display.
//
// The pipeline has two stages:
//
//  1. [Format] strips [tab]/[/tab] wrappers, normalizes line endings, drops header lines that precede the first chord line, and prepends a capo/transposition annotation line.
//  2. [SplitIntoColumns] greedily packs the formatted lines into columns of a given capacity, never leaving a chord line as the final line of a column.
//
// [CountColumns] composes both stages to size a layout without rendering it.
//
// # Viewport
//
// A [Viewport] tracks which window of columns is on screen, paging two columns at a time.
//
// All functions are pure and safe for concurrent use. The only error is [ErrInvalidCapacity].
package tab
