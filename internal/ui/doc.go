// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The browser moves through three views:
//  1. [HomeView] : Rows loaded concurrently by [tasks.HomeLoader] (continue watching and recommendations when signed in, then trending, movies, series and documentaries)
//  2. [DetailView] : A title with its episodes
//  3. [PlayerView] : A [PlayerModel] playing the selection
//
// [PlayerModel] can also run on its own (see "streamz play"). It drives a simulated media clock one tick per second,
// reports progress through [player.Tracker] and hides its controls after a few seconds without keyboard or mouse activity.
//
// Background work re-enters the event loop as messages; both the loader progress and the controls timer feed channels that are drained by [tea.Cmd] functions.
package ui
