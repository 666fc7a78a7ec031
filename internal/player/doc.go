// Package player implements playback state and watch progress reporting.
//
// A [Tracker] is created when a player view mounts and discarded when it
// unmounts. It receives progress ticks from a [MediaElement] (the simulated
// [Clock] in the terminal player), reports progress once per 10-second
// bucket, and handles seek, volume, mute and play/pause.
//
// [ControlsTimer] is the inactivity countdown that hides the on-screen controls.
package player
