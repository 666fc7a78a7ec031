package player

import (
	"math"
	"sync"
	"time"
)

// Clock is a simulated media element. It only advances when told to, which
// makes it the playback surface for the terminal player and for tests.
type Clock struct {
	mu       sync.Mutex
	position float64
	duration float64
	seeks    []float64
}

// NewClock creates a clock for media of the given length in seconds.
func NewClock(duration float64) *Clock {
	return &Clock{duration: math.Max(0, duration)}
}

// SeekTo jumps to seconds, clamped to the media length.
func (c *Clock) SeekTo(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.clamp(seconds)
	c.seeks = append(c.seeks, c.position)
}

// Advance moves the position forward by d and returns the new progress.
func (c *Clock) Advance(d time.Duration) (playedFraction, playedSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.clamp(c.position + d.Seconds())
	return c.fractionLocked(), c.position
}

// Progress returns the current position as a fraction and in seconds.
func (c *Clock) Progress() (playedFraction, playedSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fractionLocked(), c.position
}

// Duration returns the media length in seconds.
func (c *Clock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Ended reports whether the position reached the end of the media.
func (c *Clock) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration > 0 && c.position >= c.duration
}

// Seeks returns every position jumped to, in order.
func (c *Clock) Seeks() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.seeks...)
}

func (c *Clock) clamp(seconds float64) float64 {
	switch {
	case math.IsNaN(seconds), seconds < 0:
		return 0
	case seconds > c.duration:
		return c.duration
	default:
		return seconds
	}
}

func (c *Clock) fractionLocked() float64 {
	if c.duration == 0 {
		return 0
	}
	return c.position / c.duration
}
