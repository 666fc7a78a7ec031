package player

import (
	"sync"
	"time"
)

// DefaultControlsTimeout is how long the controls stay up without activity.
const DefaultControlsTimeout = 3 * time.Second

// ControlsTimer hides the player controls after a period of inactivity.
//
// Every Reset shows the controls and restarts the countdown. Stop cancels it
// for good; a countdown that already fired is ignored once superseded.
type ControlsTimer struct {
	timeout  time.Duration
	onChange func(visible bool)

	mu      sync.Mutex
	timer   *time.Timer
	visible bool
	gen     uint64
	stopped bool
}

// NewControlsTimer creates a timer that calls onChange whenever visibility flips.
//
// onChange runs on the timer's goroutine when the countdown expires.
func NewControlsTimer(timeout time.Duration, onChange func(visible bool)) *ControlsTimer {
	if timeout <= 0 {
		timeout = DefaultControlsTimeout
	}
	return &ControlsTimer{timeout: timeout, onChange: onChange, visible: true}
}

// Reset shows the controls and restarts the inactivity countdown.
func (c *ControlsTimer) Reset() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.timeout, func() { c.expire(gen) })

	changed := !c.visible
	c.visible = true
	c.mu.Unlock()

	if changed {
		c.notify(true)
	}
}

func (c *ControlsTimer) expire(gen uint64) {
	c.mu.Lock()
	if c.stopped || gen != c.gen || !c.visible {
		c.mu.Unlock()
		return
	}
	c.visible = false
	c.mu.Unlock()

	c.notify(false)
}

// Stop cancels the countdown. The timer cannot be restarted.
func (c *ControlsTimer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Visible reports whether the controls are shown.
func (c *ControlsTimer) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func (c *ControlsTimer) notify(visible bool) {
	if c.onChange != nil {
		c.onChange(visible)
	}
}
