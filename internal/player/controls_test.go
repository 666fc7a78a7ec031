package player

import (
	"sync"
	"testing"
	"time"
)

type visibilityLog struct {
	mu     sync.Mutex
	events []bool
	hidden chan struct{}
}

func newVisibilityLog() *visibilityLog {
	return &visibilityLog{hidden: make(chan struct{}, 8)}
}

func (v *visibilityLog) record(visible bool) {
	v.mu.Lock()
	v.events = append(v.events, visible)
	v.mu.Unlock()
	if !visible {
		v.hidden <- struct{}{}
	}
}

func (v *visibilityLog) all() []bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]bool(nil), v.events...)
}

func TestControlsTimer(t *testing.T) {
	t.Run("Hides After Timeout", func(t *testing.T) {
		log := newVisibilityLog()
		timer := NewControlsTimer(20*time.Millisecond, log.record)
		defer timer.Stop()

		timer.Reset()
		if !timer.Visible() {
			t.Fatal("expected controls to be visible after reset")
		}

		select {
		case <-log.hidden:
		case <-time.After(time.Second):
			t.Fatal("controls were never hidden")
		}
		if timer.Visible() {
			t.Error("expected controls to be hidden")
		}
	})

	t.Run("Reset Restarts Countdown", func(t *testing.T) {
		log := newVisibilityLog()
		timer := NewControlsTimer(80*time.Millisecond, log.record)
		defer timer.Stop()

		timer.Reset()
		for range 4 {
			time.Sleep(30 * time.Millisecond)
			timer.Reset()
		}
		if !timer.Visible() {
			t.Error("expected repeated activity to keep controls visible")
		}

		select {
		case <-log.hidden:
		case <-time.After(time.Second):
			t.Fatal("controls were never hidden")
		}
	})

	t.Run("Reset Shows Hidden Controls", func(t *testing.T) {
		log := newVisibilityLog()
		timer := NewControlsTimer(10*time.Millisecond, log.record)
		defer timer.Stop()

		timer.Reset()
		<-log.hidden
		timer.Reset()

		if !timer.Visible() {
			t.Error("expected controls to be shown again")
		}
		events := log.all()
		if len(events) != 2 || events[0] != false || events[1] != true {
			t.Errorf("expected hide then show, got %v", events)
		}
	})

	t.Run("Stop Cancels Countdown", func(t *testing.T) {
		log := newVisibilityLog()
		timer := NewControlsTimer(20*time.Millisecond, log.record)

		timer.Reset()
		timer.Stop()
		time.Sleep(60 * time.Millisecond)

		if !timer.Visible() {
			t.Error("expected stopped timer to leave controls as they were")
		}
		if len(log.all()) != 0 {
			t.Errorf("expected no visibility changes, got %v", log.all())
		}

		timer.Reset()
		time.Sleep(40 * time.Millisecond)
		if len(log.all()) != 0 {
			t.Error("a stopped timer must not restart")
		}
	})

	t.Run("Default Timeout", func(t *testing.T) {
		timer := NewControlsTimer(0, nil)
		if timer.timeout != DefaultControlsTimeout {
			t.Errorf("expected %v, got %v", DefaultControlsTimeout, timer.timeout)
		}
	})
}

func TestClock(t *testing.T) {
	t.Run("Advance", func(t *testing.T) {
		clock := NewClock(100)

		fraction, seconds := clock.Advance(10 * time.Second)
		if fraction != 0.1 || seconds != 10 {
			t.Errorf("expected 0.1/10, got %v/%v", fraction, seconds)
		}
	})

	t.Run("Stops At End", func(t *testing.T) {
		clock := NewClock(5)
		clock.Advance(10 * time.Second)

		if !clock.Ended() {
			t.Error("expected clock to have ended")
		}
		if _, seconds := clock.Progress(); seconds != 5 {
			t.Errorf("expected position 5, got %v", seconds)
		}
	})

	t.Run("Zero Duration", func(t *testing.T) {
		clock := NewClock(0)
		fraction, _ := clock.Advance(time.Second)

		if fraction != 0 || clock.Ended() {
			t.Errorf("expected an unknown-length clock to stay at zero, got %v", fraction)
		}
	})

	t.Run("SeekTo Clamps", func(t *testing.T) {
		clock := NewClock(60)
		clock.SeekTo(90)
		clock.SeekTo(-3)

		if seeks := clock.Seeks(); seeks[0] != 60 || seeks[1] != 0 {
			t.Errorf("unexpected seeks %v", seeks)
		}
		if clock.Duration() != 60 {
			t.Errorf("expected duration 60, got %v", clock.Duration())
		}
	})
}
