package player

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/services"
	"github.com/desertthunder/streamz/internal/shared"
)

const (
	// DefaultReportInterval is the bucket width in seconds.
	DefaultReportInterval = 10
	// DefaultVolume is the starting volume fraction.
	DefaultVolume = 0.8
	// DefaultReportTimeout bounds one progress call.
	DefaultReportTimeout = 15 * time.Second
)

// MediaElement is the underlying playback surface.
type MediaElement interface {
	// SeekTo jumps to an absolute position in seconds.
	SeekTo(seconds float64)
}

// State is the transient playback state of a mounted player view.
type State struct {
	PositionFraction   float64
	DurationSeconds    float64
	VolumeFraction     float64
	Muted              bool
	Playing            bool
	LastReportedSecond int
}

// Elapsed approximates the played seconds from the position and duration.
func (s State) Elapsed() float64 {
	return s.PositionFraction * s.DurationSeconds
}

// Options tunes a [Tracker].
//
// With CatchUp set a tick reports the bucket it falls in, so a tick stream that
// jumps from second 8 to 13 still reports bucket 10. Without it only ticks whose
// whole second is an exact multiple of Interval report.
type Options struct {
	Interval      int
	CatchUp       bool
	Volume        float64
	Duration      float64
	ReportTimeout time.Duration
	Logger        *log.Logger
}

// DefaultOptions returns catch-up reporting every 10 seconds at 80% volume.
func DefaultOptions() Options {
	return Options{
		Interval:      DefaultReportInterval,
		CatchUp:       true,
		Volume:        DefaultVolume,
		ReportTimeout: DefaultReportTimeout,
	}
}

// Tracker owns playback state and reports watch progress.
//
// Reports are fire-and-forget: each runs on its own goroutine, failures are
// logged and dropped, and the bucket is marked reported before the call
// is made so it is never retried.
type Tracker struct {
	target   models.Target
	reporter services.ProgressReporter
	media    MediaElement
	logger   *log.Logger
	opts     Options
	ctx      context.Context

	mu      sync.Mutex
	state   State
	reports int

	inflight sync.WaitGroup
}

// NewTracker creates a tracker for target. Playback starts playing, as the player autoplays.
//
// ctx scopes the reporting calls' values only; in-flight reports outlive its cancellation.
func NewTracker(ctx context.Context, target models.Target, reporter services.ProgressReporter, media MediaElement, opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = DefaultReportInterval
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = DefaultReportTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Tracker{
		target:   target,
		reporter: reporter,
		media:    media,
		opts:     opts,
		ctx:      context.WithoutCancel(ctx),
		logger:   shared.WithLogger(opts.Logger, "component", "player", "content", target.ContentID, "episode", target.EpisodeID),
		state: State{
			DurationSeconds: math.Max(0, opts.Duration),
			VolumeFraction:  shared.Clamp01(opts.Volume),
			Muted:           opts.Volume == 0,
			Playing:         true,
		},
	}
}

// Target returns what is being played.
func (t *Tracker) Target() models.Target { return t.target }

// State returns a copy of the playback state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reports returns how many progress updates have been issued.
func (t *Tracker) Reports() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reports
}

// bucket returns the reportable bucket for playedSeconds, or -1 when the tick does not report.
func (t *Tracker) bucket(playedSeconds float64) int {
	if math.IsNaN(playedSeconds) || playedSeconds < 0 {
		return -1
	}
	whole := int(math.Floor(playedSeconds))
	if t.opts.CatchUp {
		return whole / t.opts.Interval * t.opts.Interval
	}
	if whole%t.opts.Interval == 0 {
		return whole
	}
	return -1
}

// OnProgressTick records the media element's periodic progress callback.
func (t *Tracker) OnProgressTick(playedFraction, playedSeconds float64) {
	t.mu.Lock()
	t.state.PositionFraction = shared.Clamp01(playedFraction)

	b := t.bucket(playedSeconds)
	if b <= 0 || b == t.state.LastReportedSecond {
		t.mu.Unlock()
		return
	}

	t.state.LastReportedSecond = b
	t.reports++
	update := t.target.Progress(int(math.Floor(playedSeconds)), t.state.DurationSeconds)
	t.mu.Unlock()

	t.report(update)
}

func (t *Tracker) report(update models.ProgressUpdate) {
	if t.reporter == nil {
		return
	}

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()

		ctx, cancel := context.WithTimeout(t.ctx, t.opts.ReportTimeout)
		defer cancel()

		if _, err := t.reporter.UpdateProgress(ctx, update); err != nil {
			t.logger.Warn("progress update failed", "watched", update.WatchedTime, "error", err)
			return
		}
		t.logger.Debug("progress updated", "watched", update.WatchedTime, "total", update.TotalDuration)
	}()
}

// Seek moves to targetFraction of the duration and tells the media element to jump there.
//
// It never reports; the next tick does.
func (t *Tracker) Seek(targetFraction float64) {
	t.mu.Lock()
	fraction := shared.Clamp01(targetFraction)
	t.state.PositionFraction = fraction
	seconds := fraction * t.state.DurationSeconds
	t.mu.Unlock()

	if t.media != nil {
		t.media.SeekTo(seconds)
	}
}

// SeekBy moves the position by delta, a fraction of the duration.
func (t *Tracker) SeekBy(delta float64) {
	t.Seek(t.State().PositionFraction + delta)
}

// SetVolume sets the volume; zero mutes.
func (t *Tracker) SetVolume(fraction float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.VolumeFraction = shared.Clamp01(fraction)
	t.state.Muted = t.state.VolumeFraction == 0
}

// ToggleMute flips the mute flag without touching the volume.
func (t *Tracker) ToggleMute() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Muted = !t.state.Muted
}

// TogglePlayPause flips between playing and paused.
func (t *Tracker) TogglePlayPause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Playing = !t.state.Playing
}

// Pause stops playback, used when the media reaches its end.
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Playing = false
}

// SetDuration records the duration reported by the media element.
func (t *Tracker) SetDuration(seconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	t.state.DurationSeconds = seconds
}

// Flush waits for every in-flight progress update to finish.
func (t *Tracker) Flush() {
	t.inflight.Wait()
}
