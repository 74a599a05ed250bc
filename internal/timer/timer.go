// Package timer implements the pomodoro session state machine.
//
// Each process opens a Timer, applies at most one transition and exits; there
// is no ticking. Elapsed time is derived from the wall clock against the
// stored deadline every time the state is read.
package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joescharf/tomato/internal/models"
	"github.com/joescharf/tomato/internal/store"
)

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.clock = now }
}

// WithDryRun computes transitions without saving them.
func WithDryRun(dryRun bool) Option {
	return func(t *Timer) { t.dryRun = dryRun }
}

// Timer is one invocation's view of the persisted session.
type Timer struct {
	cfg     Config
	store   store.Store
	clock   func() time.Time
	now     time.Time
	dryRun  bool
	session *models.Session
	fresh   bool
}

// Open loads the saved session. A missing state file yields an idle session;
// any other load failure is returned.
func Open(ctx context.Context, cfg Config, st store.Store, opts ...Option) (*Timer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Timer{
		cfg:   cfg,
		store: st,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.now = t.clock()

	session, err := st.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		session = models.NewIdleSession(t.now)
		t.fresh = true
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}
	t.session = session
	return t, nil
}

// Session returns a copy of the current state.
func (t *Timer) Session() models.Session {
	return *t.session
}

// Config returns the schedule in use.
func (t *Timer) Config() Config {
	return t.cfg
}

// Now is the instant this invocation operates at.
func (t *Timer) Now() time.Time {
	return t.now
}

// Fresh reports whether no saved state existed when the timer was opened.
func (t *Timer) Fresh() bool {
	return t.fresh
}

// Start resumes a paused interval, or otherwise advances to the next stage:
// idle and break go to focus, focus goes to a break.
//
// Start is advance, not resume, when already running: calling it during a
// running focus interval begins a break.
func (t *Timer) Start(ctx context.Context) error {
	s := t.session

	switch {
	case s.Paused():
		s.Status = models.StatusRunning
		s.Deadline = t.now.Add(s.Remaining)
	case s.Stage == models.StageIdle || s.Stage == models.StageBreak:
		s.Stage = models.StageFocus
		s.Status = models.StatusRunning
		// The row resets when the focus after a long break begins.
		if s.Count >= t.cfg.SessionsPerLongBreak {
			s.Count = 1
		} else {
			s.Count++
		}
		s.Deadline = t.now.Add(t.cfg.Focus)
	default:
		long := t.LongBreakDue()
		s.Stage = models.StageBreak
		s.Status = models.StatusRunning
		if long {
			s.Deadline = t.now.Add(t.cfg.LongBreak)
		} else {
			s.Deadline = t.now.Add(t.cfg.ShortBreak)
		}
	}

	return t.save(ctx)
}

// Pause freezes a running focus or break interval. Pausing while idle or
// already paused does nothing; the returned bool reports whether state changed.
func (t *Timer) Pause(ctx context.Context) (bool, error) {
	s := t.session
	if s.Paused() || s.Stage == models.StageIdle {
		return false, nil
	}

	s.Status = models.StatusPaused
	s.Remaining = s.Deadline.Sub(t.now)
	return true, t.save(ctx)
}

// Stop returns to idle and clears the row.
func (t *Timer) Stop(ctx context.Context) error {
	t.session = models.NewIdleSession(t.now)
	return t.save(ctx)
}

// Remaining reports the time left in the current interval. It is computed
// from the deadline while running or when force is set, and taken from the
// pause snapshot otherwise. The result is negative once the deadline passed.
func (t *Timer) Remaining(force bool) time.Duration {
	if force || !t.session.Paused() {
		return t.session.Deadline.Sub(t.now)
	}
	return t.session.Remaining
}

// LongBreakDue reports whether the next break is a long one.
func (t *Timer) LongBreakDue() bool {
	return t.session.Count >= t.cfg.SessionsPerLongBreak
}

// Duration returns the configured length of the current interval, or zero when idle.
func (t *Timer) Duration() time.Duration {
	switch t.session.Stage {
	case models.StageFocus:
		return t.cfg.Focus
	case models.StageBreak:
		if t.LongBreakDue() {
			return t.cfg.LongBreak
		}
		return t.cfg.ShortBreak
	}
	return 0
}

func (t *Timer) save(ctx context.Context) error {
	if !t.session.Paused() {
		t.session.Remaining = t.session.Deadline.Sub(t.now)
	}
	if t.dryRun {
		return nil
	}
	if err := t.store.Save(ctx, t.session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// FormatRemaining renders whole minutes and seconds as MM:SS.
// Negative durations render as 00:00.
func FormatRemaining(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
