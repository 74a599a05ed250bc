package timer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/tomato/internal/models"
	"github.com/joescharf/tomato/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// memStore implements store.Store in memory.
type memStore struct {
	session *models.Session
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load(_ context.Context) (*models.Session, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.session == nil {
		return nil, store.ErrNotFound
	}
	cp := *m.session
	return &cp, nil
}

func (m *memStore) Save(_ context.Context, s *models.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *s
	m.session = &cp
	m.saves++
	return nil
}

func (m *memStore) Path() string { return "mem" }

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)

func clockAt(at time.Time) Option {
	return WithClock(func() time.Time { return at })
}

// openAt opens a timer against ms with the clock frozen at `at`.
func openAt(t *testing.T, ms *memStore, at time.Time) *Timer {
	t.Helper()
	tm, err := Open(context.Background(), DefaultConfig(), ms, clockAt(at))
	require.NoError(t, err)
	return tm
}

// ---------------------------------------------------------------------------
// Open
// ---------------------------------------------------------------------------

func TestOpen_MissingStateIsIdle(t *testing.T) {
	tm := openAt(t, &memStore{}, t0)

	s := tm.Session()
	assert.Equal(t, models.StageIdle, s.Stage)
	assert.Equal(t, models.StatusRunning, s.Status)
	assert.Equal(t, 0, s.Count)
	assert.True(t, s.Deadline.Equal(t0))
	assert.True(t, tm.Fresh())
}

func TestOpen_LoadError(t *testing.T) {
	ms := &memStore{loadErr: errors.New("corrupt state file: truncated state")}
	_, err := Open(context.Background(), DefaultConfig(), ms, clockAt(t0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated state")
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SessionsPerLongBreak = 0
	_, err := Open(context.Background(), cfg, &memStore{})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Start
// ---------------------------------------------------------------------------

func TestStart_FromIdle(t *testing.T) {
	ms := &memStore{}
	tm := openAt(t, ms, t0)

	require.NoError(t, tm.Start(context.Background()))

	s := tm.Session()
	assert.Equal(t, models.StageFocus, s.Stage)
	assert.Equal(t, models.StatusRunning, s.Status)
	assert.Equal(t, 1, s.Count)
	assert.True(t, s.Deadline.Equal(t0.Add(25*time.Minute)))
	assert.Equal(t, 1, ms.saves)
	assert.Equal(t, 25*time.Minute, ms.session.Remaining)
}

func TestStart_FocusToShortBreak(t *testing.T) {
	ms := &memStore{session: &models.Session{
		Stage: models.StageFocus, Status: models.StatusRunning, Count: 2, Deadline: t0,
	}}
	tm := openAt(t, ms, t0)

	require.NoError(t, tm.Start(context.Background()))

	s := tm.Session()
	assert.Equal(t, models.StageBreak, s.Stage)
	assert.Equal(t, 2, s.Count)
	assert.True(t, s.Deadline.Equal(t0.Add(5*time.Minute)))
}

func TestStart_FocusToLongBreak(t *testing.T) {
	ms := &memStore{session: &models.Session{
		Stage: models.StageFocus, Status: models.StatusRunning, Count: 4, Deadline: t0,
	}}
	tm := openAt(t, ms, t0)
	assert.True(t, tm.LongBreakDue())

	require.NoError(t, tm.Start(context.Background()))

	s := tm.Session()
	assert.Equal(t, models.StageBreak, s.Stage)
	assert.True(t, s.Deadline.Equal(t0.Add(20*time.Minute)))
	// Reset is deferred until the next focus interval.
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 20*time.Minute, tm.Duration())
}

func TestStart_AfterLongBreakStartsNewRow(t *testing.T) {
	ms := &memStore{session: &models.Session{
		Stage: models.StageBreak, Status: models.StatusRunning, Count: 4, Deadline: t0,
	}}
	tm := openAt(t, ms, t0)

	require.NoError(t, tm.Start(context.Background()))

	s := tm.Session()
	assert.Equal(t, models.StageFocus, s.Stage)
	assert.Equal(t, 1, s.Count)
}

func TestStart_WhileRunningAdvances(t *testing.T) {
	ms := &memStore{}
	ctx := context.Background()

	require.NoError(t, openAt(t, ms, t0).Start(ctx))
	require.NoError(t, openAt(t, ms, t0.Add(time.Minute)).Start(ctx))

	assert.Equal(t, models.StageBreak, ms.session.Stage)
	assert.Equal(t, 1, ms.session.Count)
}

func TestFullCycle(t *testing.T) {
	ms := &memStore{}
	ctx := context.Background()
	at := t0

	var stages []models.Stage
	var lengths []time.Duration
	for range 9 {
		tm := openAt(t, ms, at)
		require.NoError(t, tm.Start(ctx))
		s := tm.Session()
		stages = append(stages, s.Stage)
		lengths = append(lengths, s.Deadline.Sub(at))
		at = s.Deadline
	}

	assert.Equal(t, []models.Stage{
		models.StageFocus, models.StageBreak,
		models.StageFocus, models.StageBreak,
		models.StageFocus, models.StageBreak,
		models.StageFocus, models.StageBreak,
		models.StageFocus,
	}, stages)
	assert.Equal(t, []time.Duration{
		25 * time.Minute, 5 * time.Minute,
		25 * time.Minute, 5 * time.Minute,
		25 * time.Minute, 5 * time.Minute,
		25 * time.Minute, 20 * time.Minute,
		25 * time.Minute,
	}, lengths)
	assert.Equal(t, 1, ms.session.Count)
}

// ---------------------------------------------------------------------------
// Pause / resume
// ---------------------------------------------------------------------------

func TestPauseThenResume_PreservesRemaining(t *testing.T) {
	ms := &memStore{}
	ctx := context.Background()

	require.NoError(t, openAt(t, ms, t0).Start(ctx))

	// Pause after 10 minutes of focus.
	pausedAt := t0.Add(10 * time.Minute)
	tm := openAt(t, ms, pausedAt)
	changed, err := tm.Pause(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusPaused, ms.session.Status)
	assert.Equal(t, 15*time.Minute, ms.session.Remaining)

	// An hour later the snapshot has not moved.
	later := pausedAt.Add(time.Hour)
	tm = openAt(t, ms, later)
	assert.Equal(t, 15*time.Minute, tm.Remaining(false))

	require.NoError(t, tm.Start(ctx))
	s := tm.Session()
	assert.Equal(t, models.StageFocus, s.Stage)
	assert.Equal(t, models.StatusRunning, s.Status)
	assert.Equal(t, 1, s.Count)
	assert.True(t, s.Deadline.Equal(later.Add(15*time.Minute)))
	assert.Equal(t, 15*time.Minute, tm.Remaining(false))
}

func TestPause_WhilePausedIsNoop(t *testing.T) {
	ms := &memStore{session: &models.Session{
		Stage: models.StageBreak, Status: models.StatusPaused, Count: 1,
		Deadline: t0, Remaining: 2 * time.Minute,
	}}
	tm := openAt(t, ms, t0.Add(time.Hour))

	changed, err := tm.Pause(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, ms.saves)
	assert.Equal(t, models.StatusPaused, tm.Session().Status)
}

func TestPause_WhileIdleIsNoop(t *testing.T) {
	ms := &memStore{}
	tm := openAt(t, ms, t0)

	changed, err := tm.Pause(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, ms.saves)
	assert.Equal(t, models.StatusRunning, tm.Session().Status)
}

func TestPause_AfterDeadlineStoresNegative(t *testing.T) {
	ms := &memStore{session: &models.Session{
		Stage: models.StageFocus, Status: models.StatusRunning, Count: 1, Deadline: t0,
	}}
	tm := openAt(t, ms, t0.Add(30*time.Second))

	_, err := tm.Pause(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -30*time.Second, ms.session.Remaining)
}

// ---------------------------------------------------------------------------
// Stop
// ---------------------------------------------------------------------------

func TestStop_FromAnyState(t *testing.T) {
	states := []*models.Session{
		{Stage: models.StageFocus, Status: models.StatusRunning, Count: 3, Deadline: t0},
		{Stage: models.StageBreak, Status: models.StatusPaused, Count: 4, Deadline: t0, Remaining: time.Minute},
		{Stage: models.StageIdle, Status: models.StatusRunning, Count: 0, Deadline: t0},
	}

	for _, st := range states {
		ms := &memStore{session: st}
		now := t0.Add(7 * time.Minute)
		tm := openAt(t, ms, now)

		require.NoError(t, tm.Stop(context.Background()))

		s := ms.session
		assert.Equal(t, models.StageIdle, s.Stage)
		assert.Equal(t, models.StatusRunning, s.Status)
		assert.Equal(t, 0, s.Count)
		assert.True(t, s.Deadline.Equal(now))
		assert.Equal(t, time.Duration(0), tm.Duration())
	}
}

// ---------------------------------------------------------------------------
// Remaining / formatting
// ---------------------------------------------------------------------------

func TestRemaining_ForceUsesDeadline(t *testing.T) {
	ms := &memStore{session: &models.Session{
		Stage: models.StageFocus, Status: models.StatusPaused, Count: 1,
		Deadline: t0.Add(10 * time.Minute), Remaining: 3 * time.Minute,
	}}
	tm := openAt(t, ms, t0)

	assert.Equal(t, 10*time.Minute, tm.Remaining(true))
	assert.Equal(t, 3*time.Minute, tm.Remaining(false))
}

func TestRemaining_NoAutoAdvance(t *testing.T) {
	ms := &memStore{session: &models.Session{
		Stage: models.StageFocus, Status: models.StatusRunning, Count: 1, Deadline: t0,
	}}
	tm := openAt(t, ms, t0.Add(2*time.Minute))

	assert.Equal(t, -2*time.Minute, tm.Remaining(false))
	assert.Equal(t, models.StageFocus, tm.Session().Stage)
	assert.Equal(t, "00:00", FormatRemaining(tm.Remaining(false)))
}

func TestRemaining_RealClock(t *testing.T) {
	ms := &memStore{session: &models.Session{
		Stage: models.StageFocus, Status: models.StatusRunning, Count: 1,
		Deadline: time.Now().Add(5 * time.Minute),
	}}
	tm, err := Open(context.Background(), DefaultConfig(), ms)
	require.NoError(t, err)

	assert.InDelta(t, (5 * time.Minute).Seconds(), tm.Remaining(true).Seconds(), 1.0)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{25 * time.Minute, "25:00"},
		{4*time.Minute + 59*time.Second + 900*time.Millisecond, "04:59"},
		{59 * time.Second, "00:59"},
		{0, "00:00"},
		{-1 * time.Second, "00:00"},
		{-90 * time.Minute, "00:00"},
		{75 * time.Minute, "75:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.in), "FormatRemaining(%s)", tt.in)
	}
}

// ---------------------------------------------------------------------------
// Persistence integration
// ---------------------------------------------------------------------------

func TestDryRun_DoesNotSave(t *testing.T) {
	ms := &memStore{}
	tm, err := Open(context.Background(), DefaultConfig(), ms, clockAt(t0), WithDryRun(true))
	require.NoError(t, err)

	require.NoError(t, tm.Start(context.Background()))
	assert.Equal(t, models.StageFocus, tm.Session().Stage)
	assert.Equal(t, 0, ms.saves)
}

func TestSaveError(t *testing.T) {
	ms := &memStore{saveErr: errors.New("disk full")}
	tm := openAt(t, ms, t0)

	err := tm.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save session")
}

func TestWithFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomato")
	fs := store.NewFileStore(path, store.FormatLegacy)
	ctx := context.Background()

	tm, err := Open(ctx, DefaultConfig(), fs, clockAt(t0))
	require.NoError(t, err)
	require.NoError(t, tm.Start(ctx))

	tm, err = Open(ctx, DefaultConfig(), fs, clockAt(t0.Add(5*time.Minute)))
	require.NoError(t, err)
	assert.False(t, tm.Fresh())
	assert.Equal(t, models.StageFocus, tm.Session().Stage)
	assert.Equal(t, 20*time.Minute, tm.Remaining(false))
}
