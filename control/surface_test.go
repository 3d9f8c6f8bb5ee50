package control

import (
	"context"
	"sync"
	"testing"
	"time"

	goerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/robmorgan/pulse/scheduler"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

type fakeEngine struct {
	mu      sync.Mutex
	running bool
	starts  int
	stops   int
}

func (e *fakeEngine) Start(context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	e.running = true
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	e.running = false
}

func (e *fakeEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *fakeEngine) Status() scheduler.Status {
	return scheduler.Status{Running: e.Running()}
}

type recordingListener struct {
	mu       sync.Mutex
	beats    []int
	states   []bool
	settings []rhythm.Snapshot
	errs     []error
}

func (l *recordingListener) OnBeat(beat int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beats = append(l.beats, beat)
}

func (l *recordingListener) OnRunStateChanged(running bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, running)
}

func (l *recordingListener) OnSettingsChanged(snap rhythm.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settings = append(l.settings, snap)
}

func (l *recordingListener) OnError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func newSurface(t *testing.T) (*Surface, *fakeEngine, *recordingListener, *testingclock.FakeClock) {
	t.Helper()

	fc := testingclock.NewFakeClock(time.Unix(0, 0))
	s := NewSurface(context.Background(), rhythm.NewSettings(), rhythm.NewTapTempo(fc))
	e := &fakeEngine{}
	l := &recordingListener{}
	s.Attach(e)
	s.AddListener(l)
	return s, e, l, fc
}

func TestSetTempoRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	s, _, l, _ := newSurface(t)

	err := s.SetTempo(500)
	require.Error(t, err)
	require.True(t, goerrors.IsError(err, rhythm.ErrTempoOutOfRange))
	require.Equal(t, 120, s.Settings().Tempo)
	require.Len(t, l.errs, 1)
	require.Empty(t, l.settings)

	require.NoError(t, s.SetTempo(96))
	require.Equal(t, 96, s.Settings().Tempo)
	require.Len(t, l.settings, 1)
	require.Equal(t, 96, l.settings[0].Tempo)
}

func TestAdjustTempoStopsAtLimits(t *testing.T) {
	t.Parallel()

	s, _, l, _ := newSurface(t)

	require.Equal(t, 130, s.AdjustTempo(10))
	require.NoError(t, s.SetTempo(rhythm.MaxBPM-1))
	require.Equal(t, rhythm.MaxBPM, s.AdjustTempo(10))
	require.Equal(t, rhythm.MaxBPM, s.AdjustTempo(1))
	require.Len(t, l.settings, 3)

	require.NoError(t, s.SetTempo(rhythm.MinBPM))
	require.Equal(t, rhythm.MinBPM, s.AdjustTempo(-1))
	require.Empty(t, l.errs)
}

func TestSetSignature(t *testing.T) {
	t.Parallel()

	s, _, l, _ := newSurface(t)

	require.NoError(t, s.SetSignature(7))
	require.Equal(t, 7, s.Settings().BeatsPerMeasure)

	err := s.SetSignature(13)
	require.True(t, goerrors.IsError(err, rhythm.ErrSignatureOutOfRange))
	require.Equal(t, 7, s.Settings().BeatsPerMeasure)
	require.Len(t, l.errs, 1)
}

func TestSetModeToggles(t *testing.T) {
	t.Parallel()

	s, _, l, _ := newSurface(t)

	m, err := s.SetModeByName("triplet")
	require.NoError(t, err)
	require.Equal(t, rhythm.ModeTriplet, m)

	m, err = s.SetMode(rhythm.ModeTriplet)
	require.NoError(t, err)
	require.Equal(t, rhythm.ModeNormal, m)

	_, err = s.SetModeByName("waltz")
	require.True(t, goerrors.IsError(err, rhythm.ErrUnknownMode))
	require.Equal(t, rhythm.ModeNormal, s.Settings().Mode)
	require.Len(t, l.errs, 1)
}

func TestStartStopToggle(t *testing.T) {
	t.Parallel()

	s, e, _, _ := newSurface(t)

	s.Toggle()
	require.True(t, s.Running())
	require.True(t, s.Status().Running)
	s.Toggle()
	require.False(t, s.Running())
	require.Equal(t, 1, e.starts)
	require.Equal(t, 1, e.stops)

	// without an engine the surface does nothing
	detached := NewSurface(context.Background(), rhythm.NewSettings(), rhythm.NewTapTempo(testingclock.NewFakeClock(time.Now())))
	detached.Start()
	require.False(t, detached.Running())
}

func TestTapSetsTempo(t *testing.T) {
	t.Parallel()

	s, _, _, fc := newSurface(t)

	_, ok := s.Tap()
	require.False(t, ok)

	fc.Step(500 * time.Millisecond)
	bpm, ok := s.Tap()
	require.True(t, ok)
	require.Equal(t, 120, bpm)

	fc.Step(400 * time.Millisecond)
	bpm, ok = s.Tap()
	require.True(t, ok)
	require.Equal(t, 133, bpm)
	require.Equal(t, 133, s.Settings().Tempo)
}

func TestHooksFanOut(t *testing.T) {
	t.Parallel()

	s, _, l, _ := newSurface(t)
	other := &recordingListener{}
	s.AddListener(other)
	s.AddListener(BaseListener{})

	hooks := s.Hooks()
	hooks.OnBeat(3)
	hooks.OnRunStateChanged(true)

	for _, rec := range []*recordingListener{l, other} {
		require.Equal(t, []int{3}, rec.beats)
		require.Equal(t, []bool{true}, rec.states)
	}
}
