package rhythm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func TestTapTempo(t *testing.T) {
	t.Parallel()

	fc := testingclock.NewFakeClock(time.Unix(0, 0))
	tt := NewTapTempo(fc)

	_, ok := tt.Tap()
	require.False(t, ok)

	fc.Step(500 * time.Millisecond)
	bpm, ok := tt.Tap()
	require.True(t, ok)
	require.Equal(t, 120, bpm)

	// a duplicate tap at the same instant is ignored
	bpm, ok = tt.Tap()
	require.True(t, ok)
	require.Equal(t, 120, bpm)
	require.Equal(t, 2, tt.Count())

	fc.Step(1000 * time.Millisecond)
	bpm, ok = tt.Tap()
	require.True(t, ok)
	require.Equal(t, 80, bpm) // 1.5s over two intervals
}

func TestTapTempoWindow(t *testing.T) {
	t.Parallel()

	fc := testingclock.NewFakeClock(time.Unix(0, 0))
	tt := NewTapTempo(fc)

	tt.Tap()
	fc.Step(6 * time.Second)

	// the first tap left the window, so this one starts over
	_, ok := tt.Tap()
	require.False(t, ok)
	require.Equal(t, 1, tt.Count())

	fc.Step(250 * time.Millisecond)
	bpm, ok := tt.Tap()
	require.True(t, ok)
	require.Equal(t, 240, bpm)
}

func TestTapTempoClamps(t *testing.T) {
	t.Parallel()

	fc := testingclock.NewFakeClock(time.Unix(0, 0))
	tt := NewTapTempo(fc)

	tt.Tap()
	fc.Step(50 * time.Millisecond)
	bpm, ok := tt.Tap()
	require.True(t, ok)
	require.Equal(t, MaxBPM, bpm)

	tt.Reset()
	require.Equal(t, 0, tt.Count())
}
