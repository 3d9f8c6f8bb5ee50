package audio

import (
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/require"
)

// constant returns a buffer of n samples at the given level.
func constant(format beep.Format, n int, level float64) *beep.Buffer {
	pos := 0
	s := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= n {
			return 0, false
		}
		i := 0
		for i < len(samples) && pos < n {
			samples[i] = [2]float64{level, level}
			i++
			pos++
		}
		return i, true
	})
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return buf
}

func TestDeviceClockAdvancesWithRenderedSamples(t *testing.T) {
	t.Parallel()

	d := NewDevice(NewFormat(1000))
	require.Equal(t, 0.0, d.Now())

	n, ok := d.Stream(make([][2]float64, 250))
	require.True(t, ok)
	require.Equal(t, 250, n)
	require.Equal(t, 0.25, d.Now())
}

func TestDevicePlaysAtExactSample(t *testing.T) {
	t.Parallel()

	format := NewFormat(1000)
	d := NewDevice(format)
	d.PlayAt(constant(format, 10, 0.5), 0.05)

	first := make([][2]float64, 40)
	d.Stream(first)
	for i := range first {
		require.Equal(t, [2]float64{}, first[i], "sample %d", i)
	}

	second := make([][2]float64, 40)
	d.Stream(second)
	for i := range second {
		if i >= 10 && i < 20 {
			require.InDelta(t, 0.5, second[i][0], 1e-3, "sample %d", i)
		} else {
			require.Equal(t, 0.0, second[i][0], "sample %d", i)
		}
	}

	// the finished voice is released
	require.Equal(t, 0, d.Pending())
}

func TestDeviceVoiceSpansChunks(t *testing.T) {
	t.Parallel()

	format := NewFormat(1000)
	d := NewDevice(format)
	d.PlayAt(constant(format, 30, 0.25), 0.015)

	chunk := make([][2]float64, 20)
	d.Stream(chunk)
	require.Equal(t, 0.0, chunk[14][0])
	require.InDelta(t, 0.25, chunk[15][0], 1e-3)
	require.Equal(t, 1, d.Pending())

	d.Stream(chunk)
	require.InDelta(t, 0.25, chunk[0][0], 1e-3)
	require.InDelta(t, 0.25, chunk[19][0], 1e-3)

	d.Stream(chunk)
	require.InDelta(t, 0.25, chunk[4][0], 1e-3)
	require.Equal(t, 0.0, chunk[5][0])
	require.Equal(t, 0, d.Pending())
}

func TestDeviceLateSoundStartsImmediately(t *testing.T) {
	t.Parallel()

	format := NewFormat(1000)
	d := NewDevice(format)
	d.Stream(make([][2]float64, 100))

	d.PlayAt(constant(format, 5, 0.5), 0.02)

	chunk := make([][2]float64, 10)
	d.Stream(chunk)
	require.InDelta(t, 0.5, chunk[0][0], 1e-3)
	require.InDelta(t, 0.5, chunk[4][0], 1e-3)
	require.Equal(t, 0.0, chunk[5][0])
}

func TestDeviceMixesOverlappingSounds(t *testing.T) {
	t.Parallel()

	format := NewFormat(1000)
	d := NewDevice(format)
	d.PlayAt(constant(format, 10, 0.25), 0)
	d.PlayAt(constant(format, 10, 0.25), 0.005)

	chunk := make([][2]float64, 20)
	d.Stream(chunk)
	require.InDelta(t, 0.25, chunk[0][0], 1e-3)
	require.InDelta(t, 0.5, chunk[5][0], 1e-3)
	require.InDelta(t, 0.25, chunk[12][0], 1e-3)
	require.Equal(t, 0.0, chunk[15][1])
}

func TestDeviceClear(t *testing.T) {
	t.Parallel()

	format := NewFormat(1000)
	d := NewDevice(format)
	d.PlayAt(constant(format, 10, 0.5), 0.001)
	d.Clear()

	chunk := make([][2]float64, 20)
	d.Stream(chunk)
	require.Equal(t, 0.0, chunk[5][0])
	require.NoError(t, d.Err())
}
