package indicator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robmorgan/pulse/rhythm"
	"github.com/robmorgan/pulse/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

type fakeOLA struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeOLA) SendDmx(universe int, values []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, values)
	return true, nil
}

func (f *fakeOLA) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeOLA) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Config{Address: 1, Flash: time.Millisecond}.Validate())
	require.NoError(t, Config{Address: 509, Flash: time.Millisecond}.Validate())
	require.Error(t, Config{Address: 0, Flash: time.Millisecond}.Validate())
	require.Error(t, Config{Address: 510, Flash: time.Millisecond}.Validate())
	require.Error(t, Config{Address: 1}.Validate())
}

func TestIndicatorFlashesAndFades(t *testing.T) {
	t.Parallel()

	fc := testingclock.NewFakeClock(time.Unix(0, 0))
	d, err := NewDMXIndicator(Config{Universe: 1, Address: 10, Flash: 200 * time.Millisecond}, fc, 4)
	require.NoError(t, err)

	require.Equal(t, make([]byte, UniverseSize), d.Frame())

	d.OnRunStateChanged(true)
	d.OnBeat(1)

	frame := d.Frame()
	require.Len(t, frame, UniverseSize)
	assert.Equal(t, byte(255), frame[9])
	assert.Equal(t, utils.ToDMX(DownbeatColor.R), frame[10])
	assert.Equal(t, utils.ToDMX(DownbeatColor.G), frame[11])
	assert.Equal(t, utils.ToDMX(DownbeatColor.B), frame[12])

	fc.Step(100 * time.Millisecond)
	level := d.Level()
	assert.Greater(t, level, 0.0)
	assert.Less(t, level, 1.0)

	fc.Step(100 * time.Millisecond)
	require.Equal(t, 0.0, d.Level())

	// stopping blacks out a flash in progress
	d.OnBeat(2)
	require.Equal(t, 1.0, d.Level())
	d.OnRunStateChanged(false)
	require.Equal(t, 0.0, d.Level())
}

func TestColorForBeat(t *testing.T) {
	t.Parallel()

	require.Equal(t, DownbeatColor, ColorForBeat(1, 4))
	require.Equal(t, BeatColor, ColorForBeat(2, 2))
	require.True(t, ColorForBeat(2, 4).AlmostEqualRgb(BeatColor))
	require.True(t, ColorForBeat(4, 4).AlmostEqualRgb(LastBeatColor))
}

func TestIndicatorFollowsSignature(t *testing.T) {
	t.Parallel()

	fc := testingclock.NewFakeClock(time.Unix(0, 0))
	d, err := NewDMXIndicator(Config{Address: 1, Flash: time.Second}, fc, 4)
	require.NoError(t, err)

	d.OnSettingsChanged(rhythm.Snapshot{Tempo: 120, BeatsPerMeasure: 3, Mode: rhythm.ModeNormal})
	d.OnBeat(3)

	frame := d.Frame()
	require.Equal(t, utils.ToDMX(LastBeatColor.Clamped().R), frame[1])
}

func TestSendDMXWorker(t *testing.T) {
	t.Parallel()

	fc := testingclock.NewFakeClock(time.Unix(0, 0))
	d, err := NewDMXIndicator(Config{Universe: 2, Address: 1, Flash: time.Second}, fc, 4)
	require.NoError(t, err)

	client := &fakeOLA{}
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}
	wg.Add(1)
	go SendDMXWorker(ctx, client, fc, 25*time.Millisecond, d, &wg)

	require.Eventually(t, fc.HasWaiters, time.Second, time.Millisecond)
	fc.Step(25 * time.Millisecond)
	require.Eventually(t, func() bool { return client.count() == 1 }, time.Second, time.Millisecond)

	cancel()
	wg.Wait()
	require.True(t, client.closed)
}
