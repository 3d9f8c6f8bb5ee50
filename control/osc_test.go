package control

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSCMessages(t *testing.T) {
	t.Parallel()

	s, e, l, _ := newSurface(t)
	o, err := NewOSCServer("127.0.0.1:0", s)
	require.NoError(t, err)

	o.Dispatch(osc.NewMessage(AddressTempo, int32(90)))
	require.Equal(t, 90, s.Settings().Tempo)

	o.Dispatch(osc.NewMessage(AddressTempo, float32(100.4)))
	require.Equal(t, 100, s.Settings().Tempo)

	o.Dispatch(osc.NewMessage(AddressSignature, int32(3)))
	require.Equal(t, 3, s.Settings().BeatsPerMeasure)

	o.Dispatch(osc.NewMessage(AddressMode, "sixteenth"))
	require.Equal(t, rhythm.ModeSixteenth, s.Settings().Mode)

	o.Dispatch(osc.NewMessage(AddressStart))
	require.True(t, e.Running())
	o.Dispatch(osc.NewMessage(AddressToggle))
	require.False(t, e.Running())
	o.Dispatch(osc.NewMessage(AddressToggle))
	o.Dispatch(osc.NewMessage(AddressStop))
	require.False(t, e.Running())
	require.Empty(t, l.errs)
}

func TestOSCBadMessages(t *testing.T) {
	t.Parallel()

	s, _, l, _ := newSurface(t)
	o, err := NewOSCServer("127.0.0.1:0", s)
	require.NoError(t, err)

	o.Dispatch(osc.NewMessage(AddressTempo))
	o.Dispatch(osc.NewMessage(AddressTempo, true))
	o.Dispatch(osc.NewMessage(AddressTempo, int32(1000)))
	o.Dispatch(osc.NewMessage(AddressMode, int32(2)))

	require.Equal(t, 120, s.Settings().Tempo)
	require.Equal(t, rhythm.ModeNormal, s.Settings().Mode)
	require.Len(t, l.errs, 4)
}

func TestOSCServerShutsDown(t *testing.T) {
	t.Parallel()

	s, _, _, _ := newSurface(t)
	o, err := NewOSCServer("127.0.0.1:0", s)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- o.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("OSC server did not shut down")
	}
}

func TestOSCFloatArguments(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		arg  interface{}
		want int
		err  bool
	}{
		{float32(99.5), 100, false},
		{float64(120.49), 120, false},
		{float64(-2.4), -2, false},
		{float64(-2.6), -3, false},
		{float32(-0.4), 0, false},
		{math.NaN(), 0, true},
		{math.Inf(1), 0, true},
		{float32(math.Inf(-1)), 0, true},
		{float64(1e20), 0, true},
		{float64(-1e20), 0, true},
	}

	for _, tc := range testCases {
		got, err := intArgument(osc.NewMessage(AddressTempo, tc.arg))
		if tc.err {
			assert.Error(t, err, "%v", tc.arg)
			continue
		}
		require.NoError(t, err, "%v", tc.arg)
		assert.Equal(t, tc.want, got, "%v", tc.arg)
	}
}

func TestOSCRejectsNonFiniteTempo(t *testing.T) {
	t.Parallel()

	s, _, l, _ := newSurface(t)
	o, err := NewOSCServer("127.0.0.1:0", s)
	require.NoError(t, err)

	o.Dispatch(osc.NewMessage(AddressTempo, math.NaN()))
	o.Dispatch(osc.NewMessage(AddressSignature, math.Inf(1)))

	require.Equal(t, 120, s.Settings().Tempo)
	require.Equal(t, 4, s.Settings().BeatsPerMeasure)
	require.Len(t, l.errs, 2)
}
