package rhythm

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// TapWindow is how far back taps are considered when estimating a tempo.
const TapWindow = 5 * time.Second

// TapTempo estimates a tempo from the average interval between taps.
type TapTempo struct {
	mu    sync.Mutex
	clock clock.PassiveClock
	taps  []time.Time
}

func NewTapTempo(c clock.PassiveClock) *TapTempo {
	return &TapTempo{clock: c}
}

// Tap records a tap at the current time. Once at least two taps fall within
// TapWindow it returns the averaged tempo, clamped to [MinBPM, MaxBPM].
func (t *TapTempo) Tap() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()

	// drop taps that have left the window
	cutoff := now.Add(-TapWindow)
	keep := 0
	for keep < len(t.taps) && t.taps[keep].Before(cutoff) {
		keep++
	}
	t.taps = t.taps[keep:]

	// a repeated tap at the same instant carries no interval
	if n := len(t.taps); n == 0 || now.After(t.taps[n-1]) {
		t.taps = append(t.taps, now)
	}

	if len(t.taps) < 2 {
		return 0, false
	}

	span := t.taps[len(t.taps)-1].Sub(t.taps[0])
	avg := span.Seconds() / float64(len(t.taps)-1)
	return ClampTempo(IntervalToBPM(avg)), true
}

// Count returns the number of taps inside the window.
func (t *TapTempo) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.taps)
}

func (t *TapTempo) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.taps = nil
}
