package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/fogleman/ease"
	"github.com/robmorgan/pulse/rhythm"
)

type clickTone struct {
	freq     float64
	duration time.Duration
	gain     float64
}

var clickTones = map[rhythm.Accent]clickTone{
	rhythm.AccentDownbeat:    {freq: 1568.0, duration: 45 * time.Millisecond, gain: 0.9},
	rhythm.AccentBeat:        {freq: 1046.5, duration: 40 * time.Millisecond, gain: 0.7},
	rhythm.AccentSubdivision: {freq: 784.0, duration: 25 * time.Millisecond, gain: 0.45},
}

// Click synthesises a short sine burst for the accent, used when no sample
// file is configured for it.
func Click(format beep.Format, accent rhythm.Accent) *beep.Buffer {
	tone, ok := clickTones[accent]
	if !ok {
		tone = clickTones[rhythm.AccentBeat]
	}

	total := format.SampleRate.N(tone.duration)
	rate := float64(format.SampleRate)
	pos := 0

	s := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for n < len(samples) && pos < total {
			env := 1 - ease.OutQuad(float64(pos)/float64(total))
			v := math.Sin(2*math.Pi*tone.freq*float64(pos)/rate) * env * tone.gain
			samples[n] = [2]float64{v, v}
			n++
			pos++
		}
		return n, true
	})

	buf := beep.NewBuffer(format)
	buf.Append(s)
	return buf
}
