// Package audio holds the output side of the metronome: a device clock that
// plays buffers at exact sample positions, and the bank of decoded clicks.
package audio

import (
	"github.com/faiface/beep"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	NumChannels       = 2
	Precision         = 2
)

// NewFormat returns the stereo 16-bit format used for every buffer the device
// plays.
func NewFormat(rate beep.SampleRate) beep.Format {
	return beep.Format{
		SampleRate:  rate,
		NumChannels: NumChannels,
		Precision:   Precision,
	}
}
