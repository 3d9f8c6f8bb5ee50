package rhythm

import (
	"fmt"
	"math"

	"github.com/robmorgan/pulse/utils"
)

const (
	MinBPM = 10
	MaxBPM = 400

	MinBeatsPerMeasure = 1
	MaxBeatsPerMeasure = 12

	DefaultBPM             = 120
	DefaultBeatsPerMeasure = 4
)

var (
	ErrTempoOutOfRange     = fmt.Errorf("tempo must be between %d and %d bpm", MinBPM, MaxBPM)
	ErrSignatureOutOfRange = fmt.Errorf("time signature must be between %d and %d beats per measure", MinBeatsPerMeasure, MaxBeatsPerMeasure)
	ErrUnknownMode         = fmt.Errorf("rhythm mode must be one of %v", modeNames)
)

// ValidateTempo checks bpm against the supported tempo range.
func ValidateTempo(bpm int) error {
	if bpm < MinBPM || bpm > MaxBPM {
		return ErrTempoOutOfRange
	}
	return nil
}

// ValidateSignature checks the number of beats per measure.
func ValidateSignature(beats int) error {
	if beats < MinBeatsPerMeasure || beats > MaxBeatsPerMeasure {
		return ErrSignatureOutOfRange
	}
	return nil
}

// ClampTempo forces bpm into the supported tempo range.
func ClampTempo(bpm int) int {
	return utils.Clamp(bpm, MinBPM, MaxBPM)
}

// BeatInterval returns the length of one beat in seconds.
func BeatInterval(bpm int) float64 {
	return beatsToSeconds(1, bpm)
}

// IntervalToBPM converts a beat length in seconds to the nearest whole tempo.
func IntervalToBPM(seconds float64) int {
	if seconds <= 0 {
		return MaxBPM
	}
	return int(math.Round(60.0 / seconds))
}

// beatsToSeconds calculates seconds for given beats and tempo
func beatsToSeconds(beats int, bpm int) float64 {
	return (60.0 / float64(bpm)) * float64(beats)
}
