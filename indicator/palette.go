package indicator

import "github.com/lucasb-eyer/go-colorful"

var (
	DownbeatColor = colorful.Color{R: 1.0, G: 0.27, B: 0.12}
	BeatColor     = colorful.Color{R: 0.12, G: 0.62, B: 1.0}
	LastBeatColor = colorful.Color{R: 0.55, G: 0.25, B: 1.0}
)

// ColorForBeat returns the indicator colour for a beat of the measure. The
// downbeat stands out; the remaining beats shade from BeatColor towards
// LastBeatColor so the position in the measure is visible.
func ColorForBeat(beat, beatsPerMeasure int) colorful.Color {
	if beat <= 1 {
		return DownbeatColor
	}
	if beatsPerMeasure <= 2 {
		return BeatColor
	}
	t := float64(beat-2) / float64(beatsPerMeasure-2)
	return BeatColor.BlendHcl(LastBeatColor, t).Clamped()
}
