package rhythm

// Snapshot is a consistent copy of the metronome settings, taken once per
// computed event.
type Snapshot struct {
	Tempo           int
	BeatsPerMeasure int
	Mode            Mode
}

// BeatInterval gets the beat length in seconds.
func (s Snapshot) BeatInterval() float64 {
	return BeatInterval(s.Tempo)
}

// BarInterval gets the measure length in seconds.
func (s Snapshot) BarInterval() float64 {
	return beatsToSeconds(s.BeatsPerMeasure, s.Tempo)
}

// Subdivisions gets the number of ticks per beat.
func (s Snapshot) Subdivisions() int {
	return s.Mode.Subdivisions()
}

// SubdivisionInterval gets the spacing between ticks within a beat.
func (s Snapshot) SubdivisionInterval() float64 {
	return s.BeatInterval() / float64(s.Subdivisions())
}
