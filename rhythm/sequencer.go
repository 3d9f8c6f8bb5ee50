package rhythm

// Accent identifies which sound a tick is played with.
type Accent int

const (
	AccentDownbeat Accent = iota
	AccentBeat
	AccentSubdivision
)

func (a Accent) String() string {
	switch a {
	case AccentDownbeat:
		return "downbeat"
	case AccentBeat:
		return "beat"
	case AccentSubdivision:
		return "subdivision"
	}
	return "unknown"
}

// Event is a single tick due at a point on the device clock. Beat is 1-indexed
// within the measure, Sub is the tick index within the beat.
type Event struct {
	Beat int
	Sub  int
	Due  float64
}

// Accent returns the sound role for the event: the first tick of beat 1 is
// the downbeat, the first tick of any other beat is a regular beat, and every
// other tick is a subdivision.
func (e Event) Accent() Accent {
	switch {
	case e.Sub > 0:
		return AccentSubdivision
	case e.Beat == 1:
		return AccentDownbeat
	default:
		return AccentBeat
	}
}

// State is the sequencer cursor: the next tick to produce and when it is due.
type State struct {
	Beat   int
	Sub    int
	Cursor float64
}

// NewState returns a cursor at the start of a measure, due at the given time.
func NewState(at float64) State {
	return State{Beat: 1, Sub: 0, Cursor: at}
}

// ComputeNext returns the event at the cursor and the cursor for the tick
// after it. The interval to the next tick is derived from the settings passed
// in, so a tempo change only affects intervals computed after it.
func ComputeNext(s State, snap Snapshot) (Event, State) {
	s = normalize(s, snap)

	ev := Event{Beat: s.Beat, Sub: s.Sub, Due: s.Cursor}

	next := State{Beat: s.Beat, Sub: s.Sub + 1, Cursor: s.Cursor + snap.SubdivisionInterval()}
	if next.Sub >= snap.Subdivisions() {
		next.Sub = 0
		next.Beat = nextBeat(s.Beat, snap.BeatsPerMeasure)
	}
	return ev, next
}

// normalize pulls a cursor back inside the current signature and mode after
// either has shrunk.
func normalize(s State, snap Snapshot) State {
	if s.Beat < 1 || s.Beat > snap.BeatsPerMeasure {
		s.Beat = 1
		s.Sub = 0
	}
	if s.Sub >= snap.Subdivisions() {
		s.Beat = nextBeat(s.Beat, snap.BeatsPerMeasure)
		s.Sub = 0
	}
	return s
}

func nextBeat(beat, beatsPerMeasure int) int {
	return beat%beatsPerMeasure + 1
}
