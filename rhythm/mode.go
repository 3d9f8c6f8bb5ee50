package rhythm

import "strings"

// Mode selects how many ticks are played per beat.
type Mode int

const (
	ModeNormal Mode = iota
	ModeEighth
	ModeTriplet
	ModeSixteenth
)

var modeNames = []string{"normal", "eighth", "triplet", "sixteenth"}

// ParseMode maps a mode name (case-insensitive) to a Mode.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return ModeNormal, ErrUnknownMode
}

func (m Mode) Valid() bool {
	return m >= ModeNormal && m <= ModeSixteenth
}

// Subdivisions returns the number of ticks per beat: 1, 2, 3 or 4.
func (m Mode) Subdivisions() int {
	if !m.Valid() {
		return 1
	}
	return int(m) + 1
}

// Toggle returns the mode that results from selecting next while m is active.
// Selecting the active mode again falls back to normal.
func (m Mode) Toggle(next Mode) Mode {
	if next == m {
		return ModeNormal
	}
	return next
}

func (m Mode) String() string {
	if !m.Valid() {
		return "unknown"
	}
	return modeNames[m]
}
