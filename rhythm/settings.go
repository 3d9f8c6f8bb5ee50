package rhythm

import "sync"

// Settings holds the tempo, time signature and rhythm mode shared between the
// control surface, which writes them, and the scheduler, which reads them once
// per computed event.
type Settings struct {
	mu              sync.RWMutex
	tempo           int
	beatsPerMeasure int
	mode            Mode
}

// NewSettings creates Settings with default values
func NewSettings() *Settings {
	return &Settings{
		tempo:           DefaultBPM,
		beatsPerMeasure: DefaultBeatsPerMeasure,
		mode:            ModeNormal,
	}
}

// NewSettingsFrom creates Settings from a snapshot, validating every field.
func NewSettingsFrom(snap Snapshot) (*Settings, error) {
	s := NewSettings()
	if err := s.SetTempo(snap.Tempo); err != nil {
		return nil, err
	}
	if err := s.SetBeatsPerMeasure(snap.BeatsPerMeasure); err != nil {
		return nil, err
	}
	if err := s.SetMode(snap.Mode); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Tempo() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tempo
}

// SetTempo sets a new tempo. It applies from the next computed interval; an
// out of range value is rejected and the previous tempo is kept.
func (s *Settings) SetTempo(bpm int) error {
	if err := ValidateTempo(bpm); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempo = bpm
	return nil
}

func (s *Settings) BeatsPerMeasure() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.beatsPerMeasure
}

// SetBeatsPerMeasure changes the time signature numerator.
func (s *Settings) SetBeatsPerMeasure(beats int) error {
	if err := ValidateSignature(beats); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beatsPerMeasure = beats
	return nil
}

func (s *Settings) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Settings) SetMode(m Mode) error {
	if !m.Valid() {
		return ErrUnknownMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
	return nil
}

// ToggleMode selects m, or returns to normal if m is already active. It
// returns the resulting mode.
func (s *Settings) ToggleMode(m Mode) (Mode, error) {
	if !m.Valid() {
		return s.Mode(), ErrUnknownMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = s.mode.Toggle(m)
	return s.mode, nil
}

// Snapshot copies the current settings under a single lock.
func (s *Settings) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Tempo:           s.tempo,
		BeatsPerMeasure: s.beatsPerMeasure,
		Mode:            s.mode,
	}
}
