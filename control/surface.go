// Package control is the metronome's control surface: validated setters for
// tempo, signature and mode, start/stop, tap tempo, and fan-out of scheduler
// events to displays.
package control

import (
	"context"
	"sync"

	goerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/pulse/logger"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/robmorgan/pulse/scheduler"
	"github.com/sirupsen/logrus"
)

// Listener receives metronome events. Embed BaseListener to implement only
// some of them.
type Listener interface {
	OnBeat(beat int)
	OnRunStateChanged(running bool)
	OnSettingsChanged(snap rhythm.Snapshot)
	OnError(err error)
}

// BaseListener ignores every event.
type BaseListener struct{}

func (BaseListener) OnBeat(int) {}

func (BaseListener) OnRunStateChanged(bool) {}

func (BaseListener) OnSettingsChanged(rhythm.Snapshot) {}

func (BaseListener) OnError(error) {}

// Engine is the part of the scheduler the surface drives.
type Engine interface {
	Start(ctx context.Context)
	Stop()
	Running() bool
	Status() scheduler.Status
}

// Surface validates user input before it reaches the shared settings and
// forwards scheduler events to its listeners.
type Surface struct {
	ctx      context.Context
	settings *rhythm.Settings
	tap      *rhythm.TapTempo

	mu        sync.RWMutex
	engine    Engine
	listeners []Listener
}

// NewSurface creates a surface over settings. ctx bounds every run loop it
// starts.
func NewSurface(ctx context.Context, settings *rhythm.Settings, tap *rhythm.TapTempo) *Surface {
	return &Surface{
		ctx:      ctx,
		settings: settings,
		tap:      tap,
	}
}

// Hooks returns scheduler hooks that feed the surface's listeners.
func (s *Surface) Hooks() scheduler.Hooks {
	return scheduler.Hooks{
		OnBeat:            s.beat,
		OnRunStateChanged: s.runStateChanged,
		OnError:           s.reportError,
	}
}

// Attach sets the engine driven by Start and Stop.
func (s *Surface) Attach(e Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = e
}

func (s *Surface) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Surface) Start() {
	if e := s.getEngine(); e != nil {
		e.Start(s.ctx)
	}
}

func (s *Surface) Stop() {
	if e := s.getEngine(); e != nil {
		e.Stop()
	}
}

// Toggle starts a stopped metronome and stops a running one.
func (s *Surface) Toggle() {
	if s.Running() {
		s.Stop()
		return
	}
	s.Start()
}

func (s *Surface) Running() bool {
	if e := s.getEngine(); e != nil {
		return e.Running()
	}
	return false
}

// Status returns the engine status, or a zero status if none is attached.
func (s *Surface) Status() scheduler.Status {
	if e := s.getEngine(); e != nil {
		return e.Status()
	}
	return scheduler.Status{}
}

// Settings returns the current settings.
func (s *Surface) Settings() rhythm.Snapshot {
	return s.settings.Snapshot()
}

// SetTempo changes the tempo. Out of range values are rejected, the previous
// tempo stays in effect and listeners are told about the error.
func (s *Surface) SetTempo(bpm int) error {
	if err := s.settings.SetTempo(bpm); err != nil {
		return s.reject(err, logrus.Fields{"bpm": bpm})
	}
	s.settingsChanged()
	return nil
}

// AdjustTempo nudges the tempo by delta, stopping at the range limits. It
// returns the resulting tempo.
func (s *Surface) AdjustTempo(delta int) int {
	bpm := rhythm.ClampTempo(s.settings.Tempo() + delta)
	if bpm != s.settings.Tempo() {
		// always in range after clamping
		_ = s.settings.SetTempo(bpm)
		s.settingsChanged()
	}
	return bpm
}

// SetSignature changes the number of beats per measure.
func (s *Surface) SetSignature(beats int) error {
	if err := s.settings.SetBeatsPerMeasure(beats); err != nil {
		return s.reject(err, logrus.Fields{"beats": beats})
	}
	s.settingsChanged()
	return nil
}

// SetMode selects a rhythm mode; selecting the active mode returns to normal.
func (s *Surface) SetMode(m rhythm.Mode) (rhythm.Mode, error) {
	mode, err := s.settings.ToggleMode(m)
	if err != nil {
		return mode, s.reject(err, logrus.Fields{"mode": int(m)})
	}
	s.settingsChanged()
	return mode, nil
}

// SetModeByName is SetMode for a mode name such as "triplet".
func (s *Surface) SetModeByName(name string) (rhythm.Mode, error) {
	m, err := rhythm.ParseMode(name)
	if err != nil {
		return s.settings.Mode(), s.reject(err, logrus.Fields{"mode": name})
	}
	return s.SetMode(m)
}

// Tap registers a tap. Once enough taps have been collected the estimated
// tempo is applied and returned.
func (s *Surface) Tap() (int, bool) {
	bpm, ok := s.tap.Tap()
	if !ok {
		return 0, false
	}
	if err := s.SetTempo(bpm); err != nil {
		return 0, false
	}
	return bpm, true
}

func (s *Surface) reject(err error, fields logrus.Fields) error {
	logger := logger.GetProjectLogger()
	logger.WithFields(fields).Warnf("rejected input: %v", err)

	err = goerrors.WithStackTrace(err)
	s.reportError(err)
	return err
}

func (s *Surface) getEngine() Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func (s *Surface) getListeners() []Listener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Listener(nil), s.listeners...)
}

func (s *Surface) beat(beat int) {
	for _, l := range s.getListeners() {
		l.OnBeat(beat)
	}
}

func (s *Surface) runStateChanged(running bool) {
	for _, l := range s.getListeners() {
		l.OnRunStateChanged(running)
	}
}

func (s *Surface) settingsChanged() {
	snap := s.settings.Snapshot()
	for _, l := range s.getListeners() {
		l.OnSettingsChanged(snap)
	}
}

func (s *Surface) reportError(err error) {
	for _, l := range s.getListeners() {
		l.OnError(err)
	}
}
