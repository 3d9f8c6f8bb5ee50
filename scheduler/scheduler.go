// Package scheduler implements the look-ahead click scheduler.
//
// A coarse repeating tick (tens of milliseconds, with jitter) drives two
// loops over the same events. The fill loop hands every tick due within the
// look-ahead horizon to the output device, which plays it on the exact
// sample. The drain loop retires events once the device clock has passed
// them, which is when the beat display may move. Both compare against the
// device clock, never the tick's own timing.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/robmorgan/pulse/engine"
	"github.com/robmorgan/pulse/logger"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const (
	DefaultTickRate      = 25 * time.Millisecond
	DefaultScheduleAhead = 100 * time.Millisecond
)

// Output is the clock source: a device clock in seconds and a sink that plays
// a buffer at an exact device time.
type Output interface {
	Now() float64
	PlayAt(buf *beep.Buffer, at float64)
}

// Sounds is the sound bank the scheduler plays from.
type Sounds interface {
	Load(ctx context.Context)
	Ready() <-chan struct{}
	Err() error
	Loaded() bool
	Buffer(accent rhythm.Accent) (*beep.Buffer, error)
}

// Hooks are called after the scheduler has released its lock, in the order
// the underlying changes happened. Any of them may be nil.
type Hooks struct {
	// OnBeat fires when a new beat becomes current on the device clock.
	OnBeat func(beat int)
	// OnTick fires for every retired event, subdivisions included.
	OnTick func(ev rhythm.Event)
	// OnRunStateChanged fires when the run loop is entered or left.
	OnRunStateChanged func(running bool)
	// OnError reports a failed sound bank load.
	OnError func(err error)
}

// Config tunes the scheduler timing.
type Config struct {
	// TickRate is how often the scheduler wakes up.
	TickRate time.Duration
	// ScheduleAhead is the look-ahead horizon.
	ScheduleAhead time.Duration
}

// Status is a snapshot of the scheduler for display.
type Status struct {
	Running   bool
	Pending   bool
	Beat      int
	NextDue   float64
	Queued    int
	Ticks     uint64
	Scheduled uint64
	Dropped   uint64
	Drained   uint64
}

// Scheduler owns the run state and the pending display queue.
type Scheduler struct {
	cfg      Config
	output   Output
	sounds   Sounds
	settings *rhythm.Settings
	hooks    Hooks
	loop     *engine.Loop

	// notifyMu serialises whole updates and lifecycle changes including their
	// hooks, so hooks must not call back into Start or Stop
	notifyMu sync.Mutex

	mu            sync.Mutex
	running       bool
	pending       bool
	cancelPending context.CancelFunc
	state         rhythm.State
	queue         queue
	beat          int
	ticks         uint64
	scheduled     uint64
	dropped       uint64
	drained       uint64
}

// New creates a stopped scheduler. Zero timing values fall back to the
// defaults.
func New(cfg Config, c clock.WithTicker, output Output, sounds Sounds, settings *rhythm.Settings, hooks Hooks) *Scheduler {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.ScheduleAhead <= 0 {
		cfg.ScheduleAhead = DefaultScheduleAhead
	}

	s := &Scheduler{
		cfg:      cfg,
		output:   output,
		sounds:   sounds,
		settings: settings,
		hooks:    hooks,
	}
	s.loop = engine.New(c, cfg.TickRate, s.update)
	return s
}

// Start enters the run loop. It is a no-op while running or while an earlier
// start is waiting for the sound bank. If the bank has not loaded yet the
// start is queued and fires when loading completes; if loading fails the
// error is reported and the scheduler stays stopped until a later Start
// retries the load.
func (s *Scheduler) Start(ctx context.Context) {
	logger := logger.GetProjectLogger()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.running || s.pending {
		s.mu.Unlock()
		return
	}

	if s.sounds.Loaded() {
		s.begin(ctx)
		s.mu.Unlock()
		s.notifyRunState(true)
		return
	}

	logger.Info("Waiting for sounds before starting...")
	pctx, cancel := context.WithCancel(ctx)
	s.pending = true
	s.cancelPending = cancel
	s.mu.Unlock()

	// starts a new attempt if an earlier load failed
	s.sounds.Load(ctx)
	go s.startWhenLoaded(ctx, pctx, s.sounds.Ready())
}

func (s *Scheduler) startWhenLoaded(ctx, pctx context.Context, ready <-chan struct{}) {
	select {
	case <-pctx.Done():
		return
	case <-ready:
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.cancelPending()
	s.cancelPending = nil

	if err := s.sounds.Err(); err != nil {
		s.mu.Unlock()
		s.notifyError(err)
		return
	}

	s.begin(ctx)
	s.mu.Unlock()
	s.notifyRunState(true)
}

// begin resets the run state and starts the loop. Callers hold s.mu.
func (s *Scheduler) begin(ctx context.Context) {
	s.reset()
	s.running = true

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{"device_time": s.state.Cursor, "tick_rate": s.cfg.TickRate}).Info("Scheduler started")

	s.loop.Start(ctx)
	go s.watchLoop(s.loop.Done())
}

// watchLoop leaves the running state when a loop ends on its own, which
// happens once the context given to Start is done.
func (s *Scheduler) watchLoop(done <-chan struct{}) {
	<-done

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !s.running || s.loop.Done() != done {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.queue.reset()
	s.mu.Unlock()

	logger := logger.GetProjectLogger()
	logger.Info("Scheduler stopped, context done")
	s.notifyRunState(false)
}

func (s *Scheduler) reset() {
	s.state = rhythm.NewState(s.output.Now())
	s.queue.reset()
	s.beat = 0
}

// Stop leaves the run loop and clears the display queue. Sounds already
// handed to the output still play. It is a no-op when stopped.
func (s *Scheduler) Stop() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !s.running && !s.pending {
		s.mu.Unlock()
		return
	}

	wasRunning := s.running
	s.running = false
	s.pending = false
	if s.cancelPending != nil {
		s.cancelPending()
		s.cancelPending = nil
	}
	s.loop.Stop()
	s.queue.reset()
	s.mu.Unlock()

	if wasRunning {
		logger := logger.GetProjectLogger()
		logger.Info("Scheduler stopped")
		s.notifyRunState(false)
	}
}

// Running reports whether the run loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns a snapshot of the run state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:   s.running,
		Pending:   s.pending,
		Beat:      s.beat,
		NextDue:   s.state.Cursor,
		Queued:    s.queue.len(),
		Ticks:     s.ticks,
		Scheduled: s.scheduled,
		Dropped:   s.dropped,
		Drained:   s.drained,
	}
}

// Done is closed when the most recent run loop goroutine has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.loop.Done()
}

// update is one scheduler tick: fill, then drain.
func (s *Scheduler) update(delta time.Duration) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.ticks++

	if delta > s.cfg.ScheduleAhead {
		logger := logger.GetProjectLogger()
		logger.WithFields(logrus.Fields{"delta": delta, "horizon": s.cfg.ScheduleAhead}).Debug("Scheduler tick arrived late")
	}

	s.fill(s.output.Now() + s.cfg.ScheduleAhead.Seconds())
	retired := s.drain(s.output.Now())
	s.mu.Unlock()

	s.notifyRetired(retired)
}

// fill hands every event due before the horizon to the output. Several events
// may be produced in one tick after a late wake-up.
func (s *Scheduler) fill(horizon float64) {
	for s.state.Cursor < horizon {
		var ev rhythm.Event
		ev, s.state = rhythm.ComputeNext(s.state, s.settings.Snapshot())

		buf, err := s.sounds.Buffer(ev.Accent())
		if err != nil {
			// sounds not ready: the event is dropped, not queued
			s.dropped++
			continue
		}
		s.output.PlayAt(buf, ev.Due)
		s.queue.push(ev)
		s.scheduled++
	}
}

// drain retires every queued event the device clock has passed.
func (s *Scheduler) drain(now float64) []rhythm.Event {
	var retired []rhythm.Event
	for !s.queue.empty() && s.queue.front().Due < now {
		ev := s.queue.pop()
		retired = append(retired, ev)
		s.beat = ev.Beat
		s.drained++
	}
	return retired
}

// notifyRetired fires OnTick for every retired event and OnBeat for each new
// beat, skipping a beat number that was just reported in the same drain.
func (s *Scheduler) notifyRetired(retired []rhythm.Event) {
	last := 0
	for _, ev := range retired {
		if s.hooks.OnTick != nil {
			s.hooks.OnTick(ev)
		}
		if ev.Sub != 0 || ev.Beat == last {
			continue
		}
		last = ev.Beat
		if s.hooks.OnBeat != nil {
			s.hooks.OnBeat(ev.Beat)
		}
	}
}

func (s *Scheduler) notifyRunState(running bool) {
	if s.hooks.OnRunStateChanged != nil {
		s.hooks.OnRunStateChanged(running)
	}
}

func (s *Scheduler) notifyError(err error) {
	logger := logger.GetProjectLogger()
	logger.Errorf("cannot start without sounds. err='%v'", err)
	if s.hooks.OnError != nil {
		s.hooks.OnError(err)
	}
}
