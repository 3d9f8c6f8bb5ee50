// Package indicator drives a DMX fixture as a visual beat indicator: every
// beat flashes an RGB par, which fades out before the next one.
package indicator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/pulse/control"
	"github.com/robmorgan/pulse/logger"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/robmorgan/pulse/utils"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const (
	UniverseSize = 512

	// channel offsets of a 4 channel RGB par
	channelIntensity = 0
	channelRed       = 1
	channelGreen     = 2
	channelBlue      = 3
	channelCount     = 4
)

// OLAClient is the interface for communicating with OLA
type OLAClient interface {
	SendDmx(universe int, values []byte) (status bool, err error)
	Close()
}

// Config places the fixture and shapes the flash.
type Config struct {
	Universe int
	// Address is the 1-based DMX start address of the fixture.
	Address int
	// Flash is how long a beat takes to fade out.
	Flash time.Duration
}

// Validate checks that the fixture fits in the universe.
func (c Config) Validate() error {
	if c.Address < 1 || c.Address+channelCount-1 > UniverseSize {
		return fmt.Errorf("dmx address (%d) not in range", c.Address)
	}
	if c.Flash <= 0 {
		return fmt.Errorf("flash duration must be positive, got %v", c.Flash)
	}
	return nil
}

// DMXIndicator turns beat events into DMX frames.
type DMXIndicator struct {
	control.BaseListener

	cfg   Config
	clock clock.PassiveClock

	mu              sync.Mutex
	beatsPerMeasure int
	color           colorful.Color
	flashStart      time.Time
	flashing        bool
}

func NewDMXIndicator(cfg Config, c clock.PassiveClock, beatsPerMeasure int) (*DMXIndicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &DMXIndicator{
		cfg:             cfg,
		clock:           c,
		beatsPerMeasure: beatsPerMeasure,
	}, nil
}

// OnBeat starts a flash in the colour of the beat.
func (d *DMXIndicator) OnBeat(beat int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.color = ColorForBeat(beat, d.beatsPerMeasure)
	d.flashStart = d.clock.Now()
	d.flashing = true
}

// OnRunStateChanged blacks the fixture out when the metronome stops.
func (d *DMXIndicator) OnRunStateChanged(running bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !running {
		d.flashing = false
	}
}

func (d *DMXIndicator) OnSettingsChanged(snap rhythm.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.beatsPerMeasure = snap.BeatsPerMeasure
}

// Level returns the current flash intensity between 0 and 1.
func (d *DMXIndicator) Level() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.level()
}

func (d *DMXIndicator) level() float64 {
	if !d.flashing {
		return 0
	}
	progress := float64(d.clock.Since(d.flashStart)) / float64(d.cfg.Flash)
	if progress >= 1 {
		return 0
	}
	return 1 - ease.OutCubic(utils.Clamp(progress, 0, 1))
}

// Frame renders the fixture into a full universe.
func (d *DMXIndicator) Frame() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	values := make([]byte, UniverseSize)
	level := d.level()
	if level == 0 {
		return values
	}

	base := d.cfg.Address - 1
	values[base+channelIntensity] = utils.ToDMX(level)
	values[base+channelRed] = utils.ToDMX(d.color.R)
	values[base+channelGreen] = utils.ToDMX(d.color.G)
	values[base+channelBlue] = utils.ToDMX(d.color.B)
	return values
}

// SendDMXWorker sends OLA the indicator's frame on every tick until ctx is done.
func SendDMXWorker(ctx context.Context, client OLAClient, c clock.WithTicker, tick time.Duration, d *DMXIndicator, wg *sync.WaitGroup) error {
	defer wg.Done()
	defer client.Close()

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{"universe": d.cfg.Universe, "address": d.cfg.Address, "tick": tick}).Info("DMX worker started")

	t := c.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("DMX worker shutdown")
			return ctx.Err()
		case <-t.C():
			if _, err := client.SendDmx(d.cfg.Universe, d.Frame()); err != nil {
				logger.Debugf("error sending dmx. err='%v'", err)
			}
		}
	}
}
