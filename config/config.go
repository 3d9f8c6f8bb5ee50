package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/faiface/beep"
	"github.com/robmorgan/pulse/audio"
	"github.com/robmorgan/pulse/indicator"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/robmorgan/pulse/scheduler"
)

// PulseConfig represents options that configure the global behavior of the program
type PulseConfig struct {
	// Logging
	LogLevel string
	LogFile  string

	// Initial rhythm settings
	Tempo           int
	BeatsPerMeasure int
	Mode            string

	// Scheduler timing
	TickRate      time.Duration
	ScheduleAhead time.Duration

	// Audio output
	SampleRate     int
	SpeakerLatency time.Duration

	// Sound sources, a file path or http(s) URL. Empty means the built-in click.
	DownbeatSound    string
	BeatSound        string
	SubdivisionSound string

	// OSC remote control, disabled when empty
	OSCAddr string

	// DMX beat indicator, disabled when OLAAddr is empty
	OLAAddr     string
	DMXUniverse int
	DMXAddress  int
	DMXFlash    time.Duration
	DMXTick     time.Duration

	// Start clicking as soon as the sounds are loaded
	AutoStart bool
}

// NewPulseConfig creates a PulseConfig object with reasonable defaults for real usage, overridden by any PULSE_*
// environment variables.
func NewPulseConfig() PulseConfig {
	return PulseConfig{
		LogLevel: envStr("PULSE_LOG_LEVEL", "info"),
		LogFile:  envStr("PULSE_LOG_FILE", "pulse.log"),

		Tempo:           envInt("PULSE_TEMPO", rhythm.DefaultBPM),
		BeatsPerMeasure: envInt("PULSE_SIGNATURE", rhythm.DefaultBeatsPerMeasure),
		Mode:            envStr("PULSE_MODE", rhythm.ModeNormal.String()),

		TickRate:      envDuration("PULSE_TICK_RATE", scheduler.DefaultTickRate),
		ScheduleAhead: envDuration("PULSE_SCHEDULE_AHEAD", scheduler.DefaultScheduleAhead),

		SampleRate:     envInt("PULSE_SAMPLE_RATE", int(audio.DefaultSampleRate)),
		SpeakerLatency: envDuration("PULSE_SPEAKER_LATENCY", 20*time.Millisecond),

		DownbeatSound:    envStr("PULSE_SOUND_DOWNBEAT", ""),
		BeatSound:        envStr("PULSE_SOUND_BEAT", ""),
		SubdivisionSound: envStr("PULSE_SOUND_SUBDIVISION", ""),

		OSCAddr: envStr("PULSE_OSC_ADDR", ""),

		OLAAddr:     envStr("PULSE_OLA_ADDR", ""),
		DMXUniverse: envInt("PULSE_DMX_UNIVERSE", 1),
		DMXAddress:  envInt("PULSE_DMX_ADDRESS", 1),
		DMXFlash:    envDuration("PULSE_DMX_FLASH", 150*time.Millisecond),
		DMXTick:     envDuration("PULSE_DMX_TICK", 40*time.Millisecond),

		AutoStart: envBool("PULSE_AUTOSTART", false),
	}
}

// RegisterFlags binds command line flags to the config. Current values become the flag defaults.
func (c *PulseConfig) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file instead of the terminal")

	fs.IntVar(&c.Tempo, "tempo", c.Tempo, "initial tempo in beats per minute")
	fs.IntVar(&c.BeatsPerMeasure, "signature", c.BeatsPerMeasure, "beats per measure")
	fs.StringVar(&c.Mode, "mode", c.Mode, "rhythm mode (normal, eighth, triplet, sixteenth)")

	fs.DurationVar(&c.TickRate, "tick", c.TickRate, "scheduler tick rate")
	fs.DurationVar(&c.ScheduleAhead, "ahead", c.ScheduleAhead, "look-ahead scheduling horizon")

	fs.IntVar(&c.SampleRate, "sample-rate", c.SampleRate, "output sample rate")
	fs.DurationVar(&c.SpeakerLatency, "latency", c.SpeakerLatency, "speaker buffer latency")

	fs.StringVar(&c.DownbeatSound, "sound-downbeat", c.DownbeatSound, "downbeat sound file or URL")
	fs.StringVar(&c.BeatSound, "sound-beat", c.BeatSound, "beat sound file or URL")
	fs.StringVar(&c.SubdivisionSound, "sound-subdivision", c.SubdivisionSound, "subdivision sound file or URL")

	fs.StringVar(&c.OSCAddr, "osc", c.OSCAddr, "listen for OSC control messages on this UDP address")

	fs.StringVar(&c.OLAAddr, "ola", c.OLAAddr, "OLA server address for the DMX beat indicator")
	fs.IntVar(&c.DMXUniverse, "dmx-universe", c.DMXUniverse, "DMX universe of the beat indicator")
	fs.IntVar(&c.DMXAddress, "dmx-address", c.DMXAddress, "DMX start address of the beat indicator")
	fs.DurationVar(&c.DMXFlash, "dmx-flash", c.DMXFlash, "beat indicator flash length")
	fs.DurationVar(&c.DMXTick, "dmx-tick", c.DMXTick, "how often DMX frames are sent to OLA")

	fs.BoolVar(&c.AutoStart, "autostart", c.AutoStart, "start as soon as the sounds are loaded")
}

// Validate checks the config for values the metronome cannot run with.
func (c PulseConfig) Validate() error {
	if err := rhythm.ValidateTempo(c.Tempo); err != nil {
		return err
	}
	if err := rhythm.ValidateSignature(c.BeatsPerMeasure); err != nil {
		return err
	}
	if _, err := rhythm.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %s", c.TickRate)
	}
	if c.ScheduleAhead <= 0 {
		return fmt.Errorf("schedule ahead must be positive, got %s", c.ScheduleAhead)
	}
	if c.ScheduleAhead < c.TickRate {
		return fmt.Errorf("schedule ahead %s is shorter than the tick rate %s", c.ScheduleAhead, c.TickRate)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.OLAAddr != "" {
		if err := c.Indicator().Validate(); err != nil {
			return err
		}
		if c.DMXTick <= 0 {
			return fmt.Errorf("dmx tick must be positive, got %s", c.DMXTick)
		}
	}
	return nil
}

// Snapshot returns the initial rhythm settings.
func (c PulseConfig) Snapshot() (rhythm.Snapshot, error) {
	mode, err := rhythm.ParseMode(c.Mode)
	if err != nil {
		return rhythm.Snapshot{}, err
	}
	return rhythm.Snapshot{
		Tempo:           c.Tempo,
		BeatsPerMeasure: c.BeatsPerMeasure,
		Mode:            mode,
	}, nil
}

// Scheduler returns the scheduler timing config.
func (c PulseConfig) Scheduler() scheduler.Config {
	return scheduler.Config{
		TickRate:      c.TickRate,
		ScheduleAhead: c.ScheduleAhead,
	}
}

// Format returns the audio output format.
func (c PulseConfig) Format() beep.Format {
	return audio.NewFormat(beep.SampleRate(c.SampleRate))
}

// Sounds maps each accent to its configured sound source.
func (c PulseConfig) Sounds() map[rhythm.Accent]string {
	return map[rhythm.Accent]string{
		rhythm.AccentDownbeat:    c.DownbeatSound,
		rhythm.AccentBeat:        c.BeatSound,
		rhythm.AccentSubdivision: c.SubdivisionSound,
	}
}

// Indicator returns the DMX beat indicator config.
func (c PulseConfig) Indicator() indicator.Config {
	return indicator.Config{
		Universe: c.DMXUniverse,
		Address:  c.DMXAddress,
		Flash:    c.DMXFlash,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
