package audio

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// Device is the metronome's clock source. It is a beep.Streamer pulled by the
// speaker; the number of samples it has rendered is the device clock, and
// sounds handed to PlayAt start on the exact sample matching their due time.
type Device struct {
	mu       sync.Mutex
	format   beep.Format
	position int64
	voices   []*voice
	scratch  [][2]float64
}

type voice struct {
	start    int64
	streamer beep.Streamer
}

func NewDevice(format beep.Format) *Device {
	return &Device{format: format}
}

func (d *Device) Format() beep.Format {
	return d.format
}

// Now returns the device time in seconds: the position of the next sample to
// be rendered.
func (d *Device) Now() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return float64(d.position) / float64(d.format.SampleRate)
}

// PlayAt queues buf to start at device time at. A due time that has already
// been rendered starts with the next rendered sample.
func (d *Device) PlayAt(buf *beep.Buffer, at float64) {
	start := int64(math.Round(at * float64(d.format.SampleRate)))

	d.mu.Lock()
	defer d.mu.Unlock()
	d.voices = append(d.voices, &voice{
		start:    start,
		streamer: buf.Streamer(0, buf.Len()),
	})
}

// Pending returns the number of sounds queued or still playing.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.voices)
}

// Clear drops every queued and playing sound.
func (d *Device) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.voices = nil
}

// Stream renders the next len(samples) samples and advances the device clock.
// It never drains.
func (d *Device) Stream(samples [][2]float64) (n int, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range samples {
		samples[i] = [2]float64{}
	}

	start := d.position
	end := start + int64(len(samples))

	active := d.voices[:0]
	for _, v := range d.voices {
		if v.start >= end {
			active = append(active, v)
			continue
		}
		offset := 0
		if v.start > start {
			offset = int(v.start - start)
		}
		if !d.mix(v, samples[offset:]) {
			active = append(active, v)
		}
	}
	for i := len(active); i < len(d.voices); i++ {
		d.voices[i] = nil
	}
	d.voices = active
	d.position = end

	return len(samples), true
}

func (d *Device) Err() error {
	return nil
}

// mix adds the voice into out and reports whether it has finished.
func (d *Device) mix(v *voice, out [][2]float64) bool {
	if cap(d.scratch) < len(out) {
		d.scratch = make([][2]float64, len(out))
	}
	buf := d.scratch[:len(out)]

	n, ok := v.streamer.Stream(buf)
	for i := 0; i < n; i++ {
		out[i][0] += buf[i][0]
		out[i][1] += buf[i][1]
	}
	return !ok || n < len(out)
}
