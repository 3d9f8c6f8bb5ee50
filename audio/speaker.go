package audio

import (
	"time"

	"github.com/faiface/beep/speaker"
	goerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/pulse/logger"
	"github.com/sirupsen/logrus"
)

// OpenSpeaker initialises the system audio output with a buffer of the given
// latency and starts it pulling samples from the device. The device clock
// advances in steps of that buffer, so it should stay well under the
// scheduling horizon.
func OpenSpeaker(d *Device, latency time.Duration) error {
	format := d.Format()
	bufferSize := format.SampleRate.N(latency)

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{"sample_rate": format.SampleRate, "buffer_size": bufferSize}).Info("Opening speaker")

	if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
		return goerrors.WithStackTraceAndPrefix(err, "error initializing speaker")
	}
	speaker.Play(d)
	return nil
}

// CloseSpeaker stops the audio output.
func CloseSpeaker() {
	speaker.Clear()
	speaker.Close()
}
