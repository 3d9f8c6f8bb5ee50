package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	goerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/pulse/logger"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// resampleQuality is passed to beep.Resample when a sample file does not match
// the device rate.
const resampleQuality = 4

var (
	ErrNotLoaded = errors.New("sound bank has not finished loading")
	ErrNoSound   = errors.New("no sound for accent")
)

// Accents lists the roles a Bank holds a sound for.
var Accents = []rhythm.Accent{
	rhythm.AccentDownbeat,
	rhythm.AccentBeat,
	rhythm.AccentSubdivision,
}

// Bank holds one decoded buffer per accent. Sources are WAV file paths or
// http(s) URLs; an empty source is replaced with a synthesised click. Loading
// happens in the background and is retried by a later Load after a failure.
type Bank struct {
	format  beep.Format
	sources map[rhythm.Accent]string
	client  *http.Client

	mu       sync.RWMutex
	ready    chan struct{}
	attempts int
	loading  bool
	buffers  map[rhythm.Accent]*beep.Buffer
	err      error
}

// NewBank creates a bank that decodes every source into format.
func NewBank(format beep.Format, sources map[rhythm.Accent]string) *Bank {
	return &Bank{
		format:  format,
		sources: sources,
		client:  http.DefaultClient,
		ready:   make(chan struct{}),
	}
}

// WithHTTPClient overrides the client used for URL sources.
func (b *Bank) WithHTTPClient(c *http.Client) *Bank {
	b.client = c
	return b
}

// Load starts loading every source and returns immediately. It is a no-op
// while a load is in flight or once the bank has loaded. After a failed load
// it starts a new attempt with a fresh Ready channel. Ready is closed once an
// attempt has finished either way.
func (b *Bank) Load(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loading || b.buffers != nil {
		return
	}
	if b.attempts > 0 {
		b.ready = make(chan struct{})
	}
	b.attempts++
	b.loading = true
	b.err = nil

	go b.load(ctx, b.ready, b.attempts)
}

func (b *Bank) load(ctx context.Context, ready chan struct{}, attempt int) {
	defer close(ready)

	logger := logger.GetProjectLogger().WithFields(logrus.Fields{"attempt": attempt})
	logger.Info("Loading sounds...")

	buffers := make(map[rhythm.Accent]*beep.Buffer, len(Accents))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, accent := range Accents {
		accent := accent
		g.Go(func() error {
			buf, err := b.loadOne(gctx, accent, b.sources[accent])
			if err != nil {
				return err
			}
			mu.Lock()
			buffers[accent] = buf
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		logger.Errorf("error loading sounds. err='%v'", err)
		b.err = err
		return
	}
	b.buffers = buffers
	logger.Info("Sounds loaded")
}

func (b *Bank) loadOne(ctx context.Context, accent rhythm.Accent, src string) (*beep.Buffer, error) {
	logger := logger.GetProjectLogger()
	if src == "" {
		logger.WithFields(logrus.Fields{"accent": accent}).Debug("Synthesising click")
		return Click(b.format, accent), nil
	}

	logger.WithFields(logrus.Fields{"accent": accent, "source": src}).Debug("Decoding sound")

	r, err := b.open(ctx, src)
	if err != nil {
		return nil, goerrors.WithStackTraceAndPrefix(err, "loading %s sound from %s", accent, src)
	}
	defer r.Close()

	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, goerrors.WithStackTraceAndPrefix(err, "decoding %s sound from %s", accent, src)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != b.format.SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, b.format.SampleRate, streamer)
	}

	buf := beep.NewBuffer(b.format)
	buf.Append(s)
	if buf.Len() == 0 {
		return nil, goerrors.WithStackTrace(fmt.Errorf("%s sound from %s is empty", accent, src))
	}
	return buf, nil
}

// open returns a reader over a local file or a fetched URL. URL bodies are read
// fully so the decoder gets a seekable source.
func (b *Bank) open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.Open(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Ready is closed when the current load attempt has finished, successfully or
// not.
func (b *Bank) Ready() <-chan struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ready
}

// Wait blocks until the current load attempt has finished or ctx is done.
func (b *Bank) Wait(ctx context.Context) error {
	select {
	case <-b.Ready():
		return b.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the load failure, if any.
func (b *Bank) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// Loaded reports whether every buffer has been decoded.
func (b *Bank) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.buffers != nil
}

// Buffer returns the decoded sound for an accent.
func (b *Bank) Buffer(accent rhythm.Accent) (*beep.Buffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.buffers == nil {
		return nil, ErrNotLoaded
	}
	buf, ok := b.buffers[accent]
	if !ok {
		return nil, ErrNoSound
	}
	return buf, nil
}
