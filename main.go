package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nickysemenza/gola"
	"github.com/robmorgan/pulse/audio"
	"github.com/robmorgan/pulse/config"
	"github.com/robmorgan/pulse/control"
	"github.com/robmorgan/pulse/indicator"
	"github.com/robmorgan/pulse/logger"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/robmorgan/pulse/scheduler"
	"github.com/robmorgan/pulse/tui"
	"k8s.io/utils/clock"
)

func main() {
	cfg := config.NewPulseConfig()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := Run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error running pulse:", err)
		os.Exit(1)
	}
}

// Run starts the metronome console and blocks until it exits.
func Run(ctx context.Context, cfg config.PulseConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// initialize the logger
	logger := logger.GetProjectLogger()
	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	wg := sync.WaitGroup{}
	realClock := clock.RealClock{}

	logger.Info("Initializing settings...")
	snap, err := cfg.Snapshot()
	if err != nil {
		return err
	}
	settings, err := rhythm.NewSettingsFrom(snap)
	if err != nil {
		return err
	}

	logger.Info("Initializing audio device...")
	device := audio.NewDevice(cfg.Format())
	if err := audio.OpenSpeaker(device, cfg.SpeakerLatency); err != nil {
		return err
	}
	defer audio.CloseSpeaker()

	bank := audio.NewBank(device.Format(), cfg.Sounds())
	bank.Load(ctx)

	surface := control.NewSurface(ctx, settings, rhythm.NewTapTempo(realClock))
	sched := scheduler.New(cfg.Scheduler(), realClock, device, bank, settings, surface.Hooks())
	surface.Attach(sched)
	defer func() {
		sched.Stop()
		if done := sched.Done(); done != nil {
			<-done
		}
	}()

	notifier := tui.NewNotifier(64)
	surface.AddListener(notifier)

	if cfg.OSCAddr != "" {
		osc, err := control.NewOSCServer(cfg.OSCAddr, surface)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := osc.ListenAndServe(ctx); err != nil {
				logger.Errorf("OSC server stopped. err='%v'", err)
			}
		}()
	}

	// configure OLA for the DMX beat indicator
	if cfg.OLAAddr != "" {
		startDMXIndicator(ctx, cfg, realClock, surface, &wg)
	}

	if cfg.AutoStart {
		surface.Start()
	}

	logger.Info("Starting console...")
	p := tea.NewProgram(tui.NewModel(surface, notifier.Events()), tea.WithContext(ctx), tea.WithAltScreen())
	_, err = p.Run()

	logger.Info("shutting down pulse")
	cancel()
	wg.Wait()

	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// setupLogging applies the log level and opens the log file, if any. The
// caller closes the returned file.
func setupLogging(cfg config.PulseConfig) (*os.File, error) {
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.LogFile == "" {
		return nil, nil
	}
	// the terminal belongs to the console while it runs
	return logger.SetOutputFile(cfg.LogFile)
}

func startDMXIndicator(ctx context.Context, cfg config.PulseConfig, c clock.WithTicker, surface *control.Surface, wg *sync.WaitGroup) {
	logger := logger.GetProjectLogger()
	logger.Info("Connecting to OLA...")

	client, err := gola.New(cfg.OLAAddr)
	if err != nil {
		logger.Errorf("could not connect to OLA: %v", err)
		return
	}

	d, err := indicator.NewDMXIndicator(cfg.Indicator(), c, surface.Settings().BeatsPerMeasure)
	if err != nil {
		client.Close()
		logger.Errorf("could not create beat indicator: %v", err)
		return
	}
	surface.AddListener(d)

	wg.Add(1)
	go indicator.SendDMXWorker(ctx, client, c, cfg.DMXTick, d, wg)
}
