package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/pulse/rhythm"
	"github.com/robmorgan/pulse/scheduler"
)

const statusRefreshRate = 100 * time.Millisecond

// Controller is the part of the control surface driven from the keyboard.
type Controller interface {
	Toggle()
	AdjustTempo(delta int) int
	SetSignature(beats int) error
	SetMode(m rhythm.Mode) (rhythm.Mode, error)
	Tap() (int, bool)
	Settings() rhythm.Snapshot
	Status() scheduler.Status
}

// Model is the bubbletea model of the metronome console.
type Model struct {
	surface Controller
	events  <-chan tea.Msg // where we'll receive activity notifications

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	bar     progress.Model

	settings rhythm.Snapshot
	status   scheduler.Status
	running  bool
	beat     int
	tapBPM   int
	taps     int
	err      error
	quitting bool
}

// NewModel creates the console model. events is usually a Notifier's channel.
func NewModel(surface Controller, events <-chan tea.Msg) Model {
	s := spinner.New()
	s.Style = spinnerStyle

	status := surface.Status()
	return Model{
		surface: surface,
		events:  events,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		settings: surface.Settings(),
		status:   status,
		running:  status.Running,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick, waitForActivity(m.events))
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(statusRefreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForActivity blocks until the next notification arrives.
func waitForActivity(events <-chan tea.Msg) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
