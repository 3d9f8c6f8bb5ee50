package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/pulse/rhythm"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case beatMsg:
		m.beat = int(msg)
		return m, waitForActivity(m.events)
	case runStateMsg:
		m.running = bool(msg)
		if !m.running {
			m.beat = 0
		}
		return m, waitForActivity(m.events)
	case settingsMsg:
		m.settings = rhythm.Snapshot(msg)
		return m, waitForActivity(m.events)
	case errMsg:
		m.err = msg.err
		return m, waitForActivity(m.events)
	case tickMsg:
		m.status = m.surface.Status()
		m.settings = m.surface.Settings()
		if m.running != m.status.Running {
			m.running = m.status.Running
			if !m.running {
				m.beat = 0
			}
		}
		return m, tickCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.surface.Toggle()
		m.status = m.surface.Status()
	case key.Matches(msg, m.keys.SlowDown):
		m.surface.AdjustTempo(-1)
	case key.Matches(msg, m.keys.SpeedUp):
		m.surface.AdjustTempo(1)
	case key.Matches(msg, m.keys.SlowDownTen):
		m.surface.AdjustTempo(-10)
	case key.Matches(msg, m.keys.SpeedUpTen):
		m.surface.AdjustTempo(10)
	case key.Matches(msg, m.keys.Signature):
		if beats, ok := signatureForKey(msg.String()); ok {
			m.err = m.surface.SetSignature(beats)
		}
	case key.Matches(msg, m.keys.Eighth):
		_, m.err = m.surface.SetMode(rhythm.ModeEighth)
	case key.Matches(msg, m.keys.Triplet):
		_, m.err = m.surface.SetMode(rhythm.ModeTriplet)
	case key.Matches(msg, m.keys.Sixteenth):
		_, m.err = m.surface.SetMode(rhythm.ModeSixteenth)
	case key.Matches(msg, m.keys.Normal):
		_, m.err = m.surface.SetMode(rhythm.ModeNormal)
	case key.Matches(msg, m.keys.Tap):
		m.taps++
		if bpm, ok := m.surface.Tap(); ok {
			m.tapBPM = bpm
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return m, nil
	}

	m.settings = m.surface.Settings()
	return m, nil
}
