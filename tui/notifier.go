package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/robmorgan/pulse/rhythm"
)

type beatMsg int

type runStateMsg bool

type settingsMsg rhythm.Snapshot

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// Notifier is a control.Listener that forwards notifications to the console.
// It never blocks the caller: when the console falls behind, notifications are
// dropped and the next status refresh catches up.
type Notifier struct {
	events chan tea.Msg
}

func NewNotifier(size int) *Notifier {
	return &Notifier{events: make(chan tea.Msg, size)}
}

// Events is the channel to hand to NewModel.
func (n *Notifier) Events() <-chan tea.Msg {
	return n.events
}

func (n *Notifier) OnBeat(beat int) {
	n.publish(beatMsg(beat))
}

func (n *Notifier) OnRunStateChanged(running bool) {
	n.publish(runStateMsg(running))
}

func (n *Notifier) OnSettingsChanged(snap rhythm.Snapshot) {
	n.publish(settingsMsg(snap))
}

func (n *Notifier) OnError(err error) {
	n.publish(errMsg{err: err})
}

func (n *Notifier) publish(msg tea.Msg) {
	select {
	case n.events <- msg:
	default:
	}
}
