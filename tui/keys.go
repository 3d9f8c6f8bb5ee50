package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle      key.Binding
	SlowDown    key.Binding
	SpeedUp     key.Binding
	SlowDownTen key.Binding
	SpeedUpTen  key.Binding
	Signature   key.Binding
	Eighth      key.Binding
	Triplet     key.Binding
	Sixteenth   key.Binding
	Normal      key.Binding
	Tap         key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Tap, k.SlowDown, k.SpeedUp, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Tap, k.Quit},
		{k.SlowDown, k.SpeedUp, k.SlowDownTen, k.SpeedUpTen},
		{k.Signature, k.Normal, k.Eighth, k.Triplet, k.Sixteenth},
		{k.Help},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "start/stop"),
		),
		SlowDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "bpm -1"),
		),
		SpeedUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "bpm +1"),
		),
		SlowDownTen: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "bpm -10"),
		),
		SpeedUpTen: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "bpm +10"),
		),
		Signature: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-9,0", "beats per measure"),
		),
		Eighth: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "eighths"),
		),
		Triplet: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "triplets"),
		),
		Sixteenth: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "sixteenths"),
		),
		Normal: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "quarters"),
		),
		Tap: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "tap tempo"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// signatureForKey maps the digit keys to a beat count, 0 meaning 10.
func signatureForKey(k string) (int, bool) {
	if len(k) != 1 || k[0] < '0' || k[0] > '9' {
		return 0, false
	}
	if k == "0" {
		return 10, true
	}
	return int(k[0] - '0'), true
}
