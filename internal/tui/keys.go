package tui

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

type modifiers uint8

const (
	modShift modifiers = 1 << iota
	modAlt
	modCtrl
)

// prefix renders modifiers in shift-alt-ctrl order.
func (m modifiers) prefix() string {
	p := ""
	if m&modShift != 0 {
		p += "shift-"
	}
	if m&modAlt != 0 {
		p += "alt-"
	}
	if m&modCtrl != 0 {
		p += "ctrl-"
	}
	return p
}

type namedKey struct {
	mods modifiers
	name string
}

var namedKeys = map[tea.KeyType]namedKey{
	tea.KeyUp:    {0, "up"},
	tea.KeyDown:  {0, "down"},
	tea.KeyLeft:  {0, "left"},
	tea.KeyRight: {0, "right"},

	tea.KeyShiftUp:    {modShift, "up"},
	tea.KeyShiftDown:  {modShift, "down"},
	tea.KeyShiftLeft:  {modShift, "left"},
	tea.KeyShiftRight: {modShift, "right"},

	tea.KeyCtrlUp:    {modCtrl, "up"},
	tea.KeyCtrlDown:  {modCtrl, "down"},
	tea.KeyCtrlLeft:  {modCtrl, "left"},
	tea.KeyCtrlRight: {modCtrl, "right"},

	tea.KeyCtrlShiftUp:    {modShift | modCtrl, "up"},
	tea.KeyCtrlShiftDown:  {modShift | modCtrl, "down"},
	tea.KeyCtrlShiftLeft:  {modShift | modCtrl, "left"},
	tea.KeyCtrlShiftRight: {modShift | modCtrl, "right"},

	tea.KeySpace:     {0, "space"},
	tea.KeyEnter:     {0, "enter"},
	tea.KeyTab:       {0, "tab"},
	tea.KeyShiftTab:  {modShift, "tab"},
	tea.KeyBackspace: {0, "backspace"},
	tea.KeyDelete:    {0, "delete"},
	tea.KeyEsc:       {0, "esc"},
	tea.KeyHome:      {0, "home"},
	tea.KeyEnd:       {0, "end"},
	tea.KeyPgUp:      {0, "pgup"},
	tea.KeyPgDown:    {0, "pgdown"},
}

// KeyToken translates a bubbletea key event into a key token. It reports
// false for events that are not a single key, such as pasted text.
func KeyToken(msg tea.KeyMsg) (string, bool) {
	var mods modifiers
	if msg.Alt {
		mods |= modAlt
	}

	if msg.Type == tea.KeyRunes {
		if msg.Paste || len(msg.Runes) != 1 {
			return "", false
		}
		r := msg.Runes[0]
		if r == ' ' {
			return mods.prefix() + "space", true
		}
		if msg.Alt {
			return "alt-" + string(unicode.ToLower(r)), true
		}
		if unicode.IsUpper(r) {
			return "shift-" + string(unicode.ToLower(r)), true
		}
		return string(r), true
	}

	if nk, ok := namedKeys[msg.Type]; ok {
		return (mods | nk.mods).prefix() + nk.name, true
	}

	// Tab, enter and backspace share codes with ctrl-i, ctrl-m and ctrl-h
	// and were handled above.
	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		ch := rune('a' + int(msg.Type-tea.KeyCtrlA))
		return (mods | modCtrl).prefix() + string(ch), true
	}
	return "", false
}

// isQuit reports whether msg ends an interactive session.
func isQuit(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyCtrlC || (msg.Type == tea.KeyEsc && !msg.Alt)
}
