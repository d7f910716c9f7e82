// Package tui holds the front ends that drive an engine.Session from a
// keyboard: an interactive bubbletea screen and a plain line mode for pipes.
//
// Both front ends report through a Renderer. Neither owns matching logic;
// they translate input to key tokens, stamp them with a Clock reading and
// hand them to the session.
//
// Key tokens follow one vocabulary across front ends and rule files:
// lower-case letters and digits as themselves, "shift-a" for capitals,
// "ctrl-x", "alt-x", the named keys (up, down, left, right, space, enter,
// tab, backspace, delete, esc) and modifier prefixes in shift-alt-ctrl order
// ("shift-ctrl-up").
package tui
