// Package engine wraps the combo automaton with session state and an
// inactivity timeout.
//
// ARCHITECTURE:
//
// Shared Config, Private State:
// A Config (automaton, binding tables, combo list, timeout) is built once
// and never mutated. Each player's progress is a State value, two fields
// wide, threaded through Advance by the caller. Any number of States may be
// advanced against one Config from any number of goroutines with no
// locking.
//
// Key Processing Flow:
//  1. The key token is looked up in the binding table
//  2. Unbound keys stop here: state and timestamp are left untouched
//  3. If the gap since the last bound key exceeds the timeout, matching
//     restarts from root
//  4. The automaton steps on the symbol; the new state and timestamp are
//     returned with the state's output labels
//
// Time Is An Argument:
// Advance takes now as a parameter and never reads a clock. Front ends use
// a Clock (SystemClock in production, a fake in tests); replay and the
// scenario harness pass recorded timestamps and get identical results on
// every run.
//
// INVARIANTS:
//   - Advance never fails and never panics for a Config built by New
//   - An unbound key is a no-op
//   - now - last > timeout (strictly) discards progress; equal does not
//   - PrefixProbe uses the same Step as Advance and never mutates state
//   - Reloading rules means a new Config; a Session that swaps Configs
//     restarts at root
package engine
