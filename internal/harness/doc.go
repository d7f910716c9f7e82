// Package harness runs key-stream scenarios against the combo engine and
// checks what fired.
//
// A scenario names a rule source, optional key bindings and a timeout, then
// lists timestamped key presses. The harness feeds them through a fresh
// engine.Session on a fake clock, records one trace event per key, and
// evaluates per-step expectations and end-of-run assertions.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: fireball_within_window
//	description: "down, right, punch inside the timeout fires Fireball"
//	rules: ../grammars/mk.gmr        # or inline: grammar: "[BP] -> Claw Slam"
//	bindings: { j: "[BP]", k: "[FP]" }
//	timeout_ms: 500
//	steps:
//	  - { key: down,  at_ms: 0 }
//	  - { key: right, at_ms: 100 }
//	  - { key: k,     at_ms: 200, expect: [Fireball] }
//	assertions:
//	  - { type: fired, label: Fireball }
//	  - { type: final_state, root: false }
//
// An omitted expect checks nothing; "expect: []" asserts the key completed
// no combo. Unknown fields are rejected so typos surface as load errors.
//
// # Assertion Types
//
//   - fired: label appears in at least one step's outputs
//   - not_fired: label never appears
//   - fired_count: label appears exactly count times
//   - fired_order: labels first fire in the listed order
//   - final_state: the session ends at root (root: true), away from root
//     (root: false) or at a specific state index (state: N)
//
// # Deterministic Testing
//
// Every run uses a FakeClock positioned at each step's at_ms and a fixed
// session ID, so the recorded trace is byte-identical across runs and can
// be compared against golden files in canonical JSON.
package harness
