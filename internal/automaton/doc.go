// Package automaton implements the multi-pattern streaming matcher behind
// combo recognition.
//
// An Automaton is an Aho-Corasick trie over interned token symbols. It is
// built once from an ordered list of patterns and is immutable afterwards,
// so any number of independent sessions may read it concurrently without
// synchronization.
//
// ARCHITECTURE:
//
// Arena of states:
// States live in a single slice addressed by dense StateID values. The root
// is always StateID 0. Goto edges and failure links are indices into the
// same slice, so the structure holds no pointer cycles even though failure
// links point back toward the root.
//
// Build phases:
//  1. Trie construction: every pattern is walked from the root, interning
//     tokens (first occurrence assigns the Symbol) and creating states for
//     missing edges. The pattern label is attached to the terminal state.
//  2. Failure links: breadth-first from the root's children. Each child's
//     failure is found by climbing its parent's failure chain, and the
//     failure state's outputs are merged into the child's outputs.
//
// INVARIANTS:
//   - Edge iteration follows edge creation order, so breadth-first order and
//     therefore output composition are identical across rebuilds from the
//     same input.
//   - For every non-root state s, depth(failure(s)) < depth(s). Walking a
//     failure chain always terminates at the root.
//   - Outputs(s) is exactly the set of labels whose token sequence is a
//     suffix of the path from the root to s. Outputs are deduplicated and
//     stably ordered: the state's own labels first, inherited labels after.
//   - The symbol table is frozen after Build. Step never learns new tokens.
package automaton
