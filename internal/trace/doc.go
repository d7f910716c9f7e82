// Package trace holds the deterministic, serialisable record of a key
// stream: per-key events, canonical JSON for them, content hashes, and the
// timestamped key scripts replay consumes.
//
// Key design constraints:
//   - Canonical JSON only for hashing and golden files (sorted keys, NFC
//     strings, no floats, no null)
//   - Timestamps are caller-supplied milliseconds, never wall-clock reads
//   - All JSON tags use snake_case
package trace
