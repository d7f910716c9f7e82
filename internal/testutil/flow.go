package testutil

// FixedSessionGenerator names every session the same.
//
// Golden traces stay byte-identical across runs when the session ID is
// fixed. Unlike engine.FixedGenerator, which hands out IDs in sequence,
// this generator never runs out.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator that always returns id.
//
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session ID.
//
// Implements engine.SessionIDGenerator interface.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
