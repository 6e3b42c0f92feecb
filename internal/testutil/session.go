// Package testutil holds the deterministic pieces scenario runs and tests
// plug into the engine.
package testutil

// DefaultSessionID is used when a FixedSessionGenerator is built with an
// empty id.
const DefaultSessionID = "test-session-default"

// FixedSessionGenerator hands out the same session id every time.
//
// Scenario runs use it so the same scenario journals under the same session
// and renders byte-identical dumps.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSessionID
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session id.
//
// Implements engine.SessionIDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
