package ir

// Version constants for the operation schema and engine.
const (
	// OpVersion is the operation record schema version.
	OpVersion = "1"

	// EngineVersion is the watchset engine version.
	EngineVersion = "0.1.0"
)
