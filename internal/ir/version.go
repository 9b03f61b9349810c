package ir

// Version constants for the IR schema and the generator.
const (
	// IRVersion is the IR schema version written by compile -o.
	IRVersion = "1"

	// GeneratorVersion is the chanproto generator version.
	GeneratorVersion = "0.1.0"
)
