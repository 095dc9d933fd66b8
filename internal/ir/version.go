package ir

// Version constants for the predicate contract and the binary.
const (
	// GrammarVersion identifies the pattern registry revision. Bump it when
	// a change to the registry can alter the conditions produced for an
	// existing query.
	GrammarVersion = "1"

	// Version is the scoped-search release version.
	Version = "0.1.0"
)
