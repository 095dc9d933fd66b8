// Package parser compiles a free-text search query into an ordered list of
// predicate descriptors (ir.Conditions).
//
// ARCHITECTURE:
//
// Parsing is a pure function of the input string and runs in three stages:
//
//	[raw query] → truncate(300) → [lexer] → tokens → [classifier] → ir.Conditions
//
// Pattern Registry:
// An ordered list of lexical categories. Each category contributes one
// capturing branch to a single alternation used for scanning, and the same
// rule (anchored) is re-applied to a single token during classification.
// Earlier categories win when two could match at the same position; match
// length never decides.
//
//	#  category                        example
//	1  between_dates                   01/01/2024 TO 12/31/2024
//	2  greater_than_or_equal_to_date   >=2024-01-01
//	3  less_than_or_equal_to_date      <=20240101
//	4  greater_than_date               > 12/31/2023
//	5  less_than_date                  <2024-06-30
//	6  as_of_date                      2024-06-30
//	7  or_pair                         cats OR "big dogs"
//	8  word                            -urgent
//	9  quoted_string                   -"new york"
//
// Date categories accept three notations (MM/DD/YYYY, YYYYMMDD and the
// database form YYYY-MM-DD) built from shared fragments, and must end on a
// word boundary. The range connective is TO and the pair connective is OR,
// both case-sensitive and surrounded by spaces.
//
// Lexer:
// Extracts every non-overlapping match left to right. A raw match beginning
// with '-' first emits a NegationMarker. The literal is then cleaned: double
// quotes removed, negation hyphens (token start or after a space) removed,
// runs of spaces collapsed. Only the hyphen goes: "foo -bar" cleans to
// "foo bar", never "foobar". Empty literals are dropped. Characters no
// category covers are skipped.
//
// Classifier:
// A two-state machine (Clear, PendingNegation) folds the token stream. Each
// literal is tested in the order OR pair, between, >=, <=, >, <, as-of; the
// first hit decides the operator and leaves the negation state untouched.
// Anything else falls back to like, or not when a negation is pending, and
// clears the pending negation.
//
// CRITICAL PATTERNS:
//
// Absent input (nil *string) yields an empty list before any length logic.
// The registry is built once at init and never mutated; every function in
// this package is safe for concurrent use. Go's regexp is RE2-based and runs
// in linear time, so adversarial input cannot trigger backtracking blowups.
package parser
