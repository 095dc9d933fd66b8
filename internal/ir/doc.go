// Package ir provides the shared value types for scoped-search.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the predicate contract the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Conditions is an ordered list, never a tree; order of appearance in the
//     query is significant and preserved everywhere it is copied
//   - Operator is a closed set; ParseOperator rejects anything else
//   - All JSON tags use snake_case
//   - Canonical JSON (RFC 8785) is the only encoding used for fingerprints
package ir
