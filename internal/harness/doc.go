// Package harness runs conformance cases against the query parser.
//
// A case pairs a query with what parsing it must produce: either an exact
// expected condition list, a set of property assertions, or both. Cases are
// declared in YAML or CUE files:
//
//	cases:
//	  - name: negated_word
//	    query: "-urgent"
//	    expect:
//	      - {value: urgent, operator: not}
//	    assertions:
//	      - {type: idempotent}
//
// A missing or null query is absent input.
//
// # Assertions
//
//   - count: the number of conditions
//   - operators: the exact operator sequence
//   - contains: a condition appears somewhere in the output
//   - idempotent: parsing twice yields identical output
//   - truncation: the query was cut to the maximum length and only the kept
//     prefix contributed conditions
//
// # Golden Files
//
// Every run can be snapshotted as canonical JSON (ir.MarshalCanonical) and
// compared byte-for-byte against a golden file. RunWithGolden does this from
// Go tests via goldie; the CLI keeps golden files in a golden/ directory next
// to the case file.
package harness
