// Package filter provides the typed filter language of the query engine:
// a closed field-kind system, per-entity field-capability schemas, and a
// single-pass parser that turns an untrusted filter string into a
// validated expression tree.
//
// # Grammar
//
// Comparisons are infix keywords, substring matching is call form, and
// boolean structure uses and / or / not with parentheses:
//
//	status eq 'active' and created_at ge '2024-01-01T00:00:00Z'
//	contains(name, 'acme') or startswith(name, 'nco')
//	not (priority in ('low', 'none'))
//
// String literals are single-quoted; write two single quotes inside a
// literal to escape one.
// Numbers, true, false and null are bare. Field names and keywords are
// case-insensitive.
//
// # Validation
//
// Field existence, operator legality per field kind, and literal
// coercion are checked in the same pass that builds the tree. A failure
// anywhere aborts the parse; no partial tree escapes. Substring
// operators and in are legal on string fields only. Null literals are
// legal only with eq and ne.
//
// # Budgets
//
// The parser enforces hard limits (input length, node count, nesting
// depth) before allocating, since filter text arrives from untrusted
// callers. See Limits and DefaultLimits.
package filter
