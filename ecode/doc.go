// Package ecode defines the enumerable error conditions reported by the
// query engine and maps them to response classes.
//
// Every public operation in this module fails with a *ecode.Error carrying
// a specific Code; callers never receive a generic failure. Codes are
// grouped into four categories:
//
//   - Validation: client-caused input faults (bad filter, bad order,
//     bad cursor, cursor policy violations). Never retried.
//   - Authorization: access refused. TenantNotInScope and Denied are kept
//     distinct for audit logging even though both map to the same
//     client-facing class.
//   - Backend: storage failures wrapped opaquely. Safe for the caller to
//     retry with backoff; never retried by the engine.
//   - Invariant: programmer errors (malformed scope, inconsistent cursor
//     encoder/decoder pair). These fail loudly and immediately.
//
// # Usage
//
// Inspect failures with the helpers instead of string matching:
//
//	if ecode.CodeOf(err) == ecode.CodeFilterMismatch {
//	    // client replayed a cursor against a different filter
//	}
//
//	status := ecode.HTTPStatus(err)
//	// validation -> 422, authorization -> 403, backend/invariant -> 500
package ecode
