// Package cursor implements the opaque continuation token of paginated
// listings: a versioned record binding the seek keys of the last row,
// the full sort order, and a fingerprint of the filter that produced the
// page.
//
// Wire format: base64url without padding over a one-byte version marker
// followed by the JSON record. Unrecognized versions are rejected
// explicitly, never best-effort parsed.
//
// The package also enforces the two continuation policies: a request may
// not carry both an explicit order and a cursor, and a cursor may not be
// replayed against a filter other than the one that produced it.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/ncobase/nquery/ecode"
	"github.com/ncobase/nquery/order"
)

// version1 is the only wire version this codec produces or accepts.
const version1 byte = 0x01

// Cursor is the decoded continuation record.
//
// Order is authoritative; Primary is a denormalized cache of its first
// key's direction. The encoder always derives Primary from Order and the
// decoder rejects any token where the two diverge.
type Cursor struct {
	Keys        []string `json:"k"`           // seek-key values, one per order field
	Primary     string   `json:"o"`           // "asc" or "desc"
	Order       string   `json:"s"`           // compact signed-token order
	Fingerprint string   `json:"f,omitempty"` // filter digest, empty when unfiltered
}

// New builds a cursor for the given seek keys, order and filter digest.
func New(keys []string, spec order.Spec, fingerprint string) Cursor {
	return Cursor{
		Keys:        keys,
		Primary:     spec.Primary().String(),
		Order:       spec.String(),
		Fingerprint: fingerprint,
	}
}

// Encode serializes the cursor to its opaque token form. A cursor whose
// seek-key count does not match its own order is a programmer error in
// the encoding layer and fails as an invariant fault.
func (c Cursor) Encode() (string, error) {
	if err := c.check(true); err != nil {
		return "", err
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return "", ecode.Invariant(ecode.CodeCursorInconsistent, "cursor marshal failed: %v", err)
	}
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, version1)
	buf = append(buf, payload...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Decode parses an opaque token back into a cursor. Faults: Empty for
// zero-length input, UnsupportedVersion for an unrecognized version
// marker, Corrupt for anything structurally inconsistent.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, ecode.Validation(ecode.CodeCursorEmpty, "cursor is empty")
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) == 0 {
		return Cursor{}, corrupt("not a valid token")
	}
	if raw[0] != version1 {
		return Cursor{}, ecode.Validation(ecode.CodeCursorUnsupportedVersion,
			"unsupported cursor version 0x%02x", raw[0])
	}
	var c Cursor
	if err := json.Unmarshal(raw[1:], &c); err != nil {
		return Cursor{}, corrupt("payload does not parse")
	}
	if err := c.check(false); err != nil {
		return Cursor{}, err
	}
	return c, nil
}

// check validates the structural invariants shared by encode and decode.
// On the encode side violations are invariant faults; on the decode side
// the token is untrusted input and violations are Corrupt.
func (c Cursor) check(encoding bool) error {
	fail := func(format string, args ...any) error {
		if encoding {
			return ecode.Invariant(ecode.CodeCursorInconsistent, format, args...)
		}
		return corrupt(format, args...)
	}
	if len(c.Keys) == 0 {
		return fail("cursor has no seek keys")
	}
	if strings.TrimSpace(c.Order) == "" {
		return fail("cursor has no order")
	}
	fields := strings.Split(c.Order, ",")
	if len(c.Keys) != len(fields) {
		return fail("cursor has %d seek keys for %d order fields", len(c.Keys), len(fields))
	}
	primary := "asc"
	if strings.HasPrefix(strings.TrimSpace(fields[0]), "-") {
		primary = "desc"
	}
	if c.Primary != primary {
		return fail("cursor direction %q diverges from its order %q", c.Primary, c.Order)
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return ecode.Validation(ecode.CodeCursorCorrupt, format, args...)
}

// CheckOrderPolicy rejects a request that carries both an explicit order
// and a non-empty cursor. The order of a continuation request derives
// exclusively from the cursor; re-specifying it, even identically, is an
// OrderWithCursor fault.
func CheckOrderPolicy(orderParam, cursorToken string) error {
	if strings.TrimSpace(orderParam) != "" && cursorToken != "" {
		return ecode.Validation(ecode.CodeOrderWithCursor,
			"order may not accompany a cursor; the cursor carries the order")
	}
	return nil
}

// CheckFingerprint rejects a cursor replayed against a filter other than
// the one that produced it. The comparison is exact: textually different
// filters mismatch even when semantically equivalent.
func (c Cursor) CheckFingerprint(current string) error {
	if c.Fingerprint != current {
		return ecode.Validation(ecode.CodeFilterMismatch,
			"cursor was issued for a different filter")
	}
	return nil
}
