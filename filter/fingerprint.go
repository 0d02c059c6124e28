package filter

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes a raw filter string into the short stable digest
// carried by cursors. The hash is unseeded xxhash64, so it is identical
// across processes and restarts. A blank filter has no fingerprint.
//
// The digest covers the filter text as supplied, not a normalized form:
// a cursor is only resumable against the byte-identical filter that
// produced it.
func Fingerprint(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(raw))
}
