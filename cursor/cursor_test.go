package cursor

import (
	"encoding/base64"
	"testing"

	"github.com/ncobase/nquery/ecode"
	"github.com/ncobase/nquery/order"
)

func testOrder() order.Spec {
	return order.FromKeys(
		order.Key{Field: "created_at", Direction: order.Desc},
		order.Key{Field: "id", Direction: order.Asc},
	)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := New([]string{"2024-06-01T00:00:00Z", "42"}, testOrder(), "deadbeefdeadbeef")
	token, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Order != "-created_at,id" || back.Primary != "desc" {
		t.Errorf("decoded order = %q / %q", back.Order, back.Primary)
	}
	if back.Fingerprint != c.Fingerprint {
		t.Errorf("fingerprint = %q, want %q", back.Fingerprint, c.Fingerprint)
	}
	if len(back.Keys) != 2 || back.Keys[0] != c.Keys[0] || back.Keys[1] != c.Keys[1] {
		t.Errorf("keys = %v, want %v", back.Keys, c.Keys)
	}
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode("")
	if ecode.CodeOf(err) != ecode.CodeCursorEmpty {
		t.Fatalf("code = %v, want cursor_empty", ecode.CodeOf(err))
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	token := base64.RawURLEncoding.EncodeToString(append([]byte{0x7f}, []byte(`{"k":["1"],"o":"asc","s":"id"}`)...))
	_, err := Decode(token)
	if ecode.CodeOf(err) != ecode.CodeCursorUnsupportedVersion {
		t.Fatalf("code = %v, want cursor_unsupported_version (err: %v)", ecode.CodeOf(err), err)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	v1 := func(payload string) string {
		return base64.RawURLEncoding.EncodeToString(append([]byte{0x01}, []byte(payload)...))
	}
	cases := map[string]string{
		"not base64":        "!!!!",
		"not json":          v1("{{{"),
		"no seek keys":      v1(`{"k":[],"o":"asc","s":"id"}`),
		"blank order":       v1(`{"k":["1"],"o":"asc","s":" "}`),
		"key/order count":   v1(`{"k":["1","2"],"o":"asc","s":"id"}`),
		"direction diverge": v1(`{"k":["1"],"o":"desc","s":"id"}`),
	}
	for name, token := range cases {
		_, err := Decode(token)
		if ecode.CodeOf(err) != ecode.CodeCursorCorrupt {
			t.Errorf("%s: code = %v, want cursor_corrupt (err: %v)", name, ecode.CodeOf(err), err)
		}
	}
}

func TestEncodeInconsistentCursorIsInvariantFault(t *testing.T) {
	c := Cursor{Keys: []string{"1", "2"}, Primary: "asc", Order: "id"}
	_, err := c.Encode()
	if !ecode.IsInvariant(err) {
		t.Fatalf("expected invariant fault, got %v", err)
	}
}

func TestCheckOrderPolicy(t *testing.T) {
	c := New([]string{"10"}, order.FromKeys(order.Key{Field: "id"}), "")
	token, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Rejected even when the supplied order matches the cursor's own.
	if err := CheckOrderPolicy("id", token); ecode.CodeOf(err) != ecode.CodeOrderWithCursor {
		t.Errorf("matching order with cursor: code = %v, want order_with_cursor", ecode.CodeOf(err))
	}
	if err := CheckOrderPolicy("-name", token); ecode.CodeOf(err) != ecode.CodeOrderWithCursor {
		t.Errorf("order with cursor: code = %v, want order_with_cursor", ecode.CodeOf(err))
	}
	if err := CheckOrderPolicy("", token); err != nil {
		t.Errorf("cursor alone rejected: %v", err)
	}
	if err := CheckOrderPolicy("-name", ""); err != nil {
		t.Errorf("order alone rejected: %v", err)
	}
}

func TestCheckFingerprint(t *testing.T) {
	c := New([]string{"10"}, order.FromKeys(order.Key{Field: "id"}), "aaaa")
	if err := c.CheckFingerprint("aaaa"); err != nil {
		t.Errorf("matching fingerprint rejected: %v", err)
	}
	if err := c.CheckFingerprint("bbbb"); ecode.CodeOf(err) != ecode.CodeFilterMismatch {
		t.Errorf("code = %v, want filter_mismatch", ecode.CodeOf(err))
	}
	// A cursor issued without a filter must not resume a filtered walk.
	unfiltered := New([]string{"10"}, order.FromKeys(order.Key{Field: "id"}), "")
	if err := unfiltered.CheckFingerprint("cccc"); ecode.CodeOf(err) != ecode.CodeFilterMismatch {
		t.Errorf("code = %v, want filter_mismatch", ecode.CodeOf(err))
	}
}
