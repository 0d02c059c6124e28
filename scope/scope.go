// Package scope defines the access scope attached to every executable
// query: an opaque authorization predicate over tenant and resource
// sets, constructed by the caller's auth layer and consumed here.
//
// The zero Scope is invalid, so a scope that was never constructed can
// never bind a query. An explicitly empty scope denies everything; it
// never widens to "all rows".
package scope

import (
	"strings"

	"github.com/ncobase/nquery/ecode"
)

type kind int

const (
	kindInvalid kind = iota
	kindDenyAll
	kindUnrestricted
	kindTenants
	kindResources
	kindBoth
)

// Scope is the authorization predicate. Construct one with the package
// constructors; the zero value is deliberately unusable.
type Scope struct {
	k         kind
	tenants   []string
	resources []string
}

// Unrestricted returns a scope that constrains nothing. Reserved for
// system-internal listings.
func Unrestricted() Scope {
	return Scope{k: kindUnrestricted}
}

// DenyAll returns a scope that matches no rows.
func DenyAll() Scope {
	return Scope{k: kindDenyAll}
}

// ForTenants returns a scope restricted to the given tenant set. An
// empty set denies everything.
func ForTenants(tenants ...string) Scope {
	if len(tenants) == 0 {
		return DenyAll()
	}
	return Scope{k: kindTenants, tenants: dedup(tenants)}
}

// ForResources returns a scope restricted to the given resource ids. An
// empty set denies everything.
func ForResources(ids ...string) Scope {
	if len(ids) == 0 {
		return DenyAll()
	}
	return Scope{k: kindResources, resources: dedup(ids)}
}

// For returns a scope restricted to both a tenant set and a resource
// set; rows must satisfy both. Either set empty degrades to the
// single-set form, both empty denies everything.
func For(tenants, resources []string) Scope {
	switch {
	case len(tenants) == 0:
		return ForResources(resources...)
	case len(resources) == 0:
		return ForTenants(tenants...)
	}
	return Scope{k: kindBoth, tenants: dedup(tenants), resources: dedup(resources)}
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Validate reports an InvalidScope invariant fault for a scope that was
// never constructed or carries blank set members. This is a programmer
// error in the calling layer, not end-user input.
func (s Scope) Validate() error {
	if s.k == kindInvalid {
		return ecode.Invariant(ecode.CodeInvalidScope,
			"scope was not constructed; use the scope package constructors")
	}
	for _, t := range s.tenants {
		if strings.TrimSpace(t) == "" {
			return ecode.Invariant(ecode.CodeInvalidScope, "scope tenant set contains a blank entry")
		}
	}
	for _, r := range s.resources {
		if strings.TrimSpace(r) == "" {
			return ecode.Invariant(ecode.CodeInvalidScope, "scope resource set contains a blank entry")
		}
	}
	return nil
}

// IsUnrestricted reports whether the scope constrains nothing.
func (s Scope) IsUnrestricted() bool { return s.k == kindUnrestricted }

// IsDenyAll reports whether the scope matches no rows.
func (s Scope) IsDenyAll() bool { return s.k == kindDenyAll }

// Tenants returns the tenant set, nil when unconstrained by tenant.
func (s Scope) Tenants() []string {
	if len(s.tenants) == 0 {
		return nil
	}
	out := make([]string, len(s.tenants))
	copy(out, s.tenants)
	return out
}

// Resources returns the resource set, nil when unconstrained by resource.
func (s Scope) Resources() []string {
	if len(s.resources) == 0 {
		return nil
	}
	out := make([]string, len(s.resources))
	copy(out, s.resources)
	return out
}

// CheckTenant verifies that a specific target tenant is visible to the
// scope. Failures distinguish TenantNotInScope (the tenant is outside
// the scope's tenant set) from Denied (any other refusal) for auditing.
func (s Scope) CheckTenant(tenant string) error {
	switch s.k {
	case kindInvalid:
		return s.Validate()
	case kindUnrestricted:
		return nil
	case kindDenyAll:
		return ecode.Authorization(ecode.CodeDenied, "scope denies all access")
	case kindResources:
		// Resource-limited scopes say nothing about tenants.
		return ecode.Authorization(ecode.CodeDenied, "scope is not tenant-addressable")
	}
	for _, t := range s.tenants {
		if t == tenant {
			return nil
		}
	}
	return ecode.Authorization(ecode.CodeTenantNotInScope,
		"tenant %q is outside the authorized tenant set", tenant)
}
