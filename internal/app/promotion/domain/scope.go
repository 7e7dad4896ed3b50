package domain

import (
	"encoding/json"
	"slices"
	"strings"
)

// ScopeKind identifies which variant of Scope is in use.
type ScopeKind string

const (
	ScopeGlobal   ScopeKind = "global"
	ScopeCategory ScopeKind = "category"
	ScopeBrand    ScopeKind = "brand"
	ScopeSkus     ScopeKind = "skus"
	ScopeMixed    ScopeKind = "mixed"
)

// ParseScopeKind accepts the canonical lower-case names case-insensitively.
func ParseScopeKind(s string) (ScopeKind, error) {
	switch k := ScopeKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ScopeGlobal, ScopeCategory, ScopeBrand, ScopeSkus, ScopeMixed:
		return k, nil
	default:
		return "", ErrInvalidScopeKind
	}
}

// ProductRef is the part of a catalog product a scope is evaluated against.
type ProductRef struct {
	SKU      string
	Category string
	Brand    string
}

// Scope decides which products a promotion can apply to.
//
// It is a closed union: Global carries no lists, Category/Brand/Skus carry
// exactly their own list, Mixed carries any combination. Values built with
// NewScope are guaranteed non-empty for every kind but Global.
type Scope struct {
	kind       ScopeKind
	categories []string
	brands     []string
	skus       []string
}

// GlobalScope matches every product.
func GlobalScope() Scope { return Scope{kind: ScopeGlobal} }

// CategoryScope matches products whose category path is one of categories.
func CategoryScope(categories ...string) (Scope, error) {
	return NewScope(ScopeCategory, categories, nil, nil)
}

// BrandScope matches products of the listed brands.
func BrandScope(brands ...string) (Scope, error) {
	return NewScope(ScopeBrand, nil, brands, nil)
}

// SkuScope matches the listed SKUs.
func SkuScope(skus ...string) (Scope, error) {
	return NewScope(ScopeSkus, nil, nil, skus)
}

// MixedScope matches a product when any of the non-empty lists matches it.
func MixedScope(categories, brands, skus []string) (Scope, error) {
	return NewScope(ScopeMixed, categories, brands, skus)
}

// NewScope validates and normalizes a scope. Lists that do not belong to the
// kind are rejected rather than silently dropped.
func NewScope(kind ScopeKind, categories, brands, skus []string) (Scope, error) {
	s := Scope{
		kind:       kind,
		categories: normalizeList(categories),
		brands:     normalizeList(brands),
		skus:       normalizeList(skus),
	}

	switch kind {
	case ScopeGlobal:
		if !s.listsEmpty() {
			return Scope{}, ErrScopeListMismatch
		}
		return GlobalScope(), nil
	case ScopeCategory:
		if len(s.brands) > 0 || len(s.skus) > 0 {
			return Scope{}, ErrScopeListMismatch
		}
	case ScopeBrand:
		if len(s.categories) > 0 || len(s.skus) > 0 {
			return Scope{}, ErrScopeListMismatch
		}
	case ScopeSkus:
		if len(s.categories) > 0 || len(s.brands) > 0 {
			return Scope{}, ErrScopeListMismatch
		}
	case ScopeMixed:
	default:
		return Scope{}, ErrInvalidScopeKind
	}

	if s.listsEmpty() {
		return Scope{}, ErrEmptyScope
	}
	return s, nil
}

// ReconstructScope rebuilds a stored scope without validation.
func ReconstructScope(kind ScopeKind, categories, brands, skus []string) Scope {
	return Scope{
		kind:       kind,
		categories: normalizeList(categories),
		brands:     normalizeList(brands),
		skus:       normalizeList(skus),
	}
}

func (s Scope) Kind() ScopeKind { return s.kind }
func (s Scope) IsGlobal() bool  { return s.kind == ScopeGlobal }

func (s Scope) Categories() []string { return slices.Clone(s.categories) }
func (s Scope) Brands() []string     { return slices.Clone(s.brands) }
func (s Scope) Skus() []string       { return slices.Clone(s.skus) }

// MatchesNothing reports a non-global scope with every list empty.
func (s Scope) MatchesNothing() bool {
	return !s.IsGlobal() && s.listsEmpty()
}

// Matches applies OR semantics across the configured lists.
func (s Scope) Matches(p ProductRef) bool {
	if s.IsGlobal() {
		return true
	}
	if len(s.categories) > 0 && slices.Contains(s.categories, p.Category) {
		return true
	}
	if len(s.brands) > 0 && slices.Contains(s.brands, p.Brand) {
		return true
	}
	if len(s.skus) > 0 && slices.Contains(s.skus, p.SKU) {
		return true
	}
	return false
}

// Equal compares kind and lists, ignoring list order.
func (s Scope) Equal(o Scope) bool {
	return s.kind == o.kind &&
		sameSet(s.categories, o.categories) &&
		sameSet(s.brands, o.brands) &&
		sameSet(s.skus, o.skus)
}

func (s Scope) listsEmpty() bool {
	return len(s.categories) == 0 && len(s.brands) == 0 && len(s.skus) == 0
}

type scopeJSON struct {
	Kind       ScopeKind `json:"kind"`
	Categories []string  `json:"categories,omitempty"`
	Brands     []string  `json:"brands,omitempty"`
	Skus       []string  `json:"skus,omitempty"`
}

func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(scopeJSON{Kind: s.kind, Categories: s.categories, Brands: s.brands, Skus: s.skus})
}

// UnmarshalJSON restores a scope as stored; it does not re-validate.
func (s *Scope) UnmarshalJSON(data []byte) error {
	var raw scopeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ReconstructScope(raw.Kind, raw.Categories, raw.Brands, raw.Skus)
	return nil
}

// normalizeList trims entries, drops blanks and duplicates, and keeps first-seen order.
func normalizeList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	return true
}
