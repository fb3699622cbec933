package apimodel

import (
	"fmt"
	"sort"
	"strings"
)

// ResolutionError reports a type reference that carries no usable identity,
// so not even an opaque placeholder can stand in for it.
type ResolutionError struct {
	Ref    string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve type reference %q: %s", e.Ref, e.Reason)
}

// Placeholder returns an opaque stand-in for a type that is referenced but
// not declared. Placeholders are only ever used as identities.
func Placeholder(fqName string) *ClassType {
	return &ClassType{Name: fqName, Opaque: true, Visibility: VisibilityPublic}
}

// Resolve maps a type reference to a declared class, or to an opaque
// placeholder when the type lives outside the model.
func (m *Model) Resolve(ref string) (*ClassType, error) {
	erased := EraseType(ref)
	switch {
	case erased == "":
		return nil, &ResolutionError{Ref: ref, Reason: "empty type name"}
	case IsPrimitive(erased):
		return nil, &ResolutionError{Ref: ref, Reason: "primitive type has no class identity"}
	case strings.HasSuffix(erased, "[]"):
		return nil, &ResolutionError{Ref: ref, Reason: "array type has no class identity"}
	}
	if c, ok := m.index[erased]; ok {
		return c, nil
	}
	return Placeholder(erased), nil
}

// ResolveSupertypes linearizes the ancestors of c: the superclass first,
// then the interfaces in declaration order, each followed by its own
// ancestors. A visited set keyed by fully-qualified name bounds the walk,
// and placeholders end it.
func (m *Model) ResolveSupertypes(c *ClassType) []*ClassType {
	visited := map[string]bool{c.FullName(): true}
	var out []*ClassType

	var walk func(c *ClassType)
	walk = func(c *ClassType) {
		for _, ref := range directSupertypes(c) {
			if visited[ref] {
				continue
			}
			visited[ref] = true
			t, err := m.Resolve(ref)
			if err != nil {
				continue
			}
			out = append(out, t)
			if !t.Opaque {
				walk(t)
			}
		}
	}
	walk(c)
	return out
}

// AncestorNames returns the fully-qualified names of every resolved
// supertype of c.
func (m *Model) AncestorNames(c *ClassType) map[string]bool {
	names := make(map[string]bool)
	for _, t := range m.ResolveSupertypes(c) {
		names[t.FullName()] = true
	}
	return names
}

// IsSubtype reports whether sub is known to be assignable to super within
// this model. Unknown relationships involving placeholders are false.
func (m *Model) IsSubtype(sub, super string) bool {
	sub, super = EraseType(sub), EraseType(super)
	if sub == super {
		return true
	}
	if IsPrimitive(sub) || IsPrimitive(super) {
		return false
	}
	if super == objectType {
		return true
	}
	if strings.HasSuffix(sub, "[]") || strings.HasSuffix(super, "[]") {
		if strings.HasSuffix(sub, "[]") && strings.HasSuffix(super, "[]") {
			return m.IsSubtype(strings.TrimSuffix(sub, "[]"), strings.TrimSuffix(super, "[]"))
		}
		return false
	}
	c, ok := m.index[sub]
	if !ok {
		return false
	}
	return m.AncestorNames(c)[super]
}

// FindInherited looks up a member by signature key among the resolved
// supertypes of c.
func (m *Model) FindInherited(c *ClassType, key string) (*Member, *ClassType, bool) {
	for _, t := range m.ResolveSupertypes(c) {
		if t.Opaque {
			continue
		}
		if mem, ok := t.Members[key]; ok {
			return mem, t, true
		}
	}
	return nil, nil, false
}

// ExternalReferences lists every supertype reference that does not resolve
// to a declared class.
func (m *Model) ExternalReferences() []string {
	seen := make(map[string]bool)
	for _, c := range m.index {
		for _, ref := range directSupertypes(c) {
			if _, ok := m.index[ref]; !ok {
				seen[ref] = true
			}
		}
	}
	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
