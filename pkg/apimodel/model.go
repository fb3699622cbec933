package apimodel

import (
	"sort"
	"strings"
)

// Visibility is the access level of a declaration. Ordered so that a
// larger value is wider.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPackage
	VisibilityProtected
	VisibilityPublic
)

func (v Visibility) String() string {
	return []string{"private", "package", "protected", "public"}[v]
}

// Narrower reports whether v is a strictly smaller access level than other.
func (v Visibility) Narrower(other Visibility) bool {
	return v < other
}

// ClassKind distinguishes the four declared type flavors.
type ClassKind int

const (
	KindClass ClassKind = iota
	KindInterface
	KindEnum
	KindAnnotation
)

func (k ClassKind) String() string {
	return []string{"class", "interface", "enum", "@interface"}[k]
}

// MemberKind distinguishes constructors, methods and fields.
type MemberKind int

const (
	MemberConstructor MemberKind = iota
	MemberMethod
	MemberField
)

func (k MemberKind) String() string {
	return []string{"ctor", "method", "field"}[k]
}

// Modifiers is a bit set of declaration modifiers.
type Modifiers uint16

const (
	ModAbstract Modifiers = 1 << iota
	ModFinal
	ModStatic
	ModSealed
	ModDefault
)

// ModifierOrder is the canonical order modifiers are written in.
var ModifierOrder = []Modifiers{ModStatic, ModAbstract, ModDefault, ModFinal, ModSealed}

func (m Modifiers) Has(flag Modifiers) bool {
	return m&flag != 0
}

func (m Modifiers) String() string {
	names := map[Modifiers]string{
		ModAbstract: "abstract",
		ModFinal:    "final",
		ModStatic:   "static",
		ModSealed:   "sealed",
		ModDefault:  "default",
	}
	var parts []string
	for _, flag := range ModifierOrder {
		if m.Has(flag) {
			parts = append(parts, names[flag])
		}
	}
	return strings.Join(parts, " ")
}

// TypeParam is one declared type variable and its bounds.
type TypeParam struct {
	Name   string
	Bounds []string
}

// Model is an immutable snapshot of an API surface. It is built once by a
// Builder and never mutated afterwards, so it may be shared freely between
// goroutines.
type Model struct {
	Packages map[string]*Package

	index map[string]*ClassType
}

// Package holds the types declared in one dotted package.
type Package struct {
	Name    string
	Classes map[string]*ClassType // simple name -> class
}

// ClassType is a class, interface, enum or annotation type.
type ClassType struct {
	Package    string
	Name       string // simple name, dotted for nested types (Outer.Inner)
	Kind       ClassKind
	Visibility Visibility
	Modifiers  Modifiers
	TypeParams []TypeParam
	Superclass string
	Interfaces []string
	Members    map[string]*Member // Signature.Key() -> member

	// Opaque marks a placeholder for a type referenced but not declared.
	Opaque bool
}

// Member is a constructor, method or field.
type Member struct {
	Kind       MemberKind
	Name       string
	Visibility Visibility
	Modifiers  Modifiers
	Declaring  string // fully-qualified name of the owning class

	// Constructors and methods.
	TypeParams []TypeParam
	Params     []string
	ReturnType string
	Throws     []string

	// Fields.
	Type     string
	HasValue bool
	Value    string
}

// FullName returns the fully-qualified name of the class.
func (c *ClassType) FullName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// IsAbstract reports whether instances of the type can not be created
// directly.
func (c *ClassType) IsAbstract() bool {
	return c.Kind == KindInterface || c.Kind == KindAnnotation || c.Modifiers.Has(ModAbstract)
}

// SortedMembers returns the members in canonical order: constructors,
// methods, fields, each by name then parameter list.
func (c *ClassType) SortedMembers() []*Member {
	members := make([]*Member, 0, len(c.Members))
	for _, m := range c.Members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return strings.Join(a.Params, ",") < strings.Join(b.Params, ",")
	})
	return members
}

// IsAbstract reports whether the member carries an obligation for
// implementers of its declaring type.
func (m *Member) IsAbstract(owner *ClassType) bool {
	if m.Kind != MemberMethod {
		return false
	}
	if m.Modifiers.Has(ModAbstract) {
		return true
	}
	if owner != nil && owner.Kind == KindInterface {
		return !m.Modifiers.Has(ModDefault) && !m.Modifiers.Has(ModStatic)
	}
	return false
}

// LookupClass returns the class with the given fully-qualified name.
func (m *Model) LookupClass(fqName string) (*ClassType, bool) {
	c, ok := m.index[fqName]
	return c, ok
}

// Package returns the named package.
func (m *Model) Package(name string) (*Package, bool) {
	p, ok := m.Packages[name]
	return p, ok
}

// PackageNames returns all package names sorted.
func (m *Model) PackageNames() []string {
	names := make([]string, 0, len(m.Packages))
	for name := range m.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClassCount returns the number of declared types.
func (m *Model) ClassCount() int {
	return len(m.index)
}

// SortedClasses returns the package's classes ordered by simple name.
func (p *Package) SortedClasses() []*ClassType {
	classes := make([]*ClassType, 0, len(p.Classes))
	for _, c := range p.Classes {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Name < classes[j].Name
	})
	return classes
}
