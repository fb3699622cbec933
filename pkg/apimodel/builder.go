package apimodel

import (
	"fmt"
	"sort"
	"strings"
)

// DuplicateError reports a second declaration of a class or member that
// already exists in the model under construction.
type DuplicateError struct {
	What string // "class" or "member"
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %s", e.What, e.Name)
}

// CycleError reports a cycle in the supertype graph of one model.
type CycleError struct {
	Class string
	Path  []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic supertype graph at %s: %s", e.Class, strings.Join(e.Path, " -> "))
}

// Builder assembles a Model. A Builder is not safe for concurrent use; the
// Model it produces is.
type Builder struct {
	packages map[string]*Package
	index    map[string]*ClassType
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		packages: make(map[string]*Package),
		index:    make(map[string]*ClassType),
	}
}

// AddPackage declares a package. Declaring the same package twice merges.
func (b *Builder) AddPackage(name string) *Package {
	if pkg, ok := b.packages[name]; ok {
		return pkg
	}
	pkg := &Package{Name: name, Classes: make(map[string]*ClassType)}
	b.packages[name] = pkg
	return pkg
}

// AddClass registers a class in its package.
func (b *Builder) AddClass(c *ClassType) error {
	fq := c.FullName()
	if _, ok := b.index[fq]; ok {
		return &DuplicateError{What: "class", Name: fq}
	}
	if c.Members == nil {
		c.Members = make(map[string]*Member)
	}
	pkg := b.AddPackage(c.Package)
	pkg.Classes[c.Name] = c
	b.index[fq] = c
	return nil
}

// AddMember attaches a member to a class previously passed to AddClass.
func (b *Builder) AddMember(c *ClassType, m *Member) error {
	m.Declaring = c.FullName()
	sig := erasedSignature(m, c.TypeParams)
	key := sig.Key()
	if _, ok := c.Members[key]; ok {
		return &DuplicateError{What: "member", Name: m.Declaring + "." + sig.String()}
	}
	c.Members[key] = m
	return nil
}

// Lookup returns a class already added to the builder.
func (b *Builder) Lookup(fqName string) (*ClassType, bool) {
	c, ok := b.index[fqName]
	return c, ok
}

// Build validates the supertype graph and returns the finished model.
func (b *Builder) Build() (*Model, error) {
	if err := detectCycles(b.index); err != nil {
		return nil, err
	}
	return &Model{Packages: b.packages, index: b.index}, nil
}

type visitState uint8

const (
	stateVisiting visitState = iota + 1
	stateDone
)

func directSupertypes(c *ClassType) []string {
	out := make([]string, 0, len(c.Interfaces)+1)
	if c.Superclass != "" {
		out = append(out, EraseType(c.Superclass))
	}
	for _, iface := range c.Interfaces {
		out = append(out, EraseType(iface))
	}
	return out
}

// detectCycles walks every declared type; edges leaving the model are
// ignored since they can not close a cycle inside it.
func detectCycles(index map[string]*ClassType) error {
	states := make(map[string]visitState, len(index))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch states[name] {
		case stateVisiting:
			start := 0
			for i, p := range path {
				if p == name {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, path[start:]...), name)
			return &CycleError{Class: name, Path: cycle}
		case stateDone:
			return nil
		}
		c, ok := index[name]
		if !ok {
			return nil
		}
		states[name] = stateVisiting
		path = append(path, name)
		for _, next := range directSupertypes(c) {
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		states[name] = stateDone
		return nil
	}

	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
