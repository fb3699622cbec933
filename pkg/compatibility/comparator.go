package compatibility

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/platinummonkey/apicheck/pkg/apimodel"
)

// Incompatibility is one difference between two API surfaces. Findings are
// values: the comparator never fails, it only collects.
type Incompatibility struct {
	Kind            Kind     `json:"kind"`
	Package         string   `json:"package"`
	Class           string   `json:"class,omitempty"`
	Member          string   `json:"member,omitempty"`
	Location        string   `json:"location"`
	Detail          string   `json:"detail"`
	DefaultSeverity Severity `json:"default_severity"`
}

func (i Incompatibility) String() string {
	return fmt.Sprintf("%s %s: %s", i.Kind, i.Location, i.Detail)
}

// Comparator walks an old and a new Model in lockstep, keyed by
// fully-qualified name and erased signature.
type Comparator struct {
	oldModel *apimodel.Model
	newModel *apimodel.Model
	findings []Incompatibility
}

// NewComparator creates a new comparator
func NewComparator(oldModel, newModel *apimodel.Model) *Comparator {
	return &Comparator{
		oldModel: oldModel,
		newModel: newModel,
	}
}

// Compare is a convenience wrapper around NewComparator(...).Compare().
func Compare(oldModel, newModel *apimodel.Model) []Incompatibility {
	return NewComparator(oldModel, newModel).Compare()
}

// Compare runs every rule and returns the findings sorted by package,
// class, member signature and kind. Repeated calls give identical results.
func (c *Comparator) Compare() []Incompatibility {
	c.findings = make([]Incompatibility, 0)

	for _, name := range c.oldModel.PackageNames() {
		oldPkg := c.oldModel.Packages[name]
		newPkg, ok := c.newModel.Package(name)
		if !ok || (len(newPkg.Classes) == 0 && len(oldPkg.Classes) > 0) {
			c.add(Incompatibility{
				Kind:     KindPackageRemoved,
				Package:  name,
				Location: name,
				Detail:   fmt.Sprintf("removed package %s", name),
			})
			continue
		}
		for _, oldClass := range oldPkg.SortedClasses() {
			newClass, ok := newPkg.Classes[oldClass.Name]
			if !ok {
				c.addClass(KindClassRemoved, oldClass, "removed %s %s", oldClass.Kind, oldClass.FullName())
				continue
			}
			c.compareClass(oldClass, newClass)
		}
	}

	c.compareAddedClasses()

	sort.SliceStable(c.findings, func(i, j int) bool {
		a, b := c.findings[i], c.findings[j]
		if a.Package != b.Package {
			return a.Package < b.Package
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Member != b.Member {
			return a.Member < b.Member
		}
		return a.Kind < b.Kind
	})
	return c.findings
}

func (c *Comparator) compareAddedClasses() {
	for _, name := range c.newModel.PackageNames() {
		oldPkg, _ := c.oldModel.Package(name)
		for _, newClass := range c.newModel.Packages[name].SortedClasses() {
			if oldPkg != nil {
				if _, ok := oldPkg.Classes[newClass.Name]; ok {
					continue
				}
			}
			c.addClass(KindClassAdded, newClass, "added %s %s", newClass.Kind, newClass.FullName())
		}
	}
}

func (c *Comparator) compareClass(oldClass, newClass *apimodel.ClassType) {
	name := oldClass.FullName()

	if oldClass.Kind != newClass.Kind {
		c.addClass(KindClassKindChanged, newClass, "%s changed from %s to %s", name, oldClass.Kind, newClass.Kind)
	}
	if newClass.Visibility.Narrower(oldClass.Visibility) {
		c.addClass(KindClassVisibilityReduced, newClass, "%s changed visibility from %s to %s",
			name, oldClass.Visibility, newClass.Visibility)
	}
	if newClass.Modifiers.Has(apimodel.ModFinal) && !oldClass.Modifiers.Has(apimodel.ModFinal) {
		c.addClass(KindClassBecameFinal, newClass, "%s added 'final' qualifier", name)
	}
	if newClass.Modifiers.Has(apimodel.ModAbstract) && !oldClass.Modifiers.Has(apimodel.ModAbstract) {
		c.addClass(KindClassBecameAbstract, newClass, "%s changed 'abstract' qualifier", name)
	}

	c.compareSupertypes(oldClass, newClass)
	for _, detail := range c.typeParamChanges(name, oldClass.TypeParams, newClass.TypeParams) {
		c.addClass(KindTypeParameterBoundChanged, newClass, "%s", detail)
	}
	c.compareMembers(oldClass, newClass)
}

func (c *Comparator) compareSupertypes(oldClass, newClass *apimodel.ClassType) {
	ancestors := c.newModel.AncestorNames(newClass)

	if oldSuper := apimodel.EraseType(oldClass.Superclass); oldSuper != "" && oldSuper != "java.lang.Object" {
		if oldSuper != apimodel.EraseType(newClass.Superclass) && !ancestors[oldSuper] {
			c.addClass(KindSupertypeRemoved, newClass, "%s no longer extends %s", oldClass.FullName(), oldSuper)
		}
	}

	for _, ref := range oldClass.Interfaces {
		iface := apimodel.EraseType(ref)
		if !ancestors[iface] {
			c.addClass(KindInterfaceRemoved, newClass, "%s no longer implements %s", oldClass.FullName(), iface)
		}
	}
}

// typeParamChanges describes a changed parameter count, or any bound the
// new declaration adds that no old bound already implies. Generifying a
// declaration that had no parameters keeps raw usages compiling.
func (c *Comparator) typeParamChanges(location string, oldParams, newParams []apimodel.TypeParam) []string {
	if len(oldParams) == 0 {
		return nil
	}
	if len(oldParams) != len(newParams) {
		return []string{fmt.Sprintf("%s changed type parameter count from %d to %d",
			location, len(oldParams), len(newParams))}
	}
	var changes []string
	for i := range oldParams {
		if c.boundsTightened(oldParams[i].Bounds, newParams[i].Bounds) {
			changes = append(changes, fmt.Sprintf("%s tightened bound of type parameter %s from %s to %s",
				location, newParams[i].Name, formatBounds(oldParams[i].Bounds), formatBounds(newParams[i].Bounds)))
		}
	}
	return changes
}

func (c *Comparator) boundsTightened(oldBounds, newBounds []string) bool {
	for _, nb := range newBounds {
		satisfied := false
		if len(oldBounds) == 0 {
			satisfied = apimodel.EraseType(nb) == "java.lang.Object"
		}
		for _, ob := range oldBounds {
			if c.isSubtype(ob, nb) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return true
		}
	}
	return false
}

func formatBounds(bounds []string) string {
	if len(bounds) == 0 {
		return "java.lang.Object"
	}
	return strings.Join(bounds, " & ")
}

// isSubtype consults both models, since either may be the one that declares
// the relevant hierarchy.
func (c *Comparator) isSubtype(sub, super string) bool {
	return c.newModel.IsSubtype(sub, super) || c.oldModel.IsSubtype(sub, super)
}

func (c *Comparator) compareMembers(oldClass, newClass *apimodel.ClassType) {
	for _, oldMember := range oldClass.SortedMembers() {
		key := c.oldModel.ErasedSignatureOf(oldMember).Key()
		newMember, ok := newClass.Members[key]
		if !ok && oldMember.Kind != apimodel.MemberConstructor {
			newMember, _, ok = c.newModel.FindInherited(newClass, key)
		}
		if !ok {
			c.addMember(KindMemberRemoved, oldClass, oldMember, c.oldModel,
				"removed %s %s", describeKind(oldMember), c.location(oldClass, oldMember, c.oldModel))
			continue
		}
		c.compareMember(oldClass, newClass, oldMember, newMember)
	}

	for _, newMember := range newClass.SortedMembers() {
		key := c.newModel.ErasedSignatureOf(newMember).Key()
		if _, ok := oldClass.Members[key]; ok {
			continue
		}
		if newMember.Kind != apimodel.MemberConstructor {
			if _, _, inherited := c.oldModel.FindInherited(oldClass, key); inherited {
				continue
			}
		}
		loc := c.location(newClass, newMember, c.newModel)
		if newMember.IsAbstract(newClass) && newClass.IsAbstract() {
			c.addMember(KindAbstractMemberAdded, newClass, newMember, c.newModel,
				"added abstract method %s", loc)
			continue
		}
		c.addMember(KindMemberAdded, newClass, newMember, c.newModel, "added %s %s", describeKind(newMember), loc)
	}
}

func (c *Comparator) compareMember(oldClass, newClass *apimodel.ClassType, oldMember, newMember *apimodel.Member) {
	loc := c.location(oldClass, oldMember, c.oldModel)
	report := func(kind Kind, format string, args ...interface{}) {
		c.addMember(kind, oldClass, oldMember, c.oldModel, format, args...)
	}

	if newMember.Visibility.Narrower(oldMember.Visibility) {
		report(KindMemberVisibilityReduced, "%s changed visibility from %s to %s",
			loc, oldMember.Visibility, newMember.Visibility)
	}
	if oldMember.Modifiers.Has(apimodel.ModStatic) != newMember.Modifiers.Has(apimodel.ModStatic) {
		report(KindMemberStaticnessChanged, "%s changed 'static' qualifier", loc)
	}
	if newMember.Modifiers.Has(apimodel.ModFinal) && !oldMember.Modifiers.Has(apimodel.ModFinal) && c.overridable(oldClass, oldMember) {
		report(KindMemberBecameFinal, "%s added 'final' qualifier", loc)
	}

	switch oldMember.Kind {
	case apimodel.MemberMethod:
		if newMember.IsAbstract(owner(c.newModel, newMember, newClass)) && !oldMember.IsAbstract(oldClass) {
			report(KindAbstractMemberAdded, "%s became abstract", loc)
		}
		for _, detail := range c.typeParamChanges(loc, oldMember.TypeParams, newMember.TypeParams) {
			report(KindTypeParameterBoundChanged, "%s", detail)
		}
		c.compareReturnType(loc, oldMember, newMember, report)
		c.compareThrows(loc, oldMember, newMember, report)
	case apimodel.MemberConstructor:
		c.compareThrows(loc, oldMember, newMember, report)
	case apimodel.MemberField:
		oldType, newType := c.oldModel.ErasedReturnType(oldMember), c.newModel.ErasedReturnType(newMember)
		if oldType != newType {
			report(KindFieldTypeChanged, "%s changed type from %s to %s", loc, oldMember.Type, newMember.Type)
		}
		switch {
		case oldMember.HasValue && newMember.HasValue && !sameConstant(oldMember.Value, newMember.Value):
			report(KindConstantValueChanged, "%s changed value from %s to %s", loc, oldMember.Value, newMember.Value)
		case oldMember.HasValue && !newMember.HasValue:
			report(KindConstantValueChanged, "%s is no longer a constant (was %s)", loc, oldMember.Value)
		case !oldMember.HasValue && newMember.HasValue:
			report(KindConstantValueChanged, "%s became a constant with value %s", loc, newMember.Value)
		}
	default:
		panic(fmt.Sprintf("unknown member kind %d", oldMember.Kind))
	}
}

// owner returns the class that declares m, which differs from the class
// being compared when m was found by inheritance.
func owner(model *apimodel.Model, m *apimodel.Member, fallback *apimodel.ClassType) *apimodel.ClassType {
	if c, ok := model.LookupClass(m.Declaring); ok {
		return c
	}
	return fallback
}

// overridable reports whether a subclass or caller could have depended on
// the member not being final.
func (c *Comparator) overridable(class *apimodel.ClassType, m *apimodel.Member) bool {
	switch m.Kind {
	case apimodel.MemberField:
		return true
	case apimodel.MemberMethod:
		return !m.Modifiers.Has(apimodel.ModStatic) && !class.Modifiers.Has(apimodel.ModFinal) &&
			m.Visibility > apimodel.VisibilityPrivate
	}
	return false
}

func (c *Comparator) compareReturnType(loc string, oldMember, newMember *apimodel.Member,
	report func(Kind, string, ...interface{})) {
	oldType, newType := c.oldModel.ErasedReturnType(oldMember), c.newModel.ErasedReturnType(newMember)
	switch {
	case oldType == newType:
	case c.isSubtype(newType, oldType):
		report(KindCovariantReturnChange, "%s narrowed return type from %s to %s", loc, oldMember.ReturnType, newMember.ReturnType)
	default:
		report(KindReturnTypeChanged, "%s changed return type from %s to %s", loc, oldMember.ReturnType, newMember.ReturnType)
	}
}

var uncheckedRoots = []string{"java.lang.RuntimeException", "java.lang.Error"}

func (c *Comparator) compareThrows(loc string, oldMember, newMember *apimodel.Member,
	report func(Kind, string, ...interface{})) {
	for _, thrown := range newMember.Throws {
		exc := apimodel.EraseType(thrown)
		covered := false
		for _, prev := range oldMember.Throws {
			if c.isSubtype(exc, prev) {
				covered = true
				break
			}
		}
		for _, root := range uncheckedRoots {
			if c.isSubtype(exc, root) {
				covered = true
			}
		}
		if !covered {
			report(KindExceptionAdded, "%s added thrown exception %s", loc, exc)
		}
	}
}

// sameConstant compares constant literals, treating integer literals in
// any base or with a long suffix by value.
func sameConstant(a, b string) bool {
	if a == b {
		return true
	}
	x, errA := parseIntLiteral(a)
	y, errB := parseIntLiteral(b)
	return errA == nil && errB == nil && x == y
}

func parseIntLiteral(s string) (int64, error) {
	s = strings.TrimRight(s, "lL")
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return n, nil
	}
	// Hex literals may use the full unsigned range, as in 0xFFFFFFFFFFFFFFFFL.
	u, err := strconv.ParseUint(s, 0, 64)
	return int64(u), err
}

func (c *Comparator) location(class *apimodel.ClassType, m *apimodel.Member, model *apimodel.Model) string {
	return class.FullName() + "." + model.ErasedSignatureOf(m).String()
}

func describeKind(m *apimodel.Member) string {
	switch m.Kind {
	case apimodel.MemberConstructor:
		return "constructor"
	case apimodel.MemberMethod:
		return "method"
	case apimodel.MemberField:
		return "field"
	}
	panic(fmt.Sprintf("unknown member kind %d", m.Kind))
}

func (c *Comparator) addClass(kind Kind, class *apimodel.ClassType, format string, args ...interface{}) {
	c.add(Incompatibility{
		Kind:     kind,
		Package:  class.Package,
		Class:    class.Name,
		Location: class.FullName(),
		Detail:   fmt.Sprintf(format, args...),
	})
}

func (c *Comparator) addMember(kind Kind, class *apimodel.ClassType, m *apimodel.Member, model *apimodel.Model,
	format string, args ...interface{}) {
	sig := model.ErasedSignatureOf(m).String()
	c.add(Incompatibility{
		Kind:     kind,
		Package:  class.Package,
		Class:    class.Name,
		Member:   sig,
		Location: class.FullName() + "." + sig,
		Detail:   fmt.Sprintf(format, args...),
	})
}

func (c *Comparator) add(i Incompatibility) {
	i.DefaultSeverity = i.Kind.DefaultSeverity()
	c.findings = append(c.findings, i)
}
