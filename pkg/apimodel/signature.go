package apimodel

import (
	"strings"
)

const objectType = "java.lang.Object"

var primitiveTypes = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// Signature identifies a member within its declaring type. Only erased
// parameter types participate.
type Signature struct {
	Kind   MemberKind
	Name   string
	Params []string
}

// Key returns the map key form of the signature. Fields have no parameter
// list, so a field and a no-arg method of the same name stay distinct.
func (s Signature) Key() string {
	if s.Kind == MemberField {
		return "field:" + s.Name
	}
	return s.Kind.String() + ":" + s.Name + "(" + strings.Join(s.Params, ",") + ")"
}

// String renders the signature the way it appears in a finding location.
func (s Signature) String() string {
	if s.Kind == MemberField {
		return s.Name
	}
	return s.Name + "(" + strings.Join(s.Params, ", ") + ")"
}

// IsPrimitive reports whether the erased type is a Java primitive.
func IsPrimitive(t string) bool {
	return primitiveTypes[t]
}

// typeScope maps type variable names to their declared bounds.
type typeScope map[string][]string

func newTypeScope(params ...[]TypeParam) typeScope {
	scope := typeScope{}
	for _, list := range params {
		for _, p := range list {
			scope[p.Name] = p.Bounds
		}
	}
	return scope
}

// EraseType strips generic instantiation from a type expression and
// normalizes varargs to an array.
func EraseType(t string) string {
	return newTypeScope().erase(t, 0)
}

func (s typeScope) erase(t string, depth int) string {
	t = strings.TrimSpace(t)
	dims := ""
	if strings.HasSuffix(t, "...") {
		t = strings.TrimSuffix(t, "...")
		dims = "[]"
	}
	for strings.HasSuffix(t, "[]") {
		t = strings.TrimSuffix(t, "[]")
		dims += "[]"
	}
	base := stripTypeArgs(t)
	if bounds, ok := s[base]; ok && depth < 8 {
		if len(bounds) == 0 {
			return objectType + dims
		}
		return s.erase(bounds[0], depth+1) + dims
	}
	return base + dims
}

// stripTypeArgs removes every balanced <...> group, including the ones
// attached to qualified inner types such as a.Outer<T>.Inner<U>.
func stripTypeArgs(t string) string {
	if !strings.Contains(t, "<") {
		return t
	}
	var sb strings.Builder
	depth := 0
	for _, r := range t {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0 && r != ' ':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// ErasedSignatureOf computes the matching key of a member, erasing type
// variables declared by the member or by its declaring class.
func (m *Model) ErasedSignatureOf(mem *Member) Signature {
	var classParams []TypeParam
	if owner, ok := m.LookupClass(mem.Declaring); ok {
		classParams = owner.TypeParams
	}
	return erasedSignature(mem, classParams)
}

func erasedSignature(mem *Member, classParams []TypeParam) Signature {
	sig := Signature{Kind: mem.Kind, Name: mem.Name}
	if mem.Kind == MemberField {
		return sig
	}
	scope := newTypeScope(classParams, mem.TypeParams)
	sig.Params = make([]string, len(mem.Params))
	for i, p := range mem.Params {
		sig.Params[i] = scope.erase(p, 0)
	}
	return sig
}

// ErasedReturnType erases the member's return (or field) type in the scope
// of its declaring class.
func (m *Model) ErasedReturnType(mem *Member) string {
	var classParams []TypeParam
	if owner, ok := m.LookupClass(mem.Declaring); ok {
		classParams = owner.TypeParams
	}
	scope := newTypeScope(classParams, mem.TypeParams)
	if mem.Kind == MemberField {
		return scope.erase(mem.Type, 0)
	}
	return scope.erase(mem.ReturnType, 0)
}
