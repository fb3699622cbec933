package compatibility

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies one class of API difference. The numeric values are
// stable codes that appear in hide lists and policy files; never renumber.
type Kind int

const (
	KindPackageRemoved            Kind = 1
	KindClassRemoved              Kind = 2
	KindClassKindChanged          Kind = 3
	KindClassVisibilityReduced    Kind = 4
	KindClassBecameFinal          Kind = 5
	KindClassBecameAbstract       Kind = 6
	KindSupertypeRemoved          Kind = 7
	KindInterfaceRemoved          Kind = 8
	KindTypeParameterBoundChanged Kind = 9
	KindMemberRemoved             Kind = 10
	KindMemberVisibilityReduced   Kind = 11
	KindMemberStaticnessChanged   Kind = 12
	KindMemberBecameFinal         Kind = 13
	KindReturnTypeChanged         Kind = 14
	KindExceptionAdded            Kind = 15
	KindAbstractMemberAdded       Kind = 16
	KindConstantValueChanged      Kind = 17
	KindFieldTypeChanged          Kind = 18
	KindClassAdded                Kind = 19
	KindMemberAdded               Kind = 20
	KindCovariantReturnChange     Kind = 21
)

type kindInfo struct {
	name     string
	severity Severity
}

var kinds = map[Kind]kindInfo{
	KindPackageRemoved:            {"PackageRemoved", SeverityError},
	KindClassRemoved:              {"ClassRemoved", SeverityError},
	KindClassKindChanged:          {"ClassKindChanged", SeverityError},
	KindClassVisibilityReduced:    {"ClassVisibilityReduced", SeverityError},
	KindClassBecameFinal:          {"ClassBecameFinal", SeverityError},
	KindClassBecameAbstract:       {"ClassBecameAbstract", SeverityError},
	KindSupertypeRemoved:          {"SupertypeRemoved", SeverityError},
	KindInterfaceRemoved:          {"InterfaceRemoved", SeverityError},
	KindTypeParameterBoundChanged: {"TypeParameterBoundChanged", SeverityError},
	KindMemberRemoved:             {"MemberRemoved", SeverityError},
	KindMemberVisibilityReduced:   {"MemberVisibilityReduced", SeverityError},
	KindMemberStaticnessChanged:   {"MemberStaticnessChanged", SeverityError},
	KindMemberBecameFinal:         {"MemberBecameFinal", SeverityError},
	KindReturnTypeChanged:         {"ReturnTypeChanged", SeverityError},
	KindExceptionAdded:            {"ExceptionAdded", SeverityError},
	KindAbstractMemberAdded:       {"AbstractMemberAdded", SeverityError},
	KindConstantValueChanged:      {"ConstantValueChanged", SeverityWarning},
	KindFieldTypeChanged:          {"FieldTypeChanged", SeverityError},
	KindClassAdded:                {"ClassAdded", SeverityInfo},
	KindMemberAdded:               {"MemberAdded", SeverityInfo},
	KindCovariantReturnChange:     {"CovariantReturnChange", SeverityInfo},
}

// AllKinds returns every kind in code order.
func AllKinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := KindPackageRemoved; k <= KindCovariantReturnChange; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Code returns the stable numeric code of the kind.
func (k Kind) Code() int {
	return int(k)
}

// DefaultSeverity returns the severity the kind carries before any policy
// is applied.
func (k Kind) DefaultSeverity() Severity {
	return kinds[k].severity
}

// IsInformational reports whether the kind is recorded for reporting only
// and can never fail a run under the default policy.
func (k Kind) IsInformational() bool {
	return kinds[k].severity == SeverityInfo
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kinds[k]; !ok {
		return nil, fmt.Errorf("unknown incompatibility kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind accepts a kind name (case-insensitive) or its numeric code.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := kinds[Kind(n)]; ok {
			return Kind(n), nil
		}
		return 0, fmt.Errorf("unknown incompatibility code: %d", n)
	}
	for k, info := range kinds {
		if strings.EqualFold(info.name, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown incompatibility kind: %s", s)
}

// ParseKinds parses a list of kind names or codes.
func ParseKinds(list []string) ([]Kind, error) {
	out := make([]Kind, 0, len(list))
	for _, s := range list {
		k, err := ParseKind(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Severity is how much a finding matters once classified.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityHidden
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	return []string{"info", "hidden", "warning", "error"}[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a severity name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, nil
	case "hidden", "hide":
		return SeverityHidden, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return SeverityInfo, fmt.Errorf("unknown severity: %s", s)
}
