package snapshot

import (
	"github.com/platinummonkey/apicheck/pkg/apimodel"
)

// Dialect holds the keyword tables the parser recognizes. A Dialect is
// read-only once constructed; parsers with different dialects can run side
// by side.
type Dialect struct {
	kinds           map[string]apimodel.ClassKind
	members         map[string]apimodel.MemberKind
	visibilities    map[string]apimodel.Visibility
	classModifiers  map[string]apimodel.Modifiers
	memberModifiers map[string]apimodel.Modifiers
	ignored         map[string]bool
	defaultVis      apimodel.Visibility
}

// DialectConfig describes a Dialect. Maps are copied by NewDialect.
type DialectConfig struct {
	Kinds             map[string]apimodel.ClassKind
	Members           map[string]apimodel.MemberKind
	Visibilities      map[string]apimodel.Visibility
	ClassModifiers    map[string]apimodel.Modifiers
	MemberModifiers   map[string]apimodel.Modifiers
	Ignored           []string
	DefaultVisibility apimodel.Visibility
}

// NewDialect builds a Dialect from its configuration.
func NewDialect(cfg DialectConfig) *Dialect {
	d := &Dialect{
		kinds:           make(map[string]apimodel.ClassKind, len(cfg.Kinds)),
		members:         make(map[string]apimodel.MemberKind, len(cfg.Members)),
		visibilities:    make(map[string]apimodel.Visibility, len(cfg.Visibilities)),
		classModifiers:  make(map[string]apimodel.Modifiers, len(cfg.ClassModifiers)),
		memberModifiers: make(map[string]apimodel.Modifiers, len(cfg.MemberModifiers)),
		ignored:         make(map[string]bool, len(cfg.Ignored)),
		defaultVis:      cfg.DefaultVisibility,
	}
	for k, v := range cfg.Kinds {
		d.kinds[k] = v
	}
	for k, v := range cfg.Members {
		d.members[k] = v
	}
	for k, v := range cfg.Visibilities {
		d.visibilities[k] = v
	}
	for k, v := range cfg.ClassModifiers {
		d.classModifiers[k] = v
	}
	for k, v := range cfg.MemberModifiers {
		d.memberModifiers[k] = v
	}
	for _, k := range cfg.Ignored {
		d.ignored[k] = true
	}
	return d
}

// DefaultDialectConfig returns the keyword tables of the standard snapshot
// format.
func DefaultDialectConfig() DialectConfig {
	return DialectConfig{
		Kinds: map[string]apimodel.ClassKind{
			"class":      apimodel.KindClass,
			"interface":  apimodel.KindInterface,
			"enum":       apimodel.KindEnum,
			"@interface": apimodel.KindAnnotation,
			"annotation": apimodel.KindAnnotation,
		},
		Members: map[string]apimodel.MemberKind{
			"ctor":   apimodel.MemberConstructor,
			"method": apimodel.MemberMethod,
			"field":  apimodel.MemberField,
		},
		Visibilities: map[string]apimodel.Visibility{
			"public":    apimodel.VisibilityPublic,
			"protected": apimodel.VisibilityProtected,
			"package":   apimodel.VisibilityPackage,
			"private":   apimodel.VisibilityPrivate,
		},
		ClassModifiers: map[string]apimodel.Modifiers{
			"abstract": apimodel.ModAbstract,
			"final":    apimodel.ModFinal,
			"static":   apimodel.ModStatic,
			"sealed":   apimodel.ModSealed,
		},
		MemberModifiers: map[string]apimodel.Modifiers{
			"static":   apimodel.ModStatic,
			"final":    apimodel.ModFinal,
			"abstract": apimodel.ModAbstract,
			"default":  apimodel.ModDefault,
		},
		Ignored:           []string{"synchronized", "native", "transient", "volatile", "strictfp", "deprecated"},
		DefaultVisibility: apimodel.VisibilityPublic,
	}
}

var defaultDialect = NewDialect(DefaultDialectConfig())

// DefaultDialect returns the shared standard dialect.
func DefaultDialect() *Dialect {
	return defaultDialect
}

func (d *Dialect) classKind(word string) (apimodel.ClassKind, bool) {
	k, ok := d.kinds[word]
	return k, ok
}

func (d *Dialect) memberKind(word string) (apimodel.MemberKind, bool) {
	k, ok := d.members[word]
	return k, ok
}

func (d *Dialect) visibility(word string) (apimodel.Visibility, bool) {
	v, ok := d.visibilities[word]
	return v, ok
}

// modifier reports whether word is a modifier in class or member position.
// Ignored modifiers are recognized with an empty flag set.
func (d *Dialect) modifier(word string, member bool) (apimodel.Modifiers, bool) {
	if d.ignored[word] {
		return 0, true
	}
	table := d.classModifiers
	if member {
		table = d.memberModifiers
	}
	m, ok := table[word]
	return m, ok
}

// isKeyword reports whether word is reserved anywhere in the dialect.
func (d *Dialect) isKeyword(word string) bool {
	if _, ok := d.visibilities[word]; ok {
		return true
	}
	if _, ok := d.classModifiers[word]; ok {
		return true
	}
	if _, ok := d.memberModifiers[word]; ok {
		return true
	}
	return d.ignored[word]
}
