package compatibility

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PolicyFile is the on-disk form of a Policy.
type PolicyFile struct {
	Version    string            `yaml:"version"`
	Werror     bool              `yaml:"werror"`
	Severities map[string]string `yaml:"severities"` // kind name or code -> severity
	Hide       []string          `yaml:"hide"`
}

// Policy maps each kind to the severity it is reported with. The zero
// value is not usable; start from DefaultPolicy.
type Policy struct {
	// Werror promotes every warning to an error.
	Werror bool

	severities map[Kind]Severity
}

// DefaultPolicy returns the built-in severity table.
func DefaultPolicy() *Policy {
	p := &Policy{severities: make(map[Kind]Severity, len(kinds))}
	for k, info := range kinds {
		p.severities[k] = info.severity
	}
	return p
}

// Severity returns the severity configured for k, after werror.
func (p *Policy) Severity(k Kind) Severity {
	s, ok := p.severities[k]
	if !ok {
		s = k.DefaultSeverity()
	}
	if p.Werror && s == SeverityWarning {
		return SeverityError
	}
	return s
}

// SetSeverity overrides the severity of one kind.
func (p *Policy) SetSeverity(k Kind, s Severity) {
	p.severities[k] = s
}

// Hide demotes every listed kind to hidden.
func (p *Policy) Hide(list ...Kind) {
	for _, k := range list {
		p.severities[k] = SeverityHidden
	}
}

// Apply merges a policy file into the policy.
func (p *Policy) Apply(f *PolicyFile) error {
	if f.Werror {
		p.Werror = true
	}
	for name, sev := range f.Severities {
		k, err := ParseKind(name)
		if err != nil {
			return err
		}
		s, err := ParseSeverity(sev)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		p.SetSeverity(k, s)
	}
	hidden, err := ParseKinds(f.Hide)
	if err != nil {
		return err
	}
	p.Hide(hidden...)
	return nil
}

// ParsePolicy builds a policy from YAML, starting from the defaults.
func ParsePolicy(data []byte) (*Policy, error) {
	var f PolicyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	if f.Version != "" && f.Version != "v1" {
		return nil, fmt.Errorf("unsupported policy version: %s", f.Version)
	}
	p := DefaultPolicy()
	if err := p.Apply(&f); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}

// LoadPolicy loads a policy from a file
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePolicy(data)
}

// LoadPolicyFromDir searches dir for a policy file and falls back to the
// defaults when none exists.
func LoadPolicyFromDir(dir string) (*Policy, error) {
	for _, name := range []string{"apicheck.yaml", "apicheck.yml", ".apicheck.yaml", ".apicheck.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadPolicy(path)
		}
	}
	return DefaultPolicy(), nil
}

// File returns the policy in its on-disk form, listing only the kinds whose
// severity differs from the default.
func (p *Policy) File() *PolicyFile {
	f := &PolicyFile{Version: "v1", Werror: p.Werror, Severities: map[string]string{}}
	for _, k := range AllKinds() {
		s := p.severities[k]
		switch {
		case s == k.DefaultSeverity():
		case s == SeverityHidden:
			f.Hide = append(f.Hide, k.String())
		default:
			f.Severities[k.String()] = s.String()
		}
	}
	return f
}

// SavePolicy saves a policy to a file
func SavePolicy(p *Policy, path string) error {
	data, err := yaml.Marshal(p.File())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
