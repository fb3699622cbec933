package compatibility

// Entry is a classified finding.
type Entry struct {
	Incompatibility
	Severity  Severity `json:"severity"`
	Baselined bool     `json:"baselined,omitempty"`
}

// Report aggregates classified findings. Hidden and informational entries
// stay in Entries for audit but never count towards failure.
type Report struct {
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
	HiddenCount  int     `json:"hidden_count"`
	InfoCount    int     `json:"info_count"`
	Entries      []Entry `json:"entries"`
}

// Failed reports whether any error survived suppression. Warnings never fail
// a run.
func (r *Report) Failed() bool {
	return r.ErrorCount > 0
}

// Findings returns the entries with the given severity.
func (r *Report) Findings(s Severity) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Severity == s {
			out = append(out, e)
		}
	}
	return out
}

// Classifier assigns severities to findings and counts them.
type Classifier struct {
	policy   *Policy
	baseline *Baseline
}

// NewClassifier creates a classifier. A nil policy means the defaults; a
// nil baseline accepts nothing.
func NewClassifier(policy *Policy, baseline *Baseline) *Classifier {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Classifier{policy: policy, baseline: baseline}
}

// Classify applies the default policy and the hide list to findings.
func Classify(findings []Incompatibility, hideList []Kind) *Report {
	return NewClassifier(nil, nil).Classify(findings, hideList)
}

// Classify assigns each finding its severity: the policy first, then the
// hide list and baseline, which both demote to hidden.
func (c *Classifier) Classify(findings []Incompatibility, hideList []Kind) *Report {
	hidden := make(map[Kind]bool, len(hideList))
	for _, k := range hideList {
		hidden[k] = true
	}

	report := &Report{Entries: make([]Entry, 0, len(findings))}
	for _, f := range findings {
		entry := Entry{Incompatibility: f, Severity: c.policy.Severity(f.Kind)}
		if c.baseline != nil && c.baseline.Contains(f) {
			entry.Baselined = true
			entry.Severity = SeverityHidden
		}
		if hidden[f.Kind] {
			entry.Severity = SeverityHidden
		}

		switch entry.Severity {
		case SeverityError:
			report.ErrorCount++
		case SeverityWarning:
			report.WarningCount++
		case SeverityHidden:
			report.HiddenCount++
		case SeverityInfo:
			report.InfoCount++
		}
		report.Entries = append(report.Entries, entry)
	}
	return report
}
