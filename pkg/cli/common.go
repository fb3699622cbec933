package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/compatibility"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

// listFlag collects comma-separated values across repeated flags.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

// policyFlags are the classification flags shared by check and watch.
type policyFlags struct {
	policyFile   string
	acceptedFile string
	hide         listFlag
	errorKinds   listFlag
	warningKinds listFlag
	werror       bool
}

func (e *Env) addPolicyFlags(fs *flag.FlagSet, pf *policyFlags) {
	fs.StringVar(&pf.policyFile, "policy", e.Config.Check.PolicyFile, "Policy file (default: apicheck.yaml in the working directory, if present)")
	fs.StringVar(&pf.acceptedFile, "accepted", e.Config.Check.BaselineFile, "File of accepted findings, one 'Kind location' per line")
	pf.hide = append(listFlag(nil), e.Config.Check.Hide...)
	fs.Var(&pf.hide, "hide", "Kinds (names or codes) to hide; repeatable, comma-separated")
	fs.Var(&pf.errorKinds, "error", "Kinds to report as errors")
	fs.Var(&pf.warningKinds, "warning", "Kinds to report as warnings")
	fs.BoolVar(&pf.werror, "werror", e.Config.Check.Werror, "Treat warnings as errors")
}

// resolve loads the policy file, then applies per-kind overrides and
// werror, and loads the accepted findings.
func (pf *policyFlags) resolve() (*compatibility.Policy, *compatibility.Baseline, []compatibility.Kind, error) {
	var (
		policy *compatibility.Policy
		err    error
	)
	if pf.policyFile != "" {
		policy, err = compatibility.LoadPolicy(pf.policyFile)
	} else {
		policy, err = compatibility.LoadPolicyFromDir(".")
	}
	if err != nil {
		return nil, nil, nil, err
	}

	for sev, list := range map[compatibility.Severity]listFlag{
		compatibility.SeverityError:   pf.errorKinds,
		compatibility.SeverityWarning: pf.warningKinds,
	} {
		kinds, err := compatibility.ParseKinds(list)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, k := range kinds {
			policy.SetSeverity(k, sev)
		}
	}
	if pf.werror {
		policy.Werror = true
	}

	var accepted *compatibility.Baseline
	if pf.acceptedFile != "" {
		if accepted, err = compatibility.LoadBaseline(pf.acceptedFile); err != nil {
			return nil, nil, nil, err
		}
	}

	hide, err := compatibility.ParseKinds(pf.hide)
	if err != nil {
		return nil, nil, nil, err
	}
	return policy, accepted, hide, nil
}

// options turns the flags into checker options.
func (pf *policyFlags) options() ([]checker.Option, error) {
	policy, accepted, hide, err := pf.resolve()
	if err != nil {
		return nil, err
	}
	return []checker.Option{
		checker.WithPolicy(policy, accepted),
		checker.WithHideList(hide...),
	}, nil
}

// openStore opens the configured baseline store with debug instrumentation.
func (e *Env) openStore(ctx context.Context) (storage.BaselineStore, error) {
	store, err := storage.NewStore(ctx, e.Config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open baseline store: %w", err)
	}
	return storage.Instrument(store, nil, e.Logger), nil
}

// printResult writes a human-readable report. Hidden and informational
// entries are listed only when verbose.
func printResult(w io.Writer, result *checker.Result, verbose bool) {
	for _, e := range result.Report.Entries {
		if !verbose && (e.Severity == compatibility.SeverityHidden || e.Severity == compatibility.SeverityInfo) {
			continue
		}
		suffix := ""
		if e.Baselined {
			suffix = " (accepted)"
		}
		fmt.Fprintf(w, "%s: %s: %s [%s:%d]%s\n", e.Location, e.Severity, e.Detail, e.Kind, e.Kind.Code(), suffix)
	}

	name := result.Module
	if name == "" {
		name = result.New
	}
	status := "PASSED"
	if !result.Passed() {
		status = "FAILED"
	}
	r := result.Report
	fmt.Fprintf(w, "%s: %s, %d error(s), %d warning(s), %d hidden\n", name, status, r.ErrorCount, r.WarningCount, r.HiddenCount)
}

// printResults writes results as text or JSON and reports ErrIncompatible
// if any failed.
func printResults(w io.Writer, results []*checker.Result, format string, verbose bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		var err error
		if len(results) == 1 {
			err = enc.Encode(results[0])
		} else {
			err = enc.Encode(results)
		}
		if err != nil {
			return err
		}
	case "text", "":
		for _, r := range results {
			printResult(w, r, verbose)
		}
	default:
		return fmt.Errorf("unknown output format: %s (must be text or json)", format)
	}

	for _, r := range results {
		if !r.Passed() {
			return checker.ErrIncompatible
		}
	}
	return nil
}
