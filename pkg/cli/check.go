package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/platinummonkey/apicheck/pkg/checker"
)

func newCheckCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "check",
		Description: "Check a current API snapshot against its baseline",
		Flags:       env.newFlagSet("check"),
		env:         env,
	}

	var (
		pf          policyFlags
		oldPath     = cmd.Flags.String("old", "", "Baseline snapshot file")
		newPath     = cmd.Flags.String("new", "", "Current snapshot file")
		module      = cmd.Flags.String("module", "", "Module whose stored baseline is the old side")
		all         = cmd.Flags.Bool("all", false, "Check every module in the baseline store")
		currentRoot = cmd.Flags.String("current-root", "", "With --all, directory holding <module>/current.txt for each module")
		format      = cmd.Flags.String("format", "text", "Output format: text, json")
		verbose     = cmd.Flags.Bool("verbose", false, "Also list hidden and informational findings")
	)
	env.addPolicyFlags(cmd.Flags, &pf)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		opts, err := pf.options()
		if err != nil {
			return err
		}
		c := checker.New(append(opts,
			checker.WithLogger(env.Logger),
			checker.WithMaxParallel(env.Config.Check.MaxParallel),
		)...)

		jobs, err := env.checkJobs(ctx, *oldPath, *newPath, *module, *all, *currentRoot)
		if err != nil {
			return err
		}
		results, err := c.CheckAll(ctx, jobs)
		if err != nil {
			return err
		}
		return printResults(env.Stdout, results, *format, *verbose)
	}

	return cmd
}

// checkJobs resolves the flag combinations of check into jobs.
func (e *Env) checkJobs(ctx context.Context, oldPath, newPath, module string, all bool, currentRoot string) ([]checker.Job, error) {
	if all {
		if currentRoot == "" {
			return nil, fmt.Errorf("--all requires --current-root")
		}
		store, err := e.openStore(ctx)
		if err != nil {
			return nil, err
		}
		modules, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(modules) == 0 {
			return nil, fmt.Errorf("no baselines in %s store", store.Name())
		}
		jobs := make([]checker.Job, 0, len(modules))
		for _, m := range modules {
			jobs = append(jobs, checker.Job{
				Module: m,
				Old:    checker.StoreSource{Store: store, Module: m},
				New:    checker.FileSource{Path: filepath.Join(currentRoot, filepath.FromSlash(m), "current.txt")},
			})
		}
		return jobs, nil
	}

	if newPath == "" {
		return nil, fmt.Errorf("--new is required")
	}
	job := checker.Job{Module: module, New: checker.FileSource{Path: newPath}}
	switch {
	case oldPath != "" && module != "":
		return nil, fmt.Errorf("--old and --module are mutually exclusive")
	case oldPath != "":
		job.Old = checker.FileSource{Path: oldPath}
	case module != "":
		store, err := e.openStore(ctx)
		if err != nil {
			return nil, err
		}
		job.Old = checker.StoreSource{Store: store, Module: module}
	default:
		return nil, fmt.Errorf("one of --old or --module is required")
	}
	return []checker.Job{job}, nil
}
