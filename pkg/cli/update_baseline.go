package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/compatibility"
	"github.com/platinummonkey/apicheck/pkg/snapshot"
)

func newUpdateBaselineCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "update-baseline",
		Description: "Store a snapshot as the accepted baseline, or accept current findings",
		Flags:       env.newFlagSet("update-baseline"),
		env:         env,
	}
	var (
		newPath  = cmd.Flags.String("new", "", "Current snapshot file (required)")
		module   = cmd.Flags.String("module", "", "Module whose stored baseline is replaced")
		oldPath  = cmd.Flags.String("old", "", "With --accept, baseline snapshot file to compare against")
		accepted = cmd.Flags.String("accept", "", "Write every current finding to this accepted-findings file")
	)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *newPath == "" {
			return fmt.Errorf("--new is required")
		}
		if *module == "" && *accepted == "" {
			return fmt.Errorf("one of --module or --accept is required")
		}

		c := checker.New(checker.WithLogger(env.Logger))

		// Findings are recorded against the old baseline before it is replaced.
		if *accepted != "" {
			jobs, err := env.checkJobs(ctx, *oldPath, *newPath, *module, false, "")
			if err != nil {
				return err
			}
			result, err := c.Check(ctx, jobs[0].Module, jobs[0].Old, jobs[0].New)
			if err != nil {
				return err
			}
			baseline := compatibility.NewBaseline(result.Findings)
			if err := writeAccepted(*accepted, baseline); err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "accepted %d finding(s) in %s\n", baseline.Len(), *accepted)
		}

		if *module != "" {
			m, err := c.Load(ctx, checker.FileSource{Path: *newPath})
			if err != nil {
				return err
			}
			store, err := env.openStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Put(ctx, *module, []byte(snapshot.Write(m))); err != nil {
				return err
			}
			fmt.Fprintf(env.Stdout, "updated %s baseline for %s (%d classes)\n", store.Name(), *module, m.ClassCount())
		}
		return nil
	}

	return cmd
}

func writeAccepted(path string, b *compatibility.Baseline) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := b.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
