package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/platinummonkey/apicheck/pkg/compatibility"
)

func newKindsCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "kinds",
		Description: "List incompatibility kinds with their codes and severities",
		Flags:       env.newFlagSet("kinds"),
		env:         env,
	}
	var pf policyFlags
	env.addPolicyFlags(cmd.Flags, &pf)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		policy, _, hide, err := pf.resolve()
		if err != nil {
			return err
		}
		hidden := make(map[compatibility.Kind]bool, len(hide))
		for _, k := range hide {
			hidden[k] = true
		}

		tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tKIND\tDEFAULT\tEFFECTIVE")
		for _, k := range compatibility.AllKinds() {
			effective := policy.Severity(k)
			if hidden[k] {
				effective = compatibility.SeverityHidden
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", k.Code(), k, k.DefaultSeverity(), effective)
		}
		return tw.Flush()
	}
	return cmd
}
