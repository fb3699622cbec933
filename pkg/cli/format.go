package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/snapshot"
)

func newFormatCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "format",
		Description: "Rewrite snapshot files in canonical order",
		Flags:       env.newFlagSet("format"),
		env:         env,
	}
	write := cmd.Flags.Bool("w", false, "Write the result back to the file instead of stdout")
	check := cmd.Flags.Bool("check", false, "Fail if any file is not already canonical")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if cmd.Flags.NArg() == 0 {
			return fmt.Errorf("usage: apicheck format [-w] [-check] FILE...")
		}

		c := checker.New(checker.WithLogger(env.Logger))
		var unformatted []string
		for _, path := range cmd.Flags.Args() {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			m, err := c.Load(ctx, checker.TextSource{Name: path, Text: data})
			if err != nil {
				return err
			}
			canonical := []byte(snapshot.Write(m))

			switch {
			case *check:
				if !bytes.Equal(data, canonical) {
					unformatted = append(unformatted, path)
					fmt.Fprintln(env.Stdout, path)
				}
			case *write:
				if bytes.Equal(data, canonical) {
					continue
				}
				if err := os.WriteFile(path, canonical, 0644); err != nil {
					return err
				}
				env.Logger.WithField("file", path).Info("formatted")
			default:
				env.Stdout.Write(canonical)
			}
		}
		if len(unformatted) > 0 {
			return fmt.Errorf("%d file(s) not in canonical form", len(unformatted))
		}
		return nil
	}

	return cmd
}
