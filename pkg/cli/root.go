package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/platinummonkey/apicheck/pkg/config"
	"github.com/platinummonkey/apicheck/pkg/observability"
)

// Env is what every command runs against.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
	Logger *observability.Logger
}

// NewEnv creates an Env on the process streams. Logs go to stderr in the
// configured format.
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Config: cfg,
		Logger: observability.NewLoggerWithFormat(cfg.Observability.LogLevel, os.Stderr, cfg.Observability.LogFormat),
	}
}

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet

	env *Env
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func (e *Env) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.Stderr)
	return fs
}

// NewRootCommand creates the root command
func NewRootCommand(env *Env) *Command {
	root := &Command{
		Name:        "apicheck",
		Description: "apicheck - API snapshot compatibility checker",
		Subcommands: make(map[string]*Command),
		Flags:       env.newFlagSet("apicheck"),
		env:         env,
	}

	// Add subcommands
	for _, cmd := range []*Command{
		newCheckCommand(env),
		newFormatCommand(env),
		newUpdateBaselineCommand(env),
		newWatchCommand(env),
		newServeCommand(env),
		newKindsCommand(env),
	} {
		root.Subcommands[cmd.Name] = cmd
	}

	return root
}

// Execute runs the subcommand named by args[0].
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	// Check for help flag
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return c.usage()
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		err := subcmd.Run(ctx, args[1:])
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	c.usage()
	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	w := c.env.Stderr
	fmt.Fprintf(w, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(w, "Commands:\n")

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
