package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/cli"
	"github.com/platinummonkey/apicheck/pkg/config"
)

// Exit codes: 1 means incompatible changes were found, 2 means apicheck
// itself failed.
const (
	exitIncompatible = 1
	exitError        = 2
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCommand(cli.NewEnv(cfg))
	err = rootCmd.Execute(ctx, os.Args[1:])
	stop()

	switch {
	case err == nil:
	case errors.Is(err, checker.ErrIncompatible):
		os.Exit(exitIncompatible)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}
