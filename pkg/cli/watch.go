package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/platinummonkey/apicheck/pkg/checker"
	"github.com/platinummonkey/apicheck/pkg/observability"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

func newWatchCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "watch",
		Description: "Re-run check whenever either snapshot changes",
		Flags:       env.newFlagSet("watch"),
		env:         env,
	}

	var (
		pf       policyFlags
		oldPath  = cmd.Flags.String("old", "", "Baseline snapshot file")
		newPath  = cmd.Flags.String("new", "", "Current snapshot file")
		module   = cmd.Flags.String("module", "", "Module whose stored baseline is the old side")
		debounce = cmd.Flags.Duration("debounce", 300*time.Millisecond, "Quiet period before re-checking after a change")
		verbose  = cmd.Flags.Bool("verbose", false, "Also list hidden and informational findings")
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
		jobs, err := env.checkJobs(ctx, *oldPath, *newPath, *module, false, "")
		if err != nil {
			return err
		}

		paths := []string{*newPath}
		var fsStore *storage.FileSystemStore
		switch {
		case *oldPath != "":
			paths = append(paths, *oldPath)
		case env.Config.Storage.Type == "filesystem":
			// Only a filesystem store has a file to watch.
			if fsStore, err = storage.NewFileSystemStore(env.Config.Storage.FilesystemRoot); err != nil {
				return err
			}
			paths = append(paths, fsStore.Path(*module))
		}

		cache := checker.NewModelCache(env.Config.Check.CacheSize, env.Config.Check.CacheTTL, nil)
		c := checker.New(append(opts, checker.WithLogger(env.Logger), checker.WithCache(cache))...)
		w := &watcher{env: env, checker: c, job: jobs[0], store: fsStore, debounce: *debounce, verbose: *verbose}
		return w.run(ctx, paths)
	}

	return cmd
}

// watcher re-checks one job when any of its files change.
type watcher struct {
	env      *Env
	checker  *checker.Checker
	job      checker.Job
	store    *storage.FileSystemStore
	debounce time.Duration
	verbose  bool
}

// run watches the parent directories of paths, since editors and build tools
// often replace files by renaming over them. It returns nil when ctx ends.
func (w *watcher) run(ctx context.Context, paths []string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logger := w.env.Logger.WithField("files", paths)
	logger.Info("watching for snapshot changes")
	w.check(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopped watching")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			changed := logger.WithField("event", event.String())
			if w.store != nil {
				if module, ok := w.store.ModuleForPath(abs); ok {
					changed = changed.WithField("baseline", module)
				}
			}
			changed.Debug("snapshot changed")
			timer.Reset(w.debounce)
		case <-timer.C:
			w.check(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("watcher error")
		}
	}
}

// check runs one comparison. Failures are reported, never fatal: the next
// change may fix them.
func (w *watcher) check(ctx context.Context) {
	defer observability.RecoverPanic(w.env.Logger, "watch check")

	result, err := w.checker.Check(ctx, w.job.Module, w.job.Old, w.job.New)
	if err != nil {
		fmt.Fprintf(w.env.Stdout, "error: %v\n", err)
		return
	}
	printResult(w.env.Stdout, result, w.verbose)
}
