package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sandrolain/gomolang"
)

// sourceExt is the extension of the files picked up in watched directories.
const sourceExt = ".molang"

func (a *app) watchCmd() *cobra.Command {
	var flags checkFlags

	cmd := &cobra.Command{
		Use:   "watch path...",
		Short: "Check Molang sources whenever they change",
		Long: `Watches files and directories and checks every changed source. In
directories only files ending in .molang are checked. Stop with Ctrl-C.

Examples:
  molang watch animations/
  molang watch --strict anim.molang controllers/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.cfg.Table()
			if err != nil {
				return err
			}
			tc := a.toolchain(append(flags.options(cmd), gomolang.WithCaching(true))...)

			w, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			defer w.Close()

			files := make(map[string]bool)
			dirs := make(map[string]bool)
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				path = filepath.Clean(path)
				if info.IsDir() {
					dirs[path] = true
				} else {
					files[path] = true
					// Editors replace files on save; watching the parent sees the new file
					path = filepath.Dir(path)
				}
				if err := w.Add(path); err != nil {
					return fmt.Errorf("failed to watch %s: %w", path, err)
				}
			}

			check := func(path string) {
				data, err := os.ReadFile(path)
				if err != nil {
					a.logger.Warn("failed to read source", "file", path, "error", err)
					return
				}
				in := input{name: filepath.ToSlash(path), source: string(data)}
				diags := tc.Check(in.source, table)
				var sum summary
				sum.add(diags)
				if err := a.report(cmd, in, diags); err != nil {
					a.logger.Warn("failed to render diagnostics", "error", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", time.Now().Format(time.TimeOnly), in.name, sum)
			}

			wants := func(path string) bool {
				path = filepath.Clean(path)
				if files[path] {
					return true
				}
				return dirs[filepath.Dir(path)] && strings.EqualFold(filepath.Ext(path), sourceExt)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a.logger.Info("watching", "paths", args, "debounce", a.cfg.Watch.Debounce.Duration)
			return watchLoop(ctx, w, a.cfg.Watch.Debounce.Duration, wants, check, a.logger)
		},
	}

	flags.register(cmd)
	return cmd
}

// watchLoop collects write events for paths accepted by wants and calls
// handle once per path after no event arrived for the debounce interval.
// It returns when ctx is done or the watcher closes.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration,
	wants func(string) bool, handle func(string), logger *slog.Logger) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !wants(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			clear(pending)
			for _, path := range paths {
				handle(path)
			}
		}
	}
}
