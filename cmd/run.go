package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/loader"
	"github.com/xmazu/envedit/internal/logging"
	"github.com/xmazu/envedit/internal/tui"
	"github.com/xmazu/envedit/internal/watch"
)

var runCmd = &cobra.Command{
	Use:   "run -- COMMAND [ARGS...]",
	Short: "Run a command with the .env file loaded",
	Long: `Run COMMAND with the variables of the .env file added to its environment.
Variables already set in the environment win unless --override is given.
Use --with to load more files after the main one and --env KEY=value to add
single values. $VAR and ${VAR} references are expanded unless --no-expand.
Use --redact so secret values in the command's output are replaced with
[REDACTED:KEY]. With --watch the command is restarted whenever one of the
files changes.

Examples:
  envedit run -- go run ./cmd/server
  envedit run --with .env.local --override -- npm start
  envedit run --redact --env DEBUG=1 -- ./deploy.sh
  envedit run --watch -- air`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runWith     []string
	runEnv      []string
	runOverride bool
	runStrict   bool
	runNoExpand bool
	runRedact   bool
	runWatch    bool
)

func init() {
	runCmd.Flags().StringSliceVar(&runWith, "with", nil, "Additional .env file to load after the main one (can be repeated)")
	runCmd.Flags().StringSliceVarP(&runEnv, "env", "e", nil, "Environment override KEY=value (can be repeated)")
	runCmd.Flags().BoolVar(&runOverride, "override", false, "Let file values and --env replace variables that are already set")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Fail if any env file is missing or does not parse")
	runCmd.Flags().BoolVar(&runNoExpand, "no-expand", false, "Do not expand $VAR references in values")
	runCmd.Flags().BoolVar(&runRedact, "redact", false, "Redact secret values in command output with [REDACTED:KEY]")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Restart the command when an env file changes")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	path, err := targetFile()
	if err != nil {
		return err
	}
	files := append([]string{path}, runWith...)

	values, err := loadRunEnv(files)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := &loader.Command{
		Name:   args[0],
		Args:   args[1:],
		Stdout: stdout(cmd),
		Stderr: stderr(cmd),
	}
	setRunEnv(command, values)

	if runWatch {
		return runWatched(ctx, cmd, command, files)
	}

	code, err := loader.Run(ctx, command)
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func loadRunEnv(files []string) (map[string]string, error) {
	values, err := loader.Load(files, true, runStrict)
	if err != nil {
		return nil, err
	}
	if err := loader.MergeOverlay(values, runEnv, true); err != nil {
		return nil, err
	}
	if !runNoExpand {
		values = loader.Expand(values, nil)
	}
	logging.L().Debug("environment loaded", "files", len(files), "keys", len(values))
	return values, nil
}

func setRunEnv(c *loader.Command, values map[string]string) {
	c.Env = loader.Environ(os.Environ(), values, runOverride)
	c.Secrets = nil
	if runRedact {
		c.Secrets = loader.Secrets(values)
	}
}

func runWatched(ctx context.Context, cmd *cobra.Command, command *loader.Command, files []string) error {
	fw, err := watch.NewFileWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		if err := fw.Add(abs); err != nil {
			logging.L().Warn("could not watch file", "file", f, "err", err)
		}
	}
	changes := fw.Start()

	proc := &loader.Process{Command: command}
	if err := proc.Start(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			if err := proc.Stop(); err != nil {
				logging.L().Warn("stop command", "err", err)
			}
			return &exitError{code: 130}

		case err := <-fw.Errors():
			logging.L().Warn("watcher error", "err", err)

		case <-changes:
			values, err := loadRunEnv(files)
			if err != nil {
				fmt.Fprintf(stderr(cmd), "%s reload failed, keeping the running command: %v\n", tui.Error("✗"), err)
				continue
			}
			fmt.Fprintf(stderr(cmd), "%s env changed, restarting %s\n", tui.Warning("⚡"), command.Name)
			if err := proc.Stop(); err != nil {
				logging.L().Warn("stop command", "err", err)
			}
			setRunEnv(command, values)
			if err := proc.Start(); err != nil {
				return err
			}

		case <-proc.Done():
			code, err := proc.Wait()
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		}
	}
}
