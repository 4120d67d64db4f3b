package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/mask"
	"github.com/xmazu/envedit/internal/tui"
	"github.com/xmazu/envedit/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes to the .env file as they happen",
	Long: `Watch the .env file and print which keys were added (+), removed (-) or
changed (~) every time it is saved. Values that look like secrets are masked
unless --reveal is given. Stop with Ctrl+C.

Examples:
  envedit watch
  envedit watch -f .env.local --json`,
	Args: cobra.NoArgs,
	RunE: runWatchCmd,
}

var (
	watchJSON     bool
	watchReveal   bool
	watchDebounce time.Duration
)

func init() {
	watchCmd.Flags().BoolVar(&watchJSON, "json", false, "Print each change as a JSON line")
	watchCmd.Flags().BoolVar(&watchReveal, "reveal", false, "Show secret values unmasked")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Wait this long for a burst of writes to settle")
	rootCmd.AddCommand(watchCmd)
}

type watchEvent struct {
	Time    string            `json:"ts"`
	Added   map[string]string `json:"added,omitempty"`
	Removed map[string]string `json:"removed,omitempty"`
	Changed map[string]change `json:"changed,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type change struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	path, err := targetFile()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(stderr(cmd), "%s watching %s\n", tui.Muted("…"), path)
	d := mask.NewDetector()
	return watch.EnvWith(ctx, path, watchDebounce, func(c watch.Change) {
		printChange(cmd, watchEventFrom(c, d))
	})
}

// watchEventFrom turns a reload result into added/removed/changed maps,
// masked unless --reveal is set.
func watchEventFrom(c watch.Change, d *mask.Detector) watchEvent {
	ev := watchEvent{Time: time.Now().UTC().Format(time.RFC3339)}
	if c.Err != nil {
		ev.Error = c.Err.Error()
		return ev
	}
	diff := c.Diff
	if !watchReveal {
		diff = maskDiff(diff, d)
	}
	ev.Added = diff.ExtraInCurrent
	ev.Removed = diff.MissingInCurrent
	if len(diff.Changed) > 0 {
		ev.Changed = make(map[string]change, len(diff.Changed))
		for k, ch := range diff.Changed {
			ev.Changed[k] = change{Old: ch.Other, New: ch.Current}
		}
	}
	return ev
}

func printChange(cmd *cobra.Command, ev watchEvent) {
	out := stdout(cmd)
	if watchJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(ev)
		return
	}
	if ev.Error != "" {
		fmt.Fprintf(stderr(cmd), "%s %s\n", tui.Error("✗"), ev.Error)
		return
	}
	fmt.Fprintln(out, tui.Muted(ev.Time))
	printDiff(out, &envfile.DiffResult{
		ExtraInCurrent:   ev.Added,
		MissingInCurrent: ev.Removed,
		Changed:          changesAsDiff(ev.Changed),
	})
}

func changesAsDiff(changes map[string]change) map[string]envfile.Change {
	out := make(map[string]envfile.Change, len(changes))
	for k, c := range changes {
		out[k] = envfile.Change{Current: c.Old, Other: c.New}
	}
	return out
}
