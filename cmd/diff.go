package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/mask"
	"github.com/xmazu/envedit/internal/tui"
)

var diffCmd = &cobra.Command{
	Use:   "diff OTHER",
	Short: "Compare the .env file with another one",
	Long: `Compare keys and values of the .env file with OTHER, typically
.env.example. Keys only in OTHER are listed as missing (-), keys only in
the current file as extra (+), and keys with different values as changed (~).
Exits with an error when --exit-code is set and the files differ.

Examples:
  envedit diff .env.example
  envedit diff .env.production --mask
  envedit diff .env.example --json`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

var (
	diffJSON     bool
	diffMask     bool
	diffExitCode bool
)

func init() {
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Print as JSON")
	diffCmd.Flags().BoolVar(&diffMask, "mask", false, "Mask values that look like secrets")
	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "Fail when the files differ")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	path, err := targetFile()
	if err != nil {
		return err
	}
	f, err := envfile.Load(path)
	if err != nil {
		return err
	}
	res, err := f.Diff(args[0])
	if err != nil {
		return err
	}
	if diffMask {
		res = maskDiff(res, mask.NewDetector())
	}

	out := stdout(cmd)
	if diffJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if res.Empty() {
		fmt.Fprintln(stderr(cmd), "No differences.")
	} else {
		printDiff(out, res)
	}

	if diffExitCode && !res.Empty() {
		return fmt.Errorf("%s and %s differ in %d key(s)", path, args[0], len(res.Keys()))
	}
	return nil
}

func printDiff(w io.Writer, res *envfile.DiffResult) {
	for _, k := range res.Keys() {
		if v, ok := res.MissingInCurrent[k]; ok {
			fmt.Fprintln(w, tui.Removed(fmt.Sprintf("- %s=%s", k, v)))
			continue
		}
		if v, ok := res.ExtraInCurrent[k]; ok {
			fmt.Fprintln(w, tui.Added(fmt.Sprintf("+ %s=%s", k, v)))
			continue
		}
		c := res.Changed[k]
		fmt.Fprintln(w, tui.Changed(fmt.Sprintf("~ %s: %s -> %s", k, c.Current, c.Other)))
	}
}

func maskDiff(res *envfile.DiffResult, d *mask.Detector) *envfile.DiffResult {
	out := &envfile.DiffResult{
		MissingInCurrent: d.Map(res.MissingInCurrent),
		ExtraInCurrent:   d.Map(res.ExtraInCurrent),
		Changed:          make(map[string]envfile.Change, len(res.Changed)),
	}
	for k, c := range res.Changed {
		out.Changed[k] = envfile.Change{Current: d.Value(k, c.Current), Other: d.Value(k, c.Other)}
	}
	return out
}
