package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/mask"
	"github.com/xmazu/envedit/internal/tui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List environment variables with masked values",
	Long: `List the variables of the .env file in file order. Values that look like
secrets are masked; --reveal prints them as they are. Values in a known
credential format (GitHub, Stripe, AWS, ... tokens) are labeled.

Examples:
  envedit list
  envedit list --json
  envedit list -f .env.local --reveal`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listReveal bool
var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listReveal, "reveal", false, "Show secret values unmasked")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(listCmd)
}

type listEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Line  int    `json:"line"`
	Kind  string `json:"kind,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	path, err := targetFile()
	if err != nil {
		return err
	}
	f, err := envfile.Load(path)
	if err != nil {
		return err
	}

	d := mask.NewDetector()
	var entries []listEntry
	width := 0
	for _, line := range f.Entries() {
		value := line.Value
		if !listReveal {
			value = d.Value(line.Key, value)
		}
		entries = append(entries, listEntry{Key: line.Key, Value: value, Line: line.Num, Kind: mask.Kind(line.Value)})
		width = max(width, len(line.Key))
	}

	out := stdout(cmd)
	if listJSON {
		output := map[string]interface{}{
			"path":    path,
			"count":   len(entries),
			"entries": entries,
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(output)
	}

	if len(entries) == 0 {
		fmt.Fprintln(stderr(cmd), "No variables found.")
		return nil
	}
	for _, e := range entries {
		if e.Kind != "" {
			fmt.Fprintf(out, "%s  %s  %s\n", tui.Pad(e.Key, width), e.Value, tui.Muted("("+e.Kind+")"))
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", tui.Pad(e.Key, width), e.Value)
	}
	return nil
}
