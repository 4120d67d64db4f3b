package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/mask"
	"github.com/xmazu/envedit/internal/storage"
)

var getCmd = &cobra.Command{
	Use:   "get [KEY]",
	Short: "Print environment variable(s)",
	Long: `Print one or all variables of the .env file.
With KEY, prints the raw value (for scripts: $(envedit get KEY)).
Without KEY, prints all variables as JSON, or in the format given by --format:
json, yaml, toml, shell or eval.
Use --masked to hide values that look like secrets.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGet,
}

var getFormat string
var getMasked bool

func init() {
	getCmd.Flags().StringVar(&getFormat, "format", "", "Output format: json, yaml, toml, shell or eval (default: raw value with KEY, json without)")
	getCmd.Flags().BoolVar(&getMasked, "masked", false, "Mask values that look like secrets")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	path, err := targetFile()
	if err != nil {
		return err
	}
	f, err := envfile.Load(path)
	if err != nil {
		return err
	}

	values := f.ToMap()
	if getMasked {
		values = mask.NewDetector().Map(values)
	}
	out := stdout(cmd)

	if len(args) == 1 {
		key := args[0]
		value, ok := values[key]
		if !ok {
			return fmt.Errorf("key %q not found in %s", key, path)
		}
		switch getFormat {
		case "shell":
			fmt.Fprint(out, shellEscape(key)+"="+shellEscape(value))
		case "eval":
			fmt.Fprint(out, shellEscape(key)+"="+evalQuoted(value))
		case "", "raw":
			fmt.Fprint(out, value)
		default:
			return fmt.Errorf("format %q needs no KEY; use shell, eval or raw", getFormat)
		}
		return nil
	}

	keys := sortedKeys(values)

	switch getFormat {
	case "shell":
		var b strings.Builder
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(shellEscape(k))
			b.WriteString("=")
			b.WriteString(shellEscape(values[k]))
		}
		fmt.Fprint(out, b.String())
		return nil
	case "eval":
		for _, k := range keys {
			fmt.Fprintln(out, shellEscape(k)+"="+evalQuoted(values[k]))
		}
		return nil
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		return enc.Encode(values)
	}

	format, err := storage.ParseFormat(getFormat)
	if err != nil {
		return err
	}
	data, err := storage.EncodeMap(values, format)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func shellEscape(s string) string {
	if strings.ContainsAny(s, " \t\n\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

func evalQuoted(s string) string {
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
