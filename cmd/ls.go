package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/envfile"
	"github.com/xmazu/envedit/internal/tui"
	"github.com/xmazu/envedit/internal/workspace"
)

var lsCmd = &cobra.Command{
	Use:   "ls [directory]",
	Short: "List .env files in a directory tree",
	Long: `Discover and list .env and .env.* files under the given directory, or
under the workspace root when no directory is given. Templates such as
.env.example are left out. The include and exclude globs from the config
narrow the search. Each file is shown with its number of keys.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

var lsInclude []string
var lsExclude []string

func init() {
	lsCmd.Flags().StringSliceVar(&lsInclude, "include", nil, "Only list files matching these globs (relative to the root)")
	lsCmd.Flags().StringSliceVar(&lsExclude, "exclude", nil, "Skip files and directories matching these globs")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	explicitDir := len(args) == 1
	root := cfg.Root
	if explicitDir {
		root = args[0]
	}
	if root == "" {
		root = "."
	}

	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	opts := workspace.ListOptions{
		Include: append(append([]string{}, cfg.Include...), lsInclude...),
		Exclude: append(append([]string{}, cfg.Exclude...), lsExclude...),
	}
	files, err := workspace.ListEnvFiles(root, opts)
	if err != nil {
		return fmt.Errorf("list .env files: %w", err)
	}

	var paths []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f)
		paths = append(paths, rel)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		fmt.Fprintln(stderr(cmd), "No .env files found.")
		return nil
	}

	out := stdout(cmd)
	if !explicitDir {
		marker := workspace.FindMarker(root)
		fmt.Fprintf(out, "%s%s (%s)\n\n", tui.Label("Workspace: "), root, workspace.FormatMarkerForDisplay(marker))
	}

	tree := workspace.BuildEnvTree(paths)
	workspace.SortEnvTree(tree)
	workspace.PrintEnvTree(out, tree, func(n *workspace.EnvTreeNode) string {
		f, err := envfile.Load(filepath.Join(root, n.File))
		if err != nil {
			return n.Name + " " + tui.Error("(unreadable)")
		}
		return fmt.Sprintf("%s %s", n.Name, tui.Muted(fmt.Sprintf("(%d keys)", len(f.Keys()))))
	})
	return nil
}
