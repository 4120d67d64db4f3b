package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xmazu/envedit/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server (stdio) for AI/IDE integration",
	Long: `Run the Model Context Protocol server on stdio. Exposes tools to list keys,
read masked values, set and remove keys, diff, merge and preview env files,
check them against the project schema and read the journal. Edits keep
comments and formatting and are journaled like CLI edits. Secret values are
never returned.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	file := flagFile
	if file == "" {
		file = cfg.File
	}
	return mcpserver.Run(cmdContext(cmd), mcpserver.Options{
		Version: rootCmd.Version,
		File:    file,
		Atomic:  cfg.AtomicEnabled(),
		Journal: cfg.JournalEnabled(),
		Schema:  cfg.Schema,
	})
}
