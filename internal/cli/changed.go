package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var changedCmd = &cobra.Command{
	Use:   "changed <revset> [pattern...]",
	Short: "List files changed across a revset",
	Long: `List the files changed between the endpoints of a revset, one
"<STATUS> <path>" line per file. Any further arguments are regular
expressions; when given, only lines matching at least one are kept.

Examples:
  sledge changed abc123..def456
  sledge changed abc123..def456 'migrations/' '\.sql$'`,
	Args: cobra.MinimumNArgs(1),
	Run:  runChanged,
}

func runChanged(cmd *cobra.Command, args []string) {
	c := initVCSContext()
	defer c.Close()

	lines, err := c.Adapter.ChangedFiles(context.Background(), args[0], args[1:])
	if err != nil {
		exitError("%v", err)
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
