package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:   "clone [branch]",
	Short: "Perform the first-time checkout",
	Long: `Clone the configured repository into the code directory on the target
host. The directory must be empty or absent. With no argument the
branch from the config file (or the VCS default) is used.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runClone,
}

func runClone(cmd *cobra.Command, args []string) {
	c := initVCSContext()
	defer c.Close()

	branch := c.Config.Branch
	if len(args) > 0 {
		branch = args[0]
	}

	if err := c.Adapter.Clone(context.Background(), branch); err != nil {
		exitError("%v", err)
	}

	color.Green("Cloned %s into %s", c.Config.RepoURL, c.Config.CodeDir)
}
