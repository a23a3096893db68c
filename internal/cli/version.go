package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the deployed revision",
	Long:  `Display the commit currently checked out on the deployment target.`,
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	c := initVCSContext()
	defer c.Close()

	commit, err := c.Adapter.Version(context.Background())
	if err != nil {
		exitError("%v", err)
	}

	yellow := color.New(color.FgYellow)
	yellow.Printf("%s", commit.Hash)
	if commit.Branch != "" {
		color.New(color.FgCyan).Printf(" (%s)", commit.Branch)
	}
	fmt.Printf(" %s\n", commit.Author)
	fmt.Printf("    %s\n", commit.Message)
}
