package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okarlsson/sledge/internal/models"
)

var planCmd = &cobra.Command{
	Use:   "plan [revision]",
	Short: "Show what a deployment would do",
	Long: `Compute the update from the deployed revision to the target without
touching the checkout. The target may be a branch, a tag or a full
commit hash; with no argument the current branch's remote tip is used.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	var revision string
	if len(args) > 0 {
		revision = args[0]
	}

	plan, err := c.Adapter.DeploymentList(context.Background(), revision)
	if err != nil {
		exitError("%v", err)
	}

	printPlan(plan)

	if _, err := c.History.Record(c.Config.VCS, c.Config.CodeDir, revision, plan, false); err != nil {
		exitError("failed to record plan: %v", err)
	}
}

func printPlan(plan *models.DeploymentPlan) {
	if plan.IsNoOp() {
		color.Yellow("%s", plan.Message)
		return
	}

	fmt.Printf("Revset: %s\n", plan.Revset)
	if plan.Direction == models.DirectionBackward {
		color.Red("Rolling back %d commit(s):", len(plan.Entries))
	} else {
		color.Green("Deploying %d commit(s):", len(plan.Entries))
	}
	for _, line := range plan.Lines() {
		fmt.Printf("  %s\n", line)
	}
}
