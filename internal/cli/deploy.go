package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [revision]",
	Short: "Update the checkout to a revision",
	Long: `Converge the deployment checkout to the target revision. The plan is
shown before the checkout moves; with no argument the current branch is
advanced to its remote tip.

Examples:
  sledge deploy              # advance the deployed branch to its tip
  sledge deploy stable       # deploy the stable branch
  sledge deploy v2.1.0       # deploy a tag
  sledge deploy 1a2b3c...    # deploy an exact commit (full hash)`,
	Args: cobra.MaximumNArgs(1),
	Run:  runDeploy,
}

var deployRestart []string

func init() {
	deployCmd.Flags().StringSliceVar(&deployRestart, "restart", nil, "Services to restart after the update")
}

func runDeploy(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initFullContext()
	defer c.Close()

	var revision string
	if len(args) > 0 {
		revision = args[0]
	}

	plan, err := c.Adapter.DeploymentList(bgCtx, revision)
	if err != nil {
		exitError("%v", err)
	}

	printPlan(plan)
	if plan.IsNoOp() {
		return
	}

	if err := c.Adapter.Update(bgCtx, revision); err != nil {
		exitError("%v", err)
	}

	id, err := c.History.Record(c.Config.VCS, c.Config.CodeDir, revision, plan, true)
	if err != nil {
		exitError("failed to record deployment: %v", err)
	}

	commit, err := c.Adapter.Version(bgCtx)
	if err != nil {
		exitError("%v", err)
	}
	color.Green("Deployed %s", commit.ShortHash())
	fmt.Printf("Run id: %s\n", id)

	if len(deployRestart) > 0 {
		mgr := serviceManager(c)
		mgr.Control(bgCtx, deployRestart, "restart")
	}
}
