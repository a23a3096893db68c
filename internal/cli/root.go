// Package cli implements the command-line interface for sledge.
package cli

import (
	"fmt"
	"os"

	"github.com/okarlsson/sledge/internal/config"
	"github.com/okarlsson/sledge/internal/history"
	"github.com/okarlsson/sledge/internal/runner"
	"github.com/okarlsson/sledge/internal/vcs"
	"github.com/spf13/cobra"
)

var configPath string

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config   *config.Config
	Runner   runner.Runner
	Transfer runner.FileTransfer
	Adapter  vcs.Adapter
	History  *history.Store
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.History != nil {
		c.History.Close()
	}
}

// initContext initializes config and the command channel to the target host
func initContext() *cmdContext {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitError("%v", err)
	}

	var base runner.Runner
	var transfer runner.FileTransfer
	if cfg.Local {
		local := runner.NewLocalRunner()
		base, transfer = local, local
	} else {
		ssh := runner.NewSSHRunner(cfg.Host, cfg.User)
		base, transfer = ssh, ssh
	}

	return &cmdContext{
		Config:   cfg,
		Runner:   runner.NewRetry(base, runner.DefaultRetryConfig()),
		Transfer: transfer,
	}
}

// initVCSContext initializes config, runner, and the checkout adapter
func initVCSContext() *cmdContext {
	ctx := initContext()

	adapter, err := vcs.New(ctx.Config.VCS, vcs.Options{
		Runner:  ctx.Runner,
		CodeDir: ctx.Config.CodeDir,
		RepoURL: ctx.Config.RepoURL,
		Chooser: promptChooser{},
	})
	if err != nil {
		exitError("%v", err)
	}
	ctx.Adapter = adapter

	return ctx
}

// initFullContext initializes config, runner, adapter, and the journal
func initFullContext() *cmdContext {
	ctx := initVCSContext()

	st, err := openHistory(ctx)
	if err != nil {
		exitError("%v", err)
	}
	ctx.History = st

	return ctx
}

// openHistory opens and initializes the deployment journal.
func openHistory(c *cmdContext) (*history.Store, error) {
	st, err := history.New(c.Config.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := st.Initialize(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}
	return st, nil
}

var rootCmd = &cobra.Command{
	Use:   "sledge",
	Short: "Deployment driver for git and mercurial checkouts",
	Long: `Sledge drives deployments of a git or mercurial checkout on a remote
host. It plans updates between the deployed revision and a target,
applies them, and keeps a local journal of every run.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to sledge.toml (default: search upward)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(changedCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(historyCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
