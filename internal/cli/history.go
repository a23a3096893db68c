package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past deployment runs",
	Long:  `Display the local deployment journal, newest first.`,
	Args:  cobra.NoArgs,
	Run:   runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "n", "n", 0, "Limit the number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	st, err := openHistory(c)
	if err != nil {
		exitError("%v", err)
	}
	defer st.Close()

	entries, err := st.List(historyLimit)
	if err != nil {
		exitError("failed to read journal: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No deployments recorded")
		return
	}

	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	for _, e := range entries {
		yellow.Printf("%s ", e.ID)
		fmt.Printf("%s ", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		if e.Applied {
			color.New(color.FgGreen).Print("applied ")
		} else {
			fmt.Print("planned ")
		}
		cyan.Printf("%s ", e.VCS)
		if e.Revision != "" {
			fmt.Printf("%s ", e.Revision)
		}
		if e.Plan.IsNoOp() {
			fmt.Println(e.Plan.Message)
			continue
		}
		fmt.Printf("%s (%d commits, %s)\n", e.Plan.Revset, len(e.Plan.Entries), e.Plan.Direction)
	}
}
