package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joonhok/cafeloop/internal/report"
	"github.com/joonhok/cafeloop/internal/task"
)

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show run state",
	Long:  `Without arguments, list all runs with their counts. With a run name, show the per-task status table.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  showStatus,
}

func showStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		runDir, err := task.FindRunFolder(args[0])
		if err != nil {
			return err
		}
		r, err := task.LoadRun(runDir)
		if err != nil {
			return err
		}
		fmt.Print(report.Summary(r))
		fmt.Print(report.TaskTable(r))
		return nil
	}

	runs, err := task.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs yet. Create one with 'cafeloop create <tasks.yaml>'.")
		return nil
	}
	for _, r := range runs {
		succeeded, fatal, remaining := r.Counts()
		fmt.Printf("%s-%s  %-24s succeeded=%d failed=%d remaining=%d\n",
			r.ID, r.Name, r.Status, succeeded, fatal, remaining)
	}
	return nil
}
