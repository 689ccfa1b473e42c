package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joonhok/cafeloop/internal/task"
	"github.com/joonhok/cafeloop/internal/util"
)

var createName string

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "Run name (defaults to the source file name)")
}

var createCmd = &cobra.Command{
	Use:   "create <tasks.yaml>",
	Short: "Create a run from a task source file",
	Long:  `Build a new run from a YAML list of (article, comment) pairs. Task IDs follow source order, so the same source always maps onto the same run state.`,
	Args:  cobra.ExactArgs(1),
	RunE:  createRun,
}

func createRun(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]

	entries, err := task.ParseSource(sourcePath)
	if err != nil {
		return err
	}

	base := createName
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	}
	base = util.ToKebabCase(base)
	if base == "" {
		return fmt.Errorf("could not derive a run name from %q; use --name", sourcePath)
	}

	name, err := task.ResolveRunName(base)
	if err != nil {
		return err
	}

	r, err := task.NewRun(name, sourcePath, entries)
	if err != nil {
		return err
	}
	if err := task.CreateRunFolder(r); err != nil {
		return err
	}

	fmt.Printf("Created run %s (%s) with %d task(s).\n", r.Name, r.ID, len(r.Tasks))
	fmt.Printf("Start it with: cafeloop run %s\n", r.Name)
	return nil
}
