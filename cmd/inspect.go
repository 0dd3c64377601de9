package cmd

import (
	"github.com/spf13/cobra"

	"bopkit.dev/pkg/bopkit/internal/domain"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

func newInspectCmd() *cobra.Command {
	var split bool

	cmd := &cobra.Command{
		Use:   "inspect <scene>",
		Short: "Show which pieces came from which input",
		Long: `Compute the general fuse of the scene's shapes and print the correspondence
between inputs and pieces. --split first splits wires, shells and compsolids
at their intersections.

` + sceneHelp,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Inspect(cmd.Context(), domain.InspectArgs{
				Scene: m.Path(args[0]),
				Split: split,
			})
		},
	}

	cmd.Flags().BoolVar(&split, "split", false, "split composite pieces before printing")

	return cmd
}

// inspectCmd represents the inspect command.
var inspectCmd = newInspectCmd()

func init() {
	rootCmd.AddCommand(inspectCmd)
}
