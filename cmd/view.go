package cmd

import (
	"github.com/spf13/cobra"

	"bopkit.dev/pkg/bopkit/internal/domain"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <report-file>...",
		Short: "View previously saved reports",
		Long: `View reports written by --save. The format is taken from the file
extension (.yaml, .json or .cbor), and reports from several files are shown
as one summary table.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]m.Path, len(args))
			for i, arg := range args {
				paths[i] = m.Path(arg)
			}

			return workflow.View(cmd.Context(), domain.ViewArgs{Reports: paths})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
