package cmd

import (
	"github.com/spf13/cobra"

	"bopkit.dev/pkg/bopkit/internal/domain"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

const runLongDescription = `Run the operation named in the scene file (fuse when it names none).
--operation overrides it.

` + sceneHelp

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	var operation, mode string

	cmd := &cobra.Command{
		Use:   "run <scene>",
		Short: "Run the scene's own operation",
		Long:  runLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, fragmentsMode, err := parseOperationOverride(operation, mode)
			if err != nil {
				return err
			}

			output, err := outputArgs()
			if err != nil {
				return err
			}

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Scene:     m.Path(args[0]),
				Operation: op,
				Mode:      fragmentsMode,
				Output:    output,
			})
		},
	}

	configureOverrideFlags(cmd, &operation, &mode)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureOverrideFlags(cmd *cobra.Command, operation, mode *string) {
	cmd.Flags().StringVar(operation, "operation", "", "operation to run instead of the scene's")
	cmd.Flags().StringVarP(mode, "mode", "m", "", "fragments mode instead of the scene's")
}

// parseOperationOverride validates optional --operation and --mode values.
// Empty values stay empty so the scene's own settings apply.
func parseOperationOverride(operation, mode string) (m.Operation, m.FragmentsMode, error) {
	var (
		op            m.Operation
		fragmentsMode m.FragmentsMode
		err           error
	)

	if operation != "" {
		if op, err = m.ParseOperation(operation); err != nil {
			return "", "", err
		}
	}

	if mode != "" {
		if fragmentsMode, err = m.ParseFragmentsMode(mode); err != nil {
			return "", "", err
		}
	}

	return op, fragmentsMode, nil
}
