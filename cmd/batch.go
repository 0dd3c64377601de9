package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bopkit.dev/pkg/bopkit/internal/domain"
)

const batchLongDescription = `Run every scene matching the given patterns, each as an independent
pipeline. Patterns support "**" for recursive matching, e.g. scenes/**/*.yaml.
A failing scene is reported in the summary and does not stop the others.`

// batchCmd represents the batch command.
var batchCmd = newBatchCmd()

func newBatchCmd() *cobra.Command {
	var operation, mode, spillDir string

	cmd := &cobra.Command{
		Use:   "batch <pattern>...",
		Short: "Run many scenes in parallel",
		Long:  batchLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, fragmentsMode, err := parseOperationOverride(operation, mode)
			if err != nil {
				return err
			}

			output, err := outputArgs()
			if err != nil {
				return err
			}

			return workflow.Batch(cmd.Context(), domain.BatchArgs{
				Patterns:  args,
				Operation: op,
				Mode:      fragmentsMode,
				Threads:   viper.GetInt(runParallelConfigKey),
				SpillDir:  spillDir,
				Output:    output,
			})
		},
	}

	cmd.Flags().IntP(runParallelFlagName, "p", defaultRunParallel, "number of scenes to run in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)
	cmd.Flags().StringVar(&spillDir, "spill-dir", "", "directory for intermediate report files (default: system temp)")
	configureOverrideFlags(cmd, &operation, &mode)

	return cmd
}

func init() {
	rootCmd.AddCommand(batchCmd)
}
