package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bopkit.dev/pkg/bopkit/internal/domain"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	var operation, mode string

	cmd := &cobra.Command{
		Use:   "watch <scene>",
		Short: "Re-run a scene whenever it changes",
		Long: `Run the scene once, then again after every save until interrupted.
Bursts of writes are collapsed into one run after --debounce of quiet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, fragmentsMode, err := parseOperationOverride(operation, mode)
			if err != nil {
				return err
			}

			output, err := outputArgs()
			if err != nil {
				return err
			}

			return workflow.Watch(cmd.Context(), domain.WatchArgs{
				Run: domain.RunArgs{
					Scene:     m.Path(args[0]),
					Operation: op,
					Mode:      fragmentsMode,
					Output:    output,
				},
				Debounce: viper.GetDuration(watchDebounceKey),
			})
		},
	}

	cmd.Flags().Duration(debounceFlagName, defaultWatchDebounce, "quiet period before re-running")
	bindFlagToConfig(cmd.Flags().Lookup(debounceFlagName), watchDebounceKey)
	configureOverrideFlags(cmd, &operation, &mode)

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
