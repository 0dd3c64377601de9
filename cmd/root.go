// Package cmd provides the root command and CLI setup for bopkit.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"bopkit.dev/pkg/bopkit/internal/adapter"
	"bopkit.dev/pkg/bopkit/internal/adapter/lattice"
	"bopkit.dev/pkg/bopkit/internal/controller"
	"bopkit.dev/pkg/bopkit/internal/domain"
)

var sceneStore adapter.SceneStore
var reportStore adapter.ReportStore
var sceneWatcher adapter.SceneWatcher
var kernel adapter.ShapeKernel
var operations domain.Operations
var workflow domain.Workflow
var ui controller.UI

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	sceneStore = adapter.NewLocalSceneStore()
	sceneWatcher = adapter.NewFSSceneWatcher()
	kernel = lattice.NewKernel(lattice.WithMaxCells(viper.GetInt(engineMaxCellsKey)))
	operations = domain.NewOperations(kernel, domain.WithTolerance(viper.GetFloat64(engineToleranceKey)))

	store, err := adapter.NewLocalReportStore()
	cobra.CheckErr(err)

	reportStore = store
	workflow = domain.NewWorkflow(
		sceneStore,
		reportStore,
		sceneWatcher,
		kernel,
		ui,
		operations,
	)
}

const sceneHelp = `A scene is a YAML file listing integer-lattice shapes (vertices, edges,
faces, solids and their wires, shells, compsolids and compounds) together
with the operation to run on them.`

const rootLongDescription = `bopkit post-processes general fuse results: it builds the
correspondence between input shapes and the pieces they were split into, and
uses it to fuse, connect, embed, cut out and fragment shapes.

` + sceneHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "bopkit",
		Short:         "General fuse post-processing toolkit",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP(outputFlagName, "o", defaultReportsDir, "output directory for saved reports")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputFlagName)

	flags.String(formatFlagName, string(defaultReportFormat), "report format: yaml, json or cbor")
	bindFlagToConfig(flags.Lookup(formatFlagName), reportFormatKey)

	flags.Bool(saveFlagName, defaultReportSave, "save reports to the output directory")
	bindFlagToConfig(flags.Lookup(saveFlagName), reportSaveKey)

	flags.String(metricsFlagName, "", "write Prometheus metrics to this file after each run")
	bindFlagToConfig(flags.Lookup(metricsFlagName), metricsFileKey)

	flags.BoolP(verboseFlagName, "v", defaultLogVerbose, "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.String(logFileFlagName, defaultLogFilename, "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
