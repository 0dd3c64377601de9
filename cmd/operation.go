package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bopkit.dev/pkg/bopkit/internal/domain"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

type operationCmdSpec struct {
	op    m.Operation
	short string
	long  string
}

var operationCmdSpecs = []operationCmdSpec{
	{
		op:    m.OperationFuse,
		short: "Fuse all shapes of a scene",
		long: `Fuse every shape of the scene into one result, merging pieces that
share boundary elements.`,
	},
	{
		op:    m.OperationConnect,
		short: "Connect shapes, dropping dangling slivers",
		long: `Fuse the shapes of the scene like fuse, but discard the small pieces that
stick out of an overlap region and keep only the connected result.`,
	},
	{
		op:    m.OperationEmbed,
		short: "Embed the tool into the base",
		long: `Cut the base by the tool, keep the largest remainder and fuse it with
the tool. Base and tool default to the first and second shape.`,
	},
	{
		op:    m.OperationCutout,
		short: "Cut the tool's footprint out of the base",
		long: `Cut the base by the tool and keep the largest remainder. Base and tool
default to the first and second shape.`,
	},
	{
		op:    m.OperationFragments,
		short: "Split shapes into their general fuse fragments",
		long: `Return the fragments of the general fuse of all shapes. --mode split also
splits wires, shells and compsolids at intersections; --mode compsolid
assembles solid fragments into compsolids.`,
	},
}

// newOperationCmd builds the command running op on one scene.
func newOperationCmd(spec operationCmdSpec) *cobra.Command {
	var base, tool, mode string

	cmd := &cobra.Command{
		Use:   string(spec.op) + " <scene>",
		Short: spec.short,
		Long:  spec.long + "\n\n" + sceneHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fragmentsMode, err := m.ParseFragmentsMode(mode)
			if err != nil {
				return err
			}

			output, err := outputArgs()
			if err != nil {
				return err
			}

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Scene:     m.Path(args[0]),
				Operation: spec.op,
				Mode:      fragmentsMode,
				Base:      base,
				Tool:      tool,
				Output:    output,
			})
		},
	}

	switch spec.op {
	case m.OperationEmbed, m.OperationCutout:
		cmd.Flags().StringVar(&base, "base", "", "name of the base shape")
		cmd.Flags().StringVar(&tool, "tool", "", "name of the tool shape")
	case m.OperationFragments:
		cmd.Flags().StringVarP(&mode, "mode", "m", string(m.FragmentsStandard),
			fmt.Sprintf("fragments mode: %s, %s or %s", m.FragmentsStandard, m.FragmentsSplit, m.FragmentsCompSolid))
	}

	return cmd
}

func init() {
	for _, spec := range operationCmdSpecs {
		rootCmd.AddCommand(newOperationCmd(spec))
	}
}
