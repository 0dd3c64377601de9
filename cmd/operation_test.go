package cmd

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bopkit.dev/pkg/bopkit/internal/domain"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

func runArgsWith(check func(domain.RunArgs) bool) any {
	return mock.MatchedBy(check)
}

func TestOperationCmds_PassOperation(t *testing.T) {
	for _, spec := range operationCmdSpecs {
		t.Run(string(spec.op), func(t *testing.T) {
			mockWorkflow := withMockWorkflow(t)

			mockWorkflow.On("Run", mock.Anything, runArgsWith(func(args domain.RunArgs) bool {
				return args.Operation == spec.op &&
					args.Scene == m.Path("scene.yaml") &&
					args.Mode == m.FragmentsStandard &&
					args.Output.Reports == m.Path(defaultReportsDir) &&
					args.Output.Format == m.FormatYAML &&
					!args.Output.Save
			})).Return(nil).Once()

			_, err := executeCmd(t, newOperationCmd(spec), string(spec.op), "scene.yaml")
			require.NoError(t, err)
		})
	}
}

func TestOperationCmd_BaseAndTool(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.On("Run", mock.Anything, runArgsWith(func(args domain.RunArgs) bool {
		return args.Operation == m.OperationCutout && args.Base == "plate" && args.Tool == "bolt"
	})).Return(nil).Once()

	_, err := executeCmd(t, newOperationCmd(operationCmdSpecs[3]), "cutout", "scene.yaml", "--base", "plate", "--tool", "bolt")
	require.NoError(t, err)
}

func TestOperationCmd_FragmentsMode(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.On("Run", mock.Anything, runArgsWith(func(args domain.RunArgs) bool {
		return args.Operation == m.OperationFragments && args.Mode == m.FragmentsSplit
	})).Return(nil).Once()

	_, err := executeCmd(t, newOperationCmd(operationCmdSpecs[4]), "fragments", "scene.yaml", "-m", "split")
	require.NoError(t, err)
}

func TestOperationCmd_InvalidModeIsRejected(t *testing.T) {
	withMockWorkflow(t)

	_, err := executeCmd(t, newOperationCmd(operationCmdSpecs[4]), "fragments", "scene.yaml", "--mode", "merged")
	require.Error(t, err)
}

func TestOperationCmd_OutputFlags(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	mockWorkflow.On("Run", mock.Anything, runArgsWith(func(args domain.RunArgs) bool {
		return args.Output.Save &&
			args.Output.Format == m.FormatCBOR &&
			args.Output.Reports == m.Path("./out") &&
			args.Output.MetricsFile == "metrics.prom"
	})).Return(nil).Once()

	_, err := executeCmd(t, newOperationCmd(operationCmdSpecs[0]), "fuse", "scene.yaml",
		"--save", "--format", "cbor", "-o", "./out", "--metrics-file", "metrics.prom")
	require.NoError(t, err)
}

func TestOperationCmd_InvalidFormatIsRejected(t *testing.T) {
	withMockWorkflow(t)

	_, err := executeCmd(t, newOperationCmd(operationCmdSpecs[0]), "fuse", "scene.yaml", "--format", "xml")
	require.Error(t, err)
}

func TestOperationCmd_RequiresOneScene(t *testing.T) {
	withMockWorkflow(t)

	_, err := executeCmd(t, newOperationCmd(operationCmdSpecs[0]), "fuse")
	require.Error(t, err)

	_, err = executeCmd(t, newOperationCmd(operationCmdSpecs[0]), "fuse", "a.yaml", "b.yaml")
	require.Error(t, err)
}
