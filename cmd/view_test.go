package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bopkit.dev/pkg/bopkit/internal/domain"
	m "bopkit.dev/pkg/bopkit/internal/model"
)

func TestViewCmd(t *testing.T) {
	t.Run("passes every report file", func(t *testing.T) {
		mockWorkflow := withMockWorkflow(t)

		mockWorkflow.On("View", mock.Anything, domain.ViewArgs{
			Reports: []m.Path{".bopkit-reports/boxes.yaml", ".bopkit-reports/batch.cbor"},
		}).Return(nil).Once()

		_, err := executeCmd(t, newViewCmd(), "view", ".bopkit-reports/boxes.yaml", ".bopkit-reports/batch.cbor")
		require.NoError(t, err)
	})

	t.Run("propagates workflow error", func(t *testing.T) {
		mockWorkflow := withMockWorkflow(t)

		failure := errors.New("unreadable report")
		mockWorkflow.On("View", mock.Anything, mock.Anything).Return(failure).Once()

		_, err := executeCmd(t, newViewCmd(), "view", "reports.json")
		require.ErrorIs(t, err, failure)
	})

	t.Run("needs a report file", func(t *testing.T) {
		withMockWorkflow(t)

		_, err := executeCmd(t, newViewCmd(), "view")
		require.Error(t, err)
	})
}
