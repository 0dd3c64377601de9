package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

func newTestSimpleUI() (*SimpleUI, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)

	return NewSimpleUI(cmd), out
}

func sampleReport() m.Report {
	return m.Report{
		ID:             "0b7e9c1a-44a2-4c71-9d3e-5d1f3b9b7a10",
		Scene:          "scenes/boxes.yaml",
		Operation:      m.OperationFragments,
		Mode:           m.FragmentsSplit,
		Status:         m.StatusOK,
		Inputs:         2,
		ResultType:     "Compound",
		ResultChildren: 3,
		ResultMeasure:  15,
		Duration:       1500 * time.Microsecond,
	}
}

func sampleSummary() m.IndexSummary {
	return m.IndexSummary{
		Scene: "scenes/boxes.yaml",
		Sources: []m.SourceSummary{
			{Index: 0, Name: "base", Type: m.ShapeSolid, Pieces: []int{0, 1}},
			{Index: 1, Name: "tool", Type: m.ShapeSolid, Pieces: []int{1, 2}},
		},
		Fragments: []m.FragmentReport{
			{Index: 0, Type: m.ShapeSolid, Measure: 7, Sources: []int{0}},
			{Index: 1, Type: m.ShapeSolid, Measure: 1, Sources: []int{0, 1}},
			{Index: 2, Type: m.ShapeSolid, Measure: 7, Sources: []int{1}},
		},
		LargestOverlap: 2,
		Warnings:       []string{"source 2 (Wire): container input without pieces"},
	}
}

func TestSimpleUI_DisplayReport(t *testing.T) {
	ui, out := newTestSimpleUI()

	require.NoError(t, ui.DisplayReport(context.Background(), sampleReport()))

	text := out.String()
	assert.Contains(t, text, "scenes/boxes.yaml")
	assert.Contains(t, text, "fragments (split)")
	assert.Contains(t, text, "Compound")
	assert.Contains(t, text, "1.5ms")
	assert.Contains(t, text, "0b7e9c1a")
	assert.NotContains(t, text, "44a2")
}

func TestSimpleUI_DisplayReport_Failed(t *testing.T) {
	ui, out := newTestSimpleUI()

	report := sampleReport()
	report.Status = m.StatusFailed
	report.Error = "mixed container and leaf inputs"

	require.NoError(t, ui.DisplayReport(context.Background(), report))
	assert.Contains(t, out.String(), "mixed container and leaf inputs")
	assert.NotContains(t, out.String(), "Compound")
}

func TestSimpleUI_DisplayIndex(t *testing.T) {
	ui, out := newTestSimpleUI()

	require.NoError(t, ui.DisplayIndex(context.Background(), sampleSummary()))

	text := out.String()
	assert.Contains(t, text, "Scene: scenes/boxes.yaml")
	assert.Contains(t, text, "base, tool")
	assert.Contains(t, text, "0, 1")
	assert.Contains(t, text, "warning: source 2 (Wire)")
}

func TestSimpleUI_DisplayBatchSummary(t *testing.T) {
	ui, out := newTestSimpleUI()

	failed := sampleReport()
	failed.Scene = "scenes/broken.yaml"
	failed.Status = m.StatusFailed
	failed.Error = "scene has no shapes"

	require.NoError(t, ui.DisplayBatchSummary(context.Background(), []m.Report{sampleReport(), failed}))

	text := out.String()
	assert.Contains(t, text, "scenes/broken.yaml")
	assert.Contains(t, text, "scene has no shapes")
	assert.Contains(t, text, "2")
	assert.Contains(t, text, "FAILED 1")
}

func TestSimpleUI_DisplayWatchEvent(t *testing.T) {
	ui, out := newTestSimpleUI()

	ui.DisplayWatchEvent(context.Background(), "scene.yaml", nil)
	ui.DisplayWatchEvent(context.Background(), "scene.yaml", errors.New("boom"))

	assert.Equal(t, "Scene scene.yaml changed, re-running\nScene scene.yaml failed: boom\n", out.String())
}

func TestSimpleUI_CanceledContext(t *testing.T) {
	ui, out := newTestSimpleUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, ui.DisplayReport(ctx, sampleReport()), context.Canceled)
	require.ErrorIs(t, ui.DisplayIndex(ctx, sampleSummary()), context.Canceled)
	require.ErrorIs(t, ui.DisplayBatchSummary(ctx, nil), context.Canceled)
	ui.DisplayWatchEvent(ctx, "scene.yaml", nil)

	assert.Empty(t, out.String())
}

func TestNewUI(t *testing.T) {
	cmd := &cobra.Command{}

	_, ok := NewUI(cmd, false).(*SimpleUI)
	assert.True(t, ok)

	_, ok = NewUI(cmd, true).(*TUI)
	assert.True(t, ok)

	assert.False(t, IsTTY(nil))
}
