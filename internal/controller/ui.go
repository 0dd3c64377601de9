// Package controller provides output adapters for displaying fragment engine results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// UI defines the interface for displaying run results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	// DisplayReport shows the outcome of one operation run.
	DisplayReport(ctx context.Context, report m.Report) error
	// DisplayIndex shows the correspondence table of a fuse result.
	DisplayIndex(ctx context.Context, summary m.IndexSummary) error
	// DisplayBatchSummary shows one row per scene of a batch run.
	DisplayBatchSummary(ctx context.Context, reports []m.Report) error
	// DisplayWatchEvent announces a re-run triggered by a scene change.
	DisplayWatchEvent(ctx context.Context, path m.Path, err error)
}

// NewUI returns a TUI when writing to a terminal and a SimpleUI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
