package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

// SimpleUI implements UI by printing plain tables to the command output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayReport prints the report as a field/value table.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderReportTable(report))

	return nil
}

// DisplayIndex prints the source and fragment tables.
func (s *SimpleUI) DisplayIndex(ctx context.Context, summary m.IndexSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if summary.Scene != "" {
		s.printf("Scene: %s\n", summary.Scene)
	}

	s.printf("\n%s", renderIndexTables(summary))

	return nil
}

// DisplayBatchSummary prints one row per scene.
func (s *SimpleUI) DisplayBatchSummary(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderBatchTable(reports))

	return nil
}

// DisplayWatchEvent prints a one-line notice.
func (s *SimpleUI) DisplayWatchEvent(ctx context.Context, path m.Path, err error) {
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		s.printf("Scene %s failed: %v\n", path, err)
		return
	}

	s.printf("Scene %s changed, re-running\n", path)
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
