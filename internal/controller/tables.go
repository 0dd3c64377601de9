package controller

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

func newTable(buf *bytes.Buffer, header []string, alignment []int) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment(alignment)

	return table
}

func renderReportTable(report m.Report) string {
	var buf bytes.Buffer

	table := newTable(&buf, []string{"Field", "Value"}, []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	operation := string(report.Operation)
	if report.Mode != "" {
		operation += " (" + string(report.Mode) + ")"
	}

	table.Append([]string{"Scene", string(report.Scene)})
	table.Append([]string{"Operation", operation})
	table.Append([]string{"Status", string(report.Status)})
	table.Append([]string{"Inputs", strconv.Itoa(report.Inputs)})

	if report.Status == m.StatusOK {
		table.Append([]string{"Result", report.ResultType})
		table.Append([]string{"Children", strconv.Itoa(report.ResultChildren)})
		table.Append([]string{"Measure", formatMeasure(report.ResultMeasure)})
	} else {
		table.Append([]string{"Error", report.Error})
	}

	table.Append([]string{"Duration", formatDuration(report.Duration)})
	table.Append([]string{"Report", shortID(report.ID)})

	table.Render()

	return buf.String()
}

func renderIndexTables(summary m.IndexSummary) string {
	var buf bytes.Buffer

	names := make([]string, len(summary.Sources))
	for i, source := range summary.Sources {
		names[i] = source.Name
	}

	sources := newTable(&buf, []string{"Source", "Type", "Pieces"},
		[]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, source := range summary.Sources {
		sources.Append([]string{source.Name, source.Type.String(), joinInts(source.Pieces)})
	}

	sources.Render()
	buf.WriteString("\n")

	fragments := newTable(&buf, []string{"Piece", "Type", "Measure", "Sources"},
		[]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	for _, fragment := range summary.Fragments {
		owners := make([]string, 0, len(fragment.Sources))
		for _, source := range fragment.Sources {
			if source >= 0 && source < len(names) {
				owners = append(owners, names[source])
			}
		}

		fragments.Append([]string{
			strconv.Itoa(fragment.Index),
			fragment.Type.String(),
			formatMeasure(fragment.Measure),
			strings.Join(owners, ", "),
		})
	}

	fragments.SetFooter([]string{
		fmt.Sprintf("%d pieces", len(summary.Fragments)),
		"",
		"",
		fmt.Sprintf("largest overlap %d", summary.LargestOverlap),
	})
	fragments.Render()

	for _, warning := range summary.Warnings {
		fmt.Fprintf(&buf, "warning: %s\n", warning)
	}

	return buf.String()
}

func renderBatchTable(reports []m.Report) string {
	var buf bytes.Buffer

	table := newTable(&buf, []string{"Scene", "Operation", "Status", "Result", "Measure", "Duration"},
		[]int{
			tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
			tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		})

	failed := 0

	for _, report := range reports {
		result := report.ResultType
		measure := formatMeasure(report.ResultMeasure)

		if report.Status != m.StatusOK {
			failed++
			result = report.Error
			measure = "-"
		}

		table.Append([]string{
			string(report.Scene),
			string(report.Operation),
			string(report.Status),
			result,
			measure,
			formatDuration(report.Duration),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Scenes %d", len(reports)),
		"",
		fmt.Sprintf("Failed %d", failed),
		"",
		"",
		"",
	})
	table.Render()

	return buf.String()
}

func formatMeasure(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, ", ")
}
