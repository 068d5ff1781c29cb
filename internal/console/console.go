// Package console prints rendered frames to a terminal.
package console

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/ligoview/ligoview/internal/chartdata"
	"github.com/ligoview/ligoview/internal/render"
	"github.com/olekukonko/tablewriter"
)

// WriteFrame prints the visible panel of f. Compare rows marked by
// chartdata.Colorize are printed in red.
func WriteFrame(w io.Writer, f *render.Frame) {
	if f.Stale {
		fmt.Fprintln(w, color.YellowString("(%s)", render.StaleNotice))
		return
	}

	fmt.Fprintf(w, "%s %s  %s %s\n", color.New(color.Bold).Sprint("Project:"), f.Project,
		color.New(color.Bold).Sprint("View:"), f.Visible)

	if f.Error != "" {
		fmt.Fprintln(w, color.RedString("%s", f.Error))
	}
	for _, p := range sortedPanels(f.FetchErrors) {
		fmt.Fprintln(w, color.RedString("could not load %s data: %v", p, f.FetchErrors[p]))
	}

	switch f.Visible {
	case render.PanelTable:
		writeTable(w, f.Table, false)
	case render.PanelCompare:
		writeTable(w, f.Compare, true)
	case render.PanelChart:
		if f.Chart != nil {
			fmt.Fprintln(w, color.CyanString("%s", f.Chart.Title))
			writeTable(w, chartdata.NewTable(f.Chart.Data), false)
		}
		if f.MetricList != nil {
			fmt.Fprintln(w, color.New(color.Bold).Sprint("Metrics"))
			writeTable(w, f.MetricList, false)
		}
	default:
		fmt.Fprintln(w, "Nothing to show.")
	}

	if f.URL != "" {
		fmt.Fprintf(w, "Link: %s\n", f.URL)
	}
}

func writeTable(w io.Writer, t *chartdata.Table, styled bool) {
	if t.Len() == 0 {
		fmt.Fprintln(w, "No data.")
		return
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)

	red := make([]tablewriter.Colors, len(t.Columns))
	for i := range red {
		red[i] = tablewriter.Colors{tablewriter.FgRedColor}
	}

	for i, row := range t.Rows {
		if styled && t.RowStyle(i) == chartdata.StyleRed {
			tw.Rich(row, red)
			continue
		}
		tw.Append(row)
	}
	tw.Render()
}

func sortedPanels(m map[render.Panel]error) []render.Panel {
	panels := make([]render.Panel, 0, len(m))
	for p := range m {
		panels = append(panels, p)
	}
	sort.Slice(panels, func(i, j int) bool { return panels[i] < panels[j] })
	return panels
}
