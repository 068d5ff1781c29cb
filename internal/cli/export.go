package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ligoview/ligoview/internal/chartdata"
	"github.com/ligoview/ligoview/internal/render"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newExportCmd())
}

func newExportCmd() *cobra.Command {
	var (
		flags   viewFlags
		format  string
		selects string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the data behind a view",
		Long: `Export the data of a view's visible panel in CSV or JSON format.

Examples:
  ligoview export --where "sampleid=S1" --format csv > s1.csv
  ligoview export --mode compare --old 42 --new 57 --format json > diff.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("invalid format: must be 'csv' or 'json'")
			}

			st, err := flags.state(cmd)
			if err != nil {
				return err
			}
			rows, err := parseRowList(selects)
			if err != nil {
				return fmt.Errorf("invalid --select: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			frame, err := renderView(ctx, newClient(defaultMaxInFlight, defaultTimeout), st, rows)
			if err != nil {
				return err
			}
			if err, ok := frame.FetchErrors[frame.Visible]; ok {
				return fmt.Errorf("failed to load %s data: %w", frame.Visible, err)
			}

			table := exportTable(frame)
			if table == nil {
				return fmt.Errorf("nothing to export for mode %q", st.Mode)
			}

			if format == "csv" {
				return exportCSV(cmd.OutOrStdout(), table)
			}
			return exportJSON(cmd.OutOrStdout(), table, frame.Visible == render.PanelCompare)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format (csv or json)")
	cmd.Flags().StringVarP(&selects, "select", "s", "", "table rows to select before rendering, e.g. 0,1")
	return cmd
}

// exportTable returns the table of the visible panel.
func exportTable(f *render.Frame) *chartdata.Table {
	switch f.Visible {
	case render.PanelTable:
		return f.Table
	case render.PanelCompare:
		return f.Compare
	case render.PanelChart:
		if f.Chart != nil {
			return chartdata.NewTable(f.Chart.Data)
		}
	}
	return nil
}

func exportCSV(out io.Writer, t *chartdata.Table) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	// Write header
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write rows
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

type jsonExport struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Styles  []string   `json:"styles,omitempty"`
}

func exportJSON(out io.Writer, t *chartdata.Table, withStyles bool) error {
	export := jsonExport{
		Columns: t.Columns,
		Rows:    t.Rows,
	}
	if export.Rows == nil {
		export.Rows = [][]string{}
	}

	if withStyles {
		export.Styles = make([]string, t.Len())
		for i := range t.Rows {
			export.Styles[i] = t.RowStyle(i)
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
