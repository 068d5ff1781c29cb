package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ligoview/ligoview/internal/backend"
	"github.com/ligoview/ligoview/internal/console"
	"github.com/ligoview/ligoview/internal/render"
	"github.com/ligoview/ligoview/internal/viewstate"
	"github.com/spf13/cobra"
)

// staticWidgets plays the part of the dashboard controls for a view
// described on the command line.
type staticWidgets struct {
	st   *viewstate.ViewState
	rows []int
}

func (w staticWidgets) SelectedRows() []int { return w.rows }
func (w staticWidgets) ChartX() string      { return viewstate.String(w.st.ChartX) }
func (w staticWidgets) ChartY() string      { return viewstate.String(w.st.ChartY) }
func (w staticWidgets) Where() string       { return w.st.Where }

// renderView loads st into a fresh controller and renders it. With rows
// selected, the table is rendered first and the rows are picked from it,
// as a click on the dashboard would.
func renderView(ctx context.Context, fetcher backend.Fetcher, st *viewstate.ViewState, rows []int) (*render.Frame, error) {
	ctrl := render.NewController(fetcher, nil, viewstate.Location{Host: dashboardHost(), Path: "/dashboard"})
	if err := ctrl.Reconstitute(st.Encode()); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return ctrl.Render(ctx), nil
	}

	mode := st.Mode
	ctrl.PickWindow(ctx, viewstate.ModeTable, staticWidgets{st: st})
	return ctrl.PickWindow(ctx, mode, staticWidgets{st: st, rows: rows}), nil
}

func init() {
	rootCmd.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	var (
		flags   viewFlags
		selects string
		wait    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render a view in the terminal",
		Long: `Render a dashboard view as terminal tables.

Examples:
  ligoview show
  ligoview show --where "sampleid=S1"
  ligoview show --mode compare --select 0,1
  ligoview show --params "http://localhost:8080/dashboard?params=..."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := flags.state(cmd)
			if err != nil {
				return err
			}
			rows, err := parseRowList(selects)
			if err != nil {
				return fmt.Errorf("invalid --select: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()

			frame, err := renderView(ctx, newClient(defaultMaxInFlight, defaultTimeout), st, rows)
			if err != nil {
				return err
			}
			console.WriteFrame(cmd.OutOrStdout(), frame)

			if len(frame.FetchErrors) > 0 {
				return fmt.Errorf("%d panel(s) failed to load", len(frame.FetchErrors))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&selects, "select", "s", "", "table rows to select before rendering, e.g. 0,1")
	cmd.Flags().DurationVar(&wait, "wait", defaultTimeout, "overall time limit")
	return cmd
}
