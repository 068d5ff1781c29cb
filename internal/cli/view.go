package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ligoview/ligoview/internal/viewstate"
	"github.com/spf13/cobra"
)

// viewFlags describes a dashboard view on the command line: an optional
// params blob (or a whole dashboard URL) with individual fields on top.
type viewFlags struct {
	params    string
	mode      string
	tableMode string
	where     string
	project   string
	oldID     string
	newID     string
	chartX    string
	chartY    string
	sample    string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.params, "params", "", "encoded params value or full dashboard URL to start from")
	fl.StringVarP(&f.mode, "mode", "m", "", "view mode (table, chart or compare)")
	fl.StringVar(&f.tableMode, "table-mode", "", "table mode (empty for rows, metrics for all metrics)")
	fl.StringVarP(&f.where, "where", "w", "", "row filter, e.g. sampleid=S1")
	fl.StringVar(&f.project, "project", "", "metrics definition")
	fl.StringVar(&f.oldID, "old", "", "base report id for compare")
	fl.StringVar(&f.newID, "new", "", "new report id for compare")
	fl.StringVar(&f.chartX, "chartx", "", "chart x column")
	fl.StringVar(&f.chartY, "charty", "", "chart y column(s), comma separated")
	fl.StringVar(&f.sample, "sample", "", "sample searched for when compare falls back to the table")
}

// state builds the view: defaults, then --params, then every flag the
// user actually set.
func (f *viewFlags) state(cmd *cobra.Command) (*viewstate.ViewState, error) {
	st := viewstate.New()

	if f.params != "" {
		blob := f.params
		if raw, ok := viewstate.ParamsFromURL(f.params); ok {
			blob = raw
		}
		if err := st.Reconstitute(blob); err != nil {
			return nil, fmt.Errorf("invalid --params: %w", err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("mode") {
		st.Mode = viewstate.Mode(f.mode)
	}
	if changed("table-mode") {
		st.TableMode = viewstate.TableMode(f.tableMode)
	}
	if changed("where") {
		st.Where = f.where
	}
	if changed("project") {
		st.Project = f.project
	}
	if changed("old") {
		st.CompareIDOld = viewstate.Ptr(f.oldID)
	}
	if changed("new") {
		st.CompareIDNew = viewstate.Ptr(f.newID)
	}
	if changed("chartx") {
		st.ChartX = viewstate.Ptr(f.chartX)
	}
	if changed("charty") {
		st.ChartY = viewstate.Ptr(f.chartY)
	}
	if changed("sample") {
		st.SampleSearch = viewstate.Ptr(f.sample)
	}
	return st, nil
}

// parseRowList parses "0,3" into row indices.
func parseRowList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var rows []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid row %q", part)
		}
		rows = append(rows, n)
	}
	return rows, nil
}
