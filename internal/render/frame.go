package render

import (
	"github.com/ligoview/ligoview/internal/backend"
	"github.com/ligoview/ligoview/internal/chartdata"
	"github.com/ligoview/ligoview/internal/viewstate"
)

// Panel identifies one of the dashboard's mutually exclusive panels.
type Panel int

const (
	PanelNone Panel = iota
	PanelTable
	PanelCompare
	PanelChart
)

func (p Panel) String() string {
	switch p {
	case PanelTable:
		return "table"
	case PanelCompare:
		return "compare"
	case PanelChart:
		return "chart"
	default:
		return "none"
	}
}

// StaleNotice is shown in place of a render that a newer one overtook.
const StaleNotice = "superseded by a newer render"

// Chart is a two-column series drawn as a line chart.
type Chart struct {
	Title string
	Data  chartdata.ChartData
}

// Frame is everything one render produced: which panel is visible, the
// data behind it and the labels shown on every page.
type Frame struct {
	Generation uint64
	State      *viewstate.ViewState
	Visible    Panel
	Error      string
	Project    string
	URL        string

	Table      *chartdata.Table
	Compare    *chartdata.Table
	Chart      *Chart
	MetricList *chartdata.Table

	// Requests lists the queries issued, in issue order.
	Requests    []backend.Request
	FetchErrors map[Panel]error

	// Stale is set when a newer render started before this one finished;
	// none of its results were applied.
	Stale bool
}

// Shows reports whether p is the visible panel.
func (f *Frame) Shows(p Panel) bool {
	return f.Visible == p
}
