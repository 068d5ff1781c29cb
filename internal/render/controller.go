package render

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ligoview/ligoview/internal/backend"
	"github.com/ligoview/ligoview/internal/chartdata"
	"github.com/ligoview/ligoview/internal/logging"
	"github.com/ligoview/ligoview/internal/viewstate"
	"github.com/panjf2000/ants/v2"
)

const (
	ColumnReportID = "test_reports.id"
	ColumnSampleID = "sampleid"

	CompareSelectionError = "Please select two rows to compare. Then click compare again."
)

// DefaultTableColumns are the columns of the plain row listing.
var DefaultTableColumns = []string{ColumnReportID, "SHA", "userid", "finishdate", ColumnSampleID, "comments"}

// Widgets reads the current values of the dashboard's input controls.
type Widgets interface {
	SelectedRows() []int
	ChartX() string
	ChartY() string
	Where() string
}

// Controller owns a single view state for the lifetime of a page session
// and turns it into Frames.
type Controller struct {
	mu      sync.Mutex
	state   *viewstate.ViewState
	fetcher backend.Fetcher
	pool    *ants.Pool
	loc     viewstate.Location

	generation atomic.Uint64

	// data behind the last table and metric list, used to resolve selections
	tableData   chartdata.ChartData
	metricsData chartdata.ChartData
}

// NewController returns a controller with a default view state. Fetches
// run on pool; with a nil pool they run one after another.
func NewController(fetcher backend.Fetcher, pool *ants.Pool, loc viewstate.Location) *Controller {
	return &Controller{
		state:   viewstate.New(),
		fetcher: fetcher,
		pool:    pool,
		loc:     loc,
	}
}

// State returns a copy of the current view state.
func (c *Controller) State() *viewstate.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SetLocation changes the page address used for canonical URLs.
func (c *Controller) SetLocation(loc viewstate.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loc = loc
}

// Reconstitute applies a serialized view. On error the state is unchanged.
func (c *Controller) Reconstitute(blob string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Reconstitute(blob)
}

// SyncFromUI copies widget values into the view state. It must run before
// Render whenever the user has touched the controls.
func (c *Controller) SyncFromUI(w Widgets) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncLocked(w)
}

func (c *Controller) syncLocked(w Widgets) {
	st := c.state
	st.ChartX = viewstate.Ptr(w.ChartX())
	st.ChartY = viewstate.Ptr(w.ChartY())
	st.Where = w.Where()

	rows := w.SelectedRows()
	if len(rows) > 0 {
		st.SampleSearch = lookupString(c.tableData, ColumnSampleID, rows[0])
		st.CompareIDOld = lookupString(c.tableData, ColumnReportID, rows[0])
	} else {
		st.CompareIDOld = nil
	}
	if len(rows) > 1 {
		st.CompareIDNew = lookupString(c.tableData, ColumnReportID, rows[1])
	} else {
		st.CompareIDNew = nil
	}
}

// Update syncs the widgets and renders.
func (c *Controller) Update(ctx context.Context, w Widgets) *Frame {
	c.SyncFromUI(w)
	return c.Render(ctx)
}

// PickWindow switches the visible panel.
func (c *Controller) PickWindow(ctx context.Context, mode viewstate.Mode, w Widgets) *Frame {
	c.mutate(func(st *viewstate.ViewState) {
		c.syncLocked(w)
		st.Mode = mode
	})
	return c.Render(ctx)
}

// ChangeProject switches the active metrics definition.
func (c *Controller) ChangeProject(ctx context.Context, project string, w Widgets) *Frame {
	c.mutate(func(st *viewstate.ViewState) {
		st.Project = project
		c.syncLocked(w)
	})
	return c.Render(ctx)
}

// ChangeTableMode switches between the row listing and the all-metrics table.
func (c *Controller) ChangeTableMode(ctx context.Context, mode viewstate.TableMode, w Widgets) *Frame {
	c.mutate(func(st *viewstate.ViewState) {
		c.syncLocked(w)
		st.TableMode = mode
	})
	return c.Render(ctx)
}

// mutate runs fn on the state under the controller lock.
func (c *Controller) mutate(fn func(st *viewstate.ViewState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.state)
}

// SelectMetrics returns the chart-y value for the given rows of the last
// metric list: each row's cells, comma-joined.
func (c *Controller) SelectMetrics(rows []int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for _, r := range rows {
		if r < 0 || r >= len(c.metricsData)-1 {
			continue
		}
		cells := c.metricsData[r+1]
		parts := make([]string, len(cells))
		for i, v := range cells {
			parts[i] = chartdata.FormatCell(v)
		}
		names = append(names, strings.Join(parts, ","))
	}
	return strings.Join(names, ",")
}

type job struct {
	panel Panel
	req   backend.Request
	apply func(f *Frame, resp *chartdata.Response)
}

type result struct {
	resp *chartdata.Response
	err  error
}

// Render hides every panel, issues the queries the current mode needs and
// returns the resulting Frame.
func (c *Controller) Render(ctx context.Context) *Frame {
	gen, frame, jobs := c.plan()

	results := c.run(ctx, jobs)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation.Load() {
		logging.Logger.Debugw("discarding stale render", "generation", gen, "current", c.generation.Load())
		frame.Stale = true
		return frame
	}
	for i, j := range jobs {
		r := results[i]
		if r.err != nil {
			logging.Logger.Warnw("fetch failed", "panel", j.panel.String(), "request", j.req.String(), "error", r.err)
			frame.FetchErrors[j.panel] = r.err
			continue
		}
		j.apply(frame, r.resp)
	}
	return frame
}

// plan starts a new generation and works out the panel and the queries
// the current mode needs.
func (c *Controller) plan() (uint64, *Frame, []job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generation.Add(1)
	st := c.state
	frame := &Frame{
		Generation:  gen,
		Visible:     PanelNone,
		FetchErrors: make(map[Panel]error),
	}

	var jobs []job
	switch st.Mode {
	case viewstate.ModeCompare:
		if st.CompareIDNew == nil || st.CompareIDOld == nil {
			frame.Error = CompareSelectionError
			if st.CompareIDOld != nil {
				st.Where = ColumnSampleID + "=" + viewstate.String(st.SampleSearch)
			}
			jobs = append(jobs, c.tableJob(st))
			frame.Visible = PanelTable
		} else {
			jobs = append(jobs, c.compareJob(st))
			frame.Visible = PanelCompare
		}
	case viewstate.ModeTable:
		frame.Visible = PanelTable
		jobs = append(jobs, c.tableJob(st))
	case viewstate.ModeChart:
		frame.Visible = PanelChart
		jobs = append(jobs, c.metricListJob(st), c.chartJob(st))
	default:
		logging.Logger.Debugw("unknown view mode, hiding all panels", "mode", st.Mode)
	}

	frame.State = st.Clone()
	frame.Project = st.Project
	frame.URL = st.URL(c.loc)
	for _, j := range jobs {
		frame.Requests = append(frame.Requests, j.req)
	}
	return gen, frame, jobs
}

// run executes every job and waits for all of them.
func (c *Controller) run(ctx context.Context, jobs []job) []result {
	results := make([]result, len(jobs))
	var wg sync.WaitGroup
	for i := range jobs {
		i := i
		task := func() {
			defer wg.Done()
			resp, err := c.fetcher.Fetch(ctx, jobs[i].req)
			results[i] = result{resp: resp, err: err}
		}
		wg.Add(1)
		if c.pool == nil {
			task()
			continue
		}
		if err := c.pool.Submit(task); err != nil {
			logging.Logger.Warnw("pool rejected fetch, running inline", "error", err)
			task()
		}
	}
	wg.Wait()
	return results
}

func (c *Controller) tableJob(st *viewstate.ViewState) job {
	req := backend.PlotRequest(st.Where, DefaultTableColumns, st.Project)
	if st.TableMode == viewstate.TableModeMetrics {
		req = backend.PlotAllRequest(st.Where, st.Project)
	}
	return job{
		panel: PanelTable,
		req:   req,
		apply: func(f *Frame, resp *chartdata.Response) {
			c.tableData = resp.ChartData
			f.Table = chartdata.NewTable(resp.ChartData)
		},
	}
}

func (c *Controller) compareJob(st *viewstate.ViewState) job {
	return job{
		panel: PanelCompare,
		req:   backend.CompareRequest(*st.CompareIDOld, *st.CompareIDNew, st.Project),
		apply: func(f *Frame, resp *chartdata.Response) {
			t := chartdata.NewTable(resp.ChartData)
			chartdata.Colorize(resp.ChartData, t)
			f.Compare = t
		},
	}
}

func (c *Controller) metricListJob(st *viewstate.ViewState) job {
	return job{
		panel: PanelChart,
		req:   backend.ListMetricsRequest(st.Project),
		apply: func(f *Frame, resp *chartdata.Response) {
			c.metricsData = resp.ChartData
			f.MetricList = chartdata.NewTable(resp.ChartData)
		},
	}
}

func (c *Controller) chartJob(st *viewstate.ViewState) job {
	columns := []string{viewstate.String(st.ChartX), viewstate.String(st.ChartY)}
	return job{
		panel: PanelChart,
		req:   backend.PlotRequest(st.Where, columns, st.Project),
		apply: func(f *Frame, resp *chartdata.Response) {
			f.Chart = &Chart{Title: resp.Name, Data: resp.ChartData}
		},
	}
}

func lookupString(data chartdata.ChartData, column string, row int) *string {
	v, ok := chartdata.Lookup(data, column, row)
	if !ok || v == nil {
		return nil
	}
	return viewstate.Ptr(chartdata.FormatCell(v))
}
