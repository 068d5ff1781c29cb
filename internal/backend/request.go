package backend

import (
	"net/url"
	"strings"
)

const (
	PathListMetricSets = "/api/list_metric_sets"
	PathListMetrics    = "/api/list_metrics"
	PathPlot           = "/api/plot"
	PathPlotAll        = "/api/plotall"
	PathCompare        = "/api/compare"
)

// Param is one query argument. Multiple values are sent as a single
// comma-separated argument.
type Param struct {
	Key    string
	Values []string
}

// Request is a read-only query against the metrics API. Parameters keep
// the order they were added in so rendered URLs are stable.
type Request struct {
	Path   string
	Params []Param
}

func (r Request) String() string {
	if len(r.Params) == 0 {
		return r.Path
	}
	var b strings.Builder
	b.WriteString(r.Path)
	for i, p := range r.Params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		for j, v := range p.Values {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Get returns the comma-joined value of a parameter.
func (r Request) Get(key string) string {
	for _, p := range r.Params {
		if p.Key == key {
			return strings.Join(p.Values, ",")
		}
	}
	return ""
}

func param(key string, values ...string) Param {
	return Param{Key: key, Values: values}
}

func ListMetricSetsRequest() Request {
	return Request{Path: PathListMetricSets}
}

func ListMetricsRequest(project string) Request {
	return Request{Path: PathListMetrics, Params: []Param{param("metrics_def", project)}}
}

func PlotRequest(where string, columns []string, project string) Request {
	return Request{Path: PathPlot, Params: []Param{
		param("where", where),
		param("columns", columns...),
		param("metrics_def", project),
	}}
}

func PlotAllRequest(where, project string) Request {
	return Request{Path: PathPlotAll, Params: []Param{
		param("where", where),
		param("metrics_def", project),
	}}
}

func CompareRequest(base, newID, project string) Request {
	return Request{Path: PathCompare, Params: []Param{
		param("base", base),
		param("new", newID),
		param("metrics_def", project),
	}}
}
