package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/ligoview/ligoview/internal/chartdata"
	"github.com/ligoview/ligoview/internal/logging"
	"github.com/ligoview/ligoview/internal/render"
	"github.com/ligoview/ligoview/internal/store"
	"github.com/ligoview/ligoview/internal/viewstate"
)

type HealthResponse struct {
	Status        string `json:"status"`
	Sessions      int    `json:"sessions"`
	SavedViews    int    `json:"saved_views"`
	Backend       string `json:"backend"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	views, err := s.store.CountViews(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := HealthResponse{
		Status:        "ok",
		Sessions:      s.sessions.Count(),
		SavedViews:    views,
		Backend:       s.backend.BaseURL(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	writeJSON(w, response)
}

const projectsCacheKey = "metric_sets"

// metricSets returns the backend's metrics definitions, cached briefly
// since every dashboard page lists them.
func (s *Server) metricSets(r *http.Request) ([]string, error) {
	if cached, ok := s.projects.Get(projectsCacheKey); ok {
		return cached.([]string), nil
	}

	sets, err := s.backend.ListMetricSets(r.Context())
	if err != nil {
		return nil, err
	}
	sort.Strings(sets)
	s.projects.SetDefault(projectsCacheKey, sets)
	return sets, nil
}

func (s *Server) handleProjectsAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sets, err := s.metricSets(r)
	if err != nil {
		logging.Logger.Warnw("failed to list metric sets", "error", err)
		http.Error(w, "Failed to list metric sets", http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string]interface{}{
		"projects": sets,
	})
}

type apiTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Styles  []string   `json:"styles,omitempty"`
}

type apiChart struct {
	Title string              `json:"title"`
	Data  chartdata.ChartData `json:"data"`
}

type apiFrame struct {
	Generation  uint64               `json:"generation"`
	Visible     string               `json:"visible"`
	Error       string               `json:"error,omitempty"`
	Project     string               `json:"project"`
	URL         string               `json:"url"`
	State       *viewstate.ViewState `json:"state"`
	Table       *apiTable            `json:"table,omitempty"`
	Compare     *apiTable            `json:"compare,omitempty"`
	Chart       *apiChart            `json:"chart,omitempty"`
	MetricList  *apiTable            `json:"metric_list,omitempty"`
	Requests    []string             `json:"requests"`
	FetchErrors map[string]string    `json:"fetch_errors,omitempty"`
	Stale       bool                 `json:"stale,omitempty"`
	Notice      string               `json:"notice,omitempty"`
}

func toAPITable(t *chartdata.Table, withStyles bool) *apiTable {
	if t == nil {
		return nil
	}
	out := &apiTable{Columns: t.Columns, Rows: t.Rows}
	if withStyles {
		out.Styles = make([]string, t.Len())
		for i := range t.Rows {
			out.Styles[i] = t.RowStyle(i)
		}
	}
	return out
}

func toAPIFrame(f *render.Frame, loadErr string) apiFrame {
	out := apiFrame{
		Generation: f.Generation,
		Visible:    f.Visible.String(),
		Error:      joinErrors(loadErr, f.Error),
		Project:    f.Project,
		URL:        f.URL,
		State:      f.State,
		Table:      toAPITable(f.Table, false),
		Compare:    toAPITable(f.Compare, true),
		MetricList: toAPITable(f.MetricList, false),
		Requests:   make([]string, len(f.Requests)),
	}
	if f.Stale {
		out.Stale = true
		out.Notice = render.StaleNotice
	}
	if f.Chart != nil {
		out.Chart = &apiChart{Title: f.Chart.Title, Data: f.Chart.Data}
	}
	for i, req := range f.Requests {
		out.Requests[i] = req.String()
	}
	if len(f.FetchErrors) > 0 {
		out.FetchErrors = make(map[string]string, len(f.FetchErrors))
		for panel, err := range f.FetchErrors {
			out.FetchErrors[panel.String()] = err.Error()
		}
	}
	return out
}

// handleViewAPI is the JSON twin of the dashboard page.
func (s *Server) handleViewAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := s.session(w, r)
	frame, loadErr := loadView(r.Context(), sess.ctrl, r.URL.String(), r.URL.Query())

	writeJSON(w, toAPIFrame(frame, loadErr))
}

// handleSavedView redirects /v/<name> to the dashboard with the saved params.
func (s *Server) handleSavedView(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path[len("/v/"):]
	if name == "" {
		http.NotFound(w, r)
		return
	}

	view, err := s.store.GetView(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load view", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard?params="+view.Params, http.StatusFound)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Warnw("failed to write response", "error", err)
	}
}

func joinErrors(msgs ...string) string {
	out := ""
	for _, m := range msgs {
		if m == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += m
	}
	return out
}
