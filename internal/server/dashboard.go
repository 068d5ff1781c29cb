package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/ligoview/ligoview/internal/chartdata"
	"github.com/ligoview/ligoview/internal/dashboard"
	"github.com/ligoview/ligoview/internal/logging"
	"github.com/ligoview/ligoview/internal/render"
	"github.com/ligoview/ligoview/internal/viewstate"
)

// Dashboard template data structures
type layoutData struct {
	Title   string
	CSS     template.CSS
	Content template.HTML
}

type tableView struct {
	Columns []string
	Rows    []rowView
}

type rowView struct {
	Index int
	Cells []string
	Style string
}

type viewData struct {
	Visible    string
	Error      string
	Banners    []string
	Project    string
	Projects   []string
	URL        string
	Params     string
	Where      string
	ChartX     string
	ChartY     string
	ChartTitle string
	Table      *tableView
	Compare    *tableView
	Chart      *tableView
	MetricList *tableView
}

type viewsData struct {
	Views []viewListItem
}

type viewListItem struct {
	Name      string
	Project   string
	Mode      string
	UpdatedAt string
}

func newTableView(t *chartdata.Table) *tableView {
	if t == nil {
		return nil
	}
	tv := &tableView{Columns: t.Columns, Rows: make([]rowView, len(t.Rows))}
	for i, cells := range t.Rows {
		tv.Rows[i] = rowView{Index: i, Cells: cells, Style: t.RowStyle(i)}
	}
	return tv
}

func newViewData(f *render.Frame, loadErr string, projects []string) viewData {
	st := f.State
	// The hidden params field holds the decoded JSON: the browser encodes
	// it once on submit, which is the form Reconstitute expects.
	params, _ := url.QueryUnescape(st.Encode())

	data := viewData{
		Visible:    f.Visible.String(),
		Error:      joinErrors(loadErr, f.Error),
		Project:    f.Project,
		Projects:   projects,
		URL:        f.URL,
		Params:     params,
		Where:      st.Where,
		ChartX:     viewstate.String(st.ChartX),
		ChartY:     viewstate.String(st.ChartY),
		Table:      newTableView(f.Table),
		Compare:    newTableView(f.Compare),
		MetricList: newTableView(f.MetricList),
	}
	if f.Chart != nil {
		data.ChartTitle = f.Chart.Title
		data.Chart = newTableView(chartdata.NewTable(f.Chart.Data))
	}
	if f.Stale {
		data.Banners = append(data.Banners, "This view was "+render.StaleNotice+". Reload to see the latest.")
	}
	for panel, err := range f.FetchErrors {
		data.Banners = append(data.Banners, fmt.Sprintf("Could not load %s data: %v", panel, err))
	}
	if !containsString(data.Projects, data.Project) {
		data.Projects = append([]string{data.Project}, data.Projects...)
	}
	return data
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// Handle logout
	if r.URL.Query().Get("logout") == "1" {
		clearTokenCookie(w)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	sess := s.session(w, r)
	frame, loadErr := loadView(r.Context(), sess.ctrl, r.URL.String(), r.URL.Query())

	projects, err := s.metricSets(r)
	if err != nil {
		logging.Logger.Warnw("failed to list metric sets", "error", err)
	}

	s.renderDashboard(w, "Dashboard", "view.html", newViewData(frame, loadErr, projects))
}

// handleViews lists saved views (GET) or saves the session's current view (POST).
func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		views, err := s.store.ListViews(r.Context())
		if err != nil {
			http.Error(w, "Failed to load views", http.StatusInternalServerError)
			return
		}

		items := make([]viewListItem, len(views))
		for i, v := range views {
			items[i] = viewListItem{
				Name:      v.Name,
				Project:   v.Project,
				Mode:      v.Mode,
				UpdatedAt: v.UpdatedAt.Format("Jan 2, 2006 15:04"),
			}
		}
		s.renderDashboard(w, "Saved views", "views.html", viewsData{Views: items})

	case http.MethodPost:
		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" || strings.Contains(name, "/") {
			http.Error(w, "Invalid view name", http.StatusBadRequest)
			return
		}

		sess := s.session(w, r)
		if _, err := s.store.SaveView(r.Context(), name, sess.ctrl.State()); err != nil {
			http.Error(w, "Failed to save view", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/dashboard/views", http.StatusSeeOther)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderDashboard(w http.ResponseWriter, title, contentTemplate string, data interface{}) {
	// Load CSS
	cssBytes, err := dashboard.Assets.ReadFile("assets/style.css")
	if err != nil {
		http.Error(w, "Failed to load styles", http.StatusInternalServerError)
		return
	}

	// Load and execute content template
	contentTmpl, err := template.ParseFS(dashboard.Templates, "templates/"+contentTemplate)
	if err != nil {
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render template: %v", err), http.StatusInternalServerError)
		return
	}

	// Load and execute layout template
	layoutTmpl, err := template.ParseFS(dashboard.Templates, "templates/layout.html")
	if err != nil {
		http.Error(w, "Failed to parse layout", http.StatusInternalServerError)
		return
	}

	layoutData := layoutData{
		Title:   title,
		CSS:     template.CSS(cssBytes),
		Content: template.HTML(contentBuf.String()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layoutTmpl.Execute(w, layoutData); err != nil {
		logging.Logger.Warnw("failed to render page", "error", err)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
