package server

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/ligoview/ligoview/internal/render"
	"github.com/ligoview/ligoview/internal/viewstate"
)

// formWidgets exposes submitted dashboard form values as render.Widgets.
type formWidgets struct {
	values url.Values
	chartY *string
}

func (f formWidgets) SelectedRows() []int {
	return parseRows(f.values["sel"])
}

func (f formWidgets) ChartX() string { return f.values.Get("chartx") }
func (f formWidgets) Where() string  { return f.values.Get("where") }

func (f formWidgets) ChartY() string {
	if f.chartY != nil {
		return *f.chartY
	}
	return f.values.Get("charty")
}

func parseRows(raw []string) []int {
	var rows []int
	for _, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			continue
		}
		rows = append(rows, n)
	}
	return rows
}

// loadView applies the params argument of the request, if any, then the
// requested action. It returns the rendered frame and a message for the
// error box when params could not be decoded.
func loadView(ctx context.Context, ctrl *render.Controller, rawURL string, values url.Values) (*render.Frame, string) {
	var loadErr string
	if blob, ok := viewstate.ParamsFromURL(rawURL); ok && blob != "" {
		if err := ctrl.Reconstitute(blob); err != nil {
			loadErr = "Could not load the linked view: " + err.Error()
		}
	}

	w := formWidgets{values: values}
	action, arg, _ := strings.Cut(values.Get("action"), ":")

	var frame *render.Frame
	switch action {
	case "":
		frame = ctrl.Render(ctx)
	case "pick":
		frame = ctrl.PickWindow(ctx, viewstate.Mode(arg), w)
	case "tablemode":
		frame = ctrl.ChangeTableMode(ctx, viewstate.TableMode(arg), w)
	case "project":
		frame = ctrl.ChangeProject(ctx, values.Get("project"), w)
	case "metrics":
		selected := ctrl.SelectMetrics(parseRows(values["msel"]))
		w.chartY = &selected
		frame = ctrl.Update(ctx, w)
	default:
		frame = ctrl.Update(ctx, w)
	}
	return frame, loadErr
}
