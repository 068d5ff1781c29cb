package chartdata

import (
	"fmt"
	"strconv"
)

// ChartData is a rectangular dataset: a header row naming the columns
// followed by data rows. It is the shape every metrics endpoint returns.
type ChartData [][]any

// Response is a decoded metrics API payload.
type Response struct {
	ChartData ChartData `json:"ChartData"`
	Name      string    `json:"Name,omitempty"`
}

const (
	DiffColumn    = "Diff"
	StyleProperty = "style"
	StyleRed      = "color:red;"
)

// Header returns the column names, or nil for an empty dataset.
func (d ChartData) Header() []string {
	if len(d) == 0 {
		return nil
	}
	names := make([]string, len(d[0]))
	for i, v := range d[0] {
		names[i] = FormatCell(v)
	}
	return names
}

// Rows returns the data rows (everything after the header).
func (d ChartData) Rows() [][]any {
	if len(d) < 2 {
		return nil
	}
	return d[1:]
}

// ColumnIndex returns the position of the named column in the header.
func (d ChartData) ColumnIndex(column string) (int, bool) {
	if len(d) == 0 {
		return 0, false
	}
	for i, label := range d[0] {
		if s, ok := label.(string); ok && s == column {
			return i, true
		}
	}
	return 0, false
}

// Lookup returns the value of the named column in the zero-based data row.
func Lookup(data ChartData, column string, row int) (any, bool) {
	idx, ok := data.ColumnIndex(column)
	if !ok {
		return nil, false
	}
	if row < 0 || row >= len(data)-1 {
		return nil, false
	}
	cells := data[row+1]
	if idx >= len(cells) {
		return nil, false
	}
	return cells[idx], true
}

// Styler is a drawable table that accepts per-cell display properties.
type Styler interface {
	SetProperty(row, col int, name, value string)
}

// Colorize marks every cell of a data row red when the row's Diff column
// holds boolean false.
func Colorize(data ChartData, table Styler) {
	idx, ok := data.ColumnIndex(DiffColumn)
	if !ok {
		return
	}
	width := len(data[0])
	for i, cells := range data.Rows() {
		if idx >= len(cells) {
			continue
		}
		if same, isBool := cells[idx].(bool); !isBool || same {
			continue
		}
		for col := 0; col < width; col++ {
			table.SetProperty(i, col, StyleProperty, StyleRed)
		}
	}
}

// FormatCell renders a single cell for display.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}
