package chartdata

// Table is the drawable form of a ChartData: formatted cells plus
// display properties keyed by cell.
type Table struct {
	Columns []string
	Rows    [][]string

	props map[cell]map[string]string
}

type cell struct {
	row, col int
}

func NewTable(data ChartData) *Table {
	t := &Table{Columns: data.Header()}
	for _, cells := range data.Rows() {
		row := make([]string, len(t.Columns))
		for i := range row {
			if i < len(cells) {
				row[i] = FormatCell(cells[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (t *Table) SetProperty(row, col int, name, value string) {
	if t.props == nil {
		t.props = make(map[cell]map[string]string)
	}
	key := cell{row, col}
	if t.props[key] == nil {
		t.props[key] = make(map[string]string)
	}
	t.props[key][name] = value
}

// Property returns a display property of a cell, or "" if unset.
func (t *Table) Property(row, col int, name string) string {
	return t.props[cell{row, col}][name]
}

// RowStyle returns the style property shared by a row's first cell,
// which is how Colorize marks whole rows.
func (t *Table) RowStyle(row int) string {
	return t.Property(row, 0, StyleProperty)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
