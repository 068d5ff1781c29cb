package chartdata_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ligoview/ligoview/internal/chartdata"
)

func TestLookup(t *testing.T) {
	data := chartdata.ChartData{
		{"sampleid", "score"},
		{"x", "10"},
	}

	got, ok := chartdata.Lookup(data, "score", 0)
	if !ok || got != "10" {
		t.Errorf("Lookup(score, 0) = %v, %v; want 10, true", got, ok)
	}

	if _, ok := chartdata.Lookup(data, "missing", 0); ok {
		t.Error("Lookup of missing column should report absence")
	}
}

func TestLookup_OutOfRange(t *testing.T) {
	data := chartdata.ChartData{{"sampleid"}, {"x"}}

	for _, row := range []int{-1, 1, 5, math.MaxInt, math.MinInt} {
		if _, ok := chartdata.Lookup(data, "sampleid", row); ok {
			t.Errorf("Lookup row %d should report absence", row)
		}
	}
	if _, ok := chartdata.Lookup(nil, "sampleid", 0); ok {
		t.Error("Lookup on empty data should report absence")
	}
}

func TestColorize(t *testing.T) {
	data := chartdata.ChartData{
		{"sampleid", "Diff"},
		{"a", false},
		{"b", true},
	}
	table := chartdata.NewTable(data)

	chartdata.Colorize(data, table)

	for col := 0; col < 2; col++ {
		if got := table.Property(0, col, "style"); got != "color:red;" {
			t.Errorf("row 0 col %d style = %q, want color:red;", col, got)
		}
		if got := table.Property(1, col, "style"); got != "" {
			t.Errorf("row 1 col %d style = %q, want unstyled", col, got)
		}
	}
}

func TestColorize_NonBooleanLeftAlone(t *testing.T) {
	data := chartdata.ChartData{
		{"metric", "Diff"},
		{"reads", "false"},
		{"mapped", nil},
	}
	table := chartdata.NewTable(data)

	chartdata.Colorize(data, table)

	for row := 0; row < table.Len(); row++ {
		if style := table.RowStyle(row); style != "" {
			t.Errorf("row %d style = %q, want unstyled", row, style)
		}
	}
}

func TestColorize_NoDiffColumn(t *testing.T) {
	data := chartdata.ChartData{{"metric"}, {false}}
	table := chartdata.NewTable(data)

	chartdata.Colorize(data, table)

	if style := table.RowStyle(0); style != "" {
		t.Errorf("style = %q, want unstyled", style)
	}
}

func TestNewTable_FromDecodedJSON(t *testing.T) {
	var resp chartdata.Response
	body := `{"Name":"reads","ChartData":[["test_reports.id","score","ok"],[42,0.5,true],[43,null,false]]}`
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	table := chartdata.NewTable(resp.ChartData)

	if len(table.Columns) != 3 || table.Columns[0] != "test_reports.id" {
		t.Fatalf("unexpected columns %v", table.Columns)
	}
	want := [][]string{{"42", "0.5", "true"}, {"43", "", "false"}}
	for i, row := range want {
		for j, cell := range row {
			if table.Rows[i][j] != cell {
				t.Errorf("cell %d,%d = %q, want %q", i, j, table.Rows[i][j], cell)
			}
		}
	}
}
