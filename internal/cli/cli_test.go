package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ligoview/ligoview/internal/backend"
	"github.com/ligoview/ligoview/internal/viewstate"
	"github.com/spf13/cobra"
)

// setupCLI points the global flags at a temp database and a fake
// metrics API.
func setupCLI(t *testing.T) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(backend.PathPlot, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ChartData":[["test_reports.id","SHA","userid","finishdate","sampleid","comments"],[42,"abc","bob","2016-04-01","S1","first"],[57,"def","amy","2016-04-02","S1","second"]],"Name":"reads"}`))
	})
	mux.HandleFunc(backend.PathCompare, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ChartData":[["JSONPath","BaseVal","NewVal","Diff"],["reads",10,12,false],["mapped",0.9,0.9,true]]}`))
	})
	mux.HandleFunc(backend.PathListMetricSets, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["met1.json","Default.json"]`))
	})
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)

	oldDB, oldBackend := dbPath, backendURL
	dbPath = filepath.Join(t.TempDir(), "test.db")
	backendURL = api.URL
	t.Cleanup(func() {
		dbPath, backendURL = oldDB, oldBackend
	})
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestURLCommand(t *testing.T) {
	setupCLI(t)

	out, err := run(t, newURLCmd(), "--host", "http://dash:8080", "--mode", "compare", "--old", "42", "--new", "57")
	if err != nil {
		t.Fatalf("url failed: %v", err)
	}

	want := viewstate.New()
	want.Mode = viewstate.ModeCompare
	want.CompareIDOld = viewstate.Ptr("42")
	want.CompareIDNew = viewstate.Ptr("57")
	if got := strings.TrimSpace(out); got != want.URL(viewstate.Location{Host: "http://dash:8080", Path: "/dashboard"}) {
		t.Errorf("unexpected url %q", got)
	}
}

func TestURLCommand_FromLink(t *testing.T) {
	setupCLI(t)

	base := viewstate.New()
	base.Mode = viewstate.ModeChart
	base.ChartX = viewstate.Ptr("finishdate")
	link := base.URL(viewstate.Location{Host: "http://dash:8080", Path: "/dashboard"})

	out, err := run(t, newURLCmd(), "--host", "h", "--params", link, "--where", "sampleid=S2")
	if err != nil {
		t.Fatalf("url failed: %v", err)
	}

	blob, ok := viewstate.ParamsFromURL(strings.TrimSpace(out))
	if !ok {
		t.Fatalf("no params in %q", out)
	}
	got := viewstate.New()
	if err := got.Reconstitute(blob); err != nil {
		t.Fatalf("reconstitute: %v", err)
	}

	base.Where = "sampleid=S2"
	if diff := cmp.Diff(base, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestURLCommand_BadParams(t *testing.T) {
	setupCLI(t)

	if _, err := run(t, newURLCmd(), "--params", "%7Bnope"); err == nil {
		t.Error("expected error for malformed params")
	}
}

func TestViewsCommands(t *testing.T) {
	setupCLI(t)

	out, err := run(t, newViewsSaveCmd(), "s1", "--mode", "chart", "--where", "sampleid=S1")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.Contains(out, "Saved view 's1' (chart, Default.json)") {
		t.Errorf("unexpected save output %q", out)
	}

	out, err = run(t, newViewsListCmd())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "s1") {
		t.Errorf("unexpected list output %q", out)
	}

	out, err = run(t, newViewsOpenCmd(), "s1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !strings.HasPrefix(out, "http://localhost:8080/dashboard?params=") {
		t.Errorf("unexpected open output %q", out)
	}

	if _, err := run(t, newViewsDeleteCmd(), "s1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := run(t, newViewsOpenCmd(), "s1"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestShowCommand_CompareSelection(t *testing.T) {
	setupCLI(t)

	out, err := run(t, newShowCmd(), "--mode", "compare", "--select", "0,1")
	if err != nil {
		t.Fatalf("show failed: %v\n%s", err, out)
	}
	for _, want := range []string{"compare", "JSONPath", "reads", "mapped", "Link: "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowCommand_SingleSelectionFallsBack(t *testing.T) {
	setupCLI(t)

	out, err := run(t, newShowCmd(), "--mode", "compare", "--select", "1")
	if err != nil {
		t.Fatalf("show failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Please select two rows to compare.") {
		t.Errorf("expected selection error:\n%s", out)
	}
	if !strings.Contains(out, "amy") {
		t.Errorf("expected fallback table:\n%s", out)
	}
}

func TestExportCommand(t *testing.T) {
	setupCLI(t)

	out, err := run(t, newExportCmd(), "--format", "csv")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if lines[0] != "test_reports.id,SHA,userid,finishdate,sampleid,comments" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "42,abc,bob,2016-04-01,S1,first" {
		t.Errorf("unexpected row %q", lines[1])
	}

	out, err = run(t, newExportCmd(), "--format", "json", "--mode", "compare", "--old", "42", "--new", "57")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var got jsonExport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if diff := cmp.Diff([]string{"color:red;", ""}, got.Styles); diff != "" {
		t.Errorf("styles mismatch (-want +got):\n%s", diff)
	}

	if _, err := run(t, newExportCmd(), "--format", "xml"); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestParseRowList(t *testing.T) {
	rows, err := parseRowList("0, 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{0, 3}, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseRowList("a"); err == nil {
		t.Error("expected error for non-numeric row")
	}
}
