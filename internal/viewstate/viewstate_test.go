package viewstate_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ligoview/ligoview/internal/viewstate"
)

func TestNew_Defaults(t *testing.T) {
	v := viewstate.New()

	want := &viewstate.ViewState{
		Mode:      viewstate.ModeTable,
		TableMode: viewstate.TableModeRows,
		Where:     "",
		Project:   "Default.json",
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("New() mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstitute_RoundTrip(t *testing.T) {
	cases := map[string]*viewstate.ViewState{
		"defaults": viewstate.New(),
		"compare": {
			Mode:         viewstate.ModeCompare,
			TableMode:    viewstate.TableModeRows,
			Where:        "sampleid=12345",
			Project:      "met1.json",
			CompareIDOld: viewstate.Ptr("42"),
			CompareIDNew: viewstate.Ptr("57"),
			SampleSearch: viewstate.Ptr("12345"),
		},
		"chart with awkward text": {
			Mode:      viewstate.ModeChart,
			TableMode: viewstate.TableModeMetrics,
			Where:     `userid='bob' AND comments LIKE '%rerun & "fix"%'`,
			Project:   "Some Project.json",
			ChartX:    viewstate.Ptr("finishdate"),
			ChartY:    viewstate.Ptr("reads,mapped/total ü"),
		},
		"empty strings stay non-nil": {
			Mode:    viewstate.ModeTable,
			Project: "",
			ChartX:  viewstate.Ptr(""),
		},
		"unknown mode is preserved": {
			Mode:    viewstate.Mode("help"),
			Project: "Default.json",
		},
	}

	for name, original := range cases {
		t.Run(name, func(t *testing.T) {
			got := viewstate.New()
			if err := got.Reconstitute(original.Encode()); err != nil {
				t.Fatalf("Reconstitute failed: %v", err)
			}
			if diff := cmp.Diff(original, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	v := viewstate.New()
	v.Where = "a b"
	v.CompareIDOld = viewstate.Ptr("1")

	first := v.Encode()
	second := v.Clone().Encode()
	if first != second {
		t.Errorf("encoding differs: %q vs %q", first, second)
	}
	if strings.Contains(first, "+") {
		t.Errorf("spaces should be encoded as %%20, got %q", first)
	}
}

func TestEncode_IncludesEveryField(t *testing.T) {
	raw, err := url.QueryUnescape(viewstate.New().Encode())
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	for _, key := range []string{"mode", "table_mode", "where", "project", "compareidnew", "compareidold", "chartx", "charty", "sample_search"} {
		if !strings.Contains(raw, `"`+key+`":`) {
			t.Errorf("encoded view missing %q: %s", key, raw)
		}
	}
}

func TestURL(t *testing.T) {
	v := viewstate.New()
	got := v.URL(viewstate.Location{Host: "ligo.example.com", Path: "/dashboard"})

	prefix := "ligo.example.com/dashboard?params="
	if !strings.HasPrefix(got, prefix) {
		t.Fatalf("URL = %q, want prefix %q", got, prefix)
	}
	if got[len(prefix):] != v.Encode() {
		t.Errorf("URL payload does not match Encode()")
	}
}

func TestReconstitute_IgnoresUnknownFields(t *testing.T) {
	v := viewstate.New()
	if err := v.Reconstitute(url.QueryEscape(`{"foo":"bar","mode":"chart"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Mode != viewstate.ModeChart {
		t.Errorf("Mode = %q, want chart", v.Mode)
	}
	if v.Project != viewstate.DefaultProject {
		t.Errorf("absent key should keep default project, got %q", v.Project)
	}
}

func TestReconstitute_LegacyPlotMode(t *testing.T) {
	v := viewstate.New()
	if err := v.Reconstitute(url.QueryEscape(`{"mode":"plot"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Mode != viewstate.ModeChart {
		t.Errorf("Mode = %q, want chart", v.Mode)
	}
}

func TestReconstitute_NumericIdentifiers(t *testing.T) {
	v := viewstate.New()
	if err := v.Reconstitute(url.QueryEscape(`{"compareidold":42,"compareidnew":57,"sample_search":null}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if viewstate.String(v.CompareIDOld) != "42" || viewstate.String(v.CompareIDNew) != "57" {
		t.Errorf("ids = %v/%v, want 42/57", viewstate.String(v.CompareIDOld), viewstate.String(v.CompareIDNew))
	}
	if v.SampleSearch != nil {
		t.Errorf("null should clear sample_search")
	}
}

func TestReconstitute_MalformedLeavesStateUntouched(t *testing.T) {
	cases := map[string]string{
		"bad escape":       "%zz",
		"not json":         url.QueryEscape("{mode:"),
		"not an object":    url.QueryEscape(`["table"]`),
		"null":             url.QueryEscape("null"),
		"wrong field type": url.QueryEscape(`{"project":"late.json","where":5}`),
		"object id":        url.QueryEscape(`{"mode":"compare","compareidold":{"id":1}}`),
	}

	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			v := viewstate.New()
			v.Where = "keep me"
			before := v.Clone()

			err := v.Reconstitute(blob)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, viewstate.ErrMalformed) {
				t.Errorf("error %v does not wrap ErrMalformed", err)
			}
			if diff := cmp.Diff(before, v); diff != "" {
				t.Errorf("state mutated on failure (-before +after):\n%s", diff)
			}
		})
	}
}

func TestParamsFromURL(t *testing.T) {
	v := viewstate.New()
	v.Where = "comments LIKE '%50%'"
	page := "http://" + v.URL(viewstate.Location{Host: "localhost:8080", Path: "/dashboard"}) + "&token=abc"

	blob, ok := viewstate.ParamsFromURL(page)
	if !ok {
		t.Fatal("params not found")
	}

	got := viewstate.New()
	if err := got.Reconstitute(blob); err != nil {
		t.Fatalf("Reconstitute failed: %v", err)
	}
	if got.Where != v.Where {
		t.Errorf("Where = %q, want %q", got.Where, v.Where)
	}

	if _, ok := viewstate.ParamsFromURL("http://localhost/dashboard?x=1"); ok {
		t.Error("expected no params")
	}
}

func TestClone_IsDeep(t *testing.T) {
	v := viewstate.New()
	v.ChartX = viewstate.Ptr("finishdate")

	c := v.Clone()
	*c.ChartX = "sampleid"

	if *v.ChartX != "finishdate" {
		t.Errorf("clone shares pointer with original")
	}
}

func TestMode_Valid(t *testing.T) {
	for _, m := range []viewstate.Mode{viewstate.ModeTable, viewstate.ModeChart, viewstate.ModeCompare} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	for _, m := range []viewstate.Mode{"", "plot", "help"} {
		if m.Valid() {
			t.Errorf("%q should not be valid", m)
		}
	}
}

func TestReconstitute_PlusDecoding(t *testing.T) {
	v := viewstate.New()
	if err := v.Reconstitute(`{"where":"a+b","project":"c%2Bd"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Where != "a b" {
		t.Errorf("form-encoded plus should decode to a space, got %q", v.Where)
	}
	if v.Project != "c+d" {
		t.Errorf("%%2B should decode to a plus, got %q", v.Project)
	}

	v.Where = "x+y z"
	if enc := v.Encode(); strings.Contains(enc, "+") {
		t.Errorf("Encode should never emit a bare plus, got %s", enc)
	}
}
