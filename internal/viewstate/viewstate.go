package viewstate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformed is returned when a serialized view cannot be decoded.
var ErrMalformed = errors.New("malformed view params")

type Mode string

const (
	ModeTable   Mode = "table"
	ModeChart   Mode = "chart"
	ModeCompare Mode = "compare"

	// older links name the chart panel "plot"
	legacyModePlot Mode = "plot"
)

// Valid reports whether m names one of the three dashboard panels.
func (m Mode) Valid() bool {
	switch m {
	case ModeTable, ModeChart, ModeCompare:
		return true
	}
	return false
}

type TableMode string

const (
	TableModeRows    TableMode = ""
	TableModeMetrics TableMode = "metrics"
)

const DefaultProject = "Default.json"

// ViewState holds every user-adjustable dashboard parameter. It is the
// unit that gets bookmarked: Encode and Reconstitute round-trip all fields.
type ViewState struct {
	Mode         Mode      `json:"mode"`
	TableMode    TableMode `json:"table_mode"`
	Where        string    `json:"where"`
	Project      string    `json:"project"`
	CompareIDNew *string   `json:"compareidnew"`
	CompareIDOld *string   `json:"compareidold"`
	ChartX       *string   `json:"chartx"`
	ChartY       *string   `json:"charty"`
	SampleSearch *string   `json:"sample_search"`
}

// Location is the address of the page a view is displayed on.
type Location struct {
	Host string
	Path string
}

func New() *ViewState {
	return &ViewState{
		Mode:      ModeTable,
		TableMode: TableModeRows,
		Where:     "",
		Project:   DefaultProject,
	}
}

// Clone returns a deep copy of v.
func (v *ViewState) Clone() *ViewState {
	c := *v
	c.CompareIDNew = copyString(v.CompareIDNew)
	c.CompareIDOld = copyString(v.CompareIDOld)
	c.ChartX = copyString(v.ChartX)
	c.ChartY = copyString(v.ChartY)
	c.SampleSearch = copyString(v.SampleSearch)
	return &c
}

// Encode returns the percent-encoded JSON form of v, suitable as the
// value of the params query argument.
func (v *ViewState) Encode() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// a struct of strings and string pointers cannot fail to encode
	_ = enc.Encode(v)
	raw := strings.TrimSuffix(buf.String(), "\n")
	return strings.ReplaceAll(url.QueryEscape(raw), "+", "%20")
}

// URL returns the canonical address of v on the page at loc.
func (v *ViewState) URL(loc Location) string {
	return loc.Host + loc.Path + "?params=" + v.Encode()
}

// Reconstitute overwrites v with the fields present in blob, a value
// previously produced by Encode. Unknown keys are ignored and keys that
// are absent keep their current value. On error v is left unchanged.
func (v *ViewState) Reconstitute(blob string) error {
	raw, err := url.QueryUnescape(blob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if record == nil {
		return fmt.Errorf("%w: expected an object", ErrMalformed)
	}

	next := v.Clone()
	for key, value := range record {
		var err error
		switch key {
		case "mode":
			var s string
			s, err = decodeString(value)
			next.Mode = Mode(s)
			if next.Mode == legacyModePlot {
				next.Mode = ModeChart
			}
		case "table_mode":
			var s string
			s, err = decodeString(value)
			next.TableMode = TableMode(s)
		case "where":
			next.Where, err = decodeString(value)
		case "project":
			next.Project, err = decodeString(value)
		case "compareidnew":
			next.CompareIDNew, err = decodeOptional(value)
		case "compareidold":
			next.CompareIDOld, err = decodeOptional(value)
		case "chartx":
			next.ChartX, err = decodeOptional(value)
		case "charty":
			next.ChartY, err = decodeOptional(value)
		case "sample_search":
			next.SampleSearch, err = decodeOptional(value)
		}
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrMalformed, key, err)
		}
	}

	*v = *next
	return nil
}

// ParamsFromURL extracts the still-encoded params argument from a page
// address. The value is returned as it appears in the URL so that
// Reconstitute decodes it exactly once.
func ParamsFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key == "params" {
			return value, true
		}
	}
	return "", false
}

// String dereferences an optional field, returning "" for nil.
func String(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

// decodeOptional accepts null, a string or a number. Row identifiers
// taken from the backend arrive as numbers.
func decodeOptional(raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	text := n.String()
	return &text, nil
}
