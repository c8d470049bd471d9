package output

import (
	"bytes"
	"strings"
	"testing"
)

type entry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Offset int64  `json:"offset" table:"wide"`
	secret string
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("json format should give a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("yaml format should give a YAMLFormatter")
	}
	tf, ok := NewFormatter("other", true).(*TableFormatter)
	if !ok || !tf.Wide {
		t.Error("unknown format should give a wide TableFormatter")
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	rows := []entry{{Key: "a", Value: "1", Offset: 9}, {Key: "b", Value: "", Offset: 20}}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, rows); err != nil {
		t.Fatal(err)
	}
	want := "KEY  VALUE\na    1\nb    -\n"
	if buf.String() != want {
		t.Errorf("table =\n%q\nwant\n%q", buf.String(), want)
	}

	buf.Reset()
	(&TableFormatter{Wide: true, NoHeaders: true}).Format(&buf, rows)
	if !strings.HasPrefix(buf.String(), "a  1  9\n") {
		t.Errorf("wide table =\n%q", buf.String())
	}
}

func TestTableFormatter_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	(&TableFormatter{}).Format(&buf, map[string]int{"zeta": 1, "alpha": 2})
	want := "KEY    VALUE\nalpha  2\nzeta   1\n"
	if buf.String() != want {
		t.Errorf("table =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	(&TableFormatter{}).Format(&buf, &entry{Key: "k", Value: "v", Offset: 3})
	want := "FIELD   VALUE\nkey     k\nvalue   v\noffset  3\n"
	if buf.String() != want {
		t.Errorf("table =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTableFormatter_Table(t *testing.T) {
	tbl := &Table{Headers: []string{"A", "B"}}
	tbl.AddRow("1", "2")

	var buf bytes.Buffer
	(&TableFormatter{}).Format(&buf, tbl)
	if buf.String() != "A  B\n1  2\n" {
		t.Errorf("table = %q", buf.String())
	}
}

func TestTableFormatter_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	(&TableFormatter{}).Format(&buf, 42)
	if strings.TrimSpace(buf.String()) != "42" {
		t.Errorf("fallback = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, entry{Key: "k", Value: "v"}); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"key\": \"k\",\n  \"value\": \"v\",\n  \"offset\": 0\n}\n"
	if buf.String() != want {
		t.Errorf("json = %q", buf.String())
	}
}

func TestJSONFormatter_KeepsValuesVerbatim(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, entry{Key: "<k>", Value: "a&b"}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"key": "<k>"`, `"value": "a&b"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("json missing %q:\n%s", want, buf.String())
		}
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"size": 2, "entries": []string{"a", "b"}}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"entries:\n", "- a\n", "- b\n", "size: 2\n"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("yaml missing %q:\n%s", want, buf.String())
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Key":           "key",
		"FormatVersion": "format_version",
		"size":          "size",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
