package output

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

type row struct {
	Key  string `json:"key" yaml:"key"`
	Size int64  `json:"size" yaml:"size"`
}

type rows []row

func (r rows) Table() *Table {
	t := NewTable("KEY", "SIZE")
	for _, x := range r {
		t.AddRow(x.Key, strconv.FormatInt(x.Size, 10))
	}
	return t
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json formatter type")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("yaml formatter type")
	}
	if _, ok := NewFormatter("other").(*TableFormatter); !ok {
		t.Error("default formatter is not the table formatter")
	}
}

func TestFormatters(t *testing.T) {
	data := rows{{Key: "score", Size: 48}}

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatTable, []string{"KEY", "SIZE", "score"}},
		{FormatJSON, []string{`"key": "score"`, `"size": 48`}},
		{FormatYAML, []string{"- key: score", "  size: 48"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewFormatter(tt.format).Format(&buf, data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
		})
	}
}

func TestTableFormatter_FallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "a: 1" {
		t.Errorf("fallback output = %q", got)
	}
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("NAME", "VALUE")
	tbl.AddRow("short", "")
	tbl.AddRow("a-much-longer-name", "x")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if strings.Index(lines[0], "VALUE") != strings.Index(lines[2], "x") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
	if !strings.HasSuffix(lines[1], "-") {
		t.Errorf("empty cell not shown as '-': %q", lines[1])
	}

	buf.Reset()
	if err := tbl.RenderWithOptions(&buf, true); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "NAME") {
		t.Error("header rendered with noHeaders")
	}
}
