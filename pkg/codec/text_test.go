package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/savevault-go/pkg/errs"
)

func TestCompactText_Output(t *testing.T) {
	got, err := CompactText{}.Encode(&inventory{Slots: 2, Items: List[string]{"a"}})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	s := string(got)
	if strings.ContainsAny(s, "\n ") {
		t.Errorf("compact text should be a single line without spaces: %q", s)
	}
	if strings.Contains(s, `"best"`) || strings.Contains(s, `"nickname"`) {
		t.Errorf("null fields should be omitted: %s", s)
	}
	for _, want := range []string{`["r",{`, `"slots":["l",2]`, `"items":["a",[["s","a"]]]`} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %s: %s", want, s)
		}
	}
}

func TestCompactText_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{{`, errs.ErrMalformedData},
		{"wrong arity", `["i"]`, errs.ErrMalformedData},
		{"bad int", `["i","x"]`, errs.ErrMalformedData},
		{"int32 overflow", `["i",4294967296]`, errs.ErrMalformedData},
		{"short vector", `["v",[1,2]]`, errs.ErrMalformedData},
		{"unknown tag", `["z",1]`, errs.ErrUnsupportedShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			if err := (CompactText{}).Decode([]byte(tt.data), &v); !errors.Is(err, tt.want) {
				t.Errorf("Decode(%s) error = %v, want %v", tt.data, err, tt.want)
			}
		})
	}
}

func TestTaggedText_Output(t *testing.T) {
	got, err := TaggedText{}.Encode(&playerV2{Name: "Ann", Position: Vector3{X: 1, Y: 2, Z: 3}})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	for _, want := range []string{
		"!record",
		`"name": !str "Ann"`,
		`"level": !int32 0`,
		`"gold": !int64 0`,
		`"position": !vector3 [1, 2, 3]`,
	} {
		if !strings.Contains(string(got), want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestTaggedText_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not yaml", "a: [", errs.ErrMalformedData},
		{"untagged", "name: Ann", errs.ErrUnsupportedShape},
		{"bad int", "!int32 abc", errs.ErrMalformedData},
		{"bad vector", "!vector3 [1, 2]", errs.ErrMalformedData},
		{"empty", "", errs.ErrMalformedData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			if err := (TaggedText{}).Decode([]byte(tt.data), &v); !errors.Is(err, tt.want) {
				t.Errorf("Decode(%q) error = %v, want %v", tt.data, err, tt.want)
			}
		})
	}
}
