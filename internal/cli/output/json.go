package output

import (
	"encoding/json"
	"io"
	"reflect"
)

// JSONFormatter writes data as indented JSON. Empty listings are written
// as [] rather than null.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, data any) error {
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice && v.IsNil() {
		data = []any{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
