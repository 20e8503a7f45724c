package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/yndnr/savevault-go/pkg/errs"
)

func TestBinary_WireFormat(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want []byte
	}{
		{"null", nil, []byte{0}},
		{"bool", true, []byte{1, byte(KindBool), 1}},
		{"int32", int32(1), []byte{1, byte(KindInt32), 1, 0, 0, 0}},
		{"int64", int64(-1), []byte{1, byte(KindInt64), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"float32", float32(1), []byte{1, byte(KindFloat32), 0, 0, 0x80, 0x3f}},
		{"string", "hi", []byte{1, byte(KindString), 2, 0, 0, 0, 'h', 'i'}},
		{"sequence", List[int32]{7}, []byte{1, byte(KindSequence), 1, 0, 0, 0, 1, byte(KindInt32), 7, 0, 0, 0}},
		{
			"record",
			&playerV1{Name: "A", Level: 2},
			[]byte{
				1, byte(KindRecord), 2, 0, 0, 0,
				4, 0, 0, 0, 'n', 'a', 'm', 'e', 1, byte(KindString), 1, 0, 0, 0, 'A',
				5, 0, 0, 0, 'l', 'e', 'v', 'e', 'l', 1, byte(KindInt32), 2, 0, 0, 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Binary{}.Encode(tt.v)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBinary_MappingOrderIsStable(t *testing.T) {
	m := Map[string, int32]{}
	for _, k := range []string{"delta", "alpha", "charlie", "bravo", "echo", "foxtrot"} {
		m[k] = int32(len(k))
	}
	first, err := Binary{}.Encode(m)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		again, _ := Binary{}.Encode(m)
		if !bytes.Equal(first, again) {
			t.Fatal("mapping encoding is not deterministic")
		}
	}
}

func TestBinary_Malformed(t *testing.T) {
	valid, err := Binary{}.Encode(&playerV1{Name: "Ann", Level: 1})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, errs.ErrMalformedData},
		{"truncated", valid[:len(valid)-2], errs.ErrMalformedData},
		{"trailing bytes", append(append([]byte{}, valid...), 0), errs.ErrMalformedData},
		{"bad presence", []byte{2}, errs.ErrMalformedData},
		{"bad bool", []byte{1, byte(KindBool), 9}, errs.ErrMalformedData},
		{"huge count", []byte{1, byte(KindSequence), 0xff, 0xff, 0xff, 0x7f, 0}, errs.ErrMalformedData},
		{"invalid utf8", []byte{1, byte(KindString), 1, 0, 0, 0, 0xff}, errs.ErrMalformedData},
		{"unknown discriminator", []byte{1, 200}, errs.ErrUnsupportedShape},
		{"null discriminator", []byte{1, byte(KindNull)}, errs.ErrUnsupportedShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out playerV1
			err := Binary{}.Decode(tt.data, &out)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBinary_SkipsUnknownNestedField(t *testing.T) {
	data, err := Binary{}.Encode(&inventory{
		Owner:  playerV1{Name: "x", Level: 1},
		Counts: Map[string, int32]{"a": 1},
		Party:  List[playerV1]{{Name: "p"}},
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var out playerV1
	if err := (Binary{}).Decode(data, &out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out != (playerV1{}) {
		t.Errorf("Decode() = %+v, want zero value", out)
	}
}

func TestBinary_DeepNesting(t *testing.T) {
	var data []byte
	for i := 0; i < maxDepth+10; i++ {
		data = append(data, 1, byte(KindSequence), 1, 0, 0, 0)
	}
	data = append(data, 0)
	var v any
	if err := (Binary{}).Decode(data, &v); !errors.Is(err, errs.ErrMalformedData) {
		t.Errorf("Decode() error = %v, want ErrMalformedData", err)
	}
}
