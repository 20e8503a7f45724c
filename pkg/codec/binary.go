package codec

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// Binary is the compact little-endian format.
//
// Every value starts with a presence byte (0 absent, 1 present). A present
// value continues with its Kind byte and payload:
//
//	bool                 1 byte
//	int32, float32       4 bytes
//	int64, float64       8 bytes
//	string               uint32 length + UTF-8 bytes
//	vector3, quaternion  3 or 4 float32
//	sequence             uint32 count + elements
//	mapping              uint32 count + (key, value) pairs
//	record               uint32 count + (string name, value) pairs
type Binary struct{}

// Name implements Codec.
func (Binary) Name() string { return FormatBinary }

// Encode implements Codec.
func (Binary) Encode(v any) ([]byte, error) {
	n, err := toNode(v, 0)
	if err != nil {
		return nil, err
	}
	return appendBinary(make([]byte, 0, 64), n), nil
}

// Decode implements Codec.
func (Binary) Decode(data []byte, target any) error {
	r := binaryReader{buf: data}
	n, err := r.readNode(0)
	if err != nil {
		return err
	}
	if r.remaining() != 0 {
		return errs.ErrMalformedData.WithDetailsf("%d trailing bytes", r.remaining())
	}
	return fromNode(n, target, 0)
}

func appendBinary(b []byte, n *node) []byte {
	if n.kind == KindNull {
		return append(b, 0)
	}
	b = append(b, 1, byte(n.kind))

	switch n.kind {
	case KindBool:
		if n.b {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	case KindInt32:
		b = binary.LittleEndian.AppendUint32(b, uint32(int32(n.i)))
	case KindInt64:
		b = binary.LittleEndian.AppendUint64(b, uint64(n.i))
	case KindFloat32:
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(n.f)))
	case KindFloat64:
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(n.f))
	case KindString:
		b = appendString(b, n.s)
	case KindVector3, KindQuaternion:
		for i := 0; i < n.components(); i++ {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(n.vec[i]))
		}
	case KindSequence:
		b = binary.LittleEndian.AppendUint32(b, uint32(len(n.items)))
		for _, item := range n.items {
			b = appendBinary(b, item)
		}
	case KindMapping:
		b = binary.LittleEndian.AppendUint32(b, uint32(len(n.entries)))
		for _, e := range n.entries {
			b = appendBinary(b, e.key)
			b = appendBinary(b, e.value)
		}
	case KindRecord:
		b = binary.LittleEndian.AppendUint32(b, uint32(len(n.fields)))
		for _, f := range n.fields {
			b = appendString(b, f.name)
			b = appendBinary(b, f.value)
		}
	}
	return b
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

// Smallest encoded size of one collection member, used to reject counts
// that cannot fit in the remaining input.
const (
	minElemSize  = 1 // presence byte
	minEntrySize = 2 // key and value presence bytes
	minFieldSize = 5 // name length + presence byte
)

type binaryReader struct {
	buf []byte
	off int
}

func (r *binaryReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *binaryReader) take(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, errs.ErrMalformedData.WithDetailsf("need %d bytes at offset %d, have %d", n, r.off, r.remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *binaryReader) readByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *binaryReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *binaryReader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *binaryReader) count(minSize int) (int, error) {
	c, err := r.u32()
	if err != nil {
		return 0, err
	}
	if uint64(c)*uint64(minSize) > uint64(r.remaining()) {
		return 0, errs.ErrMalformedData.WithDetailsf("count %d exceeds remaining %d bytes", c, r.remaining())
	}
	return int(c), nil
}

func (r *binaryReader) str() (string, error) {
	n, err := r.count(1)
	if err != nil {
		return "", err
	}
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errs.ErrMalformedData.WithDetails("invalid utf-8 string")
	}
	return string(b), nil
}

func (r *binaryReader) readNode(depth int) (*node, error) {
	if depth > maxDepth {
		return nil, errs.ErrMalformedData.WithDetails("nesting too deep")
	}

	presence, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch presence {
	case 0:
		return nullNode, nil
	case 1:
	default:
		return nil, errs.ErrMalformedData.WithDetailsf("invalid presence flag %d", presence)
	}

	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	n := &node{kind: Kind(tag)}

	switch n.kind {
	case KindBool:
		v, err := r.readByte()
		if err != nil {
			return nil, err
		}
		if v > 1 {
			return nil, errs.ErrMalformedData.WithDetailsf("invalid bool byte %d", v)
		}
		n.b = v == 1
	case KindInt32:
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		n.i = int64(int32(v))
	case KindInt64:
		v, err := r.u64()
		if err != nil {
			return nil, err
		}
		n.i = int64(v)
	case KindFloat32:
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		n.f = float64(math.Float32frombits(v))
	case KindFloat64:
		v, err := r.u64()
		if err != nil {
			return nil, err
		}
		n.f = math.Float64frombits(v)
	case KindString:
		if n.s, err = r.str(); err != nil {
			return nil, err
		}
	case KindVector3, KindQuaternion:
		for i := 0; i < n.components(); i++ {
			v, err := r.u32()
			if err != nil {
				return nil, err
			}
			n.vec[i] = math.Float32frombits(v)
		}
	case KindSequence:
		c, err := r.count(minElemSize)
		if err != nil {
			return nil, err
		}
		n.items = make([]*node, c)
		for i := range n.items {
			if n.items[i], err = r.readNode(depth + 1); err != nil {
				return nil, err
			}
		}
	case KindMapping:
		c, err := r.count(minEntrySize)
		if err != nil {
			return nil, err
		}
		n.entries = make([]nodeEntry, c)
		for i := range n.entries {
			if n.entries[i].key, err = r.readNode(depth + 1); err != nil {
				return nil, err
			}
			if n.entries[i].value, err = r.readNode(depth + 1); err != nil {
				return nil, err
			}
		}
	case KindRecord:
		c, err := r.count(minFieldSize)
		if err != nil {
			return nil, err
		}
		n.fields = make([]nodeField, c)
		for i := range n.fields {
			if n.fields[i].name, err = r.str(); err != nil {
				return nil, err
			}
			if n.fields[i].value, err = r.readNode(depth + 1); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errs.ErrUnsupportedShape.WithDetailsf("discriminator %d at offset %d", tag, r.off-1)
	}
	return n, nil
}
