package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// One-letter node tags of the compact-text format.
const (
	ctBool       = "b"
	ctInt32      = "i"
	ctInt64      = "l"
	ctFloat32    = "f"
	ctFloat64    = "d"
	ctString     = "s"
	ctVector3    = "v"
	ctQuaternion = "q"
	ctSequence   = "a"
	ctMapping    = "m"
	ctRecord     = "r"
)

// CompactText renders values as single-line JSON. Each present value is a
// two element array [tag, payload]; null is written as JSON null. Record
// fields holding null are omitted and decode back to their defaults.
// Non-finite floats are written as strings.
type CompactText struct{}

// Name implements Codec.
func (CompactText) Name() string { return FormatCompactText }

// Encode implements Codec.
func (CompactText) Encode(v any) ([]byte, error) {
	n, err := toNode(v, 0)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := appendCompact(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode implements Codec.
func (CompactText) Decode(data []byte, target any) error {
	n, err := parseCompact(json.RawMessage(bytes.TrimSpace(data)), 0)
	if err != nil {
		return err
	}
	return fromNode(n, target, 0)
}

func appendCompact(buf *bytes.Buffer, n *node) error {
	if n.kind == KindNull {
		buf.WriteString("null")
		return nil
	}

	writeTag := func(tag string) {
		buf.WriteString(`["`)
		buf.WriteString(tag)
		buf.WriteString(`",`)
	}

	switch n.kind {
	case KindBool:
		writeTag(ctBool)
		buf.WriteString(strconv.FormatBool(n.b))
	case KindInt32:
		writeTag(ctInt32)
		buf.WriteString(strconv.FormatInt(n.i, 10))
	case KindInt64:
		writeTag(ctInt64)
		buf.WriteString(strconv.FormatInt(n.i, 10))
	case KindFloat32:
		writeTag(ctFloat32)
		writeJSONFloat(buf, n.f, 32)
	case KindFloat64:
		writeTag(ctFloat64)
		writeJSONFloat(buf, n.f, 64)
	case KindString:
		writeTag(ctString)
		if err := writeJSONString(buf, n.s); err != nil {
			return err
		}
	case KindVector3, KindQuaternion:
		if n.kind == KindVector3 {
			writeTag(ctVector3)
		} else {
			writeTag(ctQuaternion)
		}
		buf.WriteByte('[')
		for i := 0; i < n.components(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONFloat(buf, float64(n.vec[i]), 32)
		}
		buf.WriteByte(']')
	case KindSequence:
		writeTag(ctSequence)
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendCompact(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		writeTag(ctMapping)
		buf.WriteByte('[')
		for i, e := range n.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('[')
			if err := appendCompact(buf, e.key); err != nil {
				return err
			}
			buf.WriteByte(',')
			if err := appendCompact(buf, e.value); err != nil {
				return err
			}
			buf.WriteByte(']')
		}
		buf.WriteByte(']')
	case KindRecord:
		writeTag(ctRecord)
		buf.WriteByte('{')
		first := true
		for _, f := range n.fields {
			if f.value.kind == KindNull {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONString(buf, f.name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendCompact(buf, f.value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return errs.ErrUnsupportedShape.WithDetailsf("discriminator %d", n.kind)
	}
	buf.WriteByte(']')
	return nil
}

func writeJSONFloat(buf *bytes.Buffer, f float64, bits int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
		buf.WriteByte('"')
		return
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errs.ErrUnsupportedShape.Wrap(err)
	}
	buf.Write(b)
	return nil
}

func parseCompact(raw json.RawMessage, depth int) (*node, error) {
	if depth > maxDepth {
		return nil, errs.ErrMalformedData.WithDetails("nesting too deep")
	}
	if bytes.Equal(raw, []byte("null")) {
		return nullNode, nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, errs.ErrMalformedData.Wrap(err)
	}
	if len(pair) != 2 {
		return nil, errs.ErrMalformedData.WithDetailsf("expected [tag, payload], got %d items", len(pair))
	}
	var tag string
	if err := json.Unmarshal(pair[0], &tag); err != nil {
		return nil, errs.ErrMalformedData.Wrap(err)
	}
	payload := pair[1]

	switch tag {
	case ctBool:
		n := &node{kind: KindBool}
		return n, unmarshalPayload(payload, &n.b)
	case ctInt32, ctInt64:
		n := &node{kind: KindInt64}
		bits := 64
		if tag == ctInt32 {
			n.kind, bits = KindInt32, 32
		}
		v, err := strconv.ParseInt(string(payload), 10, bits)
		if err != nil {
			return nil, errs.ErrMalformedData.Wrap(err)
		}
		n.i = v
		return n, nil
	case ctFloat32, ctFloat64:
		n := &node{kind: KindFloat64}
		bits := 64
		if tag == ctFloat32 {
			n.kind, bits = KindFloat32, 32
		}
		v, err := parseJSONFloat(payload, bits)
		if err != nil {
			return nil, err
		}
		n.f = v
		return n, nil
	case ctString:
		n := &node{kind: KindString}
		return n, unmarshalPayload(payload, &n.s)
	case ctVector3, ctQuaternion:
		n := &node{kind: KindVector3}
		if tag == ctQuaternion {
			n.kind = KindQuaternion
		}
		var parts []json.RawMessage
		if err := unmarshalPayload(payload, &parts); err != nil {
			return nil, err
		}
		if len(parts) != n.components() {
			return nil, errs.ErrMalformedData.WithDetailsf("%s needs %d components, got %d", n.kind, n.components(), len(parts))
		}
		for i, p := range parts {
			v, err := parseJSONFloat(p, 32)
			if err != nil {
				return nil, err
			}
			n.vec[i] = float32(v)
		}
		return n, nil
	case ctSequence:
		var items []json.RawMessage
		if err := unmarshalPayload(payload, &items); err != nil {
			return nil, err
		}
		n := &node{kind: KindSequence, items: make([]*node, len(items))}
		for i, item := range items {
			child, err := parseCompact(item, depth+1)
			if err != nil {
				return nil, err
			}
			n.items[i] = child
		}
		return n, nil
	case ctMapping:
		var pairs [][]json.RawMessage
		if err := unmarshalPayload(payload, &pairs); err != nil {
			return nil, err
		}
		n := &node{kind: KindMapping, entries: make([]nodeEntry, len(pairs))}
		for i, p := range pairs {
			if len(p) != 2 {
				return nil, errs.ErrMalformedData.WithDetailsf("mapping entry %d has %d items", i, len(p))
			}
			k, err := parseCompact(p[0], depth+1)
			if err != nil {
				return nil, err
			}
			v, err := parseCompact(p[1], depth+1)
			if err != nil {
				return nil, err
			}
			n.entries[i] = nodeEntry{key: k, value: v}
		}
		return n, nil
	case ctRecord:
		var fields map[string]json.RawMessage
		if err := unmarshalPayload(payload, &fields); err != nil {
			return nil, err
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		n := &node{kind: KindRecord, fields: make([]nodeField, 0, len(names))}
		for _, name := range names {
			v, err := parseCompact(fields[name], depth+1)
			if err != nil {
				return nil, err
			}
			n.fields = append(n.fields, nodeField{name: name, value: v})
		}
		return n, nil
	}
	return nil, errs.ErrUnsupportedShape.WithDetailsf("tag %q", tag)
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return errs.ErrMalformedData.Wrap(err)
	}
	return nil
}

func parseJSONFloat(raw json.RawMessage, bits int) (float64, error) {
	s := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errs.ErrMalformedData.Wrap(err)
		}
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, errs.ErrMalformedData.Wrap(err)
	}
	return v, nil
}
