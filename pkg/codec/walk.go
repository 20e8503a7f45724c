package codec

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"slices"
	"unicode/utf8"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// toNode converts a Go value into its node tree.
func toNode(v any, depth int) (*node, error) {
	if depth > maxDepth {
		return nil, errs.ErrUnsupportedShape.WithDetails("nesting too deep")
	}

	switch x := v.(type) {
	case nil:
		return nullNode, nil
	case *any:
		if x == nil {
			return nullNode, nil
		}
		return toNode(*x, depth)
	case bool:
		return &node{kind: KindBool, b: x}, nil
	case *bool:
		if x == nil {
			return nullNode, nil
		}
		return &node{kind: KindBool, b: *x}, nil
	case int32:
		return &node{kind: KindInt32, i: int64(x)}, nil
	case *int32:
		if x == nil {
			return nullNode, nil
		}
		return &node{kind: KindInt32, i: int64(*x)}, nil
	case int64:
		return &node{kind: KindInt64, i: x}, nil
	case *int64:
		if x == nil {
			return nullNode, nil
		}
		return &node{kind: KindInt64, i: *x}, nil
	case int:
		return &node{kind: KindInt64, i: int64(x)}, nil
	case *int:
		if x == nil {
			return nullNode, nil
		}
		return &node{kind: KindInt64, i: int64(*x)}, nil
	case float32:
		return &node{kind: KindFloat32, f: float64(x)}, nil
	case *float32:
		if x == nil {
			return nullNode, nil
		}
		return &node{kind: KindFloat32, f: float64(*x)}, nil
	case float64:
		return &node{kind: KindFloat64, f: x}, nil
	case *float64:
		if x == nil {
			return nullNode, nil
		}
		return &node{kind: KindFloat64, f: *x}, nil
	case string:
		return stringNode(x)
	case *string:
		if x == nil {
			return nullNode, nil
		}
		return stringNode(*x)
	case Vector3:
		return vectorNode(x), nil
	case *Vector3:
		if x == nil {
			return nullNode, nil
		}
		return vectorNode(*x), nil
	case Quaternion:
		return quaternionNode(x), nil
	case *Quaternion:
		if x == nil {
			return nullNode, nil
		}
		return quaternionNode(*x), nil
	case []any:
		return sequenceNode(List[any](x), depth)
	}

	if isNilPointer(v) {
		return nullNode, nil
	}

	switch x := v.(type) {
	case Record:
		return recordNode(x, depth)
	case Sequence:
		return sequenceNode(x, depth)
	case Mapping:
		return mappingNode(x, depth)
	}
	return nil, errs.ErrUnsupportedShape.WithDetailsf("%T", v)
}

// stringNode refuses invalid UTF-8, which the text codecs would alter and
// the binary decoder rejects.
func stringNode(s string) (*node, error) {
	if !utf8.ValidString(s) {
		return nil, errs.ErrUnsupportedShape.WithDetailsf("string %q is not valid UTF-8", s)
	}
	return &node{kind: KindString, s: s}, nil
}

func vectorNode(v Vector3) *node {
	return &node{kind: KindVector3, vec: [4]float32{v.X, v.Y, v.Z}}
}

func quaternionNode(q Quaternion) *node {
	return &node{kind: KindQuaternion, vec: [4]float32{q.X, q.Y, q.Z, q.W}}
}

func recordNode(r Record, depth int) (*node, error) {
	fields := r.Fields()
	n := &node{kind: KindRecord, fields: make([]nodeField, 0, len(fields))}
	for _, f := range fields {
		if !utf8.ValidString(f.Name) {
			return nil, errs.ErrUnsupportedShape.WithDetailsf("field name %q is not valid UTF-8", f.Name)
		}
		child, err := toNode(f.Ptr, depth+1)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		n.fields = append(n.fields, nodeField{name: f.Name, value: child})
	}
	return n, nil
}

func sequenceNode(s Sequence, depth int) (*node, error) {
	n := &node{kind: KindSequence, items: make([]*node, s.Len())}
	for i := range n.items {
		child, err := toNode(s.Elem(i), depth+1)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		n.items[i] = child
	}
	return n, nil
}

// mappingNode sorts entries by the binary form of their keys so equal
// mappings always produce identical output.
func mappingNode(m Mapping, depth int) (*node, error) {
	type sortable struct {
		enc   []byte
		entry nodeEntry
	}
	entries := make([]sortable, 0, m.Len())

	var err error
	m.Range(func(key, value any) bool {
		var k, v *node
		if k, err = toNode(key, depth+1); err != nil {
			err = fmt.Errorf("mapping key: %w", err)
			return false
		}
		if v, err = toNode(value, depth+1); err != nil {
			err = fmt.Errorf("mapping value: %w", err)
			return false
		}
		entries = append(entries, sortable{enc: appendBinary(nil, k), entry: nodeEntry{key: k, value: v}})
		return true
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(entries, func(a, b sortable) int {
		return bytes.Compare(a.enc, b.enc)
	})

	n := &node{kind: KindMapping, entries: make([]nodeEntry, len(entries))}
	for i, e := range entries {
		n.entries[i] = e.entry
	}
	return n, nil
}

// isNilPointer reports whether v is a typed nil pointer hidden in an
// interface. Calling methods on such values would panic.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// fromNode stores n into target, which must be a pointer.
func fromNode(n *node, target any, depth int) error {
	if depth > maxDepth {
		return errs.ErrMalformedData.WithDetails("nesting too deep")
	}
	if target == nil || isNilPointer(target) {
		return errs.ErrUnsupportedShape.WithDetails("nil decode target")
	}
	if n.kind == KindNull {
		setNull(target)
		return nil
	}

	switch t := target.(type) {
	case *any:
		v, err := dynamicValue(n, depth)
		if err != nil {
			return err
		}
		*t = v
		return nil
	case *bool:
		if n.kind != KindBool {
			return mismatch(n, "bool")
		}
		*t = n.b
		return nil
	case *int32:
		if !isInt(n) {
			return mismatch(n, "int32")
		}
		if n.i < math.MinInt32 || n.i > math.MaxInt32 {
			return errs.ErrShapeMismatch.WithDetailsf("%d overflows int32", n.i)
		}
		*t = int32(n.i)
		return nil
	case *int64:
		if !isInt(n) {
			return mismatch(n, "int64")
		}
		*t = n.i
		return nil
	case *int:
		if !isInt(n) {
			return mismatch(n, "int")
		}
		if int64(int(n.i)) != n.i {
			return errs.ErrShapeMismatch.WithDetailsf("%d overflows int", n.i)
		}
		*t = int(n.i)
		return nil
	case *float32:
		if !isFloat(n) {
			return mismatch(n, "float32")
		}
		*t = float32(n.f)
		return nil
	case *float64:
		if !isFloat(n) {
			return mismatch(n, "float64")
		}
		*t = n.f
		return nil
	case *string:
		if n.kind != KindString {
			return mismatch(n, "string")
		}
		*t = n.s
		return nil
	case *Vector3:
		if n.kind != KindVector3 {
			return mismatch(n, "vector3")
		}
		*t = Vector3{X: n.vec[0], Y: n.vec[1], Z: n.vec[2]}
		return nil
	case *Quaternion:
		if n.kind != KindQuaternion {
			return mismatch(n, "quaternion")
		}
		*t = Quaternion{X: n.vec[0], Y: n.vec[1], Z: n.vec[2], W: n.vec[3]}
		return nil
	case **bool:
		return decodeOptional(n, t, depth)
	case **int32:
		return decodeOptional(n, t, depth)
	case **int64:
		return decodeOptional(n, t, depth)
	case **int:
		return decodeOptional(n, t, depth)
	case **float32:
		return decodeOptional(n, t, depth)
	case **float64:
		return decodeOptional(n, t, depth)
	case **string:
		return decodeOptional(n, t, depth)
	case **Vector3:
		return decodeOptional(n, t, depth)
	case **Quaternion:
		return decodeOptional(n, t, depth)
	case *DynamicRecord:
		if n.kind != KindRecord {
			return mismatch(n, "record")
		}
		v, err := dynamicValue(n, depth)
		if err != nil {
			return err
		}
		*t = v.(DynamicRecord)
		return nil
	case *DynamicMapping:
		if n.kind != KindMapping {
			return mismatch(n, "mapping")
		}
		v, err := dynamicValue(n, depth)
		if err != nil {
			return err
		}
		*t = v.(DynamicMapping)
		return nil
	case Record:
		return decodeRecord(n, t, depth)
	case SequenceTarget:
		return decodeSequence(n, t, depth)
	case MappingTarget:
		return decodeMapping(n, t, depth)
	}
	return errs.ErrUnsupportedShape.WithDetailsf("cannot decode into %T", target)
}

func isInt(n *node) bool {
	return n.kind == KindInt32 || n.kind == KindInt64
}

func isFloat(n *node) bool {
	return n.kind == KindFloat32 || n.kind == KindFloat64
}

func mismatch(n *node, want string) error {
	return errs.ErrShapeMismatch.WithDetailsf("have %s, want %s", n.kind, want)
}

// setNull resets primitive targets. Records and collections keep their
// current state.
func setNull(target any) {
	switch t := target.(type) {
	case *any:
		*t = nil
	case *bool:
		*t = false
	case *int32:
		*t = 0
	case *int64:
		*t = 0
	case *int:
		*t = 0
	case *float32:
		*t = 0
	case *float64:
		*t = 0
	case *string:
		*t = ""
	case *Vector3:
		*t = Vector3{}
	case *Quaternion:
		*t = Quaternion{}
	case **bool:
		*t = nil
	case **int32:
		*t = nil
	case **int64:
		*t = nil
	case **int:
		*t = nil
	case **float32:
		*t = nil
	case **float64:
		*t = nil
	case **string:
		*t = nil
	case **Vector3:
		*t = nil
	case **Quaternion:
		*t = nil
	}
}

func decodeOptional[T any](n *node, pp **T, depth int) error {
	v := new(T)
	if err := fromNode(n, v, depth); err != nil {
		return err
	}
	*pp = v
	return nil
}

func decodeRecord(n *node, r Record, depth int) error {
	if n.kind != KindRecord {
		return mismatch(n, "record")
	}
	if d, ok := r.(Defaulter); ok {
		d.SetDefaults()
	}

	fields := r.Fields()
	index := make(map[string]any, len(fields))
	for _, f := range fields {
		index[f.Name] = f.Ptr
	}
	for _, f := range n.fields {
		ptr, ok := index[f.name]
		if !ok {
			continue
		}
		if err := fromNode(f.value, ptr, depth+1); err != nil {
			return fmt.Errorf("field %q: %w", f.name, err)
		}
	}
	return nil
}

func decodeSequence(n *node, s SequenceTarget, depth int) error {
	if n.kind != KindSequence {
		return mismatch(n, "sequence")
	}
	s.Init(len(n.items))
	for i, item := range n.items {
		if err := fromNode(item, s.ElemPtr(i), depth+1); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func decodeMapping(n *node, m MappingTarget, depth int) error {
	if n.kind != KindMapping {
		return mismatch(n, "mapping")
	}
	m.Init(len(n.entries))
	for _, e := range n.entries {
		k, v, commit := m.Entry()
		if err := fromNode(e.key, k, depth+1); err != nil {
			return fmt.Errorf("mapping key: %w", err)
		}
		if err := fromNode(e.value, v, depth+1); err != nil {
			return fmt.Errorf("mapping value: %w", err)
		}
		commit()
	}
	return nil
}

// dynamicValue builds a value that needs no type information: primitives,
// Vector3, Quaternion, List[any], DynamicMapping or DynamicRecord.
func dynamicValue(n *node, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errs.ErrMalformedData.WithDetails("nesting too deep")
	}
	switch n.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return n.b, nil
	case KindInt32:
		return int32(n.i), nil
	case KindInt64:
		return n.i, nil
	case KindFloat32:
		return float32(n.f), nil
	case KindFloat64:
		return n.f, nil
	case KindString:
		return n.s, nil
	case KindVector3:
		return Vector3{X: n.vec[0], Y: n.vec[1], Z: n.vec[2]}, nil
	case KindQuaternion:
		return Quaternion{X: n.vec[0], Y: n.vec[1], Z: n.vec[2], W: n.vec[3]}, nil
	case KindSequence:
		out := make(List[any], len(n.items))
		for i, item := range n.items {
			v, err := dynamicValue(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindMapping:
		out := make(DynamicMapping, len(n.entries))
		for i, e := range n.entries {
			k, err := dynamicValue(e.key, depth+1)
			if err != nil {
				return nil, err
			}
			v, err := dynamicValue(e.value, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = MapEntry{Key: k, Value: v}
		}
		return out, nil
	case KindRecord:
		out := make(DynamicRecord, len(n.fields))
		for i, f := range n.fields {
			v, err := dynamicValue(f.value, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = DynamicField{Name: f.name, Value: v}
		}
		return out, nil
	}
	return nil, errs.ErrUnsupportedShape.WithDetailsf("discriminator %d", n.kind)
}
