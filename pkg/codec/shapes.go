package codec

// Kind is the shape discriminator written in front of every present value.
type Kind byte

// Shape discriminators. The numeric values are part of the binary format.
const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindVector3
	KindQuaternion
	KindSequence
	KindMapping
	KindRecord
)

var kindNames = [...]string{
	KindNull:       "null",
	KindBool:       "bool",
	KindInt32:      "int32",
	KindInt64:      "int64",
	KindFloat32:    "float32",
	KindFloat64:    "float64",
	KindString:     "string",
	KindVector3:    "vector3",
	KindQuaternion: "quaternion",
	KindSequence:   "sequence",
	KindMapping:    "mapping",
	KindRecord:     "record",
}

// String returns the lowercase shape name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is one of the defined shapes.
func (k Kind) Valid() bool {
	return k <= KindRecord
}

// Vector3 is a three-component single precision vector.
type Vector3 struct {
	X, Y, Z float32
}

// Quaternion is a four-component single precision rotation.
type Quaternion struct {
	X, Y, Z, W float32
}

// Field names one member of a record. Ptr points at the member's storage.
type Field struct {
	Name string
	Ptr  any
}

// Record is implemented by composite values that enumerate their fields.
// Fields is called on a pointer, so the returned Ptr values stay addressable
// while decoding.
type Record interface {
	Fields() []Field
}

// Defaulter is an optional Record hook. SetDefaults runs on a fresh target
// before any field is decoded, so fields absent from the input keep these
// values.
type Defaulter interface {
	SetDefaults()
}

// Sequence is an ordered collection being encoded.
type Sequence interface {
	Len() int
	// Elem returns element i, usually as a pointer.
	Elem(i int) any
}

// SequenceTarget is an ordered collection being decoded.
type SequenceTarget interface {
	// Init replaces the contents with n zero elements.
	Init(n int)
	// ElemPtr returns a pointer to element i.
	ElemPtr(i int) any
}

// Mapping is a key/value collection being encoded.
type Mapping interface {
	Len() int
	// Range calls fn for each entry until fn returns false.
	Range(fn func(key, value any) bool)
}

// MappingTarget is a key/value collection being decoded.
type MappingTarget interface {
	// Init replaces the contents with an empty collection sized for n entries.
	Init(n int)
	// Entry returns pointers to a fresh key and value. Calling commit stores
	// the decoded pair.
	Entry() (key, value any, commit func())
}

// List is a Sequence of T.
type List[T any] []T

func (l List[T]) Len() int { return len(l) }

func (l List[T]) Elem(i int) any { return &l[i] }

func (l *List[T]) Init(n int) { *l = make(List[T], n) }

func (l *List[T]) ElemPtr(i int) any { return &(*l)[i] }

// Map is a Mapping from K to V.
type Map[K comparable, V any] map[K]V

func (m Map[K, V]) Len() int { return len(m) }

func (m Map[K, V]) Range(fn func(key, value any) bool) {
	for k, v := range m {
		if !fn(&k, &v) {
			return
		}
	}
}

func (m *Map[K, V]) Init(n int) { *m = make(Map[K, V], n) }

func (m *Map[K, V]) Entry() (any, any, func()) {
	var (
		k K
		v V
	)
	return &k, &v, func() { (*m)[k] = v }
}

// MapEntry is one pair of a DynamicMapping.
type MapEntry struct {
	Key   any
	Value any
}

// DynamicMapping holds a decoded mapping whose key and value types are not
// known in advance. Keys may be of any shape, including unhashable ones.
type DynamicMapping []MapEntry

func (m DynamicMapping) Len() int { return len(m) }

func (m DynamicMapping) Range(fn func(key, value any) bool) {
	for i := range m {
		if !fn(&m[i].Key, &m[i].Value) {
			return
		}
	}
}

// DynamicField is one field of a DynamicRecord.
type DynamicField struct {
	Name  string
	Value any
}

// DynamicRecord holds a decoded record whose type is not known in advance.
type DynamicRecord []DynamicField

// Fields implements Record.
func (r DynamicRecord) Fields() []Field {
	fields := make([]Field, len(r))
	for i := range r {
		fields[i] = Field{Name: r[i].Name, Ptr: &r[i].Value}
	}
	return fields
}

// Get returns the value of the named field.
func (r DynamicRecord) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}
