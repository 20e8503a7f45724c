// Package codec turns values of a closed set of shapes into bytes and back.
//
// Supported shapes are Null, Bool, Int32, Int64, Float32, Float64, String,
// Vector3, Quaternion, Sequence, Mapping and Record. Go values map onto them
// without reflection:
//
//   - bool, int32, int64, int (as Int64), float32, float64, string, and
//     pointers to these (nil encodes as Null)
//   - Vector3 and Quaternion
//   - Sequence / SequenceTarget, implemented by List[T]
//   - Mapping / MappingTarget, implemented by Map[K, V]
//   - Record, any type that lists its fields through Fields()
//
// A record describes itself:
//
//	type PlayerData struct {
//	    Name  string
//	    Level int32
//	}
//
//	func (p *PlayerData) Fields() []codec.Field {
//	    return []codec.Field{
//	        {Name: "name", Ptr: &p.Name},
//	        {Name: "level", Ptr: &p.Level},
//	    }
//	}
//
// Three codecs share the same shape walker: the compact binary format
// (FormatBinary), an indented YAML document with explicit shape tags
// (FormatTaggedText) and single-line JSON (FormatCompactText). All three are
// self-describing, so fields missing from the input keep their defaults and
// unknown fields are skipped.
package codec
