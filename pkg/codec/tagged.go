package codec

import (
	"bytes"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/savevault-go/pkg/errs"
)

// YAML tags naming each shape in the tagged-text format.
const (
	tagNull       = "!null"
	tagBool       = "!bool"
	tagInt32      = "!int32"
	tagInt64      = "!int64"
	tagFloat32    = "!float32"
	tagFloat64    = "!float64"
	tagString     = "!str"
	tagVector3    = "!vector3"
	tagQuaternion = "!quaternion"
	tagSequence   = "!seq"
	tagMapping    = "!map"
	tagRecord     = "!record"
)

// TaggedText renders values as an indented YAML document in which every node
// carries its shape tag. Mappings are written as a sequence of [key, value]
// pairs so keys of any shape survive.
type TaggedText struct{}

// Name implements Codec.
func (TaggedText) Name() string { return FormatTaggedText }

// Encode implements Codec.
func (TaggedText) Encode(v any) ([]byte, error) {
	n, err := toNode(v, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(n)); err != nil {
		return nil, errs.ErrUnsupportedShape.Wrap(err)
	}
	if err := enc.Close(); err != nil {
		return nil, errs.ErrUnsupportedShape.Wrap(err)
	}
	return buf.Bytes(), nil
}

// Decode implements Codec.
func (TaggedText) Decode(data []byte, target any) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errs.ErrMalformedData.Wrap(err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return errs.ErrMalformedData.WithDetails("expected a single yaml document")
	}
	n, err := fromYAML(doc.Content[0], 0)
	if err != nil {
		return err
	}
	return fromNode(n, target, 0)
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func formatFloat(f float64, bits int) string {
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func toYAML(n *node) *yaml.Node {
	switch n.kind {
	case KindBool:
		return scalar(tagBool, strconv.FormatBool(n.b))
	case KindInt32:
		return scalar(tagInt32, strconv.FormatInt(n.i, 10))
	case KindInt64:
		return scalar(tagInt64, strconv.FormatInt(n.i, 10))
	case KindFloat32:
		return scalar(tagFloat32, formatFloat(n.f, 32))
	case KindFloat64:
		return scalar(tagFloat64, formatFloat(n.f, 64))
	case KindString:
		s := scalar(tagString, n.s)
		s.Style = yaml.DoubleQuotedStyle
		return s
	case KindVector3, KindQuaternion:
		tag := tagVector3
		if n.kind == KindQuaternion {
			tag = tagQuaternion
		}
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: tag, Style: yaml.FlowStyle}
		for i := 0; i < n.components(); i++ {
			y.Content = append(y.Content, scalar("", formatFloat(float64(n.vec[i]), 32)))
		}
		return y
	case KindSequence:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSequence}
		for _, item := range n.items {
			y.Content = append(y.Content, toYAML(item))
		}
		return y
	case KindMapping:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagMapping}
		for _, e := range n.entries {
			pair := &yaml.Node{Kind: yaml.SequenceNode}
			pair.Content = []*yaml.Node{toYAML(e.key), toYAML(e.value)}
			y.Content = append(y.Content, pair)
		}
		return y
	case KindRecord:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: tagRecord}
		for _, f := range n.fields {
			key := scalar("", f.name)
			key.Style = yaml.DoubleQuotedStyle
			y.Content = append(y.Content, key, toYAML(f.value))
		}
		return y
	default:
		return scalar(tagNull, "")
	}
}

func fromYAML(y *yaml.Node, depth int) (*node, error) {
	if depth > maxDepth {
		return nil, errs.ErrMalformedData.WithDetails("nesting too deep")
	}
	if y.Kind == yaml.AliasNode && y.Alias != nil {
		return fromYAML(y.Alias, depth+1)
	}

	switch y.Tag {
	case tagNull:
		return nullNode, nil
	case tagBool:
		v, err := strconv.ParseBool(y.Value)
		if err != nil {
			return nil, malformedYAML(y, err)
		}
		return &node{kind: KindBool, b: v}, nil
	case tagInt32, tagInt64:
		kind, bits := KindInt64, 64
		if y.Tag == tagInt32 {
			kind, bits = KindInt32, 32
		}
		v, err := strconv.ParseInt(y.Value, 10, bits)
		if err != nil {
			return nil, malformedYAML(y, err)
		}
		return &node{kind: kind, i: v}, nil
	case tagFloat32, tagFloat64:
		kind, bits := KindFloat64, 64
		if y.Tag == tagFloat32 {
			kind, bits = KindFloat32, 32
		}
		v, err := strconv.ParseFloat(y.Value, bits)
		if err != nil {
			return nil, malformedYAML(y, err)
		}
		return &node{kind: kind, f: v}, nil
	case tagString:
		if y.Kind != yaml.ScalarNode {
			return nil, malformedYAML(y, nil)
		}
		return &node{kind: KindString, s: y.Value}, nil
	case tagVector3, tagQuaternion:
		n := &node{kind: KindVector3}
		if y.Tag == tagQuaternion {
			n.kind = KindQuaternion
		}
		if y.Kind != yaml.SequenceNode || len(y.Content) != n.components() {
			return nil, malformedYAML(y, nil)
		}
		for i, c := range y.Content {
			v, err := strconv.ParseFloat(c.Value, 32)
			if err != nil {
				return nil, malformedYAML(c, err)
			}
			n.vec[i] = float32(v)
		}
		return n, nil
	case tagSequence:
		if y.Kind != yaml.SequenceNode {
			return nil, malformedYAML(y, nil)
		}
		n := &node{kind: KindSequence, items: make([]*node, len(y.Content))}
		for i, c := range y.Content {
			item, err := fromYAML(c, depth+1)
			if err != nil {
				return nil, err
			}
			n.items[i] = item
		}
		return n, nil
	case tagMapping:
		if y.Kind != yaml.SequenceNode {
			return nil, malformedYAML(y, nil)
		}
		n := &node{kind: KindMapping, entries: make([]nodeEntry, len(y.Content))}
		for i, pair := range y.Content {
			if pair.Kind != yaml.SequenceNode || len(pair.Content) != 2 {
				return nil, malformedYAML(pair, nil)
			}
			k, err := fromYAML(pair.Content[0], depth+1)
			if err != nil {
				return nil, err
			}
			v, err := fromYAML(pair.Content[1], depth+1)
			if err != nil {
				return nil, err
			}
			n.entries[i] = nodeEntry{key: k, value: v}
		}
		return n, nil
	case tagRecord:
		if y.Kind != yaml.MappingNode || len(y.Content)%2 != 0 {
			return nil, malformedYAML(y, nil)
		}
		n := &node{kind: KindRecord, fields: make([]nodeField, 0, len(y.Content)/2)}
		for i := 0; i < len(y.Content); i += 2 {
			v, err := fromYAML(y.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			n.fields = append(n.fields, nodeField{name: y.Content[i].Value, value: v})
		}
		return n, nil
	}
	return nil, errs.ErrUnsupportedShape.WithDetailsf("tag %q at line %d", y.Tag, y.Line)
}

func malformedYAML(y *yaml.Node, cause error) error {
	e := errs.ErrMalformedData.WithDetailsf("%s node at line %d", y.Tag, y.Line)
	if cause != nil {
		return e.Wrap(cause)
	}
	return e
}
