package codec

// node is the format-neutral form of one value. Every codec converts Go
// values to a node tree and renders the tree in its own syntax.
type node struct {
	kind    Kind
	b       bool
	i       int64
	f       float64
	s       string
	vec     [4]float32
	items   []*node
	entries []nodeEntry
	fields  []nodeField
}

type nodeEntry struct {
	key, value *node
}

type nodeField struct {
	name  string
	value *node
}

var nullNode = &node{kind: KindNull}

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 512

// components returns how many vec entries the shape uses.
func (n *node) components() int {
	if n.kind == KindQuaternion {
		return 4
	}
	return 3
}
