package hierarchy

// ExpandState holds the per-node expand flag. A missing id is collapsed.
type ExpandState map[int64]bool

// Expanded reports whether id is expanded.
func (s ExpandState) Expanded(id int64) bool {
	return s[id]
}

// Toggle returns a copy of s with id flipped. s is left untouched.
func (s ExpandState) Toggle(id int64) ExpandState {
	out := make(ExpandState, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[id] = !s[id]
	return out
}

// ExpandAll returns a state with every node that has children expanded.
func ExpandAll[T Item](roots []*Node[T]) ExpandState {
	s := make(ExpandState)
	Walk(roots, func(n *Node[T]) {
		if n.HasChildren() {
			s[n.ID()] = true
		}
	})
	return s
}

// CollapseAll returns an empty state.
func CollapseAll() ExpandState {
	return ExpandState{}
}

// Row is one display row of a flattened tree.
type Row[T Item] struct {
	Record      T    `json:"record"`
	Depth       int  `json:"depth"`
	HasChildren bool `json:"hasChildren"`
	Expanded    bool `json:"expanded"`
}

// Flatten projects the forest into display order: depth-first pre-order,
// descending into a node's children only when the node is expanded.
func Flatten[T Item](roots []*Node[T], state ExpandState) []Row[T] {
	rows := make([]Row[T], 0, len(roots))
	var emit func(nodes []*Node[T])
	emit = func(nodes []*Node[T]) {
		for _, n := range nodes {
			open := n.HasChildren() && state.Expanded(n.ID())
			rows = append(rows, Row[T]{
				Record:      n.Record,
				Depth:       n.Depth,
				HasChildren: n.HasChildren(),
				Expanded:    open,
			})
			if open {
				emit(n.Children)
			}
		}
	}
	emit(roots)
	return rows
}
