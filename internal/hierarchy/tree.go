// Package hierarchy builds, validates and projects parent-pointer forests
// over any record type that carries an identity and an optional parent id.
package hierarchy

// Item is a record that can take part in a hierarchy.
type Item interface {
	RecordID() int64
	ParentRef() *int64
}

// Node wraps a record in a materialized tree. ParentID is the record's own
// parent reference; a root may still carry one when the parent is outside
// the set.
type Node[T Item] struct {
	Record   T
	ParentID *int64
	Children []*Node[T]
	Depth    int
}

// ID returns the wrapped record's identity.
func (n *Node[T]) ID() int64 {
	return n.Record.RecordID()
}

// HasChildren reports whether n has any children.
func (n *Node[T]) HasChildren() bool {
	return len(n.Children) > 0
}

// Build materializes a forest from a flat list. A record whose parent
// resolves within the list becomes that parent's child; otherwise it is a
// root. Sibling and root order follow the input order.
//
// A cycle already present in the list is broken by promoting one of its
// members to a root; records hanging off the cycle stay attached to their
// parents. Every record appears exactly once.
// Build does not modify records.
func Build[T Item](records []T) []*Node[T] {
	nodes := make([]*Node[T], len(records))
	byID := make(map[int64]*Node[T], len(records))
	for i, r := range records {
		n := &Node[T]{Record: r, ParentID: r.ParentRef()}
		nodes[i] = n
		if _, dup := byID[n.ID()]; !dup {
			byID[n.ID()] = n
		}
	}

	parentOf := make(map[*Node[T]]*Node[T], len(nodes))
	roots := make([]*Node[T], 0, 8)
	for _, n := range nodes {
		parent := resolveParent(byID, n)
		if parent == nil {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
		parentOf[n] = parent
	}

	visited := make(map[*Node[T]]struct{}, len(nodes))
	var walk func(n *Node[T], depth int)
	walk = func(n *Node[T], depth int) {
		visited[n] = struct{}{}
		n.Depth = depth
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}

	if len(visited) == len(nodes) {
		return roots
	}

	// Whatever is left is a cycle or hangs off one. Break each cycle at the
	// first member reached from the earliest unplaced record.
	for _, n := range nodes {
		if _, ok := visited[n]; ok {
			continue
		}
		member := cycleMember(parentOf, n)
		if parent := parentOf[member]; parent != nil {
			parent.Children = detach(parent.Children, member)
			delete(parentOf, member)
		}
		roots = append(roots, member)
		walk(member, 0)
	}
	return roots
}

// cycleMember follows parent links from n until a node repeats and returns
// that node. n must not reach a root.
func cycleMember[T Item](parentOf map[*Node[T]]*Node[T], n *Node[T]) *Node[T] {
	seen := make(map[*Node[T]]struct{})
	for {
		if _, ok := seen[n]; ok {
			return n
		}
		seen[n] = struct{}{}
		n = parentOf[n]
	}
}

func resolveParent[T Item](byID map[int64]*Node[T], n *Node[T]) *Node[T] {
	if n.ParentID == nil || *n.ParentID == n.ID() {
		return nil
	}
	parent, ok := byID[*n.ParentID]
	if !ok || parent == n {
		return nil
	}
	return parent
}

func detach[T Item](children []*Node[T], n *Node[T]) []*Node[T] {
	out := children[:0]
	for _, c := range children {
		if c != n {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits every node of the forest in pre-order, ignoring expand state.
func Walk[T Item](roots []*Node[T], fn func(n *Node[T])) {
	for _, r := range roots {
		fn(r)
		Walk(r.Children, fn)
	}
}

// Count returns the number of nodes in the forest.
func Count[T Item](roots []*Node[T]) int {
	total := 0
	Walk(roots, func(*Node[T]) { total++ })
	return total
}
