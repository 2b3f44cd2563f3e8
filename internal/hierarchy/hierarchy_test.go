package hierarchy_test

import (
	"slices"
	"testing"

	"github.com/heartmarshall/erp-backend/internal/hierarchy"
)

type rec struct {
	id     int64
	parent *int64
}

func (r rec) RecordID() int64   { return r.id }
func (r rec) ParentRef() *int64 { return r.parent }

func ptr(v int64) *int64 { return &v }

func r(id int64, parent ...int64) rec {
	if len(parent) == 0 {
		return rec{id: id}
	}
	return rec{id: id, parent: ptr(parent[0])}
}

func rowIDs(rows []hierarchy.Row[rec]) []int64 {
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.Record.id
	}
	return ids
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

func TestBuild_DepthAndChildOrder(t *testing.T) {
	t.Parallel()

	roots := hierarchy.Build([]rec{r(1), r(3, 1), r(2, 1), r(4, 2), r(5)})

	if len(roots) != 2 || roots[0].ID() != 1 || roots[1].ID() != 5 {
		t.Fatalf("unexpected roots: %+v", roots)
	}
	children := roots[0].Children
	if len(children) != 2 || children[0].ID() != 3 || children[1].ID() != 2 {
		t.Fatalf("children must follow input order, got %v", children)
	}
	if children[1].Depth != 1 || children[1].Children[0].Depth != 2 {
		t.Errorf("depths: got %d and %d, want 1 and 2", children[1].Depth, children[1].Children[0].Depth)
	}
	if roots[1].Depth != 0 {
		t.Errorf("root depth: got %d", roots[1].Depth)
	}
}

func TestBuild_ChildBeforeParentInInput(t *testing.T) {
	t.Parallel()

	roots := hierarchy.Build([]rec{r(3, 2), r(2, 1), r(1)})

	if len(roots) != 1 || roots[0].ID() != 1 {
		t.Fatalf("want single root 1, got %d roots", len(roots))
	}
	leaf := roots[0].Children[0].Children[0]
	if leaf.ID() != 3 || leaf.Depth != 2 {
		t.Errorf("got leaf %d at depth %d", leaf.ID(), leaf.Depth)
	}
}

func TestBuild_OrphanBecomesRoot(t *testing.T) {
	t.Parallel()

	roots := hierarchy.Build([]rec{r(1), r(2, 99)})

	if len(roots) != 2 || roots[1].ID() != 2 || roots[1].Depth != 0 {
		t.Fatalf("orphan must be a root at depth 0, got %+v", roots)
	}
	if roots[1].ParentID == nil || *roots[1].ParentID != 99 {
		t.Error("orphan must keep its own parent reference")
	}
}

func TestBuild_SelfParentIsRoot(t *testing.T) {
	t.Parallel()

	roots := hierarchy.Build([]rec{r(7, 7)})

	if len(roots) != 1 || roots[0].HasChildren() {
		t.Fatalf("self-parented record must be a childless root, got %+v", roots)
	}
}

func TestBuild_CycleInDataIsBroken(t *testing.T) {
	t.Parallel()

	input := []rec{r(1), r(2, 3), r(3, 4), r(4, 2), r(5, 4)}
	roots := hierarchy.Build(input)

	if got := hierarchy.Count(roots); got != len(input) {
		t.Fatalf("Count = %d, want %d", got, len(input))
	}
	if len(roots) != 2 || roots[1].ID() != 2 {
		t.Fatalf("first cycle member must be promoted, got roots %v", roots)
	}

	seen := map[int64]int{}
	hierarchy.Walk(roots, func(n *hierarchy.Node[rec]) { seen[n.ID()]++ })
	for _, in := range input {
		if seen[in.id] != 1 {
			t.Errorf("record %d appears %d times", in.id, seen[in.id])
		}
	}
}

func TestBuild_CycleTailStaysAttached(t *testing.T) {
	t.Parallel()

	// 5 hangs off the 2 -> 3 -> 4 -> 2 loop and comes first in the input.
	roots := hierarchy.Build([]rec{r(5, 4), r(2, 3), r(3, 4), r(4, 2)})

	if len(roots) != 1 || roots[0].ID() != 4 {
		t.Fatalf("want only cycle member 4 promoted, got roots %v", roots)
	}
	if got := hierarchy.Count(roots); got != 4 {
		t.Fatalf("Count = %d, want 4", got)
	}

	depth := map[int64]int{}
	parent := map[int64]int64{}
	var visit func(p *hierarchy.Node[rec])
	visit = func(p *hierarchy.Node[rec]) {
		depth[p.ID()] = p.Depth
		for _, c := range p.Children {
			parent[c.ID()] = p.ID()
			visit(c)
		}
	}
	visit(roots[0])

	if parent[5] != 4 || depth[5] != 1 {
		t.Errorf("record 5: parent %d depth %d, want parent 4 depth 1", parent[5], depth[5])
	}
	if parent[3] != 4 || parent[2] != 3 || depth[2] != 2 {
		t.Errorf("cycle remainder misplaced: parents %v depths %v", parent, depth)
	}
}

func TestBuild_Completeness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []rec
	}{
		{name: "empty", input: nil},
		{name: "flat", input: []rec{r(1), r(2), r(3)}},
		{name: "chain", input: []rec{r(1), r(2, 1), r(3, 2), r(4, 3)}},
		{name: "mixed", input: []rec{r(4, 3), r(1), r(3, 1), r(8, 8), r(9, 42), r(5, 6), r(6, 5)}},
		{name: "two cycles", input: []rec{r(1, 2), r(2, 1), r(3, 4), r(4, 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			roots := hierarchy.Build(tt.input)
			if got := hierarchy.Count(roots); got != len(tt.input) {
				t.Fatalf("Count = %d, want %d", got, len(tt.input))
			}
			hierarchy.Walk(roots, func(n *hierarchy.Node[rec]) {
				for _, c := range n.Children {
					if c.Depth != n.Depth+1 {
						t.Errorf("child %d depth %d under parent depth %d", c.ID(), c.Depth, n.Depth)
					}
				}
			})
		})
	}
}

func TestBuild_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	input := []rec{r(2, 1), r(1)}
	snapshot := slices.Clone(input)
	hierarchy.Build(input)

	for i := range input {
		if input[i].id != snapshot[i].id || input[i].parent != snapshot[i].parent {
			t.Fatalf("input modified at %d", i)
		}
	}
}

// ---------------------------------------------------------------------------
// IsCircular
// ---------------------------------------------------------------------------

func TestIsCircular(t *testing.T) {
	t.Parallel()

	// 1 <- 2 <- 3 ; 10 (separate root); 20 <-> 21 cycle already stored.
	links := hierarchy.LinksOf([]rec{r(1), r(2, 1), r(3, 2), r(10), r(20, 21), r(21, 20)})

	tests := []struct {
		name      string
		record    int64
		candidate *int64
		want      bool
	}{
		{name: "no parent", record: 1, candidate: nil, want: false},
		{name: "self parent", record: 2, candidate: ptr(2), want: true},
		{name: "descendant as parent", record: 1, candidate: ptr(3), want: true},
		{name: "child as parent", record: 2, candidate: ptr(3), want: true},
		{name: "unrelated root", record: 1, candidate: ptr(10), want: false},
		{name: "ancestor as parent", record: 3, candidate: ptr(1), want: false},
		{name: "move subtree under other root", record: 2, candidate: ptr(10), want: false},
		{name: "unknown candidate", record: 1, candidate: ptr(404), want: false},
		{name: "new record", record: 0, candidate: ptr(3), want: false},
		{name: "existing cycle above", record: 1, candidate: ptr(20), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := hierarchy.IsCircular(links, tt.record, tt.candidate); got != tt.want {
				t.Errorf("IsCircular(%d, %v) = %v, want %v", tt.record, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	links := hierarchy.Links{1: nil, 2: ptr(1)}
	if err := hierarchy.Check(links, 1, ptr(2)); err != hierarchy.ErrCircular {
		t.Errorf("Check = %v, want ErrCircular", err)
	}
	if err := hierarchy.Check(links, 2, nil); err != nil {
		t.Errorf("Check = %v, want nil", err)
	}
}

// ---------------------------------------------------------------------------
// Flatten
// ---------------------------------------------------------------------------

func TestFlatten_CollapsedParentHidesDescendants(t *testing.T) {
	t.Parallel()

	roots := hierarchy.Build([]rec{r(1), r(2, 1), r(3, 2)})
	rows := hierarchy.Flatten(roots, hierarchy.ExpandState{1: true, 2: false})

	if got := rowIDs(rows); !slices.Equal(got, []int64{1, 2}) {
		t.Fatalf("Flatten = %v, want [1 2]", got)
	}
	if rows[1].Depth != 1 || !rows[1].HasChildren || rows[1].Expanded {
		t.Errorf("unexpected row for 2: %+v", rows[1])
	}
}

func TestFlatten_PreOrder(t *testing.T) {
	t.Parallel()

	roots := hierarchy.Build([]rec{r(1), r(2, 1), r(3, 2), r(4, 1), r(5)})
	rows := hierarchy.Flatten(roots, hierarchy.ExpandAll(roots))

	if got := rowIDs(rows); !slices.Equal(got, []int64{1, 2, 3, 4, 5}) {
		t.Fatalf("Flatten = %v", got)
	}
	if rows := hierarchy.Flatten(roots, hierarchy.CollapseAll()); !slices.Equal(rowIDs(rows), []int64{1, 5}) {
		t.Errorf("collapsed Flatten = %v", rowIDs(rows))
	}
}

func TestFlatten_LeafExpandStateIgnored(t *testing.T) {
	t.Parallel()

	roots := hierarchy.Build([]rec{r(1)})
	rows := hierarchy.Flatten(roots, hierarchy.ExpandState{1: true})

	if len(rows) != 1 || rows[0].Expanded || rows[0].HasChildren {
		t.Fatalf("leaf row: %+v", rows)
	}
}

func TestFlatten_Idempotent(t *testing.T) {
	t.Parallel()

	roots := hierarchy.Build([]rec{r(1), r(2, 1), r(3, 1), r(4, 3), r(5)})
	state := hierarchy.ExpandState{1: true, 3: true}

	first := hierarchy.Flatten(roots, state)
	second := hierarchy.Flatten(roots, state)
	if !slices.Equal(first, second) {
		t.Fatalf("Flatten not idempotent: %v vs %v", rowIDs(first), rowIDs(second))
	}
}

func TestExpandState_Toggle(t *testing.T) {
	t.Parallel()

	state := hierarchy.ExpandState{1: true}
	next := state.Toggle(1).Toggle(2)

	if !state.Expanded(1) || state.Expanded(2) {
		t.Error("Toggle must not modify the receiver")
	}
	if next.Expanded(1) || !next.Expanded(2) {
		t.Errorf("toggled state: %v", next)
	}
}
