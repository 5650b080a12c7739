// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	order, err := New().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_LayerChain(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("common", "library")
	g.AddEdge("library", "starter")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"common", "library", "starter"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge(":a:classes", ":a:jar")
	g.AddEdge(":a:classes", ":a:test")
	g.AddEdge(":a:jar", ":a:build")
	g.AddEdge(":a:test", ":a:build")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order[0] != ":a:classes" || order[len(order)-1] != ":a:build" {
		t.Errorf("expected classes first and build last, got %v", order)
	}
	if len(order) != 4 {
		t.Errorf("expected 4 nodes, got %d: %v", len(order), order)
	}
}

func TestTopologicalSort_InsertionOrderTieBreak(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("z")
	g.AddNode("a")
	g.AddNode("m")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"z", "a", "m"}) {
		t.Errorf("independent nodes should keep insertion order, got %v", order)
	}
}

func TestTopologicalSort_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edges   [][2]string
		minSize int
	}{
		{name: "self loop", edges: [][2]string{{"a", "a"}}, minSize: 1},
		{name: "two nodes", edges: [][2]string{{"a", "b"}, {"b", "a"}}, minSize: 2},
		{name: "three nodes", edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, minSize: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := New()
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1])
			}
			_, err := g.TopologicalSort()
			var cycleErr *CycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("expected *CycleError, got %T: %v", err, err)
			}
			if len(cycleErr.Cycle) < tt.minSize {
				t.Errorf("expected at least %d nodes in cycle, got %v", tt.minSize, cycleErr.Cycle)
			}
		})
	}
}

func TestTopologicalSort_DuplicateEdges(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", order)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")

	c := g.Clone()
	c.AddEdge("b", "a")

	if _, err := g.TopologicalSort(); err != nil {
		t.Fatalf("original graph must stay acyclic, got %v", err)
	}
	if _, err := c.TopologicalSort(); err == nil {
		t.Fatal("clone should contain the added back edge")
	}
	if !slices.Equal(c.Nodes(), []string{"a", "b"}) {
		t.Errorf("clone should keep node order, got %v", c.Nodes())
	}
}

func TestReaches(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddNode("d")

	if !g.Reaches("a", "c") {
		t.Error("a should reach c")
	}
	if g.Reaches("c", "a") {
		t.Error("c should not reach a")
	}
	if g.Reaches("a", "d") {
		t.Error("a should not reach isolated d")
	}
	if g.Reaches("a", "a") {
		t.Error("a should not reach itself without a cycle")
	}
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()
	err := &CycleError{Cycle: []string{"common", "library"}}
	expected := "dependency cycle detected: common -> library"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}
