package graph

import (
	"strings"
	"testing"
)

func TestToDOT(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)

	dot := ToDOT(g, DOTOptions{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("ToDOT() does not start with digraph header:\n%s", dot)
	}
	for _, want := range []string{`"0" -> "1";`, `"1" -> "2";`, `"2" -> "0";`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Highlight(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)

	dot := ToDOT(g, DOTOptions{Highlight: []Edge{{From: 2, To: 0}}})

	if !strings.Contains(dot, `"2" -> "0" [color=red`) {
		t.Errorf("ToDOT() did not highlight 2-0:\n%s", dot)
	}
	if strings.Contains(dot, `"0" -> "1" [color=red`) {
		t.Errorf("ToDOT() highlighted 0-1 which is not in the set:\n%s", dot)
	}
}

func TestToDOT_Labels(t *testing.T) {
	// Dense ids 0,1 carry original labels 10,20.
	labels := []int{10, 20}
	g := New(2)
	g.AddEdge(0, 1)

	dot := ToDOT(g, DOTOptions{Labels: func(v int) int { return labels[v] }})

	if !strings.Contains(dot, `"10" -> "20";`) {
		t.Errorf("ToDOT() did not apply labels:\n%s", dot)
	}
	if strings.Contains(dot, `"0" -> "1";`) {
		t.Errorf("ToDOT() leaked dense ids:\n%s", dot)
	}
}
