package graph

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures the DOT export.
type DOTOptions struct {
	// Highlight marks edges (in original labels) to draw bold red, typically
	// a candidate feedback arc set. Removing exactly these edges from the
	// picture leaves an acyclic graph.
	Highlight []Edge

	// Labels maps a dense vertex id to its original command-line label.
	// When nil, the dense id is used directly.
	Labels func(int) int
}

// ToDOT converts the graph to Graphviz DOT format. The resulting string can
// be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(g *Graph, opts DOTOptions) string {
	label := opts.Labels
	if label == nil {
		label = func(v int) int { return v }
	}

	highlighted := make(map[Edge]bool, len(opts.Highlight))
	for _, e := range opts.Highlight {
		highlighted[e] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=16];\n")
	buf.WriteString("\n")

	for v := 0; v < g.VertexCount(); v++ {
		fmt.Fprintf(&buf, "  %q;\n", fmt.Sprint(label(v)))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		le := Edge{From: label(e.From), To: label(e.To)}
		if highlighted[le] {
			fmt.Fprintf(&buf, "  %q -> %q [color=red, penwidth=2.0, style=dashed];\n",
				fmt.Sprint(le.From), fmt.Sprint(le.To))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", fmt.Sprint(le.From), fmt.Sprint(le.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return render(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
