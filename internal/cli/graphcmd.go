package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aleksandar-had/feedback-arc-set/pkg/errors"
	"github.com/aleksandar-had/feedback-arc-set/pkg/graph"
)

// newGraphCmd creates the graph command, which renders the input graph for
// inspection, optionally highlighting a candidate feedback arc set taken
// from a supervisor's output.
func newGraphCmd() *cobra.Command {
	var (
		format    string
		output    string
		highlight []string
	)

	cmd := &cobra.Command{
		Use:   "graph EDGE...",
		Short: "Render the graph as DOT, SVG or PNG",
		Long: `Render the directed graph given as FROM-TO edges. With --highlight, the
named edges are drawn dashed red; passing a reported feedback arc set shows
which edges the search would remove.

  fbarc graph 0-1 1-2 2-0 --highlight 2-0 -o graph.svg
  fbarc graph @graph.txt --format dot`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGraph(args, format, output, highlight)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: dot, svg or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout for dot, graph.FORMAT otherwise)")
	cmd.Flags().StringSliceVar(&highlight, "highlight", nil, "edges to mark, e.g. --highlight 2-0,5-1")

	return cmd
}

func runGraph(args []string, format, output string, highlight []string) error {
	list, err := parseEdges(args)
	if err != nil {
		return err
	}

	marked := make([]graph.Edge, 0, len(highlight))
	for _, h := range highlight {
		from, to, err := parseEdgeArg(h)
		if err != nil {
			return err
		}
		marked = append(marked, graph.Edge{From: from, To: to})
	}

	dot := graph.ToDOT(list.graph(), graph.DOTOptions{
		Highlight: marked,
		Labels:    list.label,
	})

	var data []byte
	switch strings.ToLower(format) {
	case "dot":
		if output == "" {
			fmt.Print(dot)
			return nil
		}
		data = []byte(dot)
	case "svg":
		if data, err = graph.RenderSVG(dot); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
		}
	case "png":
		if data, err = graph.RenderPNG(dot); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render PNG")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot, svg or png)", format)
	}

	if output == "" {
		output = "graph." + strings.ToLower(format)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeResource, err, "write %s", output)
	}

	printSuccess("Rendered %s (%s, %s)", list.describe(), strings.ToUpper(format), formatBytes(len(data)))
	printFile(output)
	return nil
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
