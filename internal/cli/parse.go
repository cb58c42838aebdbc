package cli

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/aleksandar-had/feedback-arc-set/pkg/errors"
	"github.com/aleksandar-had/feedback-arc-set/pkg/graph"
)

// edgePattern is the src-dst argument form: two non-negative integers
// joined by a single hyphen.
var edgePattern = regexp.MustCompile(`^([0-9]+)-([0-9]+)$`)

// edgeList is a parsed input graph. Vertex labels from the command line can
// be arbitrary non-negative integers; the search needs dense ids, so labels
// are mapped to [0, n) in first-seen order and kept for reporting.
type edgeList struct {
	labels []int        // dense id -> original label
	edges  []graph.Edge // dense ids
	index  map[int]int  // original label -> dense id
}

// parseEdges parses command-line edge arguments. An argument of the form
// @path is replaced by the edges listed in that file, one per line, with
// blank lines and #-comments ignored.
func parseEdges(args []string) (*edgeList, error) {
	expanded, err := expandFileArgs(args)
	if err != nil {
		return nil, err
	}
	if len(expanded) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "at least one edge is required")
	}

	l := &edgeList{index: make(map[int]int)}
	for _, arg := range expanded {
		src, dst, err := parseEdgeArg(arg)
		if err != nil {
			return nil, err
		}
		l.edges = append(l.edges, graph.Edge{From: l.dense(src), To: l.dense(dst)})
	}
	return l, nil
}

// parseEdgeArg parses a single src-dst argument into its two labels. Labels
// ride the ring as 32-bit ints, so the range is enforced here.
func parseEdgeArg(arg string) (src, dst int, err error) {
	m := edgePattern.FindStringSubmatch(arg)
	if m == nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidEdge, "edge %q is not of the form <src>-<dst>", arg)
	}
	s, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidEdge, err, "edge %q: source out of range", arg)
	}
	d, err := strconv.ParseInt(m[2], 10, 32)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidEdge, err, "edge %q: target out of range", arg)
	}
	return int(s), int(d), nil
}

func expandFileArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "@") {
			out = append(out, arg)
			continue
		}
		path := strings.TrimPrefix(arg, "@")
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge file %s", path)
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, strings.Fields(line)...)
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge file %s", path)
		}
	}
	return out, nil
}

// dense returns the dense id for a label, assigning the next free one on
// first sight.
func (l *edgeList) dense(label int) int {
	if id, ok := l.index[label]; ok {
		return id
	}
	id := len(l.labels)
	l.index[label] = id
	l.labels = append(l.labels, label)
	return id
}

// vertexCount returns the number of distinct vertex labels seen.
func (l *edgeList) vertexCount() int { return len(l.labels) }

// label maps a dense id back to its original label.
func (l *edgeList) label(id int) int { return l.labels[id] }

// graph builds the directed graph over dense ids.
func (l *edgeList) graph() *graph.Graph {
	g := graph.New(l.vertexCount())
	for _, e := range l.edges {
		g.AddEdge(e.From, e.To)
	}
	return g
}

// describe returns a short human summary like "5 vertices, 7 edges".
func (l *edgeList) describe() string {
	return fmt.Sprintf("%d vertices, %d edges", l.vertexCount(), len(l.edges))
}
