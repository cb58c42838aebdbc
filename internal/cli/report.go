package cli

import (
	"fmt"

	"github.com/aleksandar-had/feedback-arc-set/pkg/ring"
)

// reporter consumes finalized candidate solutions on the supervisor side.
// The console reporter prints them; the TUI reporter feeds them to the
// bubbletea model instead.
type reporter interface {
	// Improved is called for every strictly improving candidate.
	Improved(sol ring.Solution)
	// Acyclic is called once when the zero-edge witness is drained.
	Acyclic()
}

// consoleReporter renders results as styled lines on stdout, one per
// improvement, matching the fire-and-forget output of the generator race:
// the last printed line is the best known solution.
type consoleReporter struct{}

func (consoleReporter) Improved(sol ring.Solution) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " Solution with " +
		styleNumber.Render(fmt.Sprintf("%d", sol.Size())) + " edges: " +
		styleValue.Render(sol.String()))
}

func (consoleReporter) Acyclic() {
	fmt.Println(styleSuccess.Render("The graph is acyclic!"))
}
