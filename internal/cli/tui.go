package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/aleksandar-had/feedback-arc-set/pkg/ring"
)

// historyLines is how many past improvements the status view keeps on screen.
const historyLines = 8

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	tuiLabelStyle = lipgloss.NewStyle().Foreground(colorGray)
	tuiOldStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

type (
	tickMsg     time.Time
	improvedMsg struct{ sol ring.Solution }
	acyclicMsg  struct{}
	stoppedMsg  struct{ err error }
)

// supervisorModel is the bubbletea model behind supervisor --tui: a live
// view of the session's progress fed by the consumer loop.
type supervisorModel struct {
	session string
	cancel  context.CancelFunc

	start   time.Time
	frame   int
	best    int
	history []ring.Solution
	acyclic bool
	stopped bool
	err     error
}

func newSupervisorModel(session string, cancel context.CancelFunc) supervisorModel {
	return supervisorModel{
		session: session,
		cancel:  cancel,
		start:   time.Now(),
		best:    ring.UnsetBest,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m supervisorModel) Init() tea.Cmd {
	return tick()
}

func (m supervisorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Stop the consumer; it answers with stoppedMsg once the
			// session has been wound down.
			m.cancel()
			m.stopped = true
		}
	case tickMsg:
		m.frame++
		return m, tick()
	case improvedMsg:
		m.best = msg.sol.Size()
		m.history = append(m.history, msg.sol)
		if len(m.history) > historyLines {
			m.history = m.history[len(m.history)-historyLines:]
		}
	case acyclicMsg:
		m.acyclic = true
		m.best = 0
	case stoppedMsg:
		m.stopped = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m supervisorModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Feedback Arc Set Search"))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("q quit"))
	b.WriteString("\n\n")

	b.WriteString(tuiLabelStyle.Render("  Session  "))
	b.WriteString(styleValue.Render(m.session))
	b.WriteString("\n")
	b.WriteString(tuiLabelStyle.Render("  Elapsed  "))
	b.WriteString(styleValue.Render(time.Since(m.start).Round(time.Second).String()))
	b.WriteString("\n")
	b.WriteString(tuiLabelStyle.Render("  Best     "))
	if m.best == ring.UnsetBest {
		b.WriteString(styleDim.Render("waiting for candidates"))
	} else {
		b.WriteString(styleNumber.Render(fmt.Sprintf("%d edges", m.best)))
	}
	b.WriteString("\n\n")

	for i, sol := range m.history {
		line := fmt.Sprintf("  %d edges: %s", sol.Size(), sol.String())
		if i == len(m.history)-1 {
			b.WriteString(styleValue.Render(line))
		} else {
			b.WriteString(tuiOldStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.history) > 0 {
		b.WriteString("\n")
	}

	switch {
	case m.acyclic:
		b.WriteString(styleSuccess.Render("  The graph is acyclic!"))
	case m.stopped:
		b.WriteString(styleDim.Render("  stopping..."))
	default:
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(styleIconInfo.Render("  " + frame + " collecting candidates"))
	}
	b.WriteString("\n")

	return b.String()
}

// teaReporter forwards consumer results to the running bubbletea program.
type teaReporter struct {
	p *tea.Program
}

func (r teaReporter) Improved(sol ring.Solution) { r.p.Send(improvedMsg{sol: sol}) }
func (r teaReporter) Acyclic()                   { r.p.Send(acyclicMsg{}) }

// runSupervisorTUI runs the consumer loop behind a live status view. The
// loop runs in its own goroutine and reports through teaReporter; quitting
// the view cancels the loop's context, which winds the session down the same
// way an interrupt would.
func runSupervisorTUI(ctx context.Context, sess *ring.Session, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSupervisorModel(sess.Name(), cancel))

	go func() {
		err := consume(ctx, sess, teaReporter{p: p}, logger)
		p.Send(stoppedMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		return err
	}
	if m, ok := final.(supervisorModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
