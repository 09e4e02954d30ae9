// Package tui provides a live terminal view of a steepest-descent
// relaxation run, plotting the convergence of the largest per-particle
// force as the engine iterates.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/chryswoods/openmm/internal/minimize"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const plotHeight = 12

type model struct {
	stepper  *minimize.Stepper
	maxForce float64
	done     bool
	paused   bool
	err      error

	stepsPerTick int
	width        int
	height       int
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// NewLive wraps a relaxation stepper in a bubbletea program model.
func NewLive(stepper *minimize.Stepper, stepsPerTick int) tea.Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	return model{
		stepper:      stepper,
		stepsPerTick: stepsPerTick,
		width:        80,
		height:       24,
	}
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.paused || m.done {
			return m, tick()
		}
		for i := 0; i < m.stepsPerTick && !m.done; i++ {
			maxF, done, err := m.stepper.Step()
			m.maxForce = maxF
			m.done = done
			if err != nil {
				m.err = err
				m.done = true
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Render("force relaxation"))
	b.WriteString("\n\n")

	history := m.stepper.History()
	if len(history) > 1 {
		plotWidth := m.width - 12
		if plotWidth < 20 {
			plotWidth = 20
		}
		series := history
		if len(series) > plotWidth {
			series = series[len(series)-plotWidth:]
		}
		b.WriteString(asciigraph.Plot(series,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("max |F| per iteration")))
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		dim.Render("iteration:"), white.Render(fmt.Sprintf("%d", m.stepper.Iterations())),
		dim.Render("max |F|:"), white.Render(fmt.Sprintf("%.4g", m.maxForce))))

	switch {
	case m.err != nil:
		b.WriteString(yellow.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
	case m.stepper.Converged():
		b.WriteString(green.Render("converged"))
		b.WriteString("\n")
	case m.done:
		b.WriteString(yellow.Render("iteration budget exhausted"))
		b.WriteString("\n")
	case m.paused:
		b.WriteString(yellow.Render("paused"))
		b.WriteString("\n")
	}

	b.WriteString(dim.Render("\nspace pause · q quit\n"))
	return b.String()
}
