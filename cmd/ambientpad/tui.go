package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cbegin/ambientpad-go"
)

type tickMsg time.Time

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("183"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	stateStyles = map[ambientpad.State]lipgloss.Style{
		ambientpad.Idle:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		ambientpad.Playing:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		ambientpad.Draining: lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
	}
)

// pulse frames shown next to the state while sound is running
var pulse = []string{"·  ", "•  ", "●  ", "•  "}

type model struct {
	engine  *ambientpad.Engine
	backend string
	state   ambientpad.State
	err     error
	frame   int
}

func newModel(engine *ambientpad.Engine, backend string) model {
	return model{engine: engine, backend: backend, state: engine.State()}
}

func tick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ", "enter", "t":
			m.err = m.engine.Toggle()
			m.state = m.engine.State()
		case "q", "esc", "ctrl+c":
			m.engine.Dispose()
			m.state = m.engine.State()
			return m, tea.Quit
		}
	case tickMsg:
		m.frame++
		m.state = m.engine.State()
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ambient pad"))
	b.WriteString("\n\n")

	indicator := "   "
	if m.state != ambientpad.Idle {
		indicator = pulse[m.frame%len(pulse)]
	}
	fmt.Fprintf(&b, "%s%s  %s\n", indicator, stateStyles[m.state].Render(m.state.String()), labelStyle.Render(m.backend))

	p := m.engine.Params()
	fmt.Fprintf(&b, "\n%s %.1f Hz × %.3f\n", labelStyle.Render("tone  "), p.BaseFreq, p.DetuneRatio)
	fmt.Fprintf(&b, "%s %.0f Hz q %.2f, lfo %.2f Hz depth %.2f\n", labelStyle.Render("filter"), p.FilterCutoff, p.FilterQ, p.LFORate, p.LFODepth)
	fmt.Fprintf(&b, "%s %.2f s feedback %.2f\n", labelStyle.Render("delay "), p.DelayTime, p.Feedback)

	if m.err != nil {
		b.WriteString("\n" + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("space toggle • q quit") + "\n")
	return b.String()
}
