package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const reloadInterval = 750 * time.Millisecond

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type reloadMsg struct {
	listing string
	err     error
}

// model drives the "-watch" terminal viewer: it periodically re-lowers the
// source file and re-renders the IR listing inside a scrollable viewport.
type model struct {
	path     string
	graphics bool

	viewport viewport.Model
	ready    bool
	err      error
	loads    int
}

func newModel(path string, graphics bool) model {
	return model{path: path, graphics: graphics}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.reload(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(reloadInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

type tickMsg struct{}

func (m model) reload() tea.Cmd {
	path, graphics := m.path, m.graphics
	return func() tea.Msg {
		listing, err := compile(path, graphics)
		return reloadMsg{listing: listing, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "r":
			return m, m.reload()
		}
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		verticalMargin := headerHeight + footerHeight
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMargin
		}
	case tickMsg:
		return m, tea.Batch(m.reload(), tickCmd())
	case reloadMsg:
		m.loads++
		m.err = msg.err
		if msg.err == nil {
			m.viewport.SetContent(msg.listing)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "\n  initializing..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.viewport.View(), m.footerView())
}

func (m model) headerView() string {
	title := headerStyle.Render(fmt.Sprintf(" %s ", m.path))
	if m.err != nil {
		return title + "  " + errorStyle.Render(m.err.Error())
	}
	return title
}

func (m model) footerView() string {
	pct := 0
	if m.ready {
		pct = int(m.viewport.ScrollPercent() * 100)
	}
	return footerStyle.Render(fmt.Sprintf(" reloads:%d  scroll:%d%%  [r]eload  [q]uit ", m.loads, pct))
}
