package telemetry

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Padding(0, 2).
			Bold(true)

	tuiLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	tuiValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")).Bold(true)
)

type tuiTickMsg Snapshot

type tuiModel struct {
	reporter *Reporter
	snap     Snapshot
}

func (m tuiModel) Init() tea.Cmd {
	return m.tick()
}

func (m tuiModel) tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tuiTickMsg(m.reporter.Tick())
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tuiTickMsg:
		m.snap = Snapshot(msg)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	header := tuiHeaderStyle.Render(" qiner ")
	row := func(label string, value string) string {
		return tuiLabelStyle.Render(label+": ") + tuiValueStyle.Render(value)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		row("score", fmt.Sprintf("%d", m.snap.ScoreCount)),
		row("sent", fmt.Sprintf("%d", m.snap.SentCount)),
		row("rate", fmt.Sprintf("%d/s", m.snap.IterRate)),
		row("cpu", fmt.Sprintf("%.1f%%", m.snap.CPUPercent)),
		row("mem", fmt.Sprintf("%.1f%%", m.snap.MemPercent)),
		"",
		tuiLabelStyle.Render("ctrl+c to quit"),
	)
}

// runTUI drives a single-screen bubbletea dashboard until ctx is cancelled.
func (r *Reporter) runTUI(ctx context.Context) {
	program := tea.NewProgram(tuiModel{reporter: r})

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, _ = program.Run()
}
