package cmd

import (
	"fmt"

	"launcher-sync/logger"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// progressMsg represents one update from a background task
type progressMsg struct {
	Status  string // current activity line
	Percent int    // 0..100, negative when unknown
	Detail  string // completed entry to append
	Err     string // error entry to append
	Summary string // closing line, shown once the task is done
	Done    bool
}

// progressModel controls the UI for long-running commands
type progressModel struct {
	spinner      spinner.Model
	progressChan chan progressMsg
	task         func(emit func(progressMsg))

	// State
	status    string
	percent   int
	completed []string
	errors    []string
	summary   string
	done      bool
}

func newProgressModel(status string, task func(emit func(progressMsg))) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return progressModel{
		spinner:      s,
		progressChan: make(chan progressMsg, 100), // Buffer slightly to avoid blocking
		task:         task,
		status:       status,
		percent:      -1,
		completed:    []string{},
		errors:       []string{},
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startTask(),
		m.waitForActivity(),
	)
}

func (m progressModel) startTask() tea.Cmd {
	return func() tea.Msg {
		// Run the task in a separate goroutine
		go func() {
			defer close(m.progressChan)
			m.task(func(msg progressMsg) {
				m.progressChan <- msg
			})
		}()
		return nil
	}
}

func (m progressModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return progressMsg{Done: true}
		}
		return msg
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// If done, allow any key to exit
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		if msg.Done {
			m.done = true
			m.status = "Finished"
			return m, tea.Quit
		}
		if msg.Status != "" {
			m.status = msg.Status
		}
		if msg.Percent >= 0 {
			m.percent = msg.Percent
		}
		if msg.Detail != "" {
			m.completed = append(m.completed, msg.Detail)
		}
		if msg.Err != "" {
			m.errors = append(m.errors, msg.Err)
		}
		if msg.Summary != "" {
			m.summary = msg.Summary
		}
		return m, m.waitForActivity()
	}

	return m, nil
}

func (m progressModel) View() string {
	var symbol string
	if m.done {
		symbol = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	} else {
		symbol = m.spinner.View()
	}

	status := m.status
	if m.percent >= 0 {
		status = fmt.Sprintf("%s (%d%%)", m.status, m.percent)
	}
	s := fmt.Sprintf("\n %s %s\n\n", symbol, status)

	if len(m.errors) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Errors:") + "\n"
		for _, e := range m.errors {
			s += fmt.Sprintf("  • %s\n", e)
		}
		s += "\n"
	}

	// Show last few completed entries to keep the view stable
	if len(m.completed) > 0 {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("Completed:") + "\n"
		start := 0
		if len(m.completed) > 5 && !m.done {
			start = len(m.completed) - 5
		}
		for i := start; i < len(m.completed); i++ {
			s += fmt.Sprintf("  • %s\n", m.completed[i])
		}
		s += "\n"
	}

	if m.done && m.summary != "" {
		s += lipgloss.NewStyle().Bold(true).Render(m.summary) + "\n"
	}

	return s
}

// runProgress drives a background task through the interactive progress view.
// The task's emit callback may be called from any goroutine.
func runProgress(status string, task func(emit func(progressMsg))) {
	p := tea.NewProgram(newProgressModel(status, task))
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("Failed to run progress view", zap.Error(err))
	}
}
