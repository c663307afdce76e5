// Package tui shows a running assistant session in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/koscakluka/nova/core/events"
	"github.com/muesli/reflow/wordwrap"
)

const (
	maxLines     = 20
	defaultWidth = 80
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	stateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	noticeStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// RunFunc runs a session and reports its events to onEvent.
type RunFunc func(ctx context.Context, onEvent func(events.Event)) error

type eventMsg struct{ event events.Event }

type doneMsg struct{ err error }

// Run starts run in the background and renders its events until it returns
// or the user quits. Quitting cancels the context passed to run.
func Run(ctx context.Context, assistantName string, run RunFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(assistantName), tea.WithContext(ctx))

	runErr := make(chan error, 1)
	go func() {
		err := run(ctx, func(event events.Event) { program.Send(eventMsg{event: event}) })
		program.Send(doneMsg{err: err})
		runErr <- err
	}()

	_, programErr := program.Run()
	cancel()
	if err := <-runErr; err != nil {
		return err
	}
	if programErr != nil && !errors.Is(programErr, tea.ErrProgramKilled) {
		return programErr
	}
	return nil
}

type Model struct {
	name    string
	spinner spinner.Model
	state   string
	lines   []string
	width   int
	done    bool
	err     error
}

func NewModel(assistantName string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		name:    assistantName,
		spinner: s,
		state:   "greeting",
		width:   defaultWidth,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
	case eventMsg:
		m.apply(msg.event)
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(event events.Event) {
	switch event := event.(type) {
	case events.SessionStateChanged:
		m.state = event.To
	case events.ConversationStarted:
		m.push(assistantStyle.Render(m.name+": ") + event.Greeting)
	case events.UserTranscriptFinal:
		m.push(userStyle.Render("You: ") + event.Transcript)
	case events.UserTranscriptUnrecognized:
		m.push(noticeStyle.Render("(could not understand)"))
	case events.AssistantSpeechSentence:
		m.push(assistantStyle.Render(m.name+": ") + strings.TrimSpace(event.Sentence))
	case events.ConversationClosed:
		m.push(noticeStyle.Render("Conversation closed"))
	}
}

func (m *Model) push(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render(m.name)
	if m.done {
		fmt.Fprintf(&b, "%s %s\n\n", header, stateStyle.Render(m.state))
	} else {
		fmt.Fprintf(&b, "%s %s %s\n\n", header, m.spinner.View(), stateStyle.Render(m.state))
	}

	for _, line := range m.lines {
		b.WriteString(wordwrap.String(line, m.width))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if !m.done {
		b.WriteString("\n" + noticeStyle.Render("press q to quit") + "\n")
	}
	return b.String()
}
