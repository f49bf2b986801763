// Package ui is the terminal support chat.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"cinewatch/internal/support"
)

// maxTranscript bounds the lines kept on screen.
const maxTranscript = 200

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e50914"))
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	agentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type line struct {
	from string
	text string
}

type answerMsg struct {
	answer Answer
	err    error
}

type chatModel struct {
	ctx       context.Context
	responder Responder
	input     textinput.Model
	lines     []line
	liveAgent bool
	waiting   bool
	height    int
}

func newChatModel(ctx context.Context, r Responder) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Type your message"
	ti.CharLimit = 500
	ti.Focus()

	return chatModel{
		ctx:       ctx,
		responder: r,
		input:     ti,
		lines:     []line{{from: "bot", text: support.Greeting}},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) send(text string) tea.Cmd {
	return func() tea.Msg {
		a, err := m.responder.Respond(m.ctx, text)
		return answerMsg{answer: a, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			if text == "/quit" {
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.appendLine("user", text)
			m.waiting = true
			return m, m.send(text)
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.appendLine("error", msg.err.Error())
			return m, nil
		}
		from := "bot"
		if msg.answer.LiveAgent {
			from = "agent"
		}
		for _, text := range msg.answer.Lines {
			m.appendLine(from, text)
		}
		m.liveAgent = msg.answer.LiveAgent
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) appendLine(from, text string) {
	m.lines = append(m.lines, line{from: from, text: text})
	if len(m.lines) > maxTranscript {
		m.lines = m.lines[len(m.lines)-maxTranscript:]
	}
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CineWatch Support"))
	if m.liveAgent {
		b.WriteString("  " + agentStyle.Render("live agent"))
	}
	b.WriteString("\n\n")

	lines := m.lines
	// header, input and help take six rows
	if m.height > 6 && len(lines) > m.height-6 {
		lines = lines[len(lines)-(m.height-6):]
	}
	for _, l := range lines {
		b.WriteString(renderLine(l))
		b.WriteString("\n")
	}
	if m.waiting {
		b.WriteString(helpStyle.Render("..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send • esc: quit"))
	return b.String()
}

func renderLine(l line) string {
	switch l.from {
	case "user":
		return userStyle.Render("You: ") + l.text
	case "agent":
		return agentStyle.Render("Agent: ") + l.text
	case "error":
		return errStyle.Render("Error: " + l.text)
	default:
		return botStyle.Render("Bot: ") + l.text
	}
}

// Run starts the chat. It uses the full-screen interface when both
// stdin and stdout are terminals, and plain line mode otherwise.
func Run(ctx context.Context, r Responder) error {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := tea.NewProgram(newChatModel(ctx, r), tea.WithContext(ctx)).Run()
		return err
	}
	return RunLines(ctx, r, os.Stdin, os.Stdout)
}

// RunLines reads one message per line from in and writes replies to out
// until EOF or "/quit".
func RunLines(ctx context.Context, r Responder, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Bot: %s\n", support.Greeting)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			return nil
		}

		a, err := r.Respond(ctx, text)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		prefix := "Bot"
		if a.LiveAgent {
			prefix = "Agent"
		}
		for _, l := range a.Lines {
			fmt.Fprintf(out, "%s: %s\n", prefix, l)
		}
	}
	return scanner.Err()
}
