package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	ownLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	disconnectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)
)

// Model is the bubbletea model for the chat client.
type Model struct {
	addr string
	send func(string) error

	viewport viewport.Model
	input    textinput.Model

	lines        []string
	ready        bool
	disconnected bool
	sendErr      error
}

// NewModel creates the client model. send transmits one chat line to
// the relay and is the model's only path to the network.
func NewModel(addr string, send func(string) error) Model {
	input := textinput.New()
	input.Placeholder = "type a message"
	input.Prompt = "> "
	input.CharLimit = 512
	input.Focus()

	return Model{
		addr:  addr,
		send:  send,
		input: input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submitInput()
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case serverLineMsg:
		m.appendLine(string(msg))
		return m, nil

	case disconnectedMsg:
		m.disconnected = true
		if msg.err != nil {
			m.appendLine(disconnectedStyle.Render(fmt.Sprintf("disconnected: %v", msg.err)))
		} else {
			m.appendLine(disconnectedStyle.Render("disconnected by server"))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput sends the current input line and echoes it locally. The
// relay never echoes a message back to its author.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.disconnected {
		return m, nil
	}

	if err := m.send(text); err != nil {
		m.sendErr = err
		m.disconnected = true
		m.appendLine(disconnectedStyle.Render(fmt.Sprintf("send failed: %v", err)))
		return m, nil
	}

	m.appendLine(ownLineStyle.Render("you: " + text))
	m.input.Reset()
	return m, nil
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if m.ready {
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize(width, height int) {
	// Two lines for the header, one for the input.
	vpHeight := height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - len(m.input.Prompt) - 1
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "connecting..."
	}

	status := statusStyle.Render(m.addr)
	if m.disconnected {
		status = disconnectedStyle.Render(m.addr + " (disconnected)")
	}
	header := titleStyle.Render("relaychat") + " " + status

	return header + "\n" + m.viewport.View() + "\n" + m.input.View()
}
