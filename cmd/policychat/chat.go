package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/a-h/policychat/client"
	"github.com/a-h/policychat/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type ChatCommand struct {
	ServerURL string `help:"The URL of the policy chat server." env:"POLICYCHAT_URL" default:"http://localhost:5000"`
}

func (c ChatCommand) Run(ctx context.Context) (err error) {
	pcc := client.New(c.ServerURL)

	questions := make(chan string)
	conversations := make(chan []models.ChatMessage)
	errs := make(chan error)
	defer close(questions)

	go func() {
		var req models.ChatPostRequest
		for q := range questions {
			req.Messages = append(req.Messages, newMessage(models.ChatRoleUser, q))
			conversations <- append(slices.Clone(req.Messages), newMessage(models.ChatRoleAssistant, "..."))

			resp, err := pcc.ChatPost(ctx, req)
			if err != nil {
				// Drop the unanswered question.
				req.Messages = req.Messages[:len(req.Messages)-1]
				conversations <- slices.Clone(req.Messages)
				errs <- err
				continue
			}
			req.Messages = append(req.Messages, newMessage(models.ChatRoleAssistant, resp.Message))
			conversations <- slices.Clone(req.Messages)
		}
	}()

	p := tea.NewProgram(newModel(ctx, questions, conversations, errs))
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

func newMessage(role models.ChatRole, text string) models.ChatMessage {
	return models.ChatMessage{
		Role:  role,
		Parts: []models.ChatPart{{Text: text}},
	}
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Foreground  = lipgloss.Color("#f8f8f2")
	Cyan        = lipgloss.Color("#8be9fd")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
)

var (
	headerStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Margin(1).Padding(1, 2)
	errorStyle  = lipgloss.NewStyle().Foreground(Red).Margin(0, 1)
)

const header = `Ask a question about the policy.
Press enter to send, and esc to quit.`

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	err      error
	ctx      context.Context

	questions     chan<- string
	conversations <-chan []models.ChatMessage
	errs          <-chan error
}

func newModel(ctx context.Context, questions chan<- string, conversations <-chan []models.ChatMessage, errs <-chan error) model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 1000
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)
	vp.SetContent(headerStyle.Render(header))

	return model{
		ctx:           ctx,
		textarea:      ta,
		viewport:      vp,
		questions:     questions,
		conversations: conversations,
		errs:          errs,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.subscribeToConversations(),
		m.subscribeToErrors(),
	)
}

func (m model) subscribeToConversations() tea.Cmd {
	return func() tea.Msg {
		select {
		case x := <-m.conversations:
			return x
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m model) subscribeToErrors() tea.Cmd {
	return func() tea.Msg {
		select {
		case x := <-m.errs:
			return x
		case <-m.ctx.Done():
			return nil
		}
	}
}

var roleToStyle = map[models.ChatRole]lipgloss.Style{
	models.ChatRoleUser:      lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Pink),
	models.ChatRoleAssistant: lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Cyan),
}

var roleToIcon = map[models.ChatRole]string{
	models.ChatRoleUser:      "🥷",
	models.ChatRoleAssistant: "📜",
}

func formatMessage(msg models.ChatMessage, width int) string {
	var sb strings.Builder
	for _, p := range msg.Parts {
		sb.WriteString(p.Text)
	}
	style, ok := roleToStyle[msg.Role]
	if !ok {
		style = lipgloss.NewStyle().Foreground(Foreground)
	}
	icon, ok := roleToIcon[msg.Role]
	if !ok {
		icon = "🤷"
	}
	return style.Render(wordwrap.String(strings.TrimSpace(icon+" "+sb.String()), width))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case error:
		m.err = msg
		return m, m.subscribeToErrors()
	case []models.ChatMessage:
		m.err = nil
		width := min(max(m.viewport.Width-6, 20), 100)
		var sb strings.Builder
		sb.WriteString(headerStyle.Render(header))
		sb.WriteString("\n")
		for _, cm := range msg {
			sb.WriteString(formatMessage(cm, width))
			sb.WriteString("\n")
		}
		m.viewport.SetContent(sb.String())
		m.viewport.GotoBottom()
		return m, m.subscribeToConversations()
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 4
		m.textarea.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.textarea.Value())
			if v == "" {
				return m, nil
			}
			m.textarea.Reset()
			questions := m.questions
			return m, func() tea.Msg {
				questions <- v
				return nil
			}
		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
	case cursor.BlinkMsg:
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m model) View() string {
	status := ""
	if m.err != nil {
		status = errorStyle.Render("Error: " + m.err.Error())
	}
	return fmt.Sprintf("%s\n%s\n%s",
		m.viewport.View(),
		status,
		m.textarea.View(),
	) + "\n\n"
}
