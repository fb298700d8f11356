package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gemchat/internal/api"
	"github.com/diogo/gemchat/internal/chat"
	"github.com/diogo/gemchat/internal/config"
	apierrors "github.com/diogo/gemchat/internal/errors"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the streaming exchange
type (
	// streamStartedMsg is sent once the chunk sequence has been obtained
	streamStartedMsg struct {
		stream api.Stream
	}
	// streamChunkMsg carries one delta from the in-flight stream
	streamChunkMsg struct {
		chunk models.StreamChunk
	}
	// streamDoneMsg is sent on graceful exhaustion
	streamDoneMsg struct{}
	// streamErrMsg is sent on any fault during the exchange
	streamErrMsg struct {
		err error
	}
	// flashClearMsg clears the transient status line
	flashClearMsg struct{}
)

// Model represents the TUI state
type Model struct {
	client    api.GeminiClientInterface
	session   api.ChatSessionInterface
	chat      *chat.Session
	modelName string
	cfg       config.Config

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	stream         api.Stream
	ready          bool
	flash          string
	animationFrame int // Frame counter for loading animation

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(client api.GeminiClientInterface, session api.ChatSessionInterface, modelName string, cfg config.Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		client:    client,
		session:   session,
		chat:      chat.NewSession(),
		modelName: modelName,
		cfg:       cfg,
		textarea:  ta,
		spinner:   s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.textarea.SetWidth(contentWidth - 4)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
			m.textarea.SetWidth(contentWidth - 4)
		}
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			// No cancellation primitive: a started exchange runs to
			// completion or fault, so esc only quits while idle.
			if !m.chat.Pending() {
				return m, tea.Quit
			}

		case "ctrl+y":
			return m.copyLastReply()

		case "ctrl+s":
			return m.exportTranscript()

		case "enter":
			input := m.textarea.Value()
			if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
				return m, tea.Quit
			}

			// Submit rejects blank input and in-flight exchanges itself
			if _, ok := m.chat.Submit(input); ok {
				m.textarea.Reset()
				m.animationFrame = 0
				m.updateViewport()
				m.viewport.GotoBottom()

				return m, tea.Batch(
					m.startStream(strings.TrimSpace(input)),
					m.spinner.Tick,
					animationTick(),
				)
			}
		}

	case streamStartedMsg:
		m.stream = msg.stream
		m.chat.BeginStreaming()
		return m, readNext(m.stream)

	case streamChunkMsg:
		m.chat.ApplyChunk(msg.chunk)
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, readNext(m.stream)

	case streamDoneMsg:
		m.chat.Complete()
		m.stream = nil
		m.updateViewport()
		m.viewport.GotoBottom()

	case streamErrMsg:
		m.chat.Fail(msg.err)
		m.stream = nil
		m.updateViewport()
		m.viewport.GotoBottom()

	case flashClearMsg:
		m.flash = ""

	case spinner.TickMsg:
		if m.chat.Pending() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.chat.Pending() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Update child components - only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.chat.Pending() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// startStream opens the chunk sequence for the submitted prompt
func (m Model) startStream(prompt string) tea.Cmd {
	return func() tea.Msg {
		stream, err := m.session.StreamMessage(prompt)
		if err != nil {
			return streamErrMsg{err: err}
		}
		return streamStartedMsg{stream: stream}
	}
}

// readNext pulls one chunk from the stream. Chunks are consumed strictly in
// delivery order: the next read is only issued after Update has applied the
// previous one.
func readNext(stream api.Stream) tea.Cmd {
	return func() tea.Msg {
		if stream.Next() {
			return streamChunkMsg{chunk: stream.Current()}
		}
		defer func() { _ = stream.Close() }()
		if err := stream.Err(); err != nil {
			return streamErrMsg{err: err}
		}
		return streamDoneMsg{}
	}
}

// copyLastReply copies the most recent assistant reply to the clipboard
func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	msgs := m.chat.Store().Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant && msgs[i].Content != "" {
			if err := clipboard.WriteAll(msgs[i].Content); err != nil {
				m.flash = "clipboard unavailable"
			} else {
				m.flash = "copied last reply"
			}
			return m, clearFlashAfter()
		}
	}
	return m, nil
}

// exportTranscript writes the conversation as Markdown to the transcript dir
func (m Model) exportTranscript() (tea.Model, tea.Cmd) {
	if m.chat.Store().Len() == 0 {
		return m, nil
	}

	dir, err := config.GetTranscriptDir(m.cfg)
	if err != nil {
		m.flash = "export failed: " + err.Error()
		return m, clearFlashAfter()
	}

	path := filepath.Join(dir, chat.TranscriptFileName(time.Now()))
	content := chat.ExportMarkdown(m.chat.Store(), m.modelName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		m.flash = "export failed: " + err.Error()
	} else {
		m.flash = "saved " + path
	}
	return m, clearFlashAfter()
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return flashClearMsg{}
	})
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{
		titleStyle.Render("✦ Gemini Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelName),
	}
	if m.cfg.Persona != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.cfg.Persona),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	header := headerStyle.Width(contentWidth).Render(headerContent)
	sections = append(sections, header)

	// Messages area
	var messagesContent string
	if m.chat.Store().Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	// Input area
	var inputContent string
	if m.chat.Pending() {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}

	inputPanel := inputPanelStyle.Width(contentWidth).Render(inputContent)
	sections = append(sections, inputPanel)

	// Status bar
	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.flash != "" {
		sections = append(sections, flashStyle.Render("  "+m.flash))
	}

	// Error display
	if err := m.chat.LastFault(); err != nil {
		sections = append(sections, m.formatError(err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✦")
	title := welcomeTitleStyle.Width(width).Render("Welcome to Gemini Chat")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)

		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	dots := ""
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots += lipgloss.NewStyle().Foreground(dotColor).Render("●")
	}
	for i := numDots; i < 3; i++ {
		dots += lipgloss.NewStyle().Foreground(colorTextMute).Render("○")
	}

	label := " Gemini is thinking "
	if m.chat.State() == chat.StateStreaming {
		label = " Gemini is responding "
	}
	text := lipgloss.NewStyle().Foreground(colorText).Render(label)

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+Y", "Copy"},
		{"Ctrl+S", "Export"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	msgs := m.chat.Store().Messages()
	for i, msg := range msgs {
		if i > 0 {
			content.WriteString("\n")
		}

		switch msg.Role {
		case models.RoleUser:
			label := userLabelStyle.Render("⬤ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)

		case models.RoleAssistant:
			label := assistantLabelStyle.Render("✦ Gemini")
			content.WriteString(label + "\n")

			body := msg.Content
			if body == "" && m.chat.Pending() && i == len(msgs)-1 {
				// Placeholder still waiting for its first delta
				body = "thinking..."
			}

			rendered, err := render.MarkdownWithWidth(body, bubbleWidth-4)
			if err != nil {
				rendered = body
			}
			rendered = strings.TrimRight(rendered, "\n")

			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(bubble)

			if len(msg.Sources) > 0 {
				srcList := render.Sources(msg.Sources, bubbleWidth-4)
				content.WriteString("\n" + sourcesStyle.Width(bubbleWidth-2).Render(srcList))
			}
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// formatError formats a fault with structured details for display
func (m Model) formatError(err error) string {
	var sb strings.Builder

	sb.WriteString(errorStyle.Render(fmt.Sprintf("⚠ Error: %v", err)))

	detailStyle := lipgloss.NewStyle().Foreground(colorTextDim).PaddingLeft(2)

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString("\n")
		sb.WriteString(detailStyle.Render(fmt.Sprintf("HTTP Status: %d", status)))
	}

	tipStyle := lipgloss.NewStyle().Foreground(colorPrimary).PaddingLeft(2)
	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString("\n")
		sb.WriteString(tipStyle.Render("💡 Check that " + config.APIKeyEnvVar + " is set to a valid key"))
	case apierrors.IsRateLimitError(err):
		sb.WriteString("\n")
		sb.WriteString(tipStyle.Render("💡 Usage limit reached. Try again later or use a different model"))
	case apierrors.IsNetworkError(err):
		sb.WriteString("\n")
		sb.WriteString(tipStyle.Render("💡 Check your internet connection"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString("\n")
		sb.WriteString(tipStyle.Render("💡 Request timed out. Try again"))
	}

	return sb.String()
}

// RunChat starts the chat TUI
func RunChat(client api.GeminiClientInterface, session api.ChatSessionInterface, modelName string, cfg config.Config) error {
	render.SetTUITheme(cfg.TUITheme)
	UpdateTheme()

	m := NewChatModel(client, session, modelName, cfg)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
