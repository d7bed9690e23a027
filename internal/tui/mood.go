package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"chatfront/internal/conversation"
	"chatfront/internal/models"
)

const defaultStatsDays = 30

// MoodPanel is the conversation state the mood view drives.
type MoodPanel interface {
	FetchHistory(ctx context.Context) error
	SetInput(text string) bool
	SetModel(model models.ModelTag) error
	Submit(ctx context.Context) (models.Conversation, error)
	Stats(ctx context.Context, days int) ([]models.MoodStat, error)
	State() conversation.State
	Close()
}

type (
	historyLoadedMsg struct{ err error }
	messageSentMsg   struct{ err error }
	statsLoadedMsg   struct {
		days  int
		stats []models.MoodStat
		err   error
	}
)

// MoodModel is the mental-health chat screen.
type MoodModel struct {
	panel  MoodPanel
	toasts Toasts
	opts   Options

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	width    int
	sending  bool
	revision uint64
	notes    []string
}

func NewMoodModel(panel MoodPanel, toasts Toasts, opts Options) MoodModel {
	opts = opts.withDefaults()

	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Width = opts.Width - 8
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := MoodModel{
		panel:    panel,
		toasts:   toasts,
		opts:     opts,
		input:    ti,
		viewport: viewport.New(opts.Width-4, transcriptHeight(opts.Height)),
		spinner:  sp,
		renderer: newMarkdownRenderer(opts.MarkdownStyle, opts.Width-12),
		width:    opts.Width,
	}
	m.revision = panel.State().Revision
	m.viewport.SetContent(m.renderTranscript(panel.State()))
	return m
}

func (m MoodModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.loadHistory(),
		waitForToast(m.toasts),
	)
}

func (m MoodModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.panel.Close()
			return m, tea.Quit

		case tea.KeyCtrlT:
			next := m.panel.State().Model.Next()
			if err := m.panel.SetModel(next); err == nil {
				m.notifyInfo("Model: " + next.Label())
			}
			return m, nil

		case tea.KeyEnter:
			if m.sending {
				return m, nil
			}
			return m.handleSubmit()
		}

		if isScrollKey(msg) {
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
		var tiCmd tea.Cmd
		if !m.sending {
			m.input, tiCmd = m.input.Update(msg)
			m.panel.SetInput(m.input.Value())
		}
		return m, tiCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = transcriptHeight(msg.Height)
		m.input.Width = msg.Width - 8
		if m.renderer != nil {
			m.renderer = newMarkdownRenderer(m.opts.MarkdownStyle, msg.Width-12)
		}
		m.refresh()

	case spinner.TickMsg:
		if m.sending {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
		return m, nil

	case historyLoadedMsg:
		// A failed load keeps whatever history is shown.
		m.refresh()

	case messageSentMsg:
		if errors.Is(msg.err, conversation.ErrClosed) {
			return m, nil
		}
		m.sending = false
		m.input.SetValue(m.panel.State().Input)
		m.input.CursorEnd()
		m.refresh()
		return m, m.input.Focus()

	case statsLoadedMsg:
		if msg.err == nil {
			m.notes = append(m.notes, formatStats(msg.days, msg.stats))
			m.refresh()
			m.viewport.GotoBottom()
		}

	case toastMsg:
		return m, waitForToast(m.toasts)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m MoodModel) handleSubmit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}
	if isCommand(value) {
		return m.handleCommand(value)
	}

	m.panel.SetInput(m.input.Value())
	m.sending = true
	m.input.Blur()

	panel := m.panel
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			_, err := panel.Submit(context.Background())
			return messageSentMsg{err: err}
		},
	)
}

func (m MoodModel) handleCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	m.input.Reset()
	m.panel.SetInput("")

	switch fields[0] {
	case "/model":
		if len(fields) < 2 {
			m.notifyInfo("Model: " + m.panel.State().Model.Label())
			return m, nil
		}
		if err := m.panel.SetModel(models.ModelTag(fields[1])); err != nil {
			m.notifyError(fmt.Sprintf("Unknown model %q (use openai or gemini)", fields[1]))
			return m, nil
		}
		m.notifyInfo("Model: " + m.panel.State().Model.Label())
		return m, nil

	case "/stats":
		days := defaultStatsDays
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n <= 0 {
				m.notifyError("Usage: /stats [days]")
				return m, nil
			}
			days = n
		}
		panel := m.panel
		return m, func() tea.Msg {
			stats, err := panel.Stats(context.Background(), days)
			return statsLoadedMsg{days: days, stats: stats, err: err}
		}
	}
	return m, nil
}

// isCommand reports whether line is one of the view's own commands. Any
// other text, slash or not, is a message for the backend.
func isCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "/model", "/stats":
		return true
	}
	return false
}

func (m MoodModel) loadHistory() tea.Cmd {
	panel := m.panel
	return func() tea.Msg {
		return historyLoadedMsg{err: panel.FetchHistory(context.Background())}
	}
}

// refresh redraws the transcript and follows it to the bottom whenever it
// changed.
func (m *MoodModel) refresh() {
	st := m.panel.State()
	m.viewport.SetContent(m.renderTranscript(st))
	if st.Revision != m.revision {
		m.revision = st.Revision
		m.viewport.GotoBottom()
	}
}

func (m MoodModel) renderTranscript(st conversation.State) string {
	width := m.viewport.Width
	bubbleWidth := max(width*3/4, 20)

	var b strings.Builder
	if len(st.Conversations) == 0 && len(m.notes) == 0 {
		b.WriteString(hintStyle.Render("Start a conversation by typing a message below."))
	}

	// Stored newest first; shown oldest at the top.
	for i := len(st.Conversations) - 1; i >= 0; i-- {
		c := st.Conversations[i]
		b.WriteString(alignRight(bubble(userBubbleStyle, c.UserMessage, bubbleWidth), width))
		b.WriteString("\n")
		b.WriteString(bubble(botBubbleStyle, renderMarkdown(m.renderer, c.BotResponse), bubbleWidth))
		b.WriteString("\n")
		if c.UserMood != "" {
			b.WriteString(moodStyle.Render("Mood: " + c.UserMood))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, note := range m.notes {
		b.WriteString(systemStyle.Render(note))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m MoodModel) View() string {
	st := m.panel.State()

	var selector []string
	for _, tag := range models.ModelTags {
		if tag == st.Model {
			selector = append(selector, selectedModelStyle.Render("["+tag.Label()+"]"))
		} else {
			selector = append(selector, otherModelStyle.Render(tag.Label()))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("Mental Health Support Chat"),
		"  ",
		strings.Join(selector, " "),
	)

	var input string
	if m.sending {
		input = m.spinner.View() + " Sending..."
	} else {
		input = m.input.View()
	}

	footer := hintStyle.Render("enter send · ctrl+t switch model · /stats [days] · ctrl+c quit")
	if m.toasts != nil {
		if toasts := renderToasts(m.toasts.Active(), m.width); toasts != "" {
			footer = toasts + "\n" + footer
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.viewport.View(),
		inputBoxStyle.Width(m.width-4).Render(input),
		footer,
	)
}

func (m MoodModel) notifyInfo(message string) {
	if m.toasts != nil {
		m.toasts.Info(message)
	}
}

func (m MoodModel) notifyError(message string) {
	if m.toasts != nil {
		m.toasts.Error(message)
	}
}

func formatStats(days int, stats []models.MoodStat) string {
	if len(stats) == 0 {
		return fmt.Sprintf("No messages in the last %d days.", days)
	}
	lines := []string{fmt.Sprintf("Mood over the last %d days:", days)}
	for _, s := range stats {
		noun := "messages"
		if s.MessageCount == 1 {
			noun = "message"
		}
		lines = append(lines, fmt.Sprintf("  %s  %d %s  %s", s.Date, s.MessageCount, noun, strings.Join(s.Moods, ", ")))
	}
	return strings.Join(lines, "\n")
}

// isScrollKey reports keys that move the transcript rather than edit the
// input.
func isScrollKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		return true
	}
	return false
}

func transcriptHeight(total int) int {
	return max(total-headerHeight-inputHeight-footerHeight-paddingHeight, 3)
}
