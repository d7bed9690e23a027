package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chatfront/internal/floorplan"
	"chatfront/internal/models"
)

// FloorPlanChat is the transcript state the floor plan view drives.
type FloorPlanChat interface {
	SetInput(text string) bool
	Submit(ctx context.Context) error
	Download(ctx context.Context) (string, error)
	State() floorplan.State
	Close()
}

type (
	planGeneratedMsg struct{ err error }
	downloadedMsg    struct {
		path string
		err  error
	}
)

// FloorPlanModel is the floor plan assistant screen.
type FloorPlanModel struct {
	chat   FloorPlanChat
	toasts Toasts

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width    int
	pending  bool
	revision uint64
}

func NewFloorPlanModel(chat FloorPlanChat, toasts Toasts, opts Options) FloorPlanModel {
	opts = opts.withDefaults()

	ti := textinput.New()
	ti.Placeholder = "Describe your floor plan requirements..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Width = opts.Width - 8
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Line

	m := FloorPlanModel{
		chat:     chat,
		toasts:   toasts,
		input:    ti,
		viewport: viewport.New(opts.Width-4, transcriptHeight(opts.Height)),
		spinner:  sp,
		width:    opts.Width,
	}
	m.refresh()
	return m
}

func (m FloorPlanModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForToast(m.toasts))
}

func (m FloorPlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		loading := m.pending || m.chat.State().Loading

		switch msg.Type {
		case tea.KeyCtrlC:
			m.chat.Close()
			return m, tea.Quit

		case tea.KeyCtrlD:
			return m, m.download()

		case tea.KeyEnter:
			if loading {
				return m, nil
			}
			return m.handleSubmit()
		}

		if isScrollKey(msg) {
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
		var tiCmd tea.Cmd
		if !loading {
			m.input, tiCmd = m.input.Update(msg)
			m.chat.SetInput(m.input.Value())
		}
		return m, tiCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = transcriptHeight(msg.Height)
		m.input.Width = msg.Width - 8
		m.refresh()

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		// The user entry lands while the request is still out.
		m.refresh()
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd

	case planGeneratedMsg:
		if errors.Is(msg.err, floorplan.ErrClosed) {
			return m, nil
		}
		m.pending = false
		m.input.SetValue(m.chat.State().Input)
		m.refresh()
		return m, m.input.Focus()

	case downloadedMsg:
		switch {
		case msg.err != nil:
			// Not ready or already running; nothing to show.
		case msg.path != "":
			m.notifyInfo("Saved " + filepath.Base(msg.path) + " to " + filepath.Dir(msg.path))
		}
		m.refresh()

	case toastMsg:
		return m, waitForToast(m.toasts)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m FloorPlanModel) handleSubmit() (tea.Model, tea.Cmd) {
	if strings.TrimSpace(m.input.Value()) == "" {
		return m, nil
	}

	m.chat.SetInput(m.input.Value())
	m.pending = true
	m.input.Blur()

	chat := m.chat
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return planGeneratedMsg{err: chat.Submit(context.Background())}
		},
	)
}

// download is nil unless a generated plan is ready.
func (m FloorPlanModel) download() tea.Cmd {
	st := m.chat.State()
	if !st.DownloadReady || st.Downloading {
		return nil
	}
	chat := m.chat
	return func() tea.Msg {
		path, err := chat.Download(context.Background())
		return downloadedMsg{path: path, err: err}
	}
}

func (m *FloorPlanModel) refresh() {
	st := m.chat.State()
	m.viewport.SetContent(m.renderTranscript(st))
	if st.Revision != m.revision {
		m.revision = st.Revision
		m.viewport.GotoBottom()
	}
}

func (m FloorPlanModel) renderTranscript(st floorplan.State) string {
	width := m.viewport.Width
	bubbleWidth := max(width*3/4, 20)

	if len(st.Transcript) == 0 {
		return hintStyle.Render("Describe the home you want, e.g. \"3-bedroom modern house\".")
	}

	var b strings.Builder
	for _, entry := range st.Transcript {
		if entry.Role == models.RoleUser {
			b.WriteString(alignRight(bubble(userBubbleStyle, entry.Content, bubbleWidth), width))
		} else {
			b.WriteString(bubble(botBubbleStyle, systemStyle.Render(entry.Content), bubbleWidth))
			if entry.Data != nil {
				b.WriteString("\n")
				b.WriteString(summaryStyle.Render(planSummary(entry.Data)))
			}
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m FloorPlanModel) View() string {
	st := m.chat.State()

	header := titleStyle.Render("Architectural Floor Plan Assistant")

	var input string
	if m.pending || st.Loading {
		input = m.spinner.View() + " Generating Floor Plan..."
	} else {
		input = m.input.View()
	}

	hints := []string{"enter generate"}
	if st.DownloadReady {
		if st.Downloading {
			hints = append(hints, "downloading DXF...")
		} else {
			hints = append(hints, "ctrl+d download DXF")
		}
	}
	hints = append(hints, "ctrl+c quit")
	footer := hintStyle.Render(strings.Join(hints, " · "))
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

func (m FloorPlanModel) notifyInfo(message string) {
	if m.toasts != nil {
		m.toasts.Info(message)
	}
}

// planSummary is a one-line description of a generated plan; the plan
// itself is not drawn.
func planSummary(p *models.FloorPlanPayload) string {
	plan := p.FloorPlan
	rooms := len(plan.Rooms)
	noun := "rooms"
	if rooms == 1 {
		noun = "room"
	}
	if plan.Dimensions.TotalArea > 0 {
		return fmt.Sprintf("%d %s, %.1f %s total", rooms, noun, plan.Dimensions.TotalArea, plan.Dimensions.Unit)
	}
	return fmt.Sprintf("%d %s", rooms, noun)
}
