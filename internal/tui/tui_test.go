package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfront/internal/conversation"
	"chatfront/internal/floorplan"
	"chatfront/internal/identity"
	"chatfront/internal/models"
	"chatfront/internal/services"
)

var testOptions = Options{MarkdownStyle: "notty", Width: 100, Height: 40}

// collect runs cmd and returns the messages it produces, expanding batches.
// Commands that do not finish quickly (cursor blink, toast waits) are
// skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()

	select {
	case msg := <-out:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var msgs []tea.Msg
			for _, c := range batch {
				msgs = append(msgs, collect(c)...)
			}
			return msgs
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// settle feeds the application messages produced by cmd back into m until
// nothing further is produced.
func settle(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	for depth := 0; cmd != nil && depth < 5; depth++ {
		var next []tea.Cmd
		for _, msg := range collect(cmd) {
			switch msg.(type) {
			case historyLoadedMsg, messageSentMsg, statsLoadedMsg, planGeneratedMsg, downloadedMsg:
				var c tea.Cmd
				m, c = m.Update(msg)
				next = append(next, c)
			}
		}
		cmd = tea.Batch(next...)
	}
	return m
}

func typeText(m tea.Model, text string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func press(m tea.Model, key tea.KeyType) (tea.Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: key})
}

type fakeConversationAPI struct {
	mu      sync.Mutex
	history []models.Conversation
	sent    []models.SendMessageRequest
	sendErr error
	block   chan struct{}
	stats   []models.MoodStat
}

func (f *fakeConversationAPI) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	return f.history, nil
}

func (f *fakeConversationAPI) SendMessage(ctx context.Context, req models.SendMessageRequest) (models.Conversation, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return models.Conversation{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	if f.sendErr != nil {
		return models.Conversation{}, f.sendErr
	}
	return models.Conversation{
		ID:          int64(100 + len(f.sent)),
		UserMessage: req.Content,
		BotResponse: "I hear you.",
		UserMood:    "anxious",
		CreatedAt:   "2026-10-18T10:00:00",
	}, nil
}

func (f *fakeConversationAPI) DailyStats(ctx context.Context, userID int64, days int) ([]models.MoodStat, error) {
	return f.stats, nil
}

func newMood(t *testing.T, api *fakeConversationAPI) (MoodModel, *conversation.Panel, *services.NotificationCenter) {
	t.Helper()
	toasts := services.NewNotificationCenter(time.Minute, nil)
	panel := conversation.New(api, identity.Static{UserID: 1}, toasts, nil, models.ModelOpenAI)
	t.Cleanup(panel.Close)
	return NewMoodModel(panel, toasts, testOptions), panel, toasts
}

func TestMoodModel_LoadsHistoryOldestFirst(t *testing.T) {
	api := &fakeConversationAPI{history: []models.Conversation{
		{ID: 2, UserMessage: "second message", BotResponse: "second reply", UserMood: "happy"},
		{ID: 1, UserMessage: "first message", BotResponse: "first reply", UserMood: "sad"},
	}}
	m, _, _ := newMood(t, api)

	var model tea.Model = m
	model = settle(t, model, model.Init())

	view := model.View()
	first := strings.Index(view, "first message")
	second := strings.Index(view, "second message")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, view, "Mood: happy")
}

func TestMoodModel_SubmitClearsInputOnSuccess(t *testing.T) {
	api := &fakeConversationAPI{}
	m, panel, _ := newMood(t, api)

	var model tea.Model = m
	model = typeText(model, "I feel tense")
	model, cmd := press(model, tea.KeyEnter)
	model = settle(t, model, cmd)

	require.Len(t, api.sent, 1)
	assert.Equal(t, "I feel tense", api.sent[0].Content)
	assert.Equal(t, models.ModelOpenAI, api.sent[0].Model)

	mm := model.(MoodModel)
	assert.Equal(t, "", mm.input.Value())
	assert.False(t, mm.sending)
	assert.Len(t, panel.State().Conversations, 1)
	assert.Contains(t, model.View(), "I hear you.")
}

func TestMoodModel_FailureKeepsInputAndShowsToast(t *testing.T) {
	api := &fakeConversationAPI{sendErr: &services.APIError{Status: 503, Message: "Server busy"}}
	m, panel, toasts := newMood(t, api)

	var model tea.Model = m
	model = typeText(model, "hello")
	model, cmd := press(model, tea.KeyEnter)
	model = settle(t, model, cmd)

	assert.Equal(t, "hello", model.(MoodModel).input.Value())
	assert.Empty(t, panel.State().Conversations)

	active := toasts.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Server busy", active[0].Message)
	assert.Contains(t, model.View(), "Server busy")
}

func TestMoodModel_InputDisabledWhileSending(t *testing.T) {
	api := &fakeConversationAPI{block: make(chan struct{})}
	m, _, _ := newMood(t, api)

	var model tea.Model = m
	model = typeText(model, "hello")
	model, _ = press(model, tea.KeyEnter)

	model = typeText(model, " more")
	mm := model.(MoodModel)
	assert.True(t, mm.sending)
	assert.Equal(t, "hello", mm.input.Value())
	assert.Contains(t, model.View(), "Sending...")

	_, cmd := press(model, tea.KeyEnter)
	assert.Nil(t, cmd)
}

func TestMoodModel_CtrlTTogglesModel(t *testing.T) {
	m, panel, _ := newMood(t, &fakeConversationAPI{})

	var model tea.Model = m
	model, _ = press(model, tea.KeyCtrlT)

	assert.Equal(t, models.ModelGemini, panel.State().Model)
	assert.Contains(t, model.View(), "[Google Gemini]")

	model, _ = press(model, tea.KeyCtrlT)
	assert.Equal(t, models.ModelOpenAI, panel.State().Model)
}

func TestMoodModel_ModelCommand(t *testing.T) {
	api := &fakeConversationAPI{}
	m, panel, toasts := newMood(t, api)

	var model tea.Model = m
	model = typeText(model, "/model gemini")
	model, _ = press(model, tea.KeyEnter)

	assert.Equal(t, models.ModelGemini, panel.State().Model)
	assert.Equal(t, "", model.(MoodModel).input.Value())
	assert.Empty(t, api.sent)

	model = typeText(model, "/model llama")
	_, _ = press(model, tea.KeyEnter)

	assert.Equal(t, models.ModelGemini, panel.State().Model)
	active := toasts.Active()
	require.NotEmpty(t, active)
	assert.Equal(t, services.LevelError, active[len(active)-1].Level)
}

func TestMoodModel_SlashTextIsSentAsMessage(t *testing.T) {
	api := &fakeConversationAPI{}
	m, panel, toasts := newMood(t, api)

	var model tea.Model = m
	model = typeText(model, "/sigh I feel anxious today")
	model, cmd := press(model, tea.KeyEnter)
	model = settle(t, model, cmd)

	require.Len(t, api.sent, 1)
	assert.Equal(t, "/sigh I feel anxious today", api.sent[0].Content)
	assert.Len(t, panel.State().Conversations, 1)
	assert.Empty(t, toasts.Active())
	assert.Equal(t, "", model.(MoodModel).input.Value())
}

func TestIsCommand(t *testing.T) {
	assert.True(t, isCommand("/model gemini"))
	assert.True(t, isCommand("/stats"))
	assert.False(t, isCommand("/sigh"))
	assert.False(t, isCommand("/models"))
	assert.False(t, isCommand("hello /stats"))
}

func TestMoodModel_StatsCommand(t *testing.T) {
	api := &fakeConversationAPI{stats: []models.MoodStat{
		{Date: "2026-10-18", MessageCount: 3, Moods: []string{"anxious", "sad"}},
	}}
	m, _, _ := newMood(t, api)

	var model tea.Model = m
	model = typeText(model, "/stats 7")
	model, cmd := press(model, tea.KeyEnter)
	model = settle(t, model, cmd)

	view := model.View()
	assert.Contains(t, view, "Mood over the last 7 days:")
	assert.Contains(t, view, "anxious, sad")
}

func TestMoodModel_CtrlCClosesPanel(t *testing.T) {
	m, panel, _ := newMood(t, &fakeConversationAPI{})

	_, cmd := press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, panel.SetInput("late"))
}

func TestFormatStats(t *testing.T) {
	assert.Equal(t, "No messages in the last 30 days.", formatStats(30, nil))
	assert.Equal(t,
		"Mood over the last 7 days:\n  2026-10-18  1 message  happy",
		formatStats(7, []models.MoodStat{{Date: "2026-10-18", MessageCount: 1, Moods: []string{"happy"}}}),
	)
}

type fakeFloorPlanAPI struct {
	genErr   error
	block    chan struct{}
	artifact services.Artifact
}

func (f *fakeFloorPlanAPI) Generate(ctx context.Context, prompt string) (*models.FloorPlanPayload, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.genErr != nil {
		return nil, f.genErr
	}
	return &models.FloorPlanPayload{FloorPlan: models.FloorPlan{
		Dimensions: models.Dimensions{TotalArea: 120, Unit: "sqm"},
		Rooms:      []models.Room{{Name: "Bedroom 1"}, {Name: "Bedroom 2"}, {Name: "Kitchen"}},
	}}, nil
}

func (f *fakeFloorPlanAPI) Download(ctx context.Context) (services.Artifact, error) {
	return f.artifact, nil
}

func newFloorPlan(t *testing.T, api *fakeFloorPlanAPI) (FloorPlanModel, *floorplan.Chat, *services.NotificationCenter) {
	t.Helper()
	toasts := services.NewNotificationCenter(time.Minute, nil)
	chat := floorplan.New(api, floorplan.DirSaver{Dir: t.TempDir()}, nil)
	t.Cleanup(chat.Close)
	return NewFloorPlanModel(chat, toasts, testOptions), chat, toasts
}

func TestFloorPlanModel_GenerateAndDownload(t *testing.T) {
	api := &fakeFloorPlanAPI{artifact: services.Artifact{Filename: "floor_plan.dxf", Content: []byte("0\nEOF\n")}}
	m, chat, toasts := newFloorPlan(t, api)

	var model tea.Model = m
	assert.NotContains(t, model.View(), "ctrl+d download DXF")

	_, cmd := press(model, tea.KeyCtrlD)
	assert.Nil(t, cmd, "download must be unavailable before a plan exists")

	model = typeText(model, "3-bedroom modern house")
	model, cmd = press(model, tea.KeyEnter)
	model = settle(t, model, cmd)

	st := chat.State()
	require.Len(t, st.Transcript, 2)
	assert.Equal(t, "3-bedroom modern house", st.Transcript[0].Content)
	assert.True(t, st.DownloadReady)

	view := model.View()
	assert.Contains(t, view, floorplan.SuccessMessage)
	assert.Contains(t, view, "3 rooms, 120.0 sqm total")
	assert.Contains(t, view, "ctrl+d download DXF")
	assert.Equal(t, "", model.(FloorPlanModel).input.Value())

	model, cmd = press(model, tea.KeyCtrlD)
	require.NotNil(t, cmd)
	model = settle(t, model, cmd)

	active := toasts.Active()
	require.Len(t, active, 1)
	assert.Contains(t, active[0].Message, "Saved floor_plan.dxf")
}

func TestFloorPlanModel_FailureShowsInlineError(t *testing.T) {
	api := &fakeFloorPlanAPI{genErr: &services.APIError{Status: 500, Message: "model offline"}}
	m, chat, _ := newFloorPlan(t, api)

	var model tea.Model = m
	model = typeText(model, "a barn")
	model, cmd := press(model, tea.KeyEnter)
	model = settle(t, model, cmd)

	st := chat.State()
	require.Len(t, st.Transcript, 2)
	assert.False(t, st.DownloadReady)
	assert.Contains(t, model.View(), "Error generating floor plan: model offline")
	assert.NotContains(t, model.View(), "ctrl+d download DXF")
}

func TestFloorPlanModel_LoadingIndicator(t *testing.T) {
	api := &fakeFloorPlanAPI{block: make(chan struct{})}
	m, _, _ := newFloorPlan(t, api)

	var model tea.Model = m
	model = typeText(model, "a cabin")
	model, _ = press(model, tea.KeyEnter)

	assert.Contains(t, model.View(), "Generating Floor Plan...")
	model = typeText(model, "x")
	assert.Equal(t, "a cabin", model.(FloorPlanModel).input.Value())
}

func TestPlanSummary(t *testing.T) {
	assert.Equal(t, "1 room", planSummary(&models.FloorPlanPayload{FloorPlan: models.FloorPlan{Rooms: []models.Room{{Name: "Studio"}}}}))
}
