// Package conversation holds the state of the mental-health chat panel: the
// conversation history of one user, the pending input and the model choice.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"chatfront/internal/identity"
	"chatfront/internal/models"
	"chatfront/internal/services"
)

var (
	ErrEmptyInput         = errors.New("message is empty")
	ErrSubmissionInFlight = errors.New("a message is already being sent")
	ErrClosed             = errors.New("conversation panel is closed")
)

const (
	sendFailedMessage  = "Failed to send message"
	statsFailedMessage = "Failed to load mood statistics"
)

// API is the subset of the conversation backend the panel uses.
type API interface {
	ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error)
	SendMessage(ctx context.Context, req models.SendMessageRequest) (models.Conversation, error)
	DailyStats(ctx context.Context, userID int64, days int) ([]models.MoodStat, error)
}

// Notifier shows a failure to the user without waiting for acknowledgement.
type Notifier interface {
	Error(message string)
}

// State is a copy of the panel for rendering.
type State struct {
	Conversations []models.Conversation
	Input         string
	Loading       bool
	Model         models.ModelTag
	// Revision advances whenever Conversations changes.
	Revision uint64
}

type Panel struct {
	api      API
	identity identity.Provider
	notifier Notifier
	logger   *zap.Logger

	// lifetime is cancelled by Close; every request runs under it.
	lifetime context.Context
	cancel   context.CancelFunc

	mu            sync.Mutex
	conversations []models.Conversation
	input         string
	loading       bool
	model         models.ModelTag
	revision      uint64
	closed        bool
}

func New(api API, provider identity.Provider, notifier Notifier, logger *zap.Logger, model models.ModelTag) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == "" {
		model = models.ModelOpenAI
	}

	lifetime, cancel := context.WithCancel(context.Background())
	return &Panel{
		api:           api,
		identity:      provider,
		notifier:      notifier,
		logger:        logger,
		lifetime:      lifetime,
		cancel:        cancel,
		conversations: []models.Conversation{},
		model:         model,
	}
}

// FetchHistory replaces the local history with the backend's. Failures are
// logged and leave the current history untouched; the user is not told.
func (p *Panel) FetchHistory(ctx context.Context) error {
	ctx, done := p.scope(ctx)
	defer done()

	principal, err := p.identity.Principal(ctx)
	if err != nil {
		p.logger.Error("Error fetching conversations", zap.Error(err))
		return err
	}

	conversations, err := p.api.ListConversations(ctx, principal.UserID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if err != nil {
		p.logger.Error("Error fetching conversations", zap.Int64("user_id", principal.UserID), zap.Error(err))
		return err
	}

	p.conversations = append(make([]models.Conversation, 0, len(conversations)), conversations...)
	p.revision++
	p.logger.Info("conversation history loaded", zap.Int("count", len(conversations)))
	return nil
}

// SetInput replaces the pending message. It is ignored while a message is
// being sent, mirroring the disabled input control.
func (p *Panel) SetInput(text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loading || p.closed {
		return false
	}
	p.input = text
	return true
}

// SetModel chooses the provider for the next submission.
func (p *Panel) SetModel(model models.ModelTag) error {
	tag, err := models.ParseModelTag(string(model))
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.model = tag
	p.mu.Unlock()
	return nil
}

// Submit sends the pending input with the selected model. On success the
// new exchange is placed at the head of the history and the input cleared.
// On failure the user is notified and nothing local changes. Only one
// submission may be in flight at a time.
func (p *Panel) Submit(ctx context.Context) (models.Conversation, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return models.Conversation{}, ErrClosed
	}
	content := p.input
	if strings.TrimSpace(content) == "" {
		p.mu.Unlock()
		return models.Conversation{}, ErrEmptyInput
	}
	if p.loading {
		p.mu.Unlock()
		return models.Conversation{}, ErrSubmissionInFlight
	}
	p.loading = true
	model := p.model
	p.mu.Unlock()

	ctx, done := p.scope(ctx)
	defer done()

	conv, err := p.send(ctx, content, model)

	p.mu.Lock()
	p.loading = false
	if p.closed {
		p.mu.Unlock()
		return models.Conversation{}, ErrClosed
	}
	if err != nil {
		p.mu.Unlock()
		p.logger.Error("Error sending message", zap.String("model", string(model)), zap.Error(err))
		p.notify(services.ServerMessage(err), sendFailedMessage)
		return models.Conversation{}, err
	}

	p.conversations = append([]models.Conversation{conv}, p.conversations...)
	p.input = ""
	p.revision++
	p.mu.Unlock()

	return conv, nil
}

func (p *Panel) send(ctx context.Context, content string, model models.ModelTag) (models.Conversation, error) {
	principal, err := p.identity.Principal(ctx)
	if err != nil {
		return models.Conversation{}, err
	}
	return p.api.SendMessage(ctx, models.SendMessageRequest{
		UserID:  principal.UserID,
		Content: content,
		Model:   model,
	})
}

// Stats loads the user's daily mood summary for the last days.
func (p *Panel) Stats(ctx context.Context, days int) ([]models.MoodStat, error) {
	ctx, done := p.scope(ctx)
	defer done()

	principal, err := p.identity.Principal(ctx)
	if err == nil {
		var stats []models.MoodStat
		stats, err = p.api.DailyStats(ctx, principal.UserID, days)
		if err == nil {
			if p.isClosed() {
				return nil, ErrClosed
			}
			return stats, nil
		}
	}

	if p.isClosed() {
		return nil, ErrClosed
	}
	p.logger.Error("Error loading mood statistics", zap.Error(err))
	p.notify(services.ServerMessage(err), statsFailedMessage)
	return nil, err
}

// State returns a copy of the current panel state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return State{
		Conversations: append(make([]models.Conversation, 0, len(p.conversations)), p.conversations...),
		Input:         p.input,
		Loading:       p.loading,
		Model:         p.model,
		Revision:      p.revision,
	}
}

// Close cancels outstanding requests. Results that arrive afterwards are
// discarded.
func (p *Panel) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
}

func (p *Panel) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// scope derives a request context that ends with either ctx or the panel.
func (p *Panel) scope(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (p *Panel) notify(message, fallback string) {
	if p.notifier == nil {
		return
	}
	if message == "" {
		message = fallback
	}
	p.notifier.Error(message)
}
