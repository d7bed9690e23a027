// Package floorplan holds the transcript of the architectural assistant and
// the download gate for the DXF file derived from the last generated plan.
package floorplan

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"chatfront/internal/models"
	"chatfront/internal/services"
)

var (
	ErrEmptyInput         = errors.New("prompt is empty")
	ErrSubmissionInFlight = errors.New("a floor plan is already being generated")
	ErrDownloadNotReady   = errors.New("no floor plan is ready for download")
	ErrDownloadInFlight   = errors.New("a download is already running")
	ErrClosed             = errors.New("floor plan chat is closed")
)

const (
	SuccessMessage = "Floor plan generated successfully!"

	generateErrorPrefix    = "Error generating floor plan: "
	downloadErrorPrefix    = "Error downloading DXF file: "
	generateFailedFallback = "Failed to generate floor plan"
	downloadFailedFallback = "Failed to download file"
)

// API is the subset of the floor-plan backend the chat uses.
type API interface {
	Generate(ctx context.Context, prompt string) (*models.FloorPlanPayload, error)
	Download(ctx context.Context) (services.Artifact, error)
}

// Saver stores a downloaded artifact and reports where it went.
type Saver interface {
	Save(name string, content []byte) (string, error)
}

type State struct {
	Transcript    []models.ChatMessage
	Input         string
	Loading       bool
	Downloading   bool
	DownloadReady bool
	// Revision advances whenever Transcript changes.
	Revision uint64
}

type Chat struct {
	api    API
	saver  Saver
	logger *zap.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	mu            sync.Mutex
	transcript    []models.ChatMessage
	input         string
	loading       bool
	downloading   bool
	downloadReady bool
	revision      uint64
	closed        bool
}

func New(api API, saver Saver, logger *zap.Logger) *Chat {
	if logger == nil {
		logger = zap.NewNop()
	}
	lifetime, cancel := context.WithCancel(context.Background())
	return &Chat{
		api:        api,
		saver:      saver,
		logger:     logger,
		lifetime:   lifetime,
		cancel:     cancel,
		transcript: []models.ChatMessage{},
	}
}

// SetInput replaces the prompt being typed. Ignored while generating.
func (c *Chat) SetInput(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading || c.closed {
		return false
	}
	c.input = text
	return true
}

// Submit sends the pending prompt. The user entry is appended before the
// request goes out; exactly one system entry follows it, either the
// generated plan or the error. The input is cleared either way.
func (c *Chat) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	prompt := c.input
	if strings.TrimSpace(prompt) == "" {
		c.mu.Unlock()
		return ErrEmptyInput
	}
	if c.loading {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.appendLocked(models.ChatMessage{Role: models.RoleUser, Content: prompt})
	c.loading = true
	c.downloadReady = false
	c.mu.Unlock()

	c.logger.Info("requesting floor plan", zap.Int("prompt_length", len(prompt)))

	ctx, done := c.scope(ctx)
	defer done()

	payload, err := c.api.Generate(ctx, prompt)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = false
	if c.closed {
		return ErrClosed
	}
	c.input = ""

	if err != nil {
		c.logger.Error("floor plan generation failed", zap.Error(err))
		c.appendLocked(models.ChatMessage{
			Role:    models.RoleSystem,
			Content: generateErrorPrefix + services.Detail(err, generateFailedFallback),
		})
		return err
	}

	c.appendLocked(models.ChatMessage{Role: models.RoleSystem, Content: SuccessMessage, Data: payload})
	c.downloadReady = true
	return nil
}

// Download fetches the DXF file and hands it to the saver. It only runs
// while a generated plan is ready. Fetch or save failures are reported as a
// transcript entry, not returned; the returned path is empty in that case.
func (c *Chat) Download(ctx context.Context) (string, error) {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return "", ErrClosed
	case !c.downloadReady:
		c.mu.Unlock()
		return "", ErrDownloadNotReady
	case c.downloading:
		c.mu.Unlock()
		return "", ErrDownloadInFlight
	}
	c.downloading = true
	c.mu.Unlock()

	ctx, done := c.scope(ctx)
	defer done()

	path, err := c.fetchAndSave(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.downloading = false
	if c.closed {
		return "", ErrClosed
	}
	if err != nil {
		c.logger.Error("floor plan download failed", zap.Error(err))
		c.appendLocked(models.ChatMessage{
			Role:    models.RoleSystem,
			Content: downloadErrorPrefix + services.Detail(err, downloadFailedFallback),
		})
		return "", nil
	}

	c.logger.Info("floor plan saved", zap.String("path", path))
	return path, nil
}

func (c *Chat) fetchAndSave(ctx context.Context) (string, error) {
	artifact, err := c.api.Download(ctx)
	if err != nil {
		return "", err
	}
	return c.saver.Save(artifact.Filename, artifact.Content)
}

// State returns a copy of the chat for rendering.
func (c *Chat) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Transcript:    append(make([]models.ChatMessage, 0, len(c.transcript)), c.transcript...),
		Input:         c.input,
		Loading:       c.loading,
		Downloading:   c.downloading,
		DownloadReady: c.downloadReady,
		Revision:      c.revision,
	}
}

// Close cancels outstanding requests; their results are dropped.
func (c *Chat) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *Chat) appendLocked(msg models.ChatMessage) {
	c.transcript = append(c.transcript, msg)
	c.revision++
}

func (c *Chat) scope(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
