package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultToastTTL       = 6 * time.Second
	maxActiveToasts       = 5
	notificationPollEvery = 500 * time.Millisecond
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a transient toast shown to the user.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	CreatedAt time.Time
}

// NotificationCenter collects toasts without ever blocking the caller and
// expires them after a fixed lifetime.
type NotificationCenter struct {
	mu      sync.Mutex
	items   []Notification
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	updates chan struct{}

	stopOnce sync.Once
	stopChan chan struct{}
}

func NewNotificationCenter(ttl time.Duration, logger *zap.Logger) *NotificationCenter {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationCenter{
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		updates:  make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Notify adds a toast. Only the newest maxActiveToasts are kept.
func (c *NotificationCenter) Notify(level Level, message string) {
	n := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	if over := len(c.items) - maxActiveToasts; over > 0 {
		c.items = append([]Notification(nil), c.items[over:]...)
	}
	c.mu.Unlock()

	c.logger.Debug("notification queued", zap.String("level", string(level)), zap.String("message", message))
	c.signal()
}

func (c *NotificationCenter) Error(message string) { c.Notify(LevelError, message) }

func (c *NotificationCenter) Info(message string) { c.Notify(LevelInfo, message) }

// Active returns the toasts that have not expired, oldest first.
func (c *NotificationCenter) Active() []Notification {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	active := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if !shouldExpire(n.CreatedAt, c.ttl, now) {
			active = append(active, n)
		}
	}
	return active
}

// Updates fires after the set of toasts changed. Bursts coalesce into one
// signal.
func (c *NotificationCenter) Updates() <-chan struct{} {
	return c.updates
}

// Start runs the expiry loop until Stop.
func (c *NotificationCenter) Start() {
	go c.loop()
}

func (c *NotificationCenter) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *NotificationCenter) loop() {
	ticker := time.NewTicker(notificationPollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			if c.prune(c.now()) > 0 {
				c.signal()
			}
		}
	}
}

func (c *NotificationCenter) prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, n := range c.items {
		if !shouldExpire(n.CreatedAt, c.ttl, now) {
			kept = append(kept, n)
		}
	}
	removed := len(c.items) - len(kept)
	c.items = kept
	return removed
}

func (c *NotificationCenter) signal() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

func shouldExpire(createdAt time.Time, ttl time.Duration, now time.Time) bool {
	return now.Sub(createdAt) >= ttl
}
