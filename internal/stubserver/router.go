// Package stubserver is a local stand-in for the chat and floor-plan
// backends. It answers with canned content in the same shapes the real
// services use, so the client can run end to end without them.
package stubserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chatfront/internal/middleware"
	"chatfront/internal/models"
)

const messageLimitReached = "Message limit reached. Please upgrade to premium for unlimited messages."

type Options struct {
	// JWTSecret enables bearer verification on the conversation routes.
	JWTSecret string
	// MessageLimit caps messages per user within MessageWindow; 0 disables it.
	MessageLimit  int
	MessageWindow time.Duration
	Logger        *zap.Logger
	Now           func() time.Time
}

type Server struct {
	opts   Options
	logger *zap.Logger

	mu            sync.Mutex
	nextID        int64
	conversations map[int64][]storedConversation // newest first
	lastPlan      *models.FloorPlanPayload
}

type storedConversation struct {
	models.Conversation
	createdAt time.Time
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MessageWindow <= 0 {
		opts.MessageWindow = 4 * time.Hour
	}
	return &Server{
		opts:          opts,
		logger:        opts.Logger,
		conversations: make(map[int64][]storedConversation),
	}
}

// Router wires every stub endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// ──── Mental health chat ────
		r.Group(func(r chi.Router) {
			if s.opts.JWTSecret != "" {
				r.Use(middleware.RequireBearer([]byte(s.opts.JWTSecret)))
			}
			r.Get("/conversations/{userId}", s.ListConversations)
			if s.opts.MessageLimit > 0 {
				limiter := middleware.NewRateLimiter(s.opts.MessageLimit, s.opts.MessageWindow,
					http.StatusForbidden, messageLimitReached).WithClock(s.opts.Now)
				r.With(limiter.Middleware(messageUser)).Post("/messages", s.CreateMessage)
			} else {
				r.Post("/messages", s.CreateMessage)
			}
			r.Get("/stats/{userId}", s.DailyStats)
		})

		// ──── Floor plan assistant ────
		r.Post("/chat", s.GenerateFloorPlan)
		r.Get("/download", s.DownloadFloorPlan)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
