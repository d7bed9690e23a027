package stubserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chatfront/internal/middleware"
	"chatfront/internal/models"
)

const createdAtLayout = "2006-01-02T15:04:05"

var moodKeywords = []struct {
	mood     string
	keywords []string
}{
	{"anxious", []string{"anxious", "anxiety", "nervous", "worried", "panic"}},
	{"stressed", []string{"stress", "overwhelm", "pressure", "deadline"}},
	{"sad", []string{"sad", "down", "lonely", "depressed", "cry"}},
	{"angry", []string{"angry", "furious", "mad", "annoyed"}},
	{"confused", []string{"confused", "lost", "unsure", "don't know"}},
	{"excited", []string{"excited", "can't wait", "thrilled"}},
	{"happy", []string{"happy", "great", "good", "glad", "grateful"}},
}

var moodReplies = map[string]string{
	"anxious":  "I'm sorry you're feeling anxious. Let's take a slow breath together. What is weighing on you most right now?",
	"stressed": "That sounds like a lot to carry. Which part feels most urgent, and is there one small piece we could set aside?",
	"sad":      "I'm here with you. It's okay to feel down. Would you like to talk about what happened?",
	"angry":    "It makes sense to feel angry when something feels unfair. What triggered it?",
	"confused": "Let's untangle it together. Can you tell me what feels most unclear?",
	"excited":  "That's wonderful! What are you looking forward to the most?",
	"happy":    "I'm glad to hear that! What's been going well for you?",
	"neutral":  "Thank you for sharing. How are you feeling about things today?",
}

func detectMood(message string) string {
	lower := strings.ToLower(message)
	for _, candidate := range moodKeywords {
		for _, kw := range candidate.keywords {
			if strings.Contains(lower, kw) {
				return candidate.mood
			}
		}
	}
	return "neutral"
}

func (s *Server) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authorizedUser(w, r, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	s.mu.Lock()
	stored := s.conversations[userID]
	out := make([]models.Conversation, 0, len(stored))
	for _, c := range stored {
		out = append(out, c.Conversation)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Message content is required")
		return
	}
	if _, ok := s.authorizedUser(w, r, strconv.FormatInt(req.UserID, 10)); !ok {
		return
	}

	model, err := models.ParseModelTag(string(req.Model))
	if err != nil {
		model = models.ModelOpenAI
	}

	now := s.opts.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	mood := detectMood(req.Content)
	s.nextID++
	conv := models.Conversation{
		ID:          s.nextID,
		UserMessage: req.Content,
		BotResponse: fmt.Sprintf("%s (%s)", moodReplies[mood], model.Label()),
		UserMood:    mood,
		CreatedAt:   now.Format(createdAtLayout),
	}
	s.conversations[req.UserID] = append([]storedConversation{{Conversation: conv, createdAt: now}}, s.conversations[req.UserID]...)

	s.logger.Info("stub conversation created",
		zap.Int64("user_id", req.UserID),
		zap.Int64("id", conv.ID),
		zap.String("mood", mood),
		zap.String("model", string(model)),
	)
	writeJSON(w, http.StatusOK, models.SendMessageResponse{Conversation: conv})
}

func (s *Server) DailyStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authorizedUser(w, r, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	since := s.opts.Now().Add(-time.Duration(days) * 24 * time.Hour)

	s.mu.Lock()
	byDate := make(map[string]*models.MoodStat)
	seen := make(map[string]map[string]bool)
	for _, c := range s.conversations[userID] {
		if !c.createdAt.After(since) {
			continue
		}
		date := c.createdAt.Format("2006-01-02")
		stat, ok := byDate[date]
		if !ok {
			stat = &models.MoodStat{Date: date}
			byDate[date] = stat
			seen[date] = make(map[string]bool)
		}
		stat.MessageCount++
		if !seen[date][c.UserMood] {
			seen[date][c.UserMood] = true
			stat.Moods = append(stat.Moods, c.UserMood)
		}
	}
	s.mu.Unlock()

	out := make([]models.MoodStat, 0, len(byDate))
	for _, stat := range byDate {
		sort.Strings(stat.Moods)
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })

	writeJSON(w, http.StatusOK, out)
}

// authorizedUser parses the user in the path or body and, when bearer auth
// is on, checks it against the token's user.
func (s *Server) authorizedUser(w http.ResponseWriter, r *http.Request, raw string) (int64, bool) {
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	if tokenUser, ok := middleware.GetUserID(r.Context()); ok && tokenUser != userID {
		writeError(w, http.StatusForbidden, "Access denied")
		return 0, false
	}
	return userID, true
}

// messageUser keys the message limit by the body's user_id, leaving the
// body readable for the handler.
func messageUser(r *http.Request) (string, bool) {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	var req models.SendMessageRequest
	if err := json.Unmarshal(body, &req); err != nil || req.UserID <= 0 {
		return "", false
	}
	return strconv.FormatInt(req.UserID, 10), true
}
