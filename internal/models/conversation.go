package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ModelTag selects which backend AI provider answers a message.
type ModelTag string

const (
	ModelOpenAI ModelTag = "openai"
	ModelGemini ModelTag = "gemini"
)

// ModelTags lists the selectable providers in display order.
var ModelTags = []ModelTag{ModelOpenAI, ModelGemini}

var ErrUnknownModel = errors.New("unknown model")

// ParseModelTag accepts a provider name case-insensitively.
func ParseModelTag(raw string) (ModelTag, error) {
	switch ModelTag(strings.ToLower(strings.TrimSpace(raw))) {
	case ModelOpenAI:
		return ModelOpenAI, nil
	case ModelGemini:
		return ModelGemini, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownModel, raw)
}

// Label is the human readable provider name.
func (m ModelTag) Label() string {
	switch m {
	case ModelOpenAI:
		return "OpenAI GPT-3.5"
	case ModelGemini:
		return "Google Gemini"
	}
	return string(m)
}

// Next cycles to the other provider.
func (m ModelTag) Next() ModelTag {
	if m == ModelOpenAI {
		return ModelGemini
	}
	return ModelOpenAI
}

// Conversation is one user/bot exchange as stored by the backend.
type Conversation struct {
	ID          int64  `json:"id"`
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
	UserMood    string `json:"user_mood"`
	CreatedAt   string `json:"created_at"`
}

type SendMessageRequest struct {
	UserID  int64    `json:"user_id"`
	Content string   `json:"content"`
	Model   ModelTag `json:"model"`
}

type SendMessageResponse struct {
	Conversation Conversation `json:"conversation"`
}

// MoodStat is one day of aggregated mood activity.
type MoodStat struct {
	Date         string   `json:"date"`
	MessageCount int      `json:"message_count"`
	Moods        []string `json:"moods"`
}

// UnmarshalJSON accepts moods either as a list or as the backend's
// comma-joined string.
func (s *MoodStat) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date         string      `json:"date"`
		MessageCount int         `json:"message_count"`
		Moods        interface{} `json:"moods"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Date = raw.Date
	s.MessageCount = raw.MessageCount
	s.Moods = nil

	switch v := raw.Moods.(type) {
	case string:
		for _, mood := range strings.Split(v, ",") {
			if mood = strings.TrimSpace(mood); mood != "" {
				s.Moods = append(s.Moods, mood)
			}
		}
	case []interface{}:
		for _, item := range v {
			if mood, ok := item.(string); ok {
				s.Moods = append(s.Moods, mood)
			}
		}
	}
	return nil
}
