package services

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"chatfront/internal/models"
)

// ConversationAPI talks to the mental-health chat backend.
type ConversationAPI struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewConversationAPI(client *resty.Client, logger *zap.Logger) *ConversationAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationAPI{http: client, logger: logger}
}

// ListConversations returns every stored exchange of the user in the order
// the backend keeps them.
func (a *ConversationAPI) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	resp, err := a.http.R().
		SetContext(ctx).
		SetPathParam("userId", strconv.FormatInt(userID, 10)).
		Get("/api/conversations/{userId}")
	if err != nil {
		return nil, &TransportError{Op: "list conversations", Err: err}
	}
	if !resp.IsSuccess() {
		return nil, apiErrorFrom(resp)
	}

	var conversations []models.Conversation
	if err := decodeBody("list conversations", resp, &conversations); err != nil {
		return nil, err
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	return conversations, nil
}

// SendMessage submits one message and returns the exchange the backend
// created for it.
func (a *ConversationAPI) SendMessage(ctx context.Context, req models.SendMessageRequest) (models.Conversation, error) {
	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/messages")
	if err != nil {
		return models.Conversation{}, &TransportError{Op: "send message", Err: err}
	}
	if !resp.IsSuccess() {
		apiErr := apiErrorFrom(resp)
		a.logger.Warn("send message rejected",
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
		)
		return models.Conversation{}, apiErr
	}

	var out models.SendMessageResponse
	if err := decodeBody("send message", resp, &out); err != nil {
		return models.Conversation{}, err
	}
	return out.Conversation, nil
}

// DailyStats returns per-day message counts and moods for the last days.
func (a *ConversationAPI) DailyStats(ctx context.Context, userID int64, days int) ([]models.MoodStat, error) {
	req := a.http.R().
		SetContext(ctx).
		SetPathParam("userId", strconv.FormatInt(userID, 10))
	if days > 0 {
		req.SetQueryParam("days", strconv.Itoa(days))
	}

	resp, err := req.Get("/api/stats/{userId}")
	if err != nil {
		return nil, &TransportError{Op: "load stats", Err: err}
	}
	if !resp.IsSuccess() {
		return nil, apiErrorFrom(resp)
	}

	var stats []models.MoodStat
	if err := decodeBody("load stats", resp, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
