package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelTag(t *testing.T) {
	tests := []struct {
		raw     string
		want    ModelTag
		wantErr bool
	}{
		{"openai", ModelOpenAI, false},
		{" Gemini ", ModelGemini, false},
		{"claude", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseModelTag(tc.raw)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownModel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestModelTagNext(t *testing.T) {
	assert.Equal(t, ModelGemini, ModelOpenAI.Next())
	assert.Equal(t, ModelOpenAI, ModelGemini.Next())
}

func TestErrorResponseMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain error", `{"error":"Message limit reached"}`, "Message limit reached"},
		{"structured error", `{"error":{"code":"AI_ERROR","message":"Failed to get AI response"}}`, "Failed to get AI response"},
		{"detail", `{"detail":"Invalid floor plan request"}`, "Invalid floor plan request"},
		{"validation detail", `{"detail":[{"loc":["body","message"],"msg":"field required"}]}`, "field required"},
		{"error wins over detail", `{"error":"first","detail":"second"}`, "first"},
		{"empty error falls through", `{"error":"","detail":"second"}`, "second"},
		{"nothing usable", `{"status":"bad"}`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(tc.body), &resp))
			assert.Equal(t, tc.want, resp.Message())
		})
	}
}

func TestMoodStatAcceptsListOrJoinedString(t *testing.T) {
	var fromList MoodStat
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-10-01","message_count":3,"moods":["sad","anxious"]}`), &fromList))
	assert.Equal(t, []string{"sad", "anxious"}, fromList.Moods)
	assert.Equal(t, 3, fromList.MessageCount)

	var fromString MoodStat
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-10-02","message_count":2,"moods":"happy, calm"}`), &fromString))
	assert.Equal(t, []string{"happy", "calm"}, fromString.Moods)
}

func TestFloorPlanPayloadKeepsRawBytes(t *testing.T) {
	body := `{"data":{"floor_plan":{"dimensions":{"total_area":120.5,"unit":"sqm"},"rooms":[{"name":"Kitchen","width":4,"height":3,"position":{"x":0,"y":0},"doors":[{"position":"north","width":0.9}]}]},"extra":true}}`

	var resp FloorPlanResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NotNil(t, resp.Data)

	assert.Equal(t, 120.5, resp.Data.FloorPlan.Dimensions.TotalArea)
	require.Len(t, resp.Data.FloorPlan.Rooms, 1)
	assert.Equal(t, "Kitchen", resp.Data.FloorPlan.Rooms[0].Name)

	out, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"extra":true`)
}

func TestFloorPlanPayloadToleratesUnexpectedShape(t *testing.T) {
	var resp FloorPlanResponse
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"floor_plan":"not an object"}}`), &resp))
	require.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data.FloorPlan.Rooms)
	assert.JSONEq(t, `{"floor_plan":"not an object"}`, string(resp.Data.Raw))
}
