package models

import "encoding/json"

// ErrorResponse is the error body returned by the backends. Depending on the
// service it carries "error" as a plain string, "error" as a structured
// object, or a "detail" string.
type ErrorResponse struct {
	Error  json.RawMessage `json:"error,omitempty"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

type structuredError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// Message returns the first human readable message in the body, or "".
func (e ErrorResponse) Message() string {
	for _, raw := range []json.RawMessage{e.Error, e.Detail} {
		if len(raw) == 0 {
			continue
		}

		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			if text != "" {
				return text
			}
			continue
		}

		var structured structuredError
		if err := json.Unmarshal(raw, &structured); err == nil && structured.Message != "" {
			return structured.Message
		}

		// FastAPI style validation errors: [{"loc": [...], "msg": "..."}]
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}
	return ""
}
