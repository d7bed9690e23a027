package models

import "encoding/json"

// Role identifies who authored a floor plan transcript entry.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// ChatMessage is one entry of the floor plan transcript. Its position in the
// transcript is its identity.
type ChatMessage struct {
	Role    Role              `json:"role"`
	Content string            `json:"content"`
	Data    *FloorPlanPayload `json:"data,omitempty"`
}

type Opening struct {
	Position string  `json:"position"`
	Width    float64 `json:"width"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Room struct {
	Name     string    `json:"name"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Position Point     `json:"position"`
	Doors    []Opening `json:"doors"`
	Windows  []Opening `json:"windows,omitempty"`
}

type Dimensions struct {
	TotalArea float64 `json:"total_area"`
	Unit      string  `json:"unit"`
}

type FloorPlan struct {
	Dimensions Dimensions `json:"dimensions"`
	Rooms      []Room     `json:"rooms"`
}

// FloorPlanPayload is the structured plan returned by the generator. It is
// not validated; Raw keeps the exact bytes the server sent so the payload
// passes through unchanged even when it does not fit the typed view.
type FloorPlanPayload struct {
	FloorPlan FloorPlan       `json:"floor_plan"`
	Raw       json.RawMessage `json:"-"`
}

func (p *FloorPlanPayload) UnmarshalJSON(data []byte) error {
	type plain FloorPlanPayload
	var typed plain
	// Shape mismatches are tolerated; only the raw bytes are authoritative.
	_ = json.Unmarshal(data, &typed)
	*p = FloorPlanPayload(typed)
	p.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (p FloorPlanPayload) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	type plain FloorPlanPayload
	return json.Marshal(plain(p))
}

type FloorPlanRequest struct {
	Message string `json:"message"`
}

type FloorPlanResponse struct {
	Data *FloorPlanPayload `json:"data"`
}
