package stubserver

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"chatfront/internal/models"
)

var bedroomPattern = regexp.MustCompile(`(\d+)\s*-?\s*(?:bed(?:room)?s?|br)\b`)

func (s *Server) GenerateFloorPlan(w http.ResponseWriter, r *http.Request) {
	var req models.FloorPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	// The client sends the prompt JSON encoded inside the message field.
	prompt := req.Message
	var decoded string
	if err := json.Unmarshal([]byte(req.Message), &decoded); err == nil {
		prompt = decoded
	}
	if strings.TrimSpace(prompt) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Message is required")
		return
	}

	plan := planFor(prompt)
	payload := &models.FloorPlanPayload{FloorPlan: plan}

	s.mu.Lock()
	s.lastPlan = payload
	s.mu.Unlock()

	s.logger.Info("stub floor plan generated", zap.Int("rooms", len(plan.Rooms)))
	writeJSON(w, http.StatusOK, models.FloorPlanResponse{Data: payload})
}

func (s *Server) DownloadFloorPlan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	plan := s.lastPlan
	s.mu.Unlock()

	if plan == nil {
		writeDetail(w, http.StatusNotFound, "No floor plan has been generated yet")
		return
	}

	body := renderDXF(plan.FloorPlan)
	w.Header().Set("Content-Type", "application/dxf")
	w.Header().Set("Content-Disposition", `attachment; filename="floor_plan.dxf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// planFor lays rooms out left to right: living area and kitchen, then one
// bedroom per requested bedroom, then a bathroom.
func planFor(prompt string) models.FloorPlan {
	bedrooms := 1
	if m := bedroomPattern.FindStringSubmatch(strings.ToLower(prompt)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n <= 8 {
			bedrooms = n
		}
	}

	rooms := []models.Room{
		{Name: "Living Room", Width: 6, Height: 5,
			Doors:   []models.Opening{{Position: "south", Width: 1.0}},
			Windows: []models.Opening{{Position: "north", Width: 2.0}}},
		{Name: "Kitchen", Width: 4, Height: 5,
			Doors:   []models.Opening{{Position: "west", Width: 0.9}},
			Windows: []models.Opening{{Position: "north", Width: 1.2}}},
	}
	for i := 1; i <= bedrooms; i++ {
		rooms = append(rooms, models.Room{
			Name: "Bedroom " + strconv.Itoa(i), Width: 3.5, Height: 4,
			Doors:   []models.Opening{{Position: "south", Width: 0.8}},
			Windows: []models.Opening{{Position: "north", Width: 1.2}},
		})
	}
	rooms = append(rooms, models.Room{
		Name: "Bathroom", Width: 2.5, Height: 3,
		Doors: []models.Opening{{Position: "south", Width: 0.7}},
	})

	x, area := 0.0, 0.0
	for i := range rooms {
		rooms[i].Position = models.Point{X: x, Y: 0}
		x += rooms[i].Width
		area += rooms[i].Width * rooms[i].Height
	}

	return models.FloorPlan{
		Dimensions: models.Dimensions{TotalArea: area, Unit: "sqm"},
		Rooms:      rooms,
	}
}
