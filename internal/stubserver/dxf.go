package stubserver

import (
	"bytes"
	"fmt"

	"chatfront/internal/models"
)

// renderDXF draws each room as a closed rectangle of LINE entities with its
// name as TEXT, in a minimal ASCII DXF (ENTITIES section only).
func renderDXF(plan models.FloorPlan) []byte {
	var b bytes.Buffer
	pair := func(code int, value string) {
		fmt.Fprintf(&b, "%d\n%s\n", code, value)
	}
	num := func(v float64) string { return fmt.Sprintf("%.3f", v) }

	pair(0, "SECTION")
	pair(2, "ENTITIES")
	for _, room := range plan.Rooms {
		x0, y0 := room.Position.X, room.Position.Y
		x1, y1 := x0+room.Width, y0+room.Height
		corners := [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
		for i := range corners {
			from, to := corners[i], corners[(i+1)%len(corners)]
			pair(0, "LINE")
			pair(8, "WALLS")
			pair(10, num(from[0]))
			pair(20, num(from[1]))
			pair(11, num(to[0]))
			pair(21, num(to[1]))
		}
		pair(0, "TEXT")
		pair(8, "LABELS")
		pair(10, num(x0+0.2))
		pair(20, num(y0+0.2))
		pair(40, "0.250")
		pair(1, room.Name)
	}
	pair(0, "ENDSEC")
	pair(0, "EOF")
	return b.Bytes()
}
