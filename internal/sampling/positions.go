package sampling

import (
	"math"
	"math/rand"

	"ha-image-scene/internal/model"
)

const (
	DefaultMinDistance = 0.12
	DefaultEdgePadding = 0.08
	MaxAttempts        = 50
)

// GeneratePositions places count points in [pad,1-pad]^2 one at a time.
// Each slot draws up to MaxAttempts uniform candidates and keeps the first
// that is at least minDistance from every point already placed. When no
// candidate qualifies the last one drawn is kept anyway, so the result may
// contain crowded points but always has length count.
func GeneratePositions(rng *rand.Rand, count int, minDistance, edgePadding float64) []model.Coordinate {
	if count <= 0 {
		return []model.Coordinate{}
	}
	if edgePadding < 0 {
		edgePadding = 0
	}
	if edgePadding > 0.5 {
		edgePadding = 0.5
	}
	span := 1 - 2*edgePadding

	out := make([]model.Coordinate, 0, count)
	for i := 0; i < count; i++ {
		var candidate model.Coordinate
		for attempt := 0; attempt < MaxAttempts; attempt++ {
			candidate = model.Coordinate{
				X: edgePadding + rng.Float64()*span,
				Y: edgePadding + rng.Float64()*span,
			}
			if farEnough(candidate, out, minDistance) {
				break
			}
		}
		out = append(out, candidate)
	}
	return out
}

func farEnough(c model.Coordinate, placed []model.Coordinate, minDistance float64) bool {
	for _, p := range placed {
		if distance(c, p) < minDistance {
			return false
		}
	}
	return true
}

func distance(a, b model.Coordinate) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
