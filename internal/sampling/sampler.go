package sampling

import (
	"math"

	"ha-image-scene/internal/model"
)

// FallbackColor is returned when no raster is loaded yet.
var FallbackColor = model.RGB{R: 128, G: 128, B: 128}

// SampleAt reads the pixel under a unit-square coordinate. Out-of-range
// coordinates are clamped first. Alpha is ignored.
func SampleAt(r *Raster, c model.Coordinate) model.RGB {
	if r == nil {
		return FallbackColor
	}
	c = ClampCoordinate(c)
	px := clampIndex(int(math.Floor(c.X*float64(r.width))), r.width)
	py := clampIndex(int(math.Floor(c.Y*float64(r.height))), r.height)
	red, green, blue, _ := r.rgbaAt(px, py)
	return model.RGB{R: red, G: green, B: blue}
}

// ClampCoordinate bounds both axes to [0,1].
func ClampCoordinate(c model.Coordinate) model.Coordinate {
	return model.Coordinate{X: clampUnit(c.X), Y: clampUnit(c.Y)}
}

// FromFrame maps a point inside a display frame to the unit square. Each
// axis is divided by the frame extent and bounded to [0,1]; a non-positive
// extent maps to 0.
func FromFrame(p model.FramePoint) model.Coordinate {
	return model.Coordinate{X: ratio(p.X, p.Width), Y: ratio(p.Y, p.Height)}
}

func ratio(v, extent float64) float64 {
	if extent <= 0 {
		return 0
	}
	return clampUnit(v / extent)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// x == 1 lands one past the last pixel.
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
