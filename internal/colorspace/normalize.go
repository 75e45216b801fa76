package colorspace

import (
	"math"

	"ha-image-scene/internal/model"
)

// Tuning for RGB LED bulbs. Below SaturationFloor colors render as washed-out
// white; below LightnessFloor they render as off.
const (
	SaturationFloor  = 40.0
	SaturationFactor = 1.4
	SaturationOffset = 12.0

	LightnessFloor = 25.0
	LightnessSpan  = 10.0
)

// Normalize boosts low saturation and lifts near-black lightness of c. Both
// thresholds are tested against the original HSL of c.
func Normalize(c model.RGB) model.RGB {
	hsl := RGBToHSL(c)
	s, l := hsl.S, hsl.L

	if hsl.S < SaturationFloor {
		s = math.Min(100, hsl.S*SaturationFactor+SaturationOffset)
	}
	if hsl.L < LightnessFloor {
		l = LightnessFloor + (hsl.L/LightnessFloor)*LightnessSpan
	}

	return HSLToRGB(model.HSL{H: hsl.H, S: s, L: l})
}
