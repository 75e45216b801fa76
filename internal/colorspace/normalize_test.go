package colorspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ha-image-scene/internal/model"
)

func TestNormalizeLeavesVividColors(t *testing.T) {
	checked := 0
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 5 {
				in := model.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
				hsl := RGBToHSL(in)
				if hsl.S < SaturationFloor || hsl.L < LightnessFloor {
					continue
				}
				out := Normalize(in)
				if absDiff(in.R, out.R) > 1 || absDiff(in.G, out.G) > 1 || absDiff(in.B, out.B) > 1 {
					t.Fatalf("vivid color %v changed to %v", in, out)
				}
				checked++
			}
		}
	}
	assert.Greater(t, checked, 1000)
}

func TestNormalizeBoostsLowSaturation(t *testing.T) {
	in := model.RGB{R: 200, G: 200, B: 195}
	before := RGBToHSL(in)
	after := RGBToHSL(Normalize(in))

	assert.Greater(t, after.S, before.S)
	assert.InDelta(t, before.S*SaturationFactor+SaturationOffset, after.S, 1.5)
	assert.InDelta(t, before.L, after.L, 0.5)
}

func TestNormalizeSaturationCapped(t *testing.T) {
	// s just under the floor: 39*1.4+12 = 66.6, well under 100
	for _, c := range []model.RGB{{R: 140, G: 110, B: 100}, {R: 90, G: 100, B: 120}} {
		hsl := RGBToHSL(Normalize(c))
		assert.LessOrEqual(t, hsl.S, 100.0)
	}
}

func TestNormalizeLiftsDarkness(t *testing.T) {
	in := model.RGB{R: 10, G: 5, B: 5}
	assert.Less(t, RGBToHSL(in).L, 5.0)

	out := RGBToHSL(Normalize(in))
	assert.GreaterOrEqual(t, out.L, LightnessFloor)
	assert.LessOrEqual(t, out.L, LightnessFloor+LightnessSpan+0.5)
}

func TestNormalizeBlack(t *testing.T) {
	out := Normalize(model.RGB{})
	hsl := RGBToHSL(out)
	// achromatic black gets s=12 at hue 0 and l=25
	assert.InDelta(t, 25, hsl.L, 0.5)
	assert.InDelta(t, SaturationOffset, hsl.S, 1.5)
	assert.Greater(t, out.R, out.G)
}
