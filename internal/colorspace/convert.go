// Package colorspace converts between RGB and HSL and applies the
// perceptual correction used before a sampled color is sent to a bulb.
package colorspace

import (
	"math"

	"ha-image-scene/internal/model"
)

// RGBToHSL converts an 8-bit color to HSL with hue in degrees [0,360) and
// saturation and lightness in percent.
func RGBToHSL(c model.RGB) model.HSL {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255

	maxCh := math.Max(r, math.Max(g, b))
	minCh := math.Min(r, math.Min(g, b))
	l := (maxCh + minCh) / 2

	if maxCh == minCh {
		return model.HSL{H: 0, S: 0, L: l * 100}
	}

	d := maxCh - minCh
	var s float64
	if l > 0.5 {
		s = d / (2 - maxCh - minCh)
	} else {
		s = d / (maxCh + minCh)
	}

	var h float64
	switch maxCh {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h -= 360
	}

	return model.HSL{H: h, S: s * 100, L: l * 100}
}

// HSLToRGB is the inverse of RGBToHSL up to integer rounding. Hue is
// wrapped into [0,360) and saturation/lightness are clamped to [0,100].
func HSLToRGB(c model.HSL) model.RGB {
	h := wrapHue(c.H) / 360
	s := clampFloat(c.S, 0, 100) / 100
	l := clampFloat(c.L, 0, 100) / 100

	if s == 0 {
		v := toChannel(l)
		return model.RGB{R: v, G: v, B: v}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return model.RGB{
		R: toChannel(hueToChannel(p, q, h+1.0/3)),
		G: toChannel(hueToChannel(p, q, h)),
		B: toChannel(hueToChannel(p, q, h-1.0/3)),
	}
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func toChannel(v float64) uint8 {
	return uint8(clampFloat(math.Round(v*255), 0, 255))
}

func wrapHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
