package scene

import (
	"strings"

	"ha-image-scene/internal/colorspace"
	"ha-image-scene/internal/model"
)

const (
	MinBrightness = 1
	MaxBrightness = 255

	defaultSceneID = "image_scene"
)

// EntityState is the per-light target state in a scene.create call.
type EntityState struct {
	State      string `json:"state"`
	RGBColor   [3]int `json:"rgb_color"`
	Brightness int    `json:"brightness"`
}

// Build normalizes each point's sampled color and pairs it with the shared
// brightness. The points are not modified.
func Build(points []model.SamplePoint, brightness int) map[string]model.SceneEntityEntry {
	brightness = ClampBrightness(brightness)
	out := make(map[string]model.SceneEntityEntry, len(points))
	for _, p := range points {
		out[p.LightID] = model.SceneEntityEntry{
			LightID:         p.LightID,
			NormalizedColor: colorspace.Normalize(p.RawColor),
			Brightness:      brightness,
		}
	}
	return out
}

func Entities(entries map[string]model.SceneEntityEntry) map[string]EntityState {
	out := make(map[string]EntityState, len(entries))
	for id, e := range entries {
		out[id] = EntityState{
			State:      "on",
			RGBColor:   e.NormalizedColor.Triple(),
			Brightness: e.Brightness,
		}
	}
	return out
}

func ClampBrightness(v int) int {
	if v < MinBrightness {
		return MinBrightness
	}
	if v > MaxBrightness {
		return MaxBrightness
	}
	return v
}

// SceneID turns a display name into a Home Assistant object id.
func SceneID(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			underscore = false
		default:
			if b.Len() > 0 && !underscore {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	id := strings.TrimRight(b.String(), "_")
	if id == "" {
		return defaultSceneID
	}
	return id
}

func EntityID(name string) string {
	return "scene." + SceneID(name)
}
