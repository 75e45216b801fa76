package model

import (
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// Triple is the rgb_color form Home Assistant expects.
func (c RGB) Triple() [3]int {
	return [3]int{int(c.R), int(c.G), int(c.B)}
}

// HSL holds hue in degrees [0,360) and saturation/lightness in percent [0,100].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// Coordinate is a position in the unit square, independent of raster size.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FramePoint is a position inside an external display frame, e.g. a pixel
// offset within the element the image is rendered into.
type FramePoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Light struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
}

type SamplePoint struct {
	ID         string     `json:"id"`
	Coordinate Coordinate `json:"coordinate"`
	RawColor   RGB        `json:"raw_color"`
	LightID    string     `json:"light_id"`
	LightName  string     `json:"light_name"`
}

type SceneEntityEntry struct {
	LightID         string `json:"light_id"`
	NormalizedColor RGB    `json:"normalized_color"`
	Brightness      int    `json:"brightness"`
}

type StoredToken struct {
	BaseURL     string    `json:"base_url"`
	AccessToken string    `json:"access_token"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventType names a session change pushed to browsers.
type EventType string

const (
	EventImageLoaded       EventType = "image.loaded"
	EventSessionRandomized EventType = "session.randomized"
	EventPointMoved        EventType = "session.point_moved"
	EventSessionReset      EventType = "session.reset"
	EventSceneApplied      EventType = "scene.applied"
)

type Event struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	CreatedAt int64       `json:"created_at_unix_ms"`
}

// ImageLoaded is the payload of EventImageLoaded.
type ImageLoaded struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// SceneApplied is the payload of EventSceneApplied.
type SceneApplied struct {
	Scene  string   `json:"scene"`
	Lights []string `json:"lights"`
}

func NewEvent(typ EventType, payload interface{}) Event {
	return Event{Type: typ, Payload: payload, CreatedAt: time.Now().UnixMilli()}
}
