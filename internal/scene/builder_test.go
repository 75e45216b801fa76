package scene

import (
	"encoding/json"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ha-image-scene/internal/colorspace"
	"ha-image-scene/internal/model"
	"ha-image-scene/internal/sampling"
)

func TestBuildEmpty(t *testing.T) {
	out := Build(nil, 128)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestBuildDoesNotMutate(t *testing.T) {
	points := []model.SamplePoint{{ID: "a", LightID: "light.a", RawColor: model.RGB{R: 10, G: 5, B: 5}}}
	Build(points, 300)
	assert.Equal(t, model.RGB{R: 10, G: 5, B: 5}, points[0].RawColor)
}

func TestBuildClampsBrightness(t *testing.T) {
	points := []model.SamplePoint{{LightID: "light.a"}}
	assert.Equal(t, 1, Build(points, 0)["light.a"].Brightness)
	assert.Equal(t, 255, Build(points, 999)["light.a"].Brightness)
}

func TestEndToEnd(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 8), B: 90, A: 255})
		}
	}
	raster, err := sampling.NewRaster(img)
	require.NoError(t, err)

	lights := []model.Light{
		{EntityID: "light.one", Name: "One"},
		{EntityID: "light.two", Name: "Two"},
		{EntityID: "light.three", Name: "Three"},
	}
	opts := sampling.DefaultOptions()
	opts.Rand = rand.New(rand.NewSource(5))
	s := sampling.NewSession(opts)
	s.Load(raster)
	require.NoError(t, s.Randomize(lights, s.Raster()))

	points := s.Points()
	require.Len(t, points, 3)
	for _, p := range points {
		assert.True(t, p.Coordinate.X >= 0.08 && p.Coordinate.X <= 0.92)
		assert.True(t, p.Coordinate.Y >= 0.08 && p.Coordinate.Y <= 0.92)
	}

	entries := Build(points, 128)
	require.Len(t, entries, 3)
	for _, p := range points {
		e, ok := entries[p.LightID]
		require.True(t, ok, p.LightID)
		assert.Equal(t, 128, e.Brightness)
		assert.Equal(t, colorspace.Normalize(p.RawColor), e.NormalizedColor)
	}

	b, err := json.Marshal(Entities(entries))
	require.NoError(t, err)
	var wire map[string]struct {
		State      string `json:"state"`
		RGBColor   []int  `json:"rgb_color"`
		Brightness int    `json:"brightness"`
	}
	require.NoError(t, json.Unmarshal(b, &wire))
	require.Len(t, wire, 3)
	for id, st := range wire {
		assert.Equal(t, "on", st.State)
		assert.Equal(t, 128, st.Brightness)
		c := entries[id].NormalizedColor
		assert.Equal(t, []int{int(c.R), int(c.G), int(c.B)}, st.RGBColor)
	}
}

func TestSceneID(t *testing.T) {
	cases := map[string]string{
		"Sunset Glow":        "sunset_glow",
		"  Living -- Room! ": "living_room",
		"Ocean_2":            "ocean_2",
		"":                   "image_scene",
		"!!!":                "image_scene",
	}
	for in, want := range cases {
		assert.Equal(t, want, SceneID(in), in)
	}
	assert.Equal(t, "scene.sunset_glow", EntityID("Sunset Glow"))
}
