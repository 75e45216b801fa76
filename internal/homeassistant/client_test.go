package homeassistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ha-image-scene/internal/model"
	"ha-image-scene/internal/scene"
)

type recorded struct {
	Path string
	Body map[string]interface{}
}

// fakeHA answers like a small Home Assistant instance with one area.
func fakeHA(t *testing.T, calls *[]recorded) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]interface{}
		if r.Body != nil {
			b, _ := io.ReadAll(r.Body)
			if len(b) > 0 && json.Unmarshal(b, &body) != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}
		if calls != nil {
			*calls = append(*calls, recorded{Path: r.URL.Path, Body: body})
		}

		switch r.URL.Path {
		case "/api/":
			_, _ = io.WriteString(w, `{"message":"API running."}`)
		case "/api/template":
			tmpl, _ := body["template"].(string)
			switch {
			case strings.Contains(tmpl, "areas()"):
				_, _ = io.WriteString(w, `[{"id":"office","name":"Office"},{"id":"bedroom","name":"bedroom"},{"id":"attic","name":null}]`)
			case strings.Contains(tmpl, `area_entities("office")`):
				_, _ = io.WriteString(w, `[
					{"entity_id":"light.strip","name":"Strip","color_modes":["rgbw"],"group":false},
					{"entity_id":"light.all","name":"All","color_modes":["xy"],"group":true},
					{"entity_id":"light.bulb","name":"bulb","color_modes":["color_temp","hs"],"group":false},
					{"entity_id":"light.white","name":"White","color_modes":["brightness"],"group":false}
				]`)
			default:
				_, _ = io.WriteString(w, `[]`)
			}
		case "/api/services/scene/create", "/api/services/scene/turn_on":
			_, _ = io.WriteString(w, `[]`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, "404: Not Found")
		}
	}))
}

func newTestClient(url, token string) *Client {
	return NewClient(url, token, 2*time.Second, nil)
}

func TestPing(t *testing.T) {
	srv := fakeHA(t, nil)
	defer srv.Close()

	assert.NoError(t, newTestClient(srv.URL+"/", "secret").Ping(context.Background()))
	assert.ErrorIs(t, newTestClient(srv.URL, "wrong").Ping(context.Background()), ErrUnauthorized)
	assert.ErrorIs(t, newTestClient(srv.URL, " ").Ping(context.Background()), ErrNoToken)
}

func TestAreas(t *testing.T) {
	srv := fakeHA(t, nil)
	defer srv.Close()

	areas, err := newTestClient(srv.URL, "secret").Areas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Area{
		{ID: "attic", Name: "attic"},
		{ID: "bedroom", Name: "bedroom"},
		{ID: "office", Name: "Office"},
	}, areas)
}

func TestColorLights(t *testing.T) {
	srv := fakeHA(t, nil)
	defer srv.Close()
	c := newTestClient(srv.URL, "secret")

	lights, err := c.ColorLights(context.Background(), "office")
	require.NoError(t, err)
	assert.Equal(t, []model.Light{
		{EntityID: "light.bulb", Name: "bulb"},
		{EntityID: "light.strip", Name: "Strip"},
	}, lights)

	lights, err = c.ColorLights(context.Background(), "garage")
	require.NoError(t, err)
	assert.Empty(t, lights)

	_, err = c.ColorLights(context.Background(), "")
	assert.Error(t, err)
}

func TestApplyScene(t *testing.T) {
	var calls []recorded
	srv := fakeHA(t, &calls)
	defer srv.Close()

	entities := scene.Entities(map[string]model.SceneEntityEntry{
		"light.strip": {LightID: "light.strip", NormalizedColor: model.RGB{R: 255, G: 10, B: 20}, Brightness: 128},
	})
	id, err := newTestClient(srv.URL, "secret").ApplyScene(context.Background(), "Sunset Glow", entities)
	require.NoError(t, err)
	assert.Equal(t, "scene.sunset_glow", id)

	require.Len(t, calls, 2)
	assert.Equal(t, "/api/services/scene/create", calls[0].Path)
	assert.Equal(t, "sunset_glow", calls[0].Body["scene_id"])
	strip := calls[0].Body["entities"].(map[string]interface{})["light.strip"].(map[string]interface{})
	assert.Equal(t, "on", strip["state"])
	assert.Equal(t, []interface{}{255.0, 10.0, 20.0}, strip["rgb_color"])
	assert.Equal(t, 128.0, strip["brightness"])

	assert.Equal(t, "/api/services/scene/turn_on", calls[1].Path)
	assert.Equal(t, "scene.sunset_glow", calls[1].Body["entity_id"])
}

func TestCreateSceneRejectsEmpty(t *testing.T) {
	err := newTestClient("http://unused", "secret").CreateScene(context.Background(), "x", nil)
	assert.Error(t, err)
}

func TestStatusError(t *testing.T) {
	srv := fakeHA(t, nil)
	defer srv.Close()

	err := newTestClient(srv.URL, "secret").CallService(context.Background(), "light", "nope", nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "404: Not Found", se.Body)
}

func TestIsColorCapable(t *testing.T) {
	assert.True(t, IsColorCapable([]string{"RGB"}))
	assert.False(t, IsColorCapable([]string{"onoff", "color_temp"}))
	assert.False(t, IsColorCapable(nil))
}
