package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"ha-image-scene/internal/colorspace"
	"ha-image-scene/internal/config"
	"ha-image-scene/internal/homeassistant"
	"ha-image-scene/internal/imageload"
	"ha-image-scene/internal/model"
	"ha-image-scene/internal/sampling"
	"ha-image-scene/internal/scene"
	"ha-image-scene/internal/storage"
	"ha-image-scene/internal/ws"
)

var errNoPoints = errors.New("no sample points, randomize first")

type Handler struct {
	cfg      config.Config
	tokens   *storage.TokenStore
	hub      *ws.Hub
	loader   *imageload.Loader
	presets  *imageload.Catalog
	log      hclog.Logger
	upgrader websocket.Upgrader

	// mu serializes every session operation.
	mu      sync.Mutex
	session *sampling.Session
}

type apiError struct {
	Error string `json:"error"`
}

type pointView struct {
	model.SamplePoint
	Hex             string    `json:"hex"`
	NormalizedColor model.RGB `json:"normalized_color"`
	NormalizedHex   string    `json:"normalized_hex"`
}

type sessionView struct {
	ImageLoaded bool        `json:"image_loaded"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Points      []pointView `json:"points"`
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, errors.New("websocket requires GET"))
		return
	}
	if !websocket.IsWebSocketUpgrade(r) {
		writeErr(w, http.StatusBadRequest, errors.New("websocket upgrade required"))
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "remote", r.RemoteAddr, "uri", r.RequestURI, "error", err)
		return
	}
	h.hub.Subscribe(conn)
}

func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			BaseURL string `json:"base_url"`
			Token   string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
		if strings.TrimSpace(req.Token) == "" {
			writeErr(w, http.StatusBadRequest, errors.New("token required"))
			return
		}
		baseURL := firstOr(req.BaseURL, h.cfg.HABaseURL)
		client := homeassistant.NewClient(baseURL, req.Token, h.haTimeout(), h.log.Named("homeassistant"))
		if err := client.Ping(r.Context()); err != nil {
			writeErr(w, statusFor(err), err)
			return
		}
		if err := h.tokens.Set(baseURL, req.Token); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		h.log.Info("access token stored", "base_url", client.BaseURL())
		writeJSON(w, http.StatusOK, map[string]string{"base_url": client.BaseURL()})
	case http.MethodDelete:
		if err := h.tokens.Clear(); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) Areas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	areas, err := h.haClient().Areas(r.Context())
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func (h *Handler) Lights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	areaID := strings.TrimSpace(r.URL.Query().Get("area_id"))
	if areaID == "" {
		writeErr(w, http.StatusBadRequest, errors.New("area_id required"))
		return
	}
	lights, err := h.haClient().ColorLights(r.Context(), areaID)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, lights)
}

func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, h.presets.List())
}

func (h *Handler) LoadPreset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	preset, err := h.presets.Find(req.Name)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	raster, err := h.loader.LoadFile(preset.Path)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.loadRaster(raster, "preset:"+preset.Name))
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSizeBytes); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	if err := imageload.ValidateName(header.Filename); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	b, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	raster, err := h.loader.Decode(b)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.loadRaster(raster, "upload:"+header.Filename))
}

func (h *Handler) loadRaster(raster *sampling.Raster, source string) sessionView {
	h.mu.Lock()
	h.session.Load(raster)
	view := h.viewLocked()
	h.mu.Unlock()

	h.log.Info("image loaded", "source", source, "width", raster.Width(), "height", raster.Height())
	h.hub.Publish(model.NewEvent(model.EventImageLoaded, model.ImageLoaded{
		Source: source,
		Width:  raster.Width(),
		Height: raster.Height(),
	}))
	return view
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	h.mu.Lock()
	view := h.viewLocked()
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Randomize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		AreaID string        `json:"area_id"`
		Lights []model.Light `json:"lights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	lights := req.Lights
	if len(lights) == 0 && strings.TrimSpace(req.AreaID) != "" {
		found, err := h.haClient().ColorLights(r.Context(), req.AreaID)
		if err != nil {
			writeErr(w, statusFor(err), err)
			return
		}
		lights = found
	}

	h.mu.Lock()
	err := h.session.Randomize(lights, h.session.Raster())
	view := h.viewLocked()
	h.mu.Unlock()
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}

	h.hub.Publish(model.NewEvent(model.EventSessionRandomized, view))
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Reposition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		ID string `json:"id"`
		model.FramePoint
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	h.mu.Lock()
	moved := h.session.Reposition(req.ID, req.FramePoint)
	var point *pointView
	if moved {
		for _, p := range h.session.Points() {
			if p.ID == req.ID {
				v := newPointView(p)
				point = &v
				break
			}
		}
	}
	h.mu.Unlock()

	if moved {
		h.hub.Publish(model.NewEvent(model.EventPointMoved, point))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"moved": moved, "point": point})
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	h.mu.Lock()
	h.session.Reset()
	view := h.viewLocked()
	h.mu.Unlock()

	h.hub.Publish(model.NewEvent(model.EventSessionReset, nil))
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ApplyScene(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Name       string `json:"name"`
		Brightness int    `json:"brightness"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeErr(w, http.StatusBadRequest, errors.New("scene name required"))
		return
	}
	if req.Brightness == 0 {
		req.Brightness = h.cfg.DefaultBrightness
	}

	h.mu.Lock()
	points := h.session.Points()
	h.mu.Unlock()
	if len(points) == 0 {
		writeErr(w, http.StatusBadRequest, errNoPoints)
		return
	}

	entities := scene.Entities(scene.Build(points, req.Brightness))
	entityID, err := h.haClient().ApplyScene(r.Context(), req.Name, entities)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}

	resp := map[string]interface{}{
		"scene":    entityID,
		"entities": entities,
	}
	h.hub.Publish(model.NewEvent(model.EventSceneApplied, model.SceneApplied{
		Scene:  entityID,
		Lights: lightIDs(entities),
	}))
	writeJSON(w, http.StatusOK, resp)
}

func lightIDs(entities map[string]scene.EntityState) []string {
	ids := make([]string, 0, len(entities))
	for id := range entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Handler) haClient() *homeassistant.Client {
	tok := h.tokens.Get()
	return homeassistant.NewClient(firstOr(tok.BaseURL, h.cfg.HABaseURL), tok.AccessToken, h.haTimeout(), h.log.Named("homeassistant"))
}

func (h *Handler) haTimeout() time.Duration {
	return time.Duration(h.cfg.HATimeoutSec) * time.Second
}

func (h *Handler) viewLocked() sessionView {
	view := sessionView{Points: []pointView{}}
	if r := h.session.Raster(); r != nil {
		view.ImageLoaded = true
		view.Width = r.Width()
		view.Height = r.Height()
	}
	for _, p := range h.session.Points() {
		view.Points = append(view.Points, newPointView(p))
	}
	return view
}

func newPointView(p model.SamplePoint) pointView {
	n := colorspace.Normalize(p.RawColor)
	return pointView{
		SamplePoint:     p,
		Hex:             p.RawColor.Hex(),
		NormalizedColor: n,
		NormalizedHex:   n.Hex(),
	}
}

func statusFor(err error) int {
	var se *homeassistant.StatusError
	switch {
	case errors.Is(err, sampling.ErrNoLights), errors.Is(err, sampling.ErrNoImage),
		errors.Is(err, sampling.ErrBlankLightID), errors.Is(err, sampling.ErrDuplicateLight),
		errors.Is(err, imageload.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, homeassistant.ErrNoToken), errors.Is(err, homeassistant.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, imageload.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, apiError{Error: err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func firstOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
