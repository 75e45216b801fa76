package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"ha-image-scene/internal/config"
	"ha-image-scene/internal/imageload"
	"ha-image-scene/internal/sampling"
	"ha-image-scene/internal/storage"
	"ha-image-scene/internal/ws"
)

func NewRouter(
	cfg config.Config,
	tokens *storage.TokenStore,
	hub *ws.Hub,
	loader *imageload.Loader,
	presets *imageload.Catalog,
	session *sampling.Session,
	logger hclog.Logger,
) http.Handler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	h := &Handler{
		cfg:     cfg,
		tokens:  tokens,
		hub:     hub,
		loader:  loader,
		presets: presets,
		session: session,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/v1/ws", h.WebSocket)
	mux.HandleFunc("/v1/auth/token", h.Token)
	mux.HandleFunc("/v1/areas", h.Areas)
	mux.HandleFunc("/v1/lights", h.Lights)
	mux.HandleFunc("/v1/presets", h.Presets)
	mux.HandleFunc("/v1/image", h.UploadImage)
	mux.HandleFunc("/v1/image/preset", h.LoadPreset)
	mux.HandleFunc("/v1/session", h.Session)
	mux.HandleFunc("/v1/session/randomize", h.Randomize)
	mux.HandleFunc("/v1/session/reposition", h.Reposition)
	mux.HandleFunc("/v1/session/reset", h.ResetSession)
	mux.HandleFunc("/v1/scene", h.ApplyScene)

	return limitBody(cfg.MaxUploadSizeBytes, mux)
}

func limitBody(maxSize int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		next.ServeHTTP(w, r)
	})
}
