package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr         string
	HABaseURL          string
	HAToken            string
	HATimeoutSec       int
	TokenCachePath     string
	PresetsPath        string
	MaxImageDimension  int
	MinDistance        float64
	EdgePadding        float64
	DefaultBrightness  int
	MaxUploadSizeBytes int64
	LogLevel           string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		HABaseURL:          strings.TrimRight(getEnv("HA_BASE_URL", "http://homeassistant.local:8123"), "/"),
		HAToken:            getEnv("HA_TOKEN", ""),
		HATimeoutSec:       getEnvInt("HA_TIMEOUT_SEC", 10),
		TokenCachePath:     getEnv("TOKEN_CACHE_PATH", "./data/token.json"),
		PresetsPath:        getEnv("PRESETS_PATH", "./data/presets.txt"),
		MaxImageDimension:  getEnvInt("MAX_IMAGE_DIMENSION", 500),
		MinDistance:        getEnvFloat("MIN_DISTANCE", 0.12),
		EdgePadding:        getEnvFloat("EDGE_PADDING", 0.08),
		DefaultBrightness:  getEnvInt("DEFAULT_BRIGHTNESS", 200),
		MaxUploadSizeBytes: getEnvInt64("MAX_UPLOAD_SIZE_BYTES", 8*1024*1024),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	if cfg.MaxImageDimension <= 0 {
		return Config{}, errors.New("max image dimension must be > 0")
	}
	if cfg.MinDistance < 0 || cfg.MinDistance >= 1 {
		return Config{}, errors.New("min distance must be in [0,1)")
	}
	if cfg.EdgePadding < 0 || cfg.EdgePadding >= 0.5 {
		return Config{}, errors.New("edge padding must be in [0,0.5)")
	}
	if cfg.DefaultBrightness < 1 || cfg.DefaultBrightness > 255 {
		return Config{}, errors.New("default brightness must be in [1,255]")
	}
	if cfg.HATimeoutSec <= 0 {
		return Config{}, errors.New("home assistant timeout sec must be > 0")
	}
	if cfg.MaxUploadSizeBytes <= 0 {
		return Config{}, errors.New("max upload size must be > 0")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
