package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	gcgcode "github.com/dvaJi/genshin-builds-sub003"
)

type Config struct {
	HTTPAddr    string
	LogLevel    slog.Level
	CatalogPath string
	DatabaseURL string
	BlockWords  []string
}

func Load() (Config, error) {
	c := Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		CatalogPath: envOr("CATALOG_PATH", "data/cards.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		BlockWords:  parseList(os.Getenv("BLOCK_WORDS")),
	}
	if c.BlockWords == nil {
		c.BlockWords = gcgcode.DefaultBlockWords
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

// Codec builds a codec from the configured block words.
func (c Config) Codec() (*gcgcode.Codec, error) {
	return gcgcode.NewCodec(c.BlockWords...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, w := range strings.Split(s, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
