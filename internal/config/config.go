package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LayoutDir     string
	LayoutPattern string
	OutputPath    string
	OutputFormat  string
	DatabaseURL   string
	CatalogTable  string // empty selects catalog.DefaultTable
	WatchDebounce time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		LayoutDir:     getEnv("LAYOUT_DIR", "app/src/main/res/layout"),
		LayoutPattern: getEnv("LAYOUT_PATTERN", "*.xml"),
		OutputPath:    getEnv("MAPPING_OUTPUT", "layout_translation_mapping.txt"),
		OutputFormat:  getEnv("MAPPING_FORMAT", "text"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		CatalogTable:  getEnv("CATALOG_TABLE", ""),
		WatchDebounce: time.Duration(getEnvInt("WATCH_DEBOUNCE_MS", 300)) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
