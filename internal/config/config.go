// Package config reads startup settings from a .env file and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvFileEnvVar names an alternative .env file, used when there is none
	// next to the executable.
	EnvFileEnvVar = "OVERLAY_ANNOTATOR_ENV"

	DefaultLogFile     = "overlay_annotator.log"
	DefaultOCRLanguage = "eng"
)

type Config struct {
	Image             string // Image to open at startup
	Annotations       string // Annotation file; defaults to the one next to Image
	EnableFileLogging bool
	LogFile           string
	OCRLanguage       string
	WatchAnnotations  bool
	EnvFile           string // The .env file that was read, if any
}

func Load() (*Config, error) {
	envPath := resolveEnvPath()
	if envPath != "" {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(envPath); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Image:             os.Getenv("IMAGE"),
		Annotations:       os.Getenv("ANNOTATIONS"),
		EnableFileLogging: parseBool(os.Getenv("ENABLE_FILE_LOGGING"), false),
		LogFile:           getEnvWithDefault("LOG_FILE", DefaultLogFile),
		OCRLanguage:       getEnvWithDefault("OCR_LANGUAGE", DefaultOCRLanguage),
		WatchAnnotations:  parseBool(os.Getenv("WATCH_ANNOTATIONS"), true),
		EnvFile:           envPath,
	}
	return cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
