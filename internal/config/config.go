package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chronocop/chronocop/internal/logger"
)

// Provider identifiers accepted by NARRATIVE_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	ListenAddr string
	DataDir    string
	Narrative  NarrativeConfig
	Logger     LoggerConfig
}

type NarrativeConfig struct {
	Provider string
	Model    string
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// defaultDataDir resolves the per-OS application data directory used when
// DATA_DIR is not set. Matches the directory the desktop frontend expects.
func defaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "CHRONOCOP"), nil
	case "windows":
		return filepath.Join(home, "AppData", "Local", "CHRONOCOP"), nil
	default:
		return filepath.Join(home, ".chronocop"), nil
	}
}

func defaultModel(provider string) string {
	if provider == ProviderGemini {
		return "gemini-1.5-flash"
	}
	return "gpt-4o-mini"
}

func Load() (*Config, error) {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		var err error
		dataDir, err = defaultDataDir()
		if err != nil {
			return nil, err
		}
	}

	provider := strings.ToLower(getEnvOrDefault("NARRATIVE_PROVIDER", ProviderOpenAI))
	if provider != ProviderOpenAI && provider != ProviderGemini {
		return nil, fmt.Errorf("unsupported narrative provider %q", provider)
	}

	return &Config{
		ListenAddr: ":" + getEnvOrDefault("PORT", "5000"),
		DataDir:    dataDir,
		Narrative: NarrativeConfig{
			Provider: provider,
			Model:    getEnvOrDefault("NARRATIVE_MODEL", defaultModel(provider)),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}, nil
}
