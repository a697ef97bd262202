package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath      = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar       = "OPENROUTER_API_KEY_FILE"
	DropboxTokenPathEnvVar = "DROPBOX_TOKEN_FILE"
	EnvPathEnvVar          = "SCREENOTATE_ENV"

	DefaultHotkey      = "Ctrl+Shift+4"
	DefaultCopyHotkey  = "Ctrl+Shift+5"
	DefaultSettle      = 30 * time.Millisecond
	DefaultNormalLayer = 0
	defaultOCRDeadline = 20
)

type LoadOptions struct {
	APIKeyPathOverride      string
	PreferencesFileOverride string
}

type Config struct {
	APIKey            string
	APIKeyPath        string
	Model             string
	Providers         []string
	OCRDeadlineSec    int
	EnableFileLogging bool
	LogFile           string

	Hotkey      string
	CopyHotkey  string
	Settle      time.Duration
	NormalLayer int

	PreferencesFile string
	DropboxToken    string
	HistoryDB       string
	MozReplAddr     string
	DevToolsAddr    string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREENOTATE_ENV env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	var providers []string
	if providersStr := os.Getenv("PROVIDERS"); providersStr != "" {
		for _, provider := range strings.Split(providersStr, ",") {
			if trimmed := strings.TrimSpace(provider); trimmed != "" {
				providers = append(providers, trimmed)
			}
		}
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	prefsFile := os.Getenv("PREFERENCES_FILE")
	if override := strings.TrimSpace(opts.PreferencesFileOverride); override != "" {
		prefsFile = override
	}

	cfg := &Config{
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             os.Getenv("MODEL"),
		Providers:         providers,
		OCRDeadlineSec:    positiveInt("OCR_DEADLINE_SEC", defaultOCRDeadline),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		LogFile:           os.Getenv("LOG_FILE"),
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		CopyHotkey:        getEnvWithDefault("COPY_HOTKEY", DefaultCopyHotkey),
		Settle:            resolveSettle(),
		NormalLayer:       resolveNormalLayer(),
		PreferencesFile:   prefsFile,
		DropboxToken:      resolveSecret(os.Getenv(DropboxTokenPathEnvVar), "DROPBOX_ACCESS_TOKEN"),
		HistoryDB:         os.Getenv("HISTORY_DB"),
		MozReplAddr:       os.Getenv("MOZREPL_ADDR"),
		DevToolsAddr:      os.Getenv("CHROME_DEVTOOLS_ADDR"),
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

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	return resolveSecret(keyPath, "OPENROUTER_API_KEY")
}

// resolveSecret prefers the trimmed contents of keyPath and falls back to
// the envVar value.
func resolveSecret(keyPath, envVar string) string {
	if keyPath != "" {
		if data, err := os.ReadFile(keyPath); err == nil {
			if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
				return fileKey
			}
		}
	}

	return os.Getenv(envVar)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// resolveSettle reads CAPTURE_SETTLE_MS; 0 disables the delay.
func resolveSettle() time.Duration {
	if v := strings.TrimSpace(os.Getenv("CAPTURE_SETTLE_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return DefaultSettle
}

func resolveNormalLayer() int {
	if v := strings.TrimSpace(os.Getenv("WINDOW_NORMAL_LAYER")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return DefaultNormalLayer
}
