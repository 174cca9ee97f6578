package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvHome     = "LEARNJOURNEY_HOME"
	EnvLogLevel = "LEARNJOURNEY_LOG_LEVEL"

	CompletionExact     = "exact"
	CompletionOnOrAfter = "on_or_after"
)

type Config struct {
	DataPath   string
	DBPath     string
	JournalDir string
	LogPath    string

	Location   *time.Location
	WeekStart  time.Weekday
	Completion string
	LogLevel   string
}

// fileConfig mirrors <data>/config.yaml. Every field is optional.
type fileConfig struct {
	Timezone   string `yaml:"timezone"`
	WeekStart  string `yaml:"week_start"`
	Completion string `yaml:"completion"`
	LogLevel   string `yaml:"log_level"`
}

// LoadEnv reads a .env file from the working directory when one exists.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ResolveDataPath picks the data directory: explicit flag, then LEARNJOURNEY_HOME,
// then ~/.learnjourney.
func ResolveDataPath(flagValue string) (string, error) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, nil
	}
	if p := strings.TrimSpace(os.Getenv(EnvHome)); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".learnjourney"), nil
}

func New(dataPath string) (Config, error) {
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	cfg := Config{
		DataPath:   dataPath,
		DBPath:     filepath.Join(dataPath, "learnjourney.db"),
		JournalDir: filepath.Join(dataPath, "journal"),
		LogPath:    filepath.Join(dataPath, "learnjourney.log"),
		Location:   time.Local,
		WeekStart:  time.Sunday,
		Completion: CompletionExact,
		LogLevel:   "info",
	}

	raw, err := os.ReadFile(filepath.Join(dataPath, "config.yaml"))
	switch {
	case err == nil:
		if err := cfg.apply(raw); err != nil {
			return Config{}, err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func (c *Config) apply(raw []byte) error {
	fc := fileConfig{}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("decode config.yaml: %w", err)
	}
	if tz := strings.TrimSpace(fc.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("config timezone %q: %w", tz, err)
		}
		c.Location = loc
	}
	switch strings.ToLower(strings.TrimSpace(fc.WeekStart)) {
	case "", "sunday":
		c.WeekStart = time.Sunday
	case "monday":
		c.WeekStart = time.Monday
	default:
		return fmt.Errorf("config week_start %q: must be sunday or monday", fc.WeekStart)
	}
	switch mode := strings.ToLower(strings.TrimSpace(fc.Completion)); mode {
	case "":
	case CompletionExact, CompletionOnOrAfter:
		c.Completion = mode
	default:
		return fmt.Errorf("config completion %q: must be %s or %s", fc.Completion, CompletionExact, CompletionOnOrAfter)
	}
	if lvl := strings.TrimSpace(fc.LogLevel); lvl != "" {
		c.LogLevel = lvl
	}
	return nil
}
