package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/alorle/iptv-checker/internal/classifier"
)

// Source kinds
const (
	KindFile     = "file"
	KindURL      = "url"
	KindDiscover = "discover"
)

// SourceConfig represents a single playlist job
type SourceConfig struct {
	Name     string `yaml:"name" toml:"name"`
	Kind     string `yaml:"kind" toml:"kind"`
	Path     string `yaml:"path" toml:"path"`
	URL      string `yaml:"url" toml:"url"`
	Target   string `yaml:"target" toml:"target"`
	Classify bool   `yaml:"classify" toml:"classify"`

	// Discovery settings
	Selector string   `yaml:"selector" toml:"selector"`
	NameAttr string   `yaml:"name_attr" toml:"name_attr"`
	URLAttrs []string `yaml:"url_attrs" toml:"url_attrs"`
}

// Location returns where the source is read from.
func (s SourceConfig) Location() string {
	if s.Kind == KindFile {
		return s.Path
	}
	return s.URL
}

// Config holds the complete application configuration
type Config struct {
	Log struct {
		Level  string `yaml:"level" toml:"level"`
		Format string `yaml:"format" toml:"format"`
	} `yaml:"log" toml:"log"`

	// Explicit playlist jobs
	Sources []SourceConfig `yaml:"sources" toml:"sources"`

	// Glob of local playlists processed in place, e.g. "*.m3u"
	Glob string `yaml:"glob" toml:"glob"`

	Validator struct {
		Mode       string        `yaml:"mode" toml:"mode"`
		Workers    int           `yaml:"workers" toml:"workers"`
		Timeout    time.Duration `yaml:"timeout" toml:"timeout"`
		UserAgent  string        `yaml:"user_agent" toml:"user_agent"`
		MediaTypes []string      `yaml:"media_types" toml:"media_types"`
	} `yaml:"validator" toml:"validator"`

	Fetch struct {
		Timeout time.Duration `yaml:"timeout" toml:"timeout"`
	} `yaml:"fetch" toml:"fetch"`

	Classifier classifier.Rules `yaml:"classifier" toml:"classifier"`

	Playlist struct {
		StampUpdated bool `yaml:"stamp_updated" toml:"stamp_updated"`
	} `yaml:"playlist" toml:"playlist"`

	History struct {
		Backend string `yaml:"backend" toml:"backend"`
		File    string `yaml:"file" toml:"file"`
		Mode    string `yaml:"mode" toml:"mode"`
	} `yaml:"history" toml:"history"`

	Telegram struct {
		BotToken string `yaml:"bot_token" toml:"bot_token"`
		ChatID   string `yaml:"chat_id" toml:"chat_id"`
	} `yaml:"telegram" toml:"telegram"`

	Report struct {
		File       string `yaml:"file" toml:"file"`
		MaxSources int    `yaml:"max_sources" toml:"max_sources"`
		MaxAdded   int    `yaml:"max_added" toml:"max_added"`
		MaxRemoved int    `yaml:"max_removed" toml:"max_removed"`
	} `yaml:"report" toml:"report"`

	Metrics struct {
		Textfile string `yaml:"textfile" toml:"textfile"`
	} `yaml:"metrics" toml:"metrics"`
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errors = append(errors, fmt.Sprintf("Log level must be DEBUG, INFO, WARN or ERROR, got %q", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errors = append(errors, fmt.Sprintf("Log format must be json or text, got %q", c.Log.Format))
	}

	if c.Validator.Mode != "fast" && c.Validator.Mode != "strict" {
		errors = append(errors, fmt.Sprintf("Validator mode must be fast or strict, got %q", c.Validator.Mode))
	}
	if c.Validator.Workers <= 0 {
		errors = append(errors, "Validator workers must be positive")
	}
	if c.Validator.Timeout < 0 {
		errors = append(errors, "Validator timeout must not be negative")
	}
	if c.Fetch.Timeout <= 0 {
		errors = append(errors, "Fetch timeout must be positive")
	}

	if c.History.Backend != "json" && c.History.Backend != "bolt" {
		errors = append(errors, fmt.Sprintf("History backend must be json or bolt, got %q", c.History.Backend))
	}
	if c.History.Mode != "count" && c.History.Mode != "names" {
		errors = append(errors, fmt.Sprintf("History mode must be count or names, got %q", c.History.Mode))
	}
	if c.History.File == "" {
		errors = append(errors, "History file is required")
	}

	if c.Report.MaxSources < 0 || c.Report.MaxAdded < 0 || c.Report.MaxRemoved < 0 {
		errors = append(errors, "Report caps must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errors = append(errors, "Telegram bot token and chat id must be set together")
	}

	names := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		label := fmt.Sprintf("Source %d", i)
		if src.Name != "" {
			label = fmt.Sprintf("Source %d (%s)", i, src.Name)
		}

		if src.Name == "" {
			errors = append(errors, fmt.Sprintf("%s: name is required", label))
		} else if names[src.Name] {
			errors = append(errors, fmt.Sprintf("%s: duplicate name", label))
		}
		names[src.Name] = true

		switch src.Kind {
		case KindFile:
			if src.Path == "" {
				errors = append(errors, fmt.Sprintf("%s: path is required", label))
			}
		case KindURL, KindDiscover:
			if src.URL == "" {
				errors = append(errors, fmt.Sprintf("%s: URL is required", label))
			}
			if src.Target == "" {
				errors = append(errors, fmt.Sprintf("%s: target is required", label))
			}
			if src.Kind == KindDiscover && src.Selector == "" {
				errors = append(errors, fmt.Sprintf("%s: selector is required", label))
			}
		default:
			errors = append(errors, fmt.Sprintf("%s: kind must be file, url or discover, got %q", label, src.Kind))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.Log.Level = "INFO"
	cfg.Log.Format = "json"

	cfg.Validator.Mode = "fast"
	cfg.Validator.Workers = 30
	cfg.Validator.Timeout = 0 // Mode default: 3s fast, 10s strict

	cfg.Fetch.Timeout = 30 * time.Second

	cfg.Classifier = classifier.DefaultRules()

	cfg.History.Backend = "json"
	cfg.History.File = "channels_history.json"
	cfg.History.Mode = "count"

	cfg.Report.File = "telegram_report.txt"
	cfg.Report.MaxSources = 10
	cfg.Report.MaxAdded = 10
	cfg.Report.MaxRemoved = 5

	return cfg
}

// LoadFromFile loads configuration from a YAML file, or TOML when the file
// has a .toml extension
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from path (or CONFIG_FILE, or config.yaml) if the
// file exists, applies environment variable overrides, expands the playlist
// glob and validates the result
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		path = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(path); err == nil {
		cfg, err = LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else {
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.expandGlob(); err != nil {
		return nil, err
	}
	cfg.normalizeSources()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = strings.ToUpper(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Log.Format = strings.ToLower(val)
	}

	if val := os.Getenv("VALIDATOR_MODE"); val != "" {
		cfg.Validator.Mode = strings.ToLower(val)
	}
	if val := os.Getenv("VALIDATOR_WORKERS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid VALIDATOR_WORKERS: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("VALIDATOR_WORKERS must be positive")
		}
		cfg.Validator.Workers = n
	}
	if val := os.Getenv("VALIDATOR_TIMEOUT"); val != "" {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid VALIDATOR_TIMEOUT format (expected duration like '3s'): %w", err)
		}
		if duration <= 0 {
			return fmt.Errorf("VALIDATOR_TIMEOUT must be positive, got: %s", val)
		}
		cfg.Validator.Timeout = duration
	}
	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
		if duration <= 0 {
			return fmt.Errorf("FETCH_TIMEOUT must be positive")
		}
		cfg.Fetch.Timeout = duration
	}

	if val := os.Getenv("HISTORY_FILE"); val != "" {
		cfg.History.File = val
	}
	if val := os.Getenv("HISTORY_BACKEND"); val != "" {
		cfg.History.Backend = strings.ToLower(val)
	}
	if val := os.Getenv("HISTORY_MODE"); val != "" {
		cfg.History.Mode = strings.ToLower(val)
	}

	if val := os.Getenv("TELEGRAM_BOT_TOKEN"); val != "" {
		cfg.Telegram.BotToken = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_ID"); val != "" {
		cfg.Telegram.ChatID = val
	}

	if val := os.Getenv("REPORT_FILE"); val != "" {
		cfg.Report.File = val
	}
	if val := os.Getenv("METRICS_TEXTFILE"); val != "" {
		cfg.Metrics.Textfile = val
	}

	return nil
}

// expandGlob appends one file source per playlist matching the glob, in
// name order. Backup copies (*.backup.m3u) and paths already configured as
// sources are skipped.
func (c *Config) expandGlob() error {
	if c.Glob == "" {
		return nil
	}

	matches, err := filepath.Glob(c.Glob)
	if err != nil {
		return fmt.Errorf("invalid glob %q: %w", c.Glob, err)
	}
	sort.Strings(matches)

	known := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if src.Kind == KindFile || src.Kind == "" {
			known[filepath.Clean(src.Path)] = true
		}
	}

	for _, path := range matches {
		if strings.HasSuffix(strings.ToLower(path), ".backup.m3u") || known[filepath.Clean(path)] {
			continue
		}
		c.Sources = append(c.Sources, SourceConfig{
			Name: filepath.Base(path),
			Kind: KindFile,
			Path: path,
		})
	}
	return nil
}

// normalizeSources fills in defaults: file sources are rewritten in place
// and named after their file.
func (c *Config) normalizeSources() {
	for i := range c.Sources {
		src := &c.Sources[i]
		if src.Kind == "" {
			src.Kind = KindFile
		}
		if src.Kind == KindFile {
			if src.Target == "" {
				src.Target = src.Path
			}
			if src.Name == "" && src.Path != "" {
				src.Name = filepath.Base(src.Path)
			}
		}
		if src.Name == "" && src.Target != "" {
			src.Name = filepath.Base(src.Target)
		}
	}
}

// Print outputs the configuration to stdout
func (c *Config) Print() {
	fmt.Printf("logLevel: %v\n", c.Log.Level)
	fmt.Printf("logFormat: %v\n", c.Log.Format)
	fmt.Printf("validatorMode: %v\n", c.Validator.Mode)
	fmt.Printf("validatorWorkers: %v\n", c.Validator.Workers)
	fmt.Printf("validatorTimeout: %v\n", c.Validator.Timeout)
	fmt.Printf("fetchTimeout: %v\n", c.Fetch.Timeout)
	fmt.Printf("historyBackend: %v\n", c.History.Backend)
	fmt.Printf("historyFile: %v\n", c.History.File)
	fmt.Printf("historyMode: %v\n", c.History.Mode)
	fmt.Printf("telegramEnabled: %v\n", c.TelegramEnabled())
	fmt.Printf("reportFile: %v\n", c.Report.File)
	fmt.Printf("sources: %d\n", len(c.Sources))
	for _, src := range c.Sources {
		fmt.Printf("  - %s (%s): %s -> %s\n", src.Name, src.Kind, src.Location(), src.Target)
	}
}
