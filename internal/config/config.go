package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StaticDir string `toml:"static_dir"`
	LogDir    string `toml:"log_dir"`
}

// Redis contains connection settings for the durable store and queues.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// Scraper contains settings for the headless-browser scraping collaborator.
type Scraper struct {
	BrowserURL     string `toml:"browser_url"`
	RequestTimeout int    `toml:"request_timeout"`
	RenderWaitMS   int    `toml:"render_wait_ms"`
}

// TTS contains settings for the speech-synthesis collaborator.
type TTS struct {
	Binary  string `toml:"binary"`
	Voice   string `toml:"voice"`
	Timeout int    `toml:"timeout"`
}

// Mux contains settings for the media muxing collaborator.
type Mux struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	AudioBitrate  string `toml:"audio_bitrate"`
}

// Sync contains settings for the remote archive replication stage.
type Sync struct {
	Destination     string `toml:"destination"`
	SSHKeyPath      string `toml:"ssh_key_path"`
	TransferTimeout int    `toml:"transfer_timeout"`
	LockTTL         int    `toml:"lock_ttl"`
	DispatchDelay   int    `toml:"dispatch_delay"`
}

// Workflow contains retry policy and worker loop timing.
type Workflow struct {
	MaxRetries        int `toml:"max_retries"`
	RetryBaseSeconds  int `toml:"retry_base_seconds"`
	RetryMaxSeconds   int `toml:"retry_max_seconds"`
	SyncMaxRetries    int `toml:"sync_max_retries"`
	SyncRetryBase     int `toml:"sync_retry_base_seconds"`
	DequeueBlock      int `toml:"dequeue_block_seconds"`
	PromoteInterval   int `toml:"promote_interval_seconds"`
	EnrichLockSeconds int `toml:"enrich_lock_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Redis    Redis    `toml:"redis"`
	Scraper  Scraper  `toml:"scraper"`
	TTS      TTS      `toml:"tts"`
	Mux      Mux      `toml:"mux"`
	Sync     Sync     `toml:"sync"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lorecast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return expanded, true, nil
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StaticDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StaticDir, err = expandPath(c.Paths.StaticDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Sync.SSHKeyPath, err = expandPath(c.Sync.SSHKeyPath); err != nil {
		return err
	}
	c.Redis.Prefix = strings.TrimSpace(c.Redis.Prefix)
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Clean(trimmed), nil
}
