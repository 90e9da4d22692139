// Package config loads promptforge settings from defaults, an optional
// config file, PROMPTFORGE_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PROMPTFORGE"

// Limits bounds every import operation.
type Limits struct {
	FileLimit           int   `mapstructure:"file_limit"`
	MaxTextFileSize     int64 `mapstructure:"max_text_file_size"`
	MaxCharLen          int   `mapstructure:"max_char_len"`
	DiscoveryCap        int   `mapstructure:"discovery_cap"`
	ProcessedMultiplier int   `mapstructure:"processed_multiplier"`
	MaxAttachments      int   `mapstructure:"max_attachments"`
	MaxAttachmentSize   int64 `mapstructure:"max_attachment_size"`
}

// ProcessedCap is the hard ceiling on entries visited during a scan.
func (l Limits) ProcessedCap() int {
	return l.DiscoveryCap * l.ProcessedMultiplier
}

type Scan struct {
	RespectGitignore bool     `mapstructure:"respect_gitignore"`
	DefaultIgnores   bool     `mapstructure:"default_ignores"`
	Exclude          []string `mapstructure:"exclude"`
	IgnoreFile       string   `mapstructure:"ignore_file"`
}

type Prompt struct {
	MaxFileBlocks int `mapstructure:"max_file_blocks"`
}

type Tokens struct {
	Debounce       time.Duration `mapstructure:"debounce"`
	CacheSize      int           `mapstructure:"cache_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Tokenizer      string        `mapstructure:"tokenizer"`
	TokenizerModel string        `mapstructure:"tokenizer_model"`
	TokenizerFile  string        `mapstructure:"tokenizer_file"`
	Remote         bool          `mapstructure:"remote"`
}

type LLM struct {
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Chats struct {
	UndoWindow time.Duration `mapstructure:"undo_window"`
}

// Database.Path falls back to the build's default location when empty.
type Database struct {
	Path string `mapstructure:"path"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Config is the resolved configuration.
type Config struct {
	Limits   Limits   `mapstructure:"limits"`
	Scan     Scan     `mapstructure:"scan"`
	Prompt   Prompt   `mapstructure:"prompt"`
	Tokens   Tokens   `mapstructure:"tokens"`
	LLM      LLM      `mapstructure:"llm"`
	Chats    Chats    `mapstructure:"chats"`
	Database Database `mapstructure:"database"`
	Log      Log      `mapstructure:"log"`
}

// SetDefaults registers every key so env lookups and Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("limits.file_limit", 500)
	v.SetDefault("limits.max_text_file_size", 300*1024)
	v.SetDefault("limits.max_char_len", 200000)
	v.SetDefault("limits.discovery_cap", 5000)
	v.SetDefault("limits.processed_multiplier", 4)
	v.SetDefault("limits.max_attachments", 10)
	v.SetDefault("limits.max_attachment_size", 20*1024*1024)

	v.SetDefault("scan.respect_gitignore", true)
	v.SetDefault("scan.default_ignores", true)
	v.SetDefault("scan.exclude", []string{"**/.git", "**/node_modules"})
	v.SetDefault("scan.ignore_file", "")

	v.SetDefault("prompt.max_file_blocks", 20)

	v.SetDefault("tokens.debounce", 1500*time.Millisecond)
	v.SetDefault("tokens.cache_size", 5000)
	v.SetDefault("tokens.timeout", 30*time.Second)
	v.SetDefault("tokens.tokenizer", "tiktoken")
	v.SetDefault("tokens.tokenizer_model", "gpt-4o")
	v.SetDefault("tokens.tokenizer_file", "")
	v.SetDefault("tokens.remote", false)

	v.SetDefault("llm.model", "gemini|gemini-2.5-flash")
	v.SetDefault("llm.timeout", 5*time.Minute)

	v.SetDefault("chats.undo_window", 30*time.Minute)

	v.SetDefault("database.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "")
}

// Prepare wires the search path and environment lookup on v. An explicit
// cfgFile overrides the search path.
func Prepare(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("promptforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "promptforge"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects limits that would make imports impossible.
func (c *Config) Validate() error {
	switch {
	case c.Limits.FileLimit <= 0:
		return fmt.Errorf("limits.file_limit must be positive")
	case c.Limits.MaxTextFileSize <= 0:
		return fmt.Errorf("limits.max_text_file_size must be positive")
	case c.Limits.MaxCharLen <= 0:
		return fmt.Errorf("limits.max_char_len must be positive")
	case c.Limits.DiscoveryCap <= 0:
		return fmt.Errorf("limits.discovery_cap must be positive")
	case c.Limits.ProcessedMultiplier < 1:
		return fmt.Errorf("limits.processed_multiplier must be at least 1")
	case c.Tokens.CacheSize <= 0:
		return fmt.Errorf("tokens.cache_size must be positive")
	case c.Tokens.Timeout <= 0:
		return fmt.Errorf("tokens.timeout must be positive")
	case c.LLM.Timeout <= 0:
		return fmt.Errorf("llm.timeout must be positive")
	}
	return nil
}
