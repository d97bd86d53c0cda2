package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mgpai22/subconv/internal/translate"
)

func (c *Config) normalize() error {
	c.normalizeConvert()
	c.normalizeTranslate()
	return c.normalizeMedia()
}

func (c *Config) normalizeConvert() {
	c.Convert.InputFormat = strings.ToLower(strings.TrimSpace(c.Convert.InputFormat))
	c.Convert.OutputFormat = strings.ToLower(strings.TrimSpace(c.Convert.OutputFormat))
}

func (c *Config) normalizeTranslate() {
	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	if c.Translate.Provider == "" {
		c.Translate.Provider = defaultProvider
	}
	c.Translate.Model = strings.TrimSpace(c.Translate.Model)
	c.Translate.APIKey = strings.TrimSpace(c.Translate.APIKey)
	if c.Translate.APIKey == "" {
		c.Translate.APIKey = c.APIKeyFor(translate.Provider(c.Translate.Provider))
	}
}

func (c *Config) normalizeMedia() error {
	c.Media.FFmpegPath = strings.TrimSpace(c.Media.FFmpegPath)
	if c.Media.FFmpegPath == "" || !strings.ContainsRune(c.Media.FFmpegPath, os.PathSeparator) {
		return nil
	}
	expanded, err := expandPath(c.Media.FFmpegPath)
	if err != nil {
		return fmt.Errorf("media.ffmpeg_path: %w", err)
	}
	c.Media.FFmpegPath = expanded
	return nil
}

// APIKeyFor returns the key for provider: the configured key when provider
// is the configured one, else the provider's environment variable.
func (c *Config) APIKeyFor(provider translate.Provider) string {
	if string(provider) == c.Translate.Provider && c.Translate.APIKey != "" {
		return c.Translate.APIKey
	}
	if value, ok := os.LookupEnv(provider.APIKeyEnv()); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	provider := translate.Provider(c.Translate.Provider)
	if !slices.Contains(translate.Providers(), provider) {
		return fmt.Errorf("translate.provider: unsupported value %q", c.Translate.Provider)
	}
	if !c.Translate.ModelOverride {
		if err := translate.ValidateModel(provider, c.Translate.Model); err != nil {
			return fmt.Errorf("translate.model: %w", err)
		}
	}
	if c.Translate.Concurrency <= 0 {
		return errors.New("translate.concurrency must be positive")
	}
	if c.Translate.BatchSize <= 0 {
		return errors.New("translate.batch_size must be positive")
	}
	if c.Media.Stream < 0 {
		return errors.New("media.stream must not be negative")
	}
	return nil
}
