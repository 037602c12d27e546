package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds shell settings.
type Config struct {
	Jobs  JobsConfig
	Shell ShellConfig
	Log   LogConfig
}

// JobsConfig bounds the job table.
type JobsConfig struct {
	Capacity int
}

// ShellConfig controls what the REPL prints.
type ShellConfig struct {
	Prompt string
	Banner bool
}

// LogConfig controls diagnostic logging. An empty File means stderr.
type LogConfig struct {
	Level string
	File  string
}

// Load reads configuration from file and env. Env var overrides use prefix JOBSH_.
// A missing config file is not an error.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("jobs.capacity", 100)
	v.SetDefault("shell.prompt", "shell> ")
	v.SetDefault("shell.banner", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("JOBSH_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "jobsh"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("JOBSH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the shell cannot run with.
func (c Config) Validate() error {
	if c.Jobs.Capacity < 1 {
		return fmt.Errorf("config: jobs.capacity must be at least 1, got %d", c.Jobs.Capacity)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	return nil
}
