// Package config loads and validates the agent configuration from a TOML
// file with MEDIAPACK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/avrel/mediapack/internal/domain"
)

const (
	configName      = "config"
	configType      = "toml"
	configDirName   = "mediapack"
	envPrefix       = "MEDIAPACK"
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

// Server configures the ingest HTTP listener.
type Server struct {
	Listen    string `mapstructure:"listen"`
	AuthToken string `mapstructure:"auth_token"`
}

// Media configures how content references are fetched from the upstream
// media source.
type Media struct {
	BaseURL       string        `mapstructure:"base_url"`
	AuthToken     string        `mapstructure:"auth_token"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	RateBurst     int           `mapstructure:"rate_burst"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
}

// Delivery configures where finished volumes and unprocessed-item notices
// are posted.
type Delivery struct {
	BaseURL   string `mapstructure:"base_url"`
	AuthToken string `mapstructure:"auth_token"`
}

// Pipeline configures the debounce and archiving behavior. Durations
// accept Go syntax ("3s", "200ms").
type Pipeline struct {
	WorkDir          string        `mapstructure:"work_dir"`
	QuietPeriod      time.Duration `mapstructure:"quiet_period"`
	DownloadTimeout  time.Duration `mapstructure:"download_timeout"`
	MaxDrainWait     time.Duration `mapstructure:"max_drain_wait"`
	DrainPoll        time.Duration `mapstructure:"drain_poll"`
	VolumeLimitBytes int64         `mapstructure:"volume_limit_bytes"`
	ArchiveName      string        `mapstructure:"archive_name"`
}

type Config struct {
	Server   Server   `mapstructure:"server"`
	Media    Media    `mapstructure:"media"`
	Delivery Delivery `mapstructure:"delivery"`
	Pipeline Pipeline `mapstructure:"pipeline"`
}

// Default returns the configuration shipped by `config init`. Endpoint
// URLs are deliberately empty; Validate rejects a config without them.
func Default() Config {
	return Config{
		Server: Server{
			Listen: "127.0.0.1:8580",
		},
		Media: Media{
			RatePerSecond: 4,
			RateBurst:     2,
			RetryAttempts: 3,
			RetryBackoff:  time.Second,
		},
		Pipeline: Pipeline{
			QuietPeriod:      3 * time.Second,
			DownloadTimeout:  2 * time.Minute,
			MaxDrainWait:     30 * time.Second,
			DrainPoll:        200 * time.Millisecond,
			VolumeLimitBytes: 48 << 20,
			ArchiveName:      "media.zip",
		},
	}
}

// Dir returns the configuration directory, honoring XDG_CONFIG_HOME.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(base, configDirName), nil
}

// Path returns the full path of the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

// Load reads the config file (if any), applies environment overrides and
// defaults, and validates the result. An explicit path overrides the
// default location; a missing file at the default location is fine, a
// missing explicit file is not.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return Config{}, err
		}
		v.SetConfigName(configName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment-only overrides are
// visible to Unmarshal.
func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("server.listen", def.Server.Listen)
	v.SetDefault("server.auth_token", def.Server.AuthToken)
	v.SetDefault("media.base_url", def.Media.BaseURL)
	v.SetDefault("media.auth_token", def.Media.AuthToken)
	v.SetDefault("media.rate_per_second", def.Media.RatePerSecond)
	v.SetDefault("media.rate_burst", def.Media.RateBurst)
	v.SetDefault("media.retry_attempts", def.Media.RetryAttempts)
	v.SetDefault("media.retry_backoff", def.Media.RetryBackoff)
	v.SetDefault("delivery.base_url", def.Delivery.BaseURL)
	v.SetDefault("delivery.auth_token", def.Delivery.AuthToken)
	v.SetDefault("pipeline.work_dir", def.Pipeline.WorkDir)
	v.SetDefault("pipeline.quiet_period", def.Pipeline.QuietPeriod)
	v.SetDefault("pipeline.download_timeout", def.Pipeline.DownloadTimeout)
	v.SetDefault("pipeline.max_drain_wait", def.Pipeline.MaxDrainWait)
	v.SetDefault("pipeline.drain_poll", def.Pipeline.DrainPoll)
	v.SetDefault("pipeline.volume_limit_bytes", def.Pipeline.VolumeLimitBytes)
	v.SetDefault("pipeline.archive_name", def.Pipeline.ArchiveName)
}

// Validate checks the loaded configuration. All violations wrap
// domain.ErrConfig so callers can treat them as fatal startup errors.
func (c Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("%w: server.listen is required", domain.ErrConfig)
	}
	if c.Delivery.BaseURL == "" {
		return fmt.Errorf("%w: delivery.base_url is required", domain.ErrConfig)
	}
	if c.Media.BaseURL != "" {
		if !strings.HasPrefix(c.Media.BaseURL, "http://") && !strings.HasPrefix(c.Media.BaseURL, "https://") {
			return fmt.Errorf("%w: media.base_url must be an http(s) URL", domain.ErrConfig)
		}
	}
	if c.Media.RetryAttempts < 0 {
		return fmt.Errorf("%w: media.retry_attempts must not be negative", domain.ErrConfig)
	}
	if c.Pipeline.QuietPeriod <= 0 {
		return fmt.Errorf("%w: pipeline.quiet_period must be positive", domain.ErrConfig)
	}
	if c.Pipeline.DownloadTimeout <= 0 {
		return fmt.Errorf("%w: pipeline.download_timeout must be positive", domain.ErrConfig)
	}
	if c.Pipeline.MaxDrainWait <= 0 {
		return fmt.Errorf("%w: pipeline.max_drain_wait must be positive", domain.ErrConfig)
	}
	if c.Pipeline.DrainPoll <= 0 {
		return fmt.Errorf("%w: pipeline.drain_poll must be positive", domain.ErrConfig)
	}
	// volume_limit_bytes <= 0 is allowed and disables splitting.
	if c.Pipeline.ArchiveName != "" && !strings.HasSuffix(c.Pipeline.ArchiveName, ".zip") {
		return fmt.Errorf("%w: pipeline.archive_name must end in .zip", domain.ErrConfig)
	}
	return nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. The write is atomic: marshal to a temp file in the target
// directory, then rename into place. Refuses to overwrite an existing
// file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(toSchema(Default()))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("rename config file into place: %w", err)
	}
	cleanup = false
	return nil
}
