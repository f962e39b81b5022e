package config

// The file schema exists so durations are written as human-readable
// strings ("3s") instead of nanosecond integers. Load parses the same
// strings back via viper's duration decoding.

type fileSchema struct {
	Server   serverSchema   `toml:"server"`
	Media    mediaSchema    `toml:"media"`
	Delivery deliverySchema `toml:"delivery"`
	Pipeline pipelineSchema `toml:"pipeline"`
}

type serverSchema struct {
	Listen    string `toml:"listen"`
	AuthToken string `toml:"auth_token"`
}

type mediaSchema struct {
	BaseURL       string  `toml:"base_url"`
	AuthToken     string  `toml:"auth_token"`
	RatePerSecond float64 `toml:"rate_per_second"`
	RateBurst     int     `toml:"rate_burst"`
	RetryAttempts int     `toml:"retry_attempts"`
	RetryBackoff  string  `toml:"retry_backoff"`
}

type deliverySchema struct {
	BaseURL   string `toml:"base_url"`
	AuthToken string `toml:"auth_token"`
}

type pipelineSchema struct {
	WorkDir          string `toml:"work_dir"`
	QuietPeriod      string `toml:"quiet_period"`
	DownloadTimeout  string `toml:"download_timeout"`
	MaxDrainWait     string `toml:"max_drain_wait"`
	DrainPoll        string `toml:"drain_poll"`
	VolumeLimitBytes int64  `toml:"volume_limit_bytes"`
	ArchiveName      string `toml:"archive_name"`
}

func toSchema(c Config) fileSchema {
	return fileSchema{
		Server: serverSchema{
			Listen:    c.Server.Listen,
			AuthToken: c.Server.AuthToken,
		},
		Media: mediaSchema{
			BaseURL:       c.Media.BaseURL,
			AuthToken:     c.Media.AuthToken,
			RatePerSecond: c.Media.RatePerSecond,
			RateBurst:     c.Media.RateBurst,
			RetryAttempts: c.Media.RetryAttempts,
			RetryBackoff:  c.Media.RetryBackoff.String(),
		},
		Delivery: deliverySchema{
			BaseURL:   c.Delivery.BaseURL,
			AuthToken: c.Delivery.AuthToken,
		},
		Pipeline: pipelineSchema{
			WorkDir:          c.Pipeline.WorkDir,
			QuietPeriod:      c.Pipeline.QuietPeriod.String(),
			DownloadTimeout:  c.Pipeline.DownloadTimeout.String(),
			MaxDrainWait:     c.Pipeline.MaxDrainWait.String(),
			DrainPoll:        c.Pipeline.DrainPoll.String(),
			VolumeLimitBytes: c.Pipeline.VolumeLimitBytes,
			ArchiveName:      c.Pipeline.ArchiveName,
		},
	}
}
