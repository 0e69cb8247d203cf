// Package config handles YAML config file loading for `optree run`.
package config

// Config is the YAML shape accepted by --config. Mode, SessionFile and
// LogFile have matching CLI flags, which override whatever the file
// sets, per the "CLI flags override --config YAML" precedence rule; the
// other fields are set only through the file.
type Config struct {
	// Mode selects interactive/record/replay. Matches ioctx.Mode's values.
	Mode string `yaml:"mode"`

	// SessionFile is the path record mode saves to, or replay mode
	// loads from.
	SessionFile string `yaml:"sessionFile"`

	// LogFile, if set, tees output through a timestamped log copy.
	LogFile string `yaml:"logFile"`

	// StripANSI controls whether the log file copy strips escape
	// sequences.
	StripANSI bool `yaml:"stripAnsi"`

	// Redis and Webhook configure the optional NotifyOp downstream
	// adapter; at most one should be set.
	Redis   *RedisConfig   `yaml:"redis,omitempty"`
	Webhook *WebhookConfig `yaml:"webhook,omitempty"`

	// S3 configures the demo S3TransferOp menu entry; left nil, that
	// entry reports itself unconfigured instead of calling AWS.
	S3 *S3Config `yaml:"s3,omitempty"`

	// CacheRedisURL configures the demo CachedLookupOp menu entry's
	// Redis backend; left empty, that entry reports itself
	// unconfigured instead of dialing Redis.
	CacheRedisURL string `yaml:"cacheRedisUrl,omitempty"`
}

// S3Config configures the demo upload target for S3TransferOp.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Key          string `yaml:"key"`
	Region       string `yaml:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	UsePathStyle bool   `yaml:"usePathStyle,omitempty"`
}

// RedisConfig configures the redis adapter's pub/sub notification sink.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

// WebhookConfig configures the webhook adapter's notification sink.
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}
