package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// HistoryLimit caps how many messages each room log retains; 0 keeps
	// everything for the process lifetime.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
	// ReplayLimit is how many recent messages a late joiner is sent.
	ReplayLimit int `mapstructure:"replay_limit" yaml:"replay_limit"`

	MaxMessageBytes int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	// MessageRate limits inbound frames per second per connection;
	// MessageBurst is the allowed burst. MessageRate 0 disables limiting.
	MessageRate  float64 `mapstructure:"message_rate" yaml:"message_rate"`
	MessageBurst int     `mapstructure:"message_burst" yaml:"message_burst"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		HistoryLimit:      0,
		ReplayLimit:       10,
		MaxMessageBytes:   1 << 20,
		MessageRate:       20,
		MessageBurst:      40,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.ReplayLimit != 0 {
		c.ReplayLimit = other.ReplayLimit
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.MessageRate != 0 {
		c.MessageRate = other.MessageRate
	}
	if other.MessageBurst != 0 {
		c.MessageBurst = other.MessageBurst
	}
}
