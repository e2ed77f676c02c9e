// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for relaychat-server.
type ServerConfig struct {
	Chat    ChatSection    `koanf:"chat"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ChatSection configures the chat relay.
type ChatSection struct {
	// Addr is the TCP listen address for the relay.
	Addr string `koanf:"addr"`

	// AuthRequired gates broadcast behind the startup access token.
	AuthRequired bool `koanf:"auth_required"`

	// TokenLength is the access token size in bytes (hex doubles it).
	TokenLength int `koanf:"token_length"`

	// MessageRate is the minimum spacing between accepted messages
	// per session. Any faster message costs a strike.
	MessageRate time.Duration `koanf:"message_rate"`

	// StrikeLimit is the abuse count that triggers a ban.
	StrikeLimit int `koanf:"strike_limit"`

	// BanWindow is how long a banned origin IP stays blocked.
	BanWindow time.Duration `koanf:"ban_window"`

	// ConnectRate caps connection attempts per origin IP per second
	// at the accept path. Zero disables the throttle.
	ConnectRate int `koanf:"connect_rate"`
}

// MetricsSection configures Prometheus exposition.
type MetricsSection struct {
	// Addr is the metrics HTTP listen address. Empty disables the
	// endpoint, keeping the chat port the only network surface.
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// SafeMode additionally redacts client addresses in log output.
	SafeMode bool `koanf:"safe_mode"`
}
