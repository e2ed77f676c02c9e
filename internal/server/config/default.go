// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultChatAddr    = "0.0.0.0:6969"
	DefaultTokenLength = 16
	DefaultMessageRate = time.Second
	DefaultStrikeLimit = 10
	DefaultBanWindow   = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Chat: ChatSection{
			Addr:         DefaultChatAddr,
			AuthRequired: true,
			TokenLength:  DefaultTokenLength,
			MessageRate:  DefaultMessageRate,
			StrikeLimit:  DefaultStrikeLimit,
			BanWindow:    DefaultBanWindow,
			ConnectRate:  0,
		},
		Metrics: MetricsSection{
			Addr: "",
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
