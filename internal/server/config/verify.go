// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyChat(&cfg.Chat); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyChat(cfg *ChatSection) error {
	if cfg.Addr == "" {
		return errors.New("chat.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("chat.addr %q is not host:port: %w", cfg.Addr, err)
	}
	if cfg.MessageRate <= 0 {
		return errors.New("chat.message_rate must be positive")
	}
	if cfg.StrikeLimit < 1 {
		return errors.New("chat.strike_limit must be at least 1")
	}
	if cfg.BanWindow <= 0 {
		return errors.New("chat.ban_window must be positive")
	}
	if cfg.AuthRequired && (cfg.TokenLength < 8 || cfg.TokenLength > 64) {
		return fmt.Errorf("chat.token_length %d out of range [8, 64]", cfg.TokenLength)
	}
	if cfg.ConnectRate < 0 {
		return errors.New("chat.connect_rate must not be negative")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr %q is not host:port: %w", cfg.Addr, err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not a known level", cfg.Level)
	}
	switch cfg.Format {
	case "", "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not a known format", cfg.Format)
	}
	return nil
}
