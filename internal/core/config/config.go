package config

import (
	"time"

	redisclient "github.com/vietddude/ethalive/internal/infra/redis"
	"github.com/vietddude/ethalive/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Watchdog WatchdogConfig     `yaml:"watchdog"`
	Alert    AlertConfig        `yaml:"alert"`
	History  HistoryConfig      `yaml:"history"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// WatchdogConfig holds the endpoints and thresholds of the poll loop.
type WatchdogConfig struct {
	LocalURL     string        `yaml:"local_url"`
	RemoteURL    string        `yaml:"remote_url"`
	LagThreshold uint64        `yaml:"lag_threshold"` // blocks
	PollInterval time.Duration `yaml:"poll_interval"`
	RPCTimeout   time.Duration `yaml:"rpc_timeout"`
}

// AlertConfig holds webhook alerting settings.
type AlertConfig struct {
	WebhookURL               string        `yaml:"webhook_url"`
	Cooldown                 time.Duration `yaml:"cooldown"`
	Timeout                  time.Duration `yaml:"timeout"`
	AlertOnRemoteUnreachable bool          `yaml:"alert_on_remote_unreachable"`
}

// HistoryConfig controls retention of check records.
type HistoryConfig struct {
	Retention time.Duration `yaml:"retention"`  // 0 = keep forever
	MaxMemory int           `yaml:"max_memory"` // records kept without a database
}
