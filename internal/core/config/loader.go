package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DefaultPort          = 8080
	DefaultLagThreshold  = 3
	DefaultPollInterval  = 60 * time.Second
	DefaultAlertCooldown = 15 * time.Minute
	DefaultRPCTimeout    = 10 * time.Second
	DefaultAlertTimeout  = 15 * time.Second
	DefaultMaxMemory     = 1000
)

// ErrMissingEndpoint is returned when a required RPC URL is not configured.
var ErrMissingEndpoint = errors.New("missing required endpoint")

// ErrInvalidThreshold is returned when the lag threshold is explicitly set to 0.
var ErrInvalidThreshold = errors.New("lag threshold must be at least 1")

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path or a missing file is allowed: the environment
// alone can configure the watchdog.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			// Expand environment variables in the YAML content
			expandedData := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			if explicitZeroThreshold([]byte(expandedData)) {
				return nil, fmt.Errorf("%w: watchdog.lag_threshold", ErrInvalidThreshold)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// explicitZeroThreshold reports whether the file sets lag_threshold to 0.
// A zero in AppConfig is indistinguishable from an omitted key.
func explicitZeroThreshold(data []byte) bool {
	var raw struct {
		Watchdog struct {
			LagThreshold *uint64 `yaml:"lag_threshold"`
		} `yaml:"watchdog"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false
	}
	return raw.Watchdog.LagThreshold != nil && *raw.Watchdog.LagThreshold == 0
}

// applyEnv overlays the LOCAL_RPC_URL style environment variables.
func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("LOCAL_RPC_URL"); v != "" {
		cfg.Watchdog.LocalURL = v
	}
	if v := os.Getenv("REMOTE_RPC_URL"); v != "" {
		cfg.Watchdog.RemoteURL = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alert.WebhookURL = v
	}
	if v := os.Getenv("LAG_THRESHOLD"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LAG_THRESHOLD must be a valid number: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: LAG_THRESHOLD", ErrInvalidThreshold)
		}
		cfg.Watchdog.LagThreshold = n
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		secs, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("POLL_INTERVAL must be a number of seconds: %w", err)
		}
		cfg.Watchdog.PollInterval = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("ALERT_COOLDOWN_MINUTES"); v != "" {
		mins, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("ALERT_COOLDOWN_MINUTES must be a number of minutes: %w", err)
		}
		cfg.Alert.Cooldown = time.Duration(mins) * time.Minute
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Watchdog.LagThreshold == 0 {
		cfg.Watchdog.LagThreshold = DefaultLagThreshold
	}
	if cfg.Watchdog.PollInterval == 0 {
		cfg.Watchdog.PollInterval = DefaultPollInterval
	}
	if cfg.Watchdog.RPCTimeout == 0 {
		cfg.Watchdog.RPCTimeout = DefaultRPCTimeout
	}
	if cfg.Alert.Cooldown == 0 {
		cfg.Alert.Cooldown = DefaultAlertCooldown
	}
	if cfg.Alert.Timeout == 0 {
		cfg.Alert.Timeout = DefaultAlertTimeout
	}
	// The webhook must not give up before the RPC calls would.
	if cfg.Alert.Timeout < cfg.Watchdog.RPCTimeout {
		cfg.Alert.Timeout = cfg.Watchdog.RPCTimeout
	}
	if cfg.History.MaxMemory == 0 {
		cfg.History.MaxMemory = DefaultMaxMemory
	}
}

// Validate checks that the required endpoints are present and durations are sane.
func (c *AppConfig) Validate() error {
	if c.Watchdog.LocalURL == "" {
		return fmt.Errorf("%w: LOCAL_RPC_URL (watchdog.local_url)", ErrMissingEndpoint)
	}
	if c.Watchdog.RemoteURL == "" {
		return fmt.Errorf("%w: REMOTE_RPC_URL (watchdog.remote_url)", ErrMissingEndpoint)
	}
	if c.Watchdog.PollInterval < 0 || c.Alert.Cooldown < 0 || c.History.Retention < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}
