package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete eguisyncd server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LogConfig     `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig controls the WebSocket listener and the wire protocol
// it speaks.
type ServerConfig struct {
	Address         string   `yaml:"address"`
	Path            string   `yaml:"path"`
	ProtocolVersion uint16   `yaml:"protocol_version"`
	MaxMessageBytes int64    `yaml:"max_message_bytes"`
	HandshakeTimeout Duration `yaml:"handshake_timeout"`
}

// AuthConfig names the optional client token allow-list checked during
// handshake (spec §4.E step 4). An empty Tokens list accepts any
// client token. Tokens are the raw u64 values carried by the
// Handshake record's client_token field (spec §9's resolved Open
// Question), not arbitrary strings.
type AuthConfig struct {
	Tokens []uint64 `yaml:"tokens"`
}

// LogConfig controls the slog handler built by internal/logging.
type LogConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	DispatchDebug bool  `yaml:"dispatch_debug"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Allowed reports whether token may complete a handshake. An empty
// allow-list accepts every token.
func (a AuthConfig) Allowed(token uint64) bool {
	if len(a.Tokens) == 0 {
		return true
	}
	for _, t := range a.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// Duration is a time.Duration that supports YAML string unmarshaling,
// e.g. "30s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads config from a YAML file, applying defaults for missing
// values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.Path == "" {
		return fmt.Errorf("server.path is required")
	}
	if c.Server.ProtocolVersion == 0 {
		return fmt.Errorf("server.protocol_version must be >= 1, got %d", c.Server.ProtocolVersion)
	}
	if c.Server.MaxMessageBytes <= 0 {
		return fmt.Errorf("server.max_message_bytes must be > 0, got %d", c.Server.MaxMessageBytes)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}

	return nil
}
